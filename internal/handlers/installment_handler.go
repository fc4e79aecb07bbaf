package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/felipekgouvea/cerg/config"
	"github.com/felipekgouvea/cerg/internal/billing"
)

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identificador inválido"})
		return 0, false
	}
	return uint(v), true
}

// ListInstallmentsHandler returns an agreement's schedule ordered by due
// date.
func ListInstallmentsHandler(c *gin.Context) {
	agreementID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	rows, err := billing.NewLedger(config.DB).List(agreementID)
	if err != nil {
		respondBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

type addInstallmentInput struct {
	DueDate       string `json:"dueDate" binding:"required"`
	AmountCents   int64  `json:"amountCents"`
	DiscountCents int64  `json:"discountCents"`
}

// AddInstallmentHandler appends one manual installment to an agreement.
func AddInstallmentHandler(c *gin.Context) {
	agreementID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var input addInstallmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dueDate, err := parseYMD(input.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data de vencimento inválida, use AAAA-MM-DD"})
		return
	}

	row, err := billing.NewLedger(config.DB).Add(agreementID, dueDate, input.AmountCents, input.DiscountCents)
	if err != nil {
		respondBillingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

type updateInstallmentInput struct {
	DueDate       *string `json:"dueDate"`
	AmountCents   *int64  `json:"amountCents"`
	DiscountCents *int64  `json:"discountCents"`
}

// UpdateInstallmentHandler patches due date, amount or discount of one row.
func UpdateInstallmentHandler(c *gin.Context) {
	rowID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var input updateInstallmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var patch billing.InstallmentPatch
	if input.DueDate != nil {
		dueDate, err := parseYMD(*input.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Data de vencimento inválida, use AAAA-MM-DD"})
			return
		}
		patch.DueDate = &dueDate
	}
	patch.AmountCents = input.AmountCents
	patch.DiscountCents = input.DiscountCents

	row, err := billing.NewLedger(config.DB).Update(rowID, patch)
	if err != nil {
		respondBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

type settleInstallmentInput struct {
	SettledAt          *string `json:"settledAt"`
	SettledAmountCents *int64  `json:"settledAmountCents"`
}

// SettleInstallmentHandler marks a row paid. Missing fields default to now
// and the net payable amount.
func SettleInstallmentHandler(c *gin.Context) {
	rowID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var input settleInstallmentInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	settledAt := time.Now()
	if input.SettledAt != nil {
		parsed, err := parseYMD(*input.SettledAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Data de pagamento inválida, use AAAA-MM-DD"})
			return
		}
		settledAt = parsed
	}

	ledger := billing.NewLedger(config.DB)
	var amount int64
	if input.SettledAmountCents != nil {
		amount = *input.SettledAmountCents
	} else {
		current, err := ledger.Get(rowID)
		if err != nil {
			respondBillingError(c, err)
			return
		}
		amount = current.NetPayableCents()
	}

	row, err := ledger.Settle(rowID, settledAt, amount)
	if err != nil {
		respondBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// DeleteInstallmentHandler removes a row, settled or not.
func DeleteInstallmentHandler(c *gin.Context) {
	rowID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := billing.NewLedger(config.DB).Delete(rowID); err != nil {
		respondBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Parcela excluída"})
}
