package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/felipekgouvea/cerg/internal/billing"
	"github.com/felipekgouvea/cerg/models"
)

// parseYMD parses a "YYYY-MM-DD" date into a UTC midnight time.
func parseYMD(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// formatBRL renders integer cents as a Brazilian currency string,
// e.g. 141000 -> "R$ 1.410,00".
func formatBRL(cents int64) string {
	d := decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)

	neg := strings.HasPrefix(d, "-")
	d = strings.TrimPrefix(d, "-")
	parts := strings.SplitN(d, ".", 2)

	intPart := parts[0]
	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)

	out := "R$ " + strings.Join(grouped, ".") + "," + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}

// parsePaymentOption accepts both stored values and the UI alias one_oct
// (which maps to the stored one_sep).
func parsePaymentOption(s string) (models.PaymentOption, bool) {
	if s == "one_oct" {
		return models.PaymentOneSep, true
	}
	opt := models.PaymentOption(s)
	return opt, opt.Valid()
}

// paymentUIKey maps the stored option back to the key the UI charts use.
func paymentUIKey(opt models.PaymentOption) string {
	if opt == models.PaymentOneSep {
		return "one_oct"
	}
	return string(opt)
}

// respondBillingError maps ledger errors onto HTTP statuses.
func respondBillingError(c *gin.Context, err error) {
	var vErr *billing.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
	case errors.Is(err, billing.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Registro não encontrado"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno"})
	}
}
