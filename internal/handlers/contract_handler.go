package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/divan/num2words"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/felipekgouvea/cerg/config"
	"github.com/felipekgouvea/cerg/internal/billing"
	"github.com/felipekgouvea/cerg/models"
)

// Standard contract plan: twelve equal monthly installments over the service
// year, starting January.
const contractPlanMonths = 12

// resolveMonthlyCents picks the contract's monthly amount: the price-table
// list price for the pre's (service, year, grade), or the fallback per
// service when the table has no row yet.
func resolveMonthlyCents(tx *gorm.DB, pre *models.PreReenrollment) (int64, error) {
	if pre.Value != nil {
		return pre.Value.ListPriceCents, nil
	}
	if pre.ServiceID != nil {
		var value models.ServiceValue
		err := tx.Where("service_id = ? AND year = ? AND grade = ?",
			*pre.ServiceID, pre.NextYear, pre.NextGrade).First(&value).Error
		if err == nil {
			return value.ListPriceCents, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
	}
	if pre.Service != nil {
		if m, ok := monthlyFullCents[pre.Service.Key]; ok {
			return m, nil
		}
	}
	return 0, errors.New("no price for service")
}

// CreateContractFromPreHandler converts a pre-reenrollment into a signed
// contract. One transaction upserts the next-year enrollment and the
// contract, refreshes the contract agreement and replaces its schedule with
// the standard monthly plan. The pre is moved to finalizado.
func CreateContractFromPreHandler(c *gin.Context) {
	var pre models.PreReenrollment
	err := config.DB.Preload("Student").Preload("Service").Preload("Value").
		First(&pre, c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pré-rematrícula não encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar a pré-rematrícula"})
		return
	}
	if pre.ServiceID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A pré-rematrícula não tem serviço definido"})
		return
	}

	var contract models.Contract
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		monthly, err := resolveMonthlyCents(tx, &pre)
		if err != nil {
			return err
		}
		totalCents := monthly * contractPlanMonths

		tier := models.TierTable
		if pre.PriceTier != nil {
			tier = *pre.PriceTier
		}

		var enrollment models.Enrollment
		err = tx.Where("student_id = ? AND year = ?", pre.StudentID, pre.NextYear).
			First(&enrollment).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		enrollment.StudentID = pre.StudentID
		enrollment.Year = pre.NextYear
		enrollment.Grade = pre.NextGrade
		enrollment.ServiceID = pre.ServiceID
		enrollment.ValueID = pre.ValueID
		enrollment.PriceTier = &tier
		enrollment.AppliedPriceCents = &monthly
		enrollment.Status = models.EnrollmentActive
		if err := tx.Save(&enrollment).Error; err != nil {
			return err
		}

		err = tx.Where("student_id = ? AND year = ?", pre.StudentID, pre.NextYear).
			First(&contract).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		contract.StudentID = pre.StudentID
		contract.Year = pre.NextYear
		contract.Grade = pre.NextGrade
		contract.ServiceID = *pre.ServiceID
		contract.EnrollmentID = &enrollment.ID
		if contract.Status == "" {
			contract.Status = models.ContractActive
		}
		if err := tx.Save(&contract).Error; err != nil {
			return err
		}

		var agreement models.Agreement
		if contract.AgreementID != nil {
			if err := tx.First(&agreement, *contract.AgreementID).Error; err != nil {
				return err
			}
			agreement.TotalCents = totalCents
			agreement.ServiceID = pre.ServiceID
			if err := tx.Save(&agreement).Error; err != nil {
				return err
			}
		} else {
			agreement = models.Agreement{
				Kind:       models.AgreementContract,
				Year:       pre.NextYear,
				TotalCents: totalCents,
				StudentID:  pre.StudentID,
				ServiceID:  pre.ServiceID,
			}
			if err := tx.Create(&agreement).Error; err != nil {
				return err
			}
			contract.AgreementID = &agreement.ID
			if err := tx.Model(&contract).Update("agreement_id", agreement.ID).Error; err != nil {
				return err
			}
		}

		ledger := billing.NewLedger(tx)
		if _, err := ledger.GenerateStandard(agreement.ID, pre.NextYear, monthly, time.January, contractPlanMonths); err != nil {
			return err
		}

		return tx.Model(&pre).Update("status", models.PreStatusFinalizado).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível gerar o contrato"})
		return
	}

	config.DB.Preload("Student").Preload("Service").Preload("Agreement").
		First(&contract, contract.ID)
	c.JSON(http.StatusCreated, contract)
}

// ListContractsHandler returns contracts filtered by year, status and
// student name, paginated.
func ListContractsHandler(c *gin.Context) {
	var rows []models.Contract
	var totalRows int64

	query := config.DB.Model(&models.Contract{})

	if year := c.Query("year"); year != "" {
		query = query.Where("contracts.year = ?", year)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("contracts.status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.
			Joins("JOIN students ON students.id = contracts.student_id").
			Where("LOWER(students.name) LIKE ?", pattern)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível contar os contratos"})
		return
	}

	err := query.Preload("Student").Preload("Service").
		Order("contracts.created_at DESC").
		Scopes(Paginate(c)).
		Find(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível listar os contratos"})
		return
	}

	if rows == nil {
		rows = make([]models.Contract, 0)
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, rows, totalRows))
}

// GetContractHandler returns the contract detail with its schedule and
// paid/open totals.
func GetContractHandler(c *gin.Context) {
	var contract models.Contract
	err := config.DB.Preload("Student").Preload("Service").Preload("Enrollment").
		Preload("Agreement").First(&contract, c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contrato não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar o contrato"})
		return
	}

	installments := []models.Installment{}
	var paidCents, openCents int64
	if contract.AgreementID != nil {
		rows, err := billing.NewLedger(config.DB).List(*contract.AgreementID)
		if err != nil {
			respondBillingError(c, err)
			return
		}
		installments = rows
		for _, row := range rows {
			if row.Settled() {
				paidCents += *row.SettledAmountCents
			} else {
				openCents += row.NetPayableCents()
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"contract":     contract,
		"installments": installments,
		"totals": gin.H{
			"paidCents":     paidCents,
			"openCents":     openCents,
			"paidFormatted": formatBRL(paidCents),
			"openFormatted": formatBRL(openCents),
		},
	})
}

type contractStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateContractStatusHandler moves a contract between lifecycle states.
func UpdateContractStatusHandler(c *gin.Context) {
	var input contractStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := models.ContractStatus(input.Status)
	switch status {
	case models.ContractDraft, models.ContractActive, models.ContractCompleted, models.ContractCancelled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status inválido"})
		return
	}

	res := config.DB.Model(&models.Contract{}).
		Where("id = ?", c.Param("id")).
		Update("status", status)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível atualizar o status"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrato não encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// amountInWords spells the whole-real part of a cents amount, for the
// written-amount column of the contract sheet.
func amountInWords(cents int64) string {
	reais := int(cents / 100)
	return num2words.Convert(reais) + " reais"
}

// ExportContractsHandler streams the year's contracts as an .xlsx file.
func ExportContractsHandler(c *gin.Context) {
	var contracts []models.Contract
	query := config.DB.Preload("Student").Preload("Service").Preload("Agreement")
	if year := c.Query("year"); year != "" {
		query = query.Where("year = ?", year)
	}
	if err := query.Order("created_at DESC").Find(&contracts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível exportar os contratos"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Contratos"
	index, _ := f.NewSheet(sheet)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Aluno", "Série", "Serviço", "Ano", "Status", "Valor Anual", "Valor por Extenso", "Criado em"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, contract := range contracts {
		rowNum := i + 2
		studentName := ""
		if contract.Student != nil {
			studentName = contract.Student.Name
		}
		serviceName := ""
		if contract.Service != nil {
			serviceName = contract.Service.Name
		}
		var totalCents int64
		if contract.Agreement != nil {
			totalCents = contract.Agreement.TotalCents
		}

		values := []any{
			studentName,
			string(contract.Grade),
			serviceName,
			contract.Year,
			string(contract.Status),
			formatBRL(totalCents),
			amountInWords(totalCents),
			contract.CreatedAt.Format("02/01/2006 15:04"),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, rowNum)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("contratos_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao gerar a planilha"})
	}
}
