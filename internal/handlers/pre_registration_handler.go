package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/felipekgouvea/cerg/config"
	"github.com/felipekgouvea/cerg/internal/whatsapp"
	"github.com/felipekgouvea/cerg/models"
)

type preRegistrationInput struct {
	StudentName   string `json:"studentName" binding:"required"`
	BirthDate     string `json:"birthDate" binding:"required"`
	GuardianName  string `json:"guardianName" binding:"required"`
	GuardianPhone string `json:"guardianPhone" binding:"required"`
	TargetYear    int    `json:"targetYear" binding:"required"`
	TargetGrade   string `json:"targetGrade" binding:"required"`
	ServiceID     *uint  `json:"serviceId"`
	PaymentOption string `json:"paymentOption"`
	Status        string `json:"status"`
}

// CreatePreRegistrationHandler receives the public enrollment-intent form
// for families new to the school. No authentication: the marketing site
// posts here directly.
func CreatePreRegistrationHandler(c *gin.Context) {
	var input preRegistrationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grade := models.Grade(input.TargetGrade)
	if !grade.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Série inválida"})
		return
	}

	birthDate, err := parseYMD(input.BirthDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data de nascimento inválida. Use YYYY-MM-DD."})
		return
	}

	status := models.PreStatusRealizada
	if input.Status != "" {
		status = models.PreStatus(input.Status)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status inválido"})
			return
		}
	}

	var paymentOption *models.PaymentOption
	if input.PaymentOption != "" {
		opt, ok := parsePaymentOption(input.PaymentOption)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Forma de pagamento inválida"})
			return
		}
		paymentOption = &opt
	}

	pre := models.PreRegistration{
		StudentName:   strings.TrimSpace(input.StudentName),
		BirthDate:     birthDate,
		GuardianName:  strings.TrimSpace(input.GuardianName),
		GuardianPhone: whatsapp.OnlyDigits(input.GuardianPhone),
		TargetYear:    input.TargetYear,
		TargetGrade:   grade,
		ServiceID:     input.ServiceID,
		PaymentOption: paymentOption,
		Status:        status,
	}

	if err := config.DB.Create(&pre).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível registrar a pré-matrícula"})
		return
	}
	c.JSON(http.StatusCreated, pre)
}

func preRegistrationFilters(c *gin.Context, query *gorm.DB) *gorm.DB {
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(student_name) LIKE ? OR LOWER(guardian_name) LIKE ? OR guardian_phone LIKE ?",
			pattern, pattern, pattern)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if grade := c.Query("grade"); grade != "" {
		query = query.Where("target_grade = ?", grade)
	}
	if year := c.Query("year"); year != "" {
		query = query.Where("target_year = ?", year)
	}
	return query
}

// ListPreRegistrationsHandler returns the back-office lead list, filtered
// and paginated, newest first.
func ListPreRegistrationsHandler(c *gin.Context) {
	var rows []models.PreRegistration
	var totalRows int64

	query := preRegistrationFilters(c, config.DB.Model(&models.PreRegistration{}))

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível contar as pré-matrículas"})
		return
	}

	err := query.Preload("Service").
		Order("created_at DESC").
		Scopes(Paginate(c)).
		Find(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível listar as pré-matrículas"})
		return
	}

	if rows == nil {
		rows = make([]models.PreRegistration, 0)
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, rows, totalRows))
}

// GetPreRegistrationHandler returns one pre-registration by id.
func GetPreRegistrationHandler(c *gin.Context) {
	var pre models.PreRegistration
	if err := config.DB.Preload("Service").First(&pre, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pré-matrícula não encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar a pré-matrícula"})
		return
	}
	c.JSON(http.StatusOK, pre)
}

// UpdatePreRegistrationHandler lets the staff correct form data.
func UpdatePreRegistrationHandler(c *gin.Context) {
	var pre models.PreRegistration
	if err := config.DB.First(&pre, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pré-matrícula não encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar a pré-matrícula"})
		return
	}

	var input preRegistrationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grade := models.Grade(input.TargetGrade)
	if !grade.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Série inválida"})
		return
	}
	birthDate, err := parseYMD(input.BirthDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data de nascimento inválida. Use YYYY-MM-DD."})
		return
	}

	pre.StudentName = strings.TrimSpace(input.StudentName)
	pre.BirthDate = birthDate
	pre.GuardianName = strings.TrimSpace(input.GuardianName)
	pre.GuardianPhone = whatsapp.OnlyDigits(input.GuardianPhone)
	pre.TargetYear = input.TargetYear
	pre.TargetGrade = grade
	pre.ServiceID = input.ServiceID

	if input.PaymentOption != "" {
		opt, ok := parsePaymentOption(input.PaymentOption)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Forma de pagamento inválida"})
			return
		}
		pre.PaymentOption = &opt
	}

	if err := config.DB.Save(&pre).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível atualizar a pré-matrícula"})
		return
	}
	c.JSON(http.StatusOK, pre)
}

type statusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdatePreRegistrationStatusHandler moves a lead along the funnel
// (realizada → em_conversas → finalizado/cancelado).
func UpdatePreRegistrationStatusHandler(c *gin.Context) {
	var input statusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := models.PreStatus(input.Status)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status inválido"})
		return
	}

	res := config.DB.Model(&models.PreRegistration{}).
		Where("id = ?", c.Param("id")).
		Update("status", status)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível atualizar o status"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pré-matrícula não encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// DeletePreRegistrationHandler removes a lead.
func DeletePreRegistrationHandler(c *gin.Context) {
	if err := config.DB.Delete(&models.PreRegistration{}, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível excluir a pré-matrícula"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pré-matrícula excluída"})
}

// PreRegistrationWhatsAppHandler builds the confirmation message and wa.me
// link for a lead, ready for the staff to send.
func PreRegistrationWhatsAppHandler(c *gin.Context) {
	var pre models.PreRegistration
	if err := config.DB.Preload("Service").First(&pre, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pré-matrícula não encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar a pré-matrícula"})
		return
	}

	var serviceKey *models.ServiceKey
	if pre.Service != nil {
		serviceKey = &pre.Service.Key
	}

	message := whatsapp.BuildPreRegistrationMessage(whatsapp.PreRegistrationMessage{
		StudentName:   pre.StudentName,
		BirthDate:     pre.BirthDate,
		GuardianName:  pre.GuardianName,
		Grade:         pre.TargetGrade,
		Service:       serviceKey,
		PaymentOption: pre.PaymentOption,
		CreatedAt:     pre.CreatedAt,
		Status:        pre.Status,
	})

	c.JSON(http.StatusOK, gin.H{
		"phone":   pre.GuardianPhone,
		"message": message,
		"link":    whatsapp.Link(pre.GuardianPhone, message),
	})
}

// ExportPreRegistrationsHandler writes the filtered lead list to an Excel
// workbook.
func ExportPreRegistrationsHandler(c *gin.Context) {
	var rows []models.PreRegistration
	query := preRegistrationFilters(c, config.DB.Model(&models.PreRegistration{}))
	if err := query.Preload("Service").Order("created_at DESC").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível exportar as pré-matrículas"})
		return
	}

	f := excelize.NewFile()
	sheetName := "Pré-matrículas"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Aluno", "Nascimento", "Responsável", "Telefone", "Ano", "Série", "Serviço", "Pagamento", "Status", "Enviado em"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, p := range rows {
		row := i + 2
		serviceLabel := ""
		if p.Service != nil {
			serviceLabel = whatsapp.ServiceLabel[p.Service.Key]
		}
		paymentLabel := ""
		if p.PaymentOption != nil {
			paymentLabel = whatsapp.PaymentLabel[*p.PaymentOption]
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), p.StudentName)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), whatsapp.FormatDateBR(p.BirthDate))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), p.GuardianName)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), p.GuardianPhone)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), p.TargetYear)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), whatsapp.GradeLabel[p.TargetGrade])
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), serviceLabel)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), paymentLabel)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), string(p.Status))
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), whatsapp.FormatDateTimeBR(p.CreatedAt))
	}

	fileName := fmt.Sprintf("pre_matriculas_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao gravar o arquivo Excel"})
	}
}
