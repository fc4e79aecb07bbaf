package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/felipekgouvea/cerg/config"
	"github.com/felipekgouvea/cerg/internal/billing"
	"github.com/felipekgouvea/cerg/models"
)

// Reenrollment pricing policy. The price table is authoritative; the
// fallback covers pres created before the year's table is loaded.
const materialFeeCents int64 = 15000

var reenrollFallbackCents = map[models.ServiceKey]int64{
	models.ServiceInfantilVespertino:    50000,
	models.ServiceFundamentalVespertino: 60000,
	models.ServiceIntegral:              120000,
	models.ServiceMeioPeriodo:           90000,
}

// Full monthly price per service, informative only on the payment screen.
var monthlyFullCents = map[models.ServiceKey]int64{
	models.ServiceInfantilVespertino:    55000,
	models.ServiceFundamentalVespertino: 65000,
	models.ServiceIntegral:              141000,
	models.ServiceMeioPeriodo:           102000,
}

type preReenrollmentInput struct {
	StudentID     uint   `json:"studentId" binding:"required"`
	CurrentYear   int    `json:"currentYear" binding:"required"`
	CurrentGrade  string `json:"currentGrade" binding:"required"`
	NextYear      int    `json:"nextYear"`
	NextGrade     string `json:"nextGrade"`
	ServiceID     *uint  `json:"serviceId"`
	ValueID       *uint  `json:"valueId"`
	PaymentOption string `json:"paymentOption"`
	Status        string `json:"status"`
}

// CreatePreReenrollmentHandler records a returning student's intent for the
// next school year. Next year/grade default to the promotion of the current
// ones.
func CreatePreReenrollmentHandler(c *gin.Context) {
	var input preReenrollmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentGrade := models.Grade(input.CurrentGrade)
	if !currentGrade.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Série atual inválida"})
		return
	}

	var student models.Student
	if err := config.DB.First(&student, input.StudentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aluno não encontrado"})
		return
	}

	nextYear := input.NextYear
	if nextYear == 0 {
		nextYear = input.CurrentYear + 1
	}
	nextGrade := models.Grade(input.NextGrade)
	if input.NextGrade == "" {
		nextGrade = models.GradePromotion[currentGrade]
	} else if !nextGrade.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Próxima série inválida"})
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

	pre := models.PreReenrollment{
		StudentID:     input.StudentID,
		CurrentYear:   input.CurrentYear,
		CurrentGrade:  currentGrade,
		NextYear:      nextYear,
		NextGrade:     nextGrade,
		ServiceID:     input.ServiceID,
		ValueID:       input.ValueID,
		PaymentOption: paymentOption,
		Status:        status,
	}
	if err := config.DB.Create(&pre).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível registrar a pré-rematrícula"})
		return
	}
	c.JSON(http.StatusCreated, pre)
}

// ListPreReenrollmentsHandler returns the reenrollment funnel, filtered and
// paginated.
func ListPreReenrollmentsHandler(c *gin.Context) {
	var rows []models.PreReenrollment
	var totalRows int64

	query := config.DB.Model(&models.PreReenrollment{})

	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.
			Joins("JOIN students ON students.id = pre_reenrollments.student_id").
			Where("LOWER(students.name) LIKE ? OR LOWER(students.guardian_name) LIKE ?", pattern, pattern)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("pre_reenrollments.status = ?", status)
	}
	if grade := c.Query("grade"); grade != "" {
		query = query.Where("pre_reenrollments.next_grade = ?", grade)
	}
	if year := c.Query("year"); year != "" {
		query = query.Where("pre_reenrollments.next_year = ?", year)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível contar as pré-rematrículas"})
		return
	}

	err := query.Preload("Student").Preload("Service").
		Order("pre_reenrollments.created_at DESC").
		Scopes(Paginate(c)).
		Find(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível listar as pré-rematrículas"})
		return
	}

	if rows == nil {
		rows = make([]models.PreReenrollment, 0)
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, rows, totalRows))
}

// GetPreReenrollmentHandler returns one pre-reenrollment with its student
// and service.
func GetPreReenrollmentHandler(c *gin.Context) {
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
	c.JSON(http.StatusOK, pre)
}

// UpdatePreReenrollmentHandler lets the staff correct the lead's data.
func UpdatePreReenrollmentHandler(c *gin.Context) {
	var pre models.PreReenrollment
	if err := config.DB.First(&pre, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pré-rematrícula não encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar a pré-rematrícula"})
		return
	}

	var input preReenrollmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentGrade := models.Grade(input.CurrentGrade)
	if !currentGrade.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Série atual inválida"})
		return
	}
	nextGrade := models.Grade(input.NextGrade)
	if input.NextGrade == "" {
		nextGrade = models.GradePromotion[currentGrade]
	} else if !nextGrade.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Próxima série inválida"})
		return
	}

	pre.CurrentYear = input.CurrentYear
	pre.CurrentGrade = currentGrade
	if input.NextYear != 0 {
		pre.NextYear = input.NextYear
	}
	pre.NextGrade = nextGrade
	pre.ServiceID = input.ServiceID
	pre.ValueID = input.ValueID

	if input.PaymentOption != "" {
		opt, ok := parsePaymentOption(input.PaymentOption)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Forma de pagamento inválida"})
			return
		}
		pre.PaymentOption = &opt
	}

	if err := config.DB.Save(&pre).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível atualizar a pré-rematrícula"})
		return
	}
	c.JSON(http.StatusOK, pre)
}

// UpdatePreReenrollmentStatusHandler moves the lead along the funnel.
func UpdatePreReenrollmentStatusHandler(c *gin.Context) {
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

	res := config.DB.Model(&models.PreReenrollment{}).
		Where("id = ?", c.Param("id")).
		Update("status", status)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível atualizar o status"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pré-rematrícula não encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// DeletePreReenrollmentHandler removes a lead.
func DeletePreReenrollmentHandler(c *gin.Context) {
	if err := config.DB.Delete(&models.PreReenrollment{}, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível excluir a pré-rematrícula"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pré-rematrícula excluída"})
}

type prePaymentInfo struct {
	PreID            uint               `json:"preId"`
	StudentID        uint               `json:"studentId"`
	StudentName      string             `json:"studentName"`
	NextYear         int                `json:"nextYear"`
	NextGrade        models.Grade       `json:"nextGrade"`
	ServiceKey       *models.ServiceKey `json:"serviceKey"`
	ReenrollCents    int64              `json:"reenrollCents"`
	MaterialCents    int64              `json:"materialCents"`
	TotalCents       int64              `json:"totalCents"`
	TotalFormatted   string             `json:"totalFormatted"`
	MonthlyFullCents *int64             `json:"monthlyFullCents"`
}

func loadPrePaymentInfo(id string) (*models.PreReenrollment, *prePaymentInfo, error) {
	var pre models.PreReenrollment
	err := config.DB.Preload("Student").Preload("Service").Preload("Value").
		First(&pre, id).Error
	if err != nil {
		return nil, nil, err
	}

	var serviceKey *models.ServiceKey
	if pre.Service != nil {
		serviceKey = &pre.Service.Key
	}

	var reenroll int64
	if pre.Value != nil {
		reenroll = pre.Value.ReenrollPriceCents
	} else if serviceKey != nil {
		reenroll = reenrollFallbackCents[*serviceKey]
	}

	var monthly *int64
	if serviceKey != nil {
		if m, ok := monthlyFullCents[*serviceKey]; ok {
			monthly = &m
		}
	}

	studentName := ""
	if pre.Student != nil {
		studentName = pre.Student.Name
	}

	total := reenroll + materialFeeCents
	info := &prePaymentInfo{
		PreID:            pre.ID,
		StudentID:        pre.StudentID,
		StudentName:      studentName,
		NextYear:         pre.NextYear,
		NextGrade:        pre.NextGrade,
		ServiceKey:       serviceKey,
		ReenrollCents:    reenroll,
		MaterialCents:    materialFeeCents,
		TotalCents:       total,
		TotalFormatted:   formatBRL(total),
		MonthlyFullCents: monthly,
	}
	return &pre, info, nil
}

// GetPrePaymentInfoHandler returns the reenrollment fee breakdown for the
// payment modal: price-table reenroll value (or fallback) plus the fixed
// collective material fee.
func GetPrePaymentInfoHandler(c *gin.Context) {
	_, info, err := loadPrePaymentInfo(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pré-rematrícula não encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar os dados de pagamento"})
		return
	}
	c.JSON(http.StatusOK, info)
}

// ensurePreAgreement finds or creates the billing agreement of a
// pre-reenrollment, refreshing its total.
func ensurePreAgreement(tx *gorm.DB, pre *models.PreReenrollment, totalCents int64) (*models.Agreement, error) {
	if pre.AgreementID != nil {
		var agreement models.Agreement
		if err := tx.First(&agreement, *pre.AgreementID).Error; err != nil {
			return nil, err
		}
		if agreement.TotalCents != totalCents {
			agreement.TotalCents = totalCents
			if err := tx.Model(&agreement).Update("total_cents", totalCents).Error; err != nil {
				return nil, err
			}
		}
		return &agreement, nil
	}

	agreement := models.Agreement{
		Kind:       models.AgreementPreReenrollment,
		Year:       pre.NextYear,
		TotalCents: totalCents,
		StudentID:  pre.StudentID,
		ServiceID:  pre.ServiceID,
	}
	if err := tx.Create(&agreement).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(pre).Update("agreement_id", agreement.ID).Error; err != nil {
		return nil, err
	}
	pre.AgreementID = &agreement.ID
	return &agreement, nil
}

type generateInstallmentsInput struct {
	Plan    string `json:"plan" binding:"required"`
	Replace *bool  `json:"replace"`
}

// GeneratePreInstallmentsHandler builds the reenrollment fee schedule for
// the chosen plan. By default the previous schedule is replaced; payment
// happens the year before the service year, so installments anchor to
// nextYear − 1.
func GeneratePreInstallmentsHandler(c *gin.Context) {
	var input generateInstallmentsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, ok := billing.PlanByName(input.Plan)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Plano de pagamento inválido"})
		return
	}
	replace := input.Replace == nil || *input.Replace

	pre, info, err := loadPrePaymentInfo(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pré-rematrícula não encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar os dados de pagamento"})
		return
	}

	agreement, err := ensurePreAgreement(config.DB, pre, info.TotalCents)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível preparar o acordo de pagamento"})
		return
	}

	ledger := billing.NewLedger(config.DB)
	rows, err := ledger.Generate(agreement.ID, plan, info.TotalCents, pre.NextYear-1, replace)
	if err != nil {
		respondBillingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"agreementId":  agreement.ID,
		"installments": rows,
	})
}

// ListPreInstallmentsHandler returns the pre's schedule; an empty list when
// no plan was generated yet.
func ListPreInstallmentsHandler(c *gin.Context) {
	var pre models.PreReenrollment
	if err := config.DB.First(&pre, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pré-rematrícula não encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar a pré-rematrícula"})
		return
	}

	if pre.AgreementID == nil {
		c.JSON(http.StatusOK, gin.H{"data": []models.Installment{}})
		return
	}

	rows, err := billing.NewLedger(config.DB).List(*pre.AgreementID)
	if err != nil {
		respondBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agreementId": *pre.AgreementID, "data": rows})
}
