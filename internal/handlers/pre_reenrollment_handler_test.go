package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/felipekgouvea/cerg/config"
	"github.com/felipekgouvea/cerg/models"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Service{},
		&models.ServiceValue{},
		&models.PreReenrollment{},
		&models.Agreement{},
		&models.Installment{},
	))
	config.DB = db
}

func seedPreReenrollment(t *testing.T) models.PreReenrollment {
	t.Helper()

	student := models.Student{
		Name:          "Maria Silva",
		GuardianName:  "Ana Silva",
		GuardianPhone: "27999887766",
	}
	require.NoError(t, config.DB.Create(&student).Error)

	service := models.Service{Key: models.ServiceIntegral, Name: "Integral", Active: true}
	require.NoError(t, config.DB.Create(&service).Error)

	value := models.ServiceValue{
		ServiceID:          service.ID,
		Year:               2026,
		Grade:              models.GradePreII5,
		ListPriceCents:     141000,
		PunctualPriceCents: 130000,
		ReenrollPriceCents: 120000,
	}
	require.NoError(t, config.DB.Create(&value).Error)

	pre := models.PreReenrollment{
		StudentID:    student.ID,
		CurrentYear:  2025,
		CurrentGrade: models.GradePreI4,
		NextYear:     2026,
		NextGrade:    models.GradePreII5,
		ServiceID:    &service.ID,
		ValueID:      &value.ID,
		Status:       models.PreStatusRealizada,
	}
	require.NoError(t, config.DB.Create(&pre).Error)
	return pre
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/pre-reenrollments/:id/payment-info", GetPrePaymentInfoHandler)
	router.GET("/pre-reenrollments/:id/installments", ListPreInstallmentsHandler)
	router.POST("/pre-reenrollments/:id/installments/generate", GeneratePreInstallmentsHandler)
	return router
}

func TestGetPrePaymentInfo(t *testing.T) {
	setupTestDB(t)
	pre := seedPreReenrollment(t)
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/pre-reenrollments/%d/payment-info", pre.ID), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ReenrollCents  int64  `json:"reenrollCents"`
		MaterialCents  int64  `json:"materialCents"`
		TotalCents     int64  `json:"totalCents"`
		TotalFormatted string `json:"totalFormatted"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(120000), body.ReenrollCents)
	assert.Equal(t, int64(15000), body.MaterialCents)
	assert.Equal(t, int64(135000), body.TotalCents)
	assert.Equal(t, "R$ 1.350,00", body.TotalFormatted)
}

func TestGetPrePaymentInfoNotFound(t *testing.T) {
	setupTestDB(t)
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/pre-reenrollments/9999/payment-info", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGeneratePreInstallments(t *testing.T) {
	setupTestDB(t)
	pre := seedPreReenrollment(t)
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/pre-reenrollments/%d/installments/generate", pre.ID),
		strings.NewReader(`{"plan":"2_sep_oct"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		AgreementID  uint                 `json:"agreementId"`
		Installments []models.Installment `json:"installments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Installments, 2)
	assert.Equal(t, int64(67500), body.Installments[0].AmountCents)
	assert.Equal(t, int64(67500), body.Installments[1].AmountCents)

	// installments anchor to the year before the service year
	first := body.Installments[0].DueDate.UTC()
	assert.Equal(t, time.Date(2025, time.September, 20, 0, 0, 0, 0, time.UTC), first)

	var updated models.PreReenrollment
	require.NoError(t, config.DB.First(&updated, pre.ID).Error)
	require.NotNil(t, updated.AgreementID)
	assert.Equal(t, body.AgreementID, *updated.AgreementID)

	var agreement models.Agreement
	require.NoError(t, config.DB.First(&agreement, body.AgreementID).Error)
	assert.Equal(t, models.AgreementPreReenrollment, agreement.Kind)
	assert.Equal(t, int64(135000), agreement.TotalCents)
}

func TestGeneratePreInstallmentsReplacesPreviousPlan(t *testing.T) {
	setupTestDB(t)
	pre := seedPreReenrollment(t)
	router := testRouter()

	generate := func(plan string) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost,
			fmt.Sprintf("/pre-reenrollments/%d/installments/generate", pre.ID),
			strings.NewReader(fmt.Sprintf(`{"plan":%q}`, plan)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	generate("3_sep_oct_nov")
	generate("1_oct")

	var updated models.PreReenrollment
	require.NoError(t, config.DB.First(&updated, pre.ID).Error)
	require.NotNil(t, updated.AgreementID)

	var rows []models.Installment
	require.NoError(t, config.DB.Where("agreement_id = ?", *updated.AgreementID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Seq)
	assert.Equal(t, int64(135000), rows[0].AmountCents)
}

func TestGeneratePreInstallmentsInvalidPlan(t *testing.T) {
	setupTestDB(t)
	pre := seedPreReenrollment(t)
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/pre-reenrollments/%d/installments/generate", pre.ID),
		strings.NewReader(`{"plan":"4_dec"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPreInstallmentsEmptyBeforeGeneration(t *testing.T) {
	setupTestDB(t)
	pre := seedPreReenrollment(t)
	router := testRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/pre-reenrollments/%d/installments", pre.ID), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []models.Installment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Data)
}
