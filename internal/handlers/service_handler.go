package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/felipekgouvea/cerg/config"
	"github.com/felipekgouvea/cerg/models"
)

// ListServicesHandler returns the active service catalog. Also served on the
// public group: the enrollment form needs it without a session.
func ListServicesHandler(c *gin.Context) {
	var services []models.Service
	if err := config.DB.Where("active = ?", true).Order("name ASC").Find(&services).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível listar os serviços"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": services})
}

// ListServiceValuesHandler returns the price table for a year, optionally
// one service.
func ListServiceValuesHandler(c *gin.Context) {
	year, err := strconv.Atoi(c.DefaultQuery("year", "2026"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ano inválido"})
		return
	}

	query := config.DB.Where("year = ?", year)
	if serviceID := c.Query("serviceId"); serviceID != "" {
		query = query.Where("service_id = ?", serviceID)
	}

	var values []models.ServiceValue
	if err := query.Preload("Service").Order("service_id ASC, grade ASC").Find(&values).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível listar a tabela de preços"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "data": values})
}

type serviceValueInput struct {
	ServiceID          uint   `json:"serviceId" binding:"required"`
	Year               int    `json:"year" binding:"required"`
	Grade              string `json:"grade" binding:"required"`
	ListPriceCents     int64  `json:"listPriceCents"`
	PunctualPriceCents int64  `json:"punctualPriceCents"`
	ReenrollPriceCents int64  `json:"reenrollPriceCents"`
}

// UpsertServiceValuesHandler writes price table rows in bulk, one
// transaction. Existing (service, year, grade) rows are overwritten.
func UpsertServiceValuesHandler(c *gin.Context) {
	var inputs []serviceValueInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(inputs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nenhum valor informado"})
		return
	}
	for _, in := range inputs {
		if !models.Grade(in.Grade).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Série inválida: " + in.Grade})
			return
		}
		if in.ListPriceCents < 0 || in.PunctualPriceCents < 0 || in.ReenrollPriceCents < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valores não podem ser negativos"})
			return
		}
	}

	saved := make([]models.ServiceValue, 0, len(inputs))
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for _, in := range inputs {
			var value models.ServiceValue
			err := tx.Where("service_id = ? AND year = ? AND grade = ?",
				in.ServiceID, in.Year, in.Grade).First(&value).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			value.ServiceID = in.ServiceID
			value.Year = in.Year
			value.Grade = models.Grade(in.Grade)
			value.ListPriceCents = in.ListPriceCents
			value.PunctualPriceCents = in.PunctualPriceCents
			value.ReenrollPriceCents = in.ReenrollPriceCents
			if err := tx.Save(&value).Error; err != nil {
				return err
			}
			saved = append(saved, value)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível salvar a tabela de preços"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": saved})
}
