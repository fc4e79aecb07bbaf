package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/felipekgouvea/cerg/config"
	"github.com/felipekgouvea/cerg/internal/whatsapp"
	"github.com/felipekgouvea/cerg/models"
)

type studentInput struct {
	Name          string `json:"name" binding:"required"`
	BirthDate     string `json:"birthDate"`
	GuardianName  string `json:"guardianName" binding:"required"`
	GuardianPhone string `json:"guardianPhone" binding:"required"`
}

// ListStudentsHandler returns students, optionally narrowed by name search
// and by having an enrollment in a given year (the reenrollment screen asks
// for the current year's roster).
func ListStudentsHandler(c *gin.Context) {
	var rows []models.Student
	var totalRows int64

	query := config.DB.Model(&models.Student{})

	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(students.name) LIKE ? OR LOWER(students.guardian_name) LIKE ?", pattern, pattern)
	}
	if year := c.Query("year"); year != "" {
		query = query.
			Joins("JOIN enrollments ON enrollments.student_id = students.id AND enrollments.deleted_at IS NULL").
			Where("enrollments.year = ?", year)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível contar os alunos"})
		return
	}

	err := query.Preload("Enrollments").
		Order("students.name ASC").
		Scopes(Paginate(c)).
		Find(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível listar os alunos"})
		return
	}

	if rows == nil {
		rows = make([]models.Student, 0)
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, rows, totalRows))
}

// GetStudentHandler returns one student with all enrollments.
func GetStudentHandler(c *gin.Context) {
	var student models.Student
	err := config.DB.Preload("Enrollments").Preload("Enrollments.Service").
		First(&student, c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Aluno não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar o aluno"})
		return
	}
	c.JSON(http.StatusOK, student)
}

// CreateStudentHandler registers a student record.
func CreateStudentHandler(c *gin.Context) {
	var input studentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student := models.Student{
		Name:          strings.TrimSpace(input.Name),
		GuardianName:  strings.TrimSpace(input.GuardianName),
		GuardianPhone: whatsapp.OnlyDigits(input.GuardianPhone),
	}
	if input.BirthDate != "" {
		birth, err := parseYMD(input.BirthDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Data de nascimento inválida, use AAAA-MM-DD"})
			return
		}
		student.BirthDate = birth
	}

	if err := config.DB.Create(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível cadastrar o aluno"})
		return
	}
	c.JSON(http.StatusCreated, student)
}

// UpdateStudentHandler edits the student record.
func UpdateStudentHandler(c *gin.Context) {
	var student models.Student
	if err := config.DB.First(&student, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Aluno não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar o aluno"})
		return
	}

	var input studentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student.Name = strings.TrimSpace(input.Name)
	student.GuardianName = strings.TrimSpace(input.GuardianName)
	student.GuardianPhone = whatsapp.OnlyDigits(input.GuardianPhone)
	if input.BirthDate != "" {
		birth, err := parseYMD(input.BirthDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Data de nascimento inválida, use AAAA-MM-DD"})
			return
		}
		student.BirthDate = birth
	}

	if err := config.DB.Save(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível atualizar o aluno"})
		return
	}
	c.JSON(http.StatusOK, student)
}

// DeleteStudentHandler removes a student record (soft delete).
func DeleteStudentHandler(c *gin.Context) {
	if err := config.DB.Delete(&models.Student{}, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível excluir o aluno"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Aluno excluído"})
}
