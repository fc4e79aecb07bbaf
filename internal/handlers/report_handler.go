package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/felipekgouvea/cerg/config"
	"github.com/felipekgouvea/cerg/internal/whatsapp"
	"github.com/felipekgouvea/cerg/models"
)

// reportRow is one line of the unified funnel report, covering both
// new-family pre-registrations and returning-student pre-reenrollments.
type reportRow struct {
	Source        string           `json:"source"`
	ID            uint             `json:"id"`
	StudentName   string           `json:"studentName"`
	GuardianName  string           `json:"guardianName"`
	GuardianPhone string           `json:"guardianPhone"`
	Year          int              `json:"year"`
	Grade         models.Grade     `json:"grade"`
	ServiceName   string           `json:"serviceName"`
	PaymentOption string           `json:"paymentOption"`
	Status        models.PreStatus `json:"status"`
	CreatedAt     time.Time        `json:"createdAt"`
}

type reportFilters struct {
	source  string
	grade   string
	status  string
	payment string
	service string
	from    *time.Time
	to      *time.Time
}

func parseReportFilters(c *gin.Context) (reportFilters, error) {
	from, to, err := dateRange(c)
	if err != nil {
		return reportFilters{}, err
	}
	return reportFilters{
		source:  c.Query("source"),
		grade:   c.Query("grade"),
		status:  c.Query("status"),
		payment: c.Query("payment"),
		service: c.Query("serviceId"),
		from:    from,
		to:      to,
	}, nil
}

func (f reportFilters) keepPayment(opt *models.PaymentOption) bool {
	if f.payment == "" {
		return true
	}
	if opt == nil {
		return false
	}
	return paymentUIKey(*opt) == f.payment || string(*opt) == f.payment
}

func loadReportRows(f reportFilters) ([]reportRow, error) {
	var out []reportRow

	if f.source == "" || f.source == "pre_registration" {
		query := applyDateRange(config.DB.Preload("Service"), f.from, f.to)
		if f.grade != "" {
			query = query.Where("target_grade = ?", f.grade)
		}
		if f.status != "" {
			query = query.Where("status = ?", f.status)
		}
		if f.service != "" {
			query = query.Where("service_id = ?", f.service)
		}
		var pres []models.PreRegistration
		if err := query.Find(&pres).Error; err != nil {
			return nil, err
		}
		for _, p := range pres {
			if !f.keepPayment(p.PaymentOption) {
				continue
			}
			row := reportRow{
				Source:        "pre_registration",
				ID:            p.ID,
				StudentName:   p.StudentName,
				GuardianName:  p.GuardianName,
				GuardianPhone: p.GuardianPhone,
				Year:          p.TargetYear,
				Grade:         p.TargetGrade,
				Status:        p.Status,
				CreatedAt:     p.CreatedAt,
			}
			if p.Service != nil {
				row.ServiceName = p.Service.Name
			}
			if p.PaymentOption != nil {
				row.PaymentOption = paymentUIKey(*p.PaymentOption)
			}
			out = append(out, row)
		}
	}

	if f.source == "" || f.source == "pre_reenrollment" {
		query := applyDateRange(config.DB.Preload("Service").Preload("Student"), f.from, f.to)
		if f.grade != "" {
			query = query.Where("next_grade = ?", f.grade)
		}
		if f.status != "" {
			query = query.Where("status = ?", f.status)
		}
		if f.service != "" {
			query = query.Where("service_id = ?", f.service)
		}
		var pres []models.PreReenrollment
		if err := query.Find(&pres).Error; err != nil {
			return nil, err
		}
		for _, p := range pres {
			if !f.keepPayment(p.PaymentOption) {
				continue
			}
			row := reportRow{
				Source:    "pre_reenrollment",
				ID:        p.ID,
				Year:      p.NextYear,
				Grade:     p.NextGrade,
				Status:    p.Status,
				CreatedAt: p.CreatedAt,
			}
			if p.Student != nil {
				row.StudentName = p.Student.Name
				row.GuardianName = p.Student.GuardianName
				row.GuardianPhone = p.Student.GuardianPhone
			}
			if p.Service != nil {
				row.ServiceName = p.Service.Name
			}
			if p.PaymentOption != nil {
				row.PaymentOption = paymentUIKey(*p.PaymentOption)
			}
			out = append(out, row)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// GetReportHandler returns the unified funnel rows matching the filters.
func GetReportHandler(c *gin.Context) {
	filters, err := parseReportFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Período inválido, use AAAA-MM-DD"})
		return
	}
	rows, err := loadReportRows(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível gerar o relatório"})
		return
	}
	if rows == nil {
		rows = make([]reportRow, 0)
	}
	c.JSON(http.StatusOK, gin.H{"total": len(rows), "data": rows})
}

// ExportReportHandler streams the unified report as an .xlsx file.
func ExportReportHandler(c *gin.Context) {
	filters, err := parseReportFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Período inválido, use AAAA-MM-DD"})
		return
	}
	rows, err := loadReportRows(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível gerar o relatório"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Relatório"
	index, _ := f.NewSheet(sheet)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Origem", "Aluno", "Responsável", "Telefone", "Ano", "Série", "Serviço", "Pagamento", "Status", "Criado em"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	sourceLabels := map[string]string{
		"pre_registration": "Pré-matrícula",
		"pre_reenrollment": "Pré-rematrícula",
	}

	for i, row := range rows {
		rowNum := i + 2
		payment := ""
		if opt, ok := parsePaymentOption(row.PaymentOption); ok {
			payment = whatsapp.PaymentLabel[opt]
		}
		values := []any{
			sourceLabels[row.Source],
			row.StudentName,
			row.GuardianName,
			row.GuardianPhone,
			row.Year,
			whatsapp.GradeLabel[row.Grade],
			row.ServiceName,
			payment,
			string(row.Status),
			row.CreatedAt.Format("02/01/2006 15:04"),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, rowNum)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("relatorio_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao gerar a planilha"})
	}
}
