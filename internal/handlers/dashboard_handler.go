package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/felipekgouvea/cerg/config"
	"github.com/felipekgouvea/cerg/models"
)

type kvCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

func sortedCounts(m map[string]int) []kvCount {
	out := make([]kvCount, 0, len(m))
	for k, v := range m {
		out = append(out, kvCount{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func dateRange(c *gin.Context) (from, to *time.Time, err error) {
	if s := c.Query("from"); s != "" {
		t, e := parseYMD(s)
		if e != nil {
			return nil, nil, e
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, e := parseYMD(s)
		if e != nil {
			return nil, nil, e
		}
		// inclusive upper bound
		t = t.Add(24 * time.Hour)
		to = &t
	}
	return from, to, nil
}

func applyDateRange(query *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at < ?", *to)
	}
	return query
}

type dashboardRow struct {
	Grade         models.Grade
	ServiceName   string
	PaymentOption *models.PaymentOption
	Status        models.PreStatus
	CreatedAt     time.Time
}

// GetDashboardHandler aggregates the funnel of one dataset. Mode
// "registration" reads new-family pre-registrations, "enrollment" reads
// returning-student pre-reenrollments; both accept an optional from/to
// creation date range.
func GetDashboardHandler(c *gin.Context) {
	mode := c.DefaultQuery("mode", "registration")
	if mode != "registration" && mode != "enrollment" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Modo inválido, use registration ou enrollment"})
		return
	}

	from, to, err := dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Período inválido, use AAAA-MM-DD"})
		return
	}

	var rows []dashboardRow
	switch mode {
	case "registration":
		var pres []models.PreRegistration
		query := applyDateRange(config.DB.Preload("Service"), from, to)
		if err := query.Find(&pres).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível carregar o painel"})
			return
		}
		for _, p := range pres {
			row := dashboardRow{
				Grade:         p.TargetGrade,
				PaymentOption: p.PaymentOption,
				Status:        p.Status,
				CreatedAt:     p.CreatedAt,
			}
			if p.Service != nil {
				row.ServiceName = p.Service.Name
			}
			rows = append(rows, row)
		}
	case "enrollment":
		var pres []models.PreReenrollment
		query := applyDateRange(config.DB.Preload("Service"), from, to)
		if err := query.Find(&pres).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível carregar o painel"})
			return
		}
		for _, p := range pres {
			row := dashboardRow{
				Grade:         p.NextGrade,
				PaymentOption: p.PaymentOption,
				Status:        p.Status,
				CreatedAt:     p.CreatedAt,
			}
			if p.Service != nil {
				row.ServiceName = p.Service.Name
			}
			rows = append(rows, row)
		}
	}

	byGrade := map[string]int{}
	byService := map[string]int{}
	byPayment := map[string]int{}
	byStatus := map[string]int{}
	byMonth := map[string]int{}
	for _, row := range rows {
		byGrade[string(row.Grade)]++
		if row.ServiceName != "" {
			byService[row.ServiceName]++
		}
		if row.PaymentOption != nil {
			byPayment[paymentUIKey(*row.PaymentOption)]++
		}
		byStatus[string(row.Status)]++
		byMonth[row.CreatedAt.Format("2006-01")]++
	}

	months := sortedCounts(byMonth)
	sort.Slice(months, func(i, j int) bool { return months[i].Key < months[j].Key })

	c.JSON(http.StatusOK, gin.H{
		"mode":      mode,
		"total":     len(rows),
		"byGrade":   sortedCounts(byGrade),
		"byService": sortedCounts(byService),
		"byPayment": sortedCounts(byPayment),
		"byStatus":  sortedCounts(byStatus),
		"byMonth":   months,
	})
}
