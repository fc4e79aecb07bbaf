package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/felipekgouvea/cerg/config"
	"github.com/felipekgouvea/cerg/models"
)

const priceTableYear = 2026

type priceRow struct {
	list     int64
	punctual int64
	reenroll int64
}

// 2026 price table, integer cents. Flat per service across the grades the
// service covers.
var priceTable = map[models.ServiceKey]priceRow{
	models.ServiceIntegral:              {list: 141000, punctual: 130000, reenroll: 120000},
	models.ServiceMeioPeriodo:           {list: 102000, punctual: 95000, reenroll: 90000},
	models.ServiceInfantilVespertino:    {list: 55000, punctual: 53000, reenroll: 50000},
	models.ServiceFundamentalVespertino: {list: 65000, punctual: 63000, reenroll: 60000},
}

var serviceNames = map[models.ServiceKey]string{
	models.ServiceIntegral:              "Integral",
	models.ServiceMeioPeriodo:           "Meio período",
	models.ServiceInfantilVespertino:    "Infantil – Vespertino",
	models.ServiceFundamentalVespertino: "Fundamental – Vespertino",
}

var infantilGrades = []models.Grade{models.GradeMaternal3, models.GradePreI4, models.GradePreII5}
var fundamentalGrades = []models.Grade{
	models.GradeAno1, models.GradeAno2, models.GradeAno3, models.GradeAno4, models.GradeAno5,
}

// gradesForService limits the vespertino services to their school segment.
func gradesForService(key models.ServiceKey) []models.Grade {
	switch key {
	case models.ServiceInfantilVespertino:
		return infantilGrades
	case models.ServiceFundamentalVespertino:
		return fundamentalGrades
	default:
		return models.AllGrades
	}
}

func main() {
	rosterPath := flag.String("roster", "", "optional .xlsx student roster to import")
	rosterYear := flag.Int("roster-year", 2025, "enrollment year for imported students")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using process environment")
	}
	config.ConnectDB()

	err := config.DB.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Service{},
		&models.ServiceValue{},
		&models.Enrollment{},
		&models.PreRegistration{},
		&models.PreReenrollment{},
		&models.Agreement{},
		&models.Installment{},
		&models.Contract{},
	)
	if err != nil {
		slog.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	if err := seedServices(); err != nil {
		slog.Error("service seed failed", "error", err)
		os.Exit(1)
	}
	if err := seedAdmin(); err != nil {
		slog.Error("admin seed failed", "error", err)
		os.Exit(1)
	}
	if *rosterPath != "" {
		if err := importRoster(*rosterPath, *rosterYear); err != nil {
			slog.Error("roster import failed", "error", err)
			os.Exit(1)
		}
	}
	slog.Info("seed finished")
}

// seedServices upserts the service catalog and the 2026 price table.
func seedServices() error {
	return config.DB.Transaction(func(tx *gorm.DB) error {
		for key, name := range serviceNames {
			var service models.Service
			err := tx.Where("key = ?", key).First(&service).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			service.Key = key
			service.Name = name
			service.Active = true
			if err := tx.Save(&service).Error; err != nil {
				return err
			}

			prices := priceTable[key]
			for _, grade := range gradesForService(key) {
				var value models.ServiceValue
				err := tx.Where("service_id = ? AND year = ? AND grade = ?",
					service.ID, priceTableYear, grade).First(&value).Error
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				value.ServiceID = service.ID
				value.Year = priceTableYear
				value.Grade = grade
				value.ListPriceCents = prices.list
				value.PunctualPriceCents = prices.punctual
				value.ReenrollPriceCents = prices.reenroll
				if err := tx.Save(&value).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// seedAdmin creates the admin account from ADMIN_LOGIN/ADMIN_PASSWORD when
// no user with that login exists yet.
func seedAdmin() error {
	login := os.Getenv("ADMIN_LOGIN")
	password := os.Getenv("ADMIN_PASSWORD")
	if login == "" || password == "" {
		slog.Warn("ADMIN_LOGIN/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var count int64
	if err := config.DB.Model(&models.User{}).Where("login = ?", login).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		slog.Info("admin user already exists", "login", login)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := models.User{
		Login:        login,
		Name:         "Administrador",
		PasswordHash: string(hash),
		Role:         "admin",
	}
	if err := config.DB.Create(&user).Error; err != nil {
		return err
	}
	slog.Info("admin user created", "login", login)
	return nil
}

// Grade guesses for free-text roster cells, checked in order; the first
// match wins.
var gradeGuesses = []struct {
	re    *regexp.Regexp
	grade models.Grade
}{
	{regexp.MustCompile(`(?i)maternal`), models.GradeMaternal3},
	{regexp.MustCompile(`(?i)pr[eé]\s*i{2}|pr[eé]\s*2`), models.GradePreII5},
	{regexp.MustCompile(`(?i)pr[eé]\s*i\b|pr[eé]\s*1`), models.GradePreI4},
	{regexp.MustCompile(`(?i)^\s*1|1\s*[ºo°]?\s*ano`), models.GradeAno1},
	{regexp.MustCompile(`(?i)^\s*2|2\s*[ºo°]?\s*ano`), models.GradeAno2},
	{regexp.MustCompile(`(?i)^\s*3|3\s*[ºo°]?\s*ano`), models.GradeAno3},
	{regexp.MustCompile(`(?i)^\s*4|4\s*[ºo°]?\s*ano`), models.GradeAno4},
	{regexp.MustCompile(`(?i)^\s*5|5\s*[ºo°]?\s*ano`), models.GradeAno5},
}

func guessGrade(s string) (models.Grade, bool) {
	for _, g := range gradeGuesses {
		if g.re.MatchString(s) {
			return g.grade, true
		}
	}
	return "", false
}

// serviceKeyForGrade picks the default afternoon service of a grade's
// school segment.
func serviceKeyForGrade(grade models.Grade) models.ServiceKey {
	for _, g := range infantilGrades {
		if grade == g {
			return models.ServiceInfantilVespertino
		}
	}
	return models.ServiceFundamentalVespertino
}

// fallbackBirthDate gives an age-plausible date for roster rows without one.
func fallbackBirthDate(grade models.Grade, year int) time.Time {
	age := map[models.Grade]int{
		models.GradeMaternal3: 3, models.GradePreI4: 4, models.GradePreII5: 5,
		models.GradeAno1: 6, models.GradeAno2: 7, models.GradeAno3: 8,
		models.GradeAno4: 9, models.GradeAno5: 10,
	}[grade]
	return time.Date(year-age, time.June, 15, 0, 0, 0, 0, time.UTC)
}

func parseRosterDate(s string) (time.Time, bool) {
	for _, layout := range []string{"02/01/2006", "2006-01-02", "02-01-2006"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// importRoster loads students from an .xlsx sheet with the columns
// Nome | Nascimento | Responsável | Telefone | Série (header row skipped)
// and gives each one an enrollment for the given year.
func importRoster(path string, year int) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}

	services := map[models.ServiceKey]models.Service{}
	var all []models.Service
	if err := config.DB.Find(&all).Error; err != nil {
		return err
	}
	for _, s := range all {
		services[s.Key] = s
	}

	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	imported := 0
	return config.DB.Transaction(func(tx *gorm.DB) error {
		for i, row := range rows {
			if i == 0 {
				continue
			}
			name := cell(row, 0)
			if name == "" {
				continue
			}

			grade, ok := guessGrade(cell(row, 4))
			if !ok {
				slog.Warn("skipping roster row, grade not recognized", "row", i+1, "value", cell(row, 4))
				continue
			}

			birth, ok := parseRosterDate(cell(row, 1))
			if !ok {
				birth = fallbackBirthDate(grade, year)
			}

			var student models.Student
			err := tx.Where("name = ?", name).First(&student).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			student.Name = name
			student.BirthDate = birth
			if g := cell(row, 2); g != "" {
				student.GuardianName = g
			}
			if p := cell(row, 3); p != "" {
				student.GuardianPhone = onlyDigits(p)
			}
			if err := tx.Save(&student).Error; err != nil {
				return err
			}

			service := services[serviceKeyForGrade(grade)]
			var enrollment models.Enrollment
			err = tx.Where("student_id = ? AND year = ?", student.ID, year).First(&enrollment).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			enrollment.StudentID = student.ID
			enrollment.Year = year
			enrollment.Grade = grade
			if service.ID != 0 {
				enrollment.ServiceID = &service.ID
			}
			enrollment.Status = models.EnrollmentActive
			if err := tx.Save(&enrollment).Error; err != nil {
				return err
			}
			imported++
		}
		slog.Info("roster imported", "students", imported, "year", year)
		return nil
	})
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
