package models

import (
	"time"

	"gorm.io/gorm"
)

// Student is a child enrolled at the school (or known from a past year).
// GuardianPhone is stored digits-only; masks are applied by the UI.
type Student struct {
	gorm.Model

	Name          string    `gorm:"column:name;not null;index"      json:"name"`
	BirthDate     time.Time `gorm:"column:birth_date;type:date"     json:"birthDate"`
	GuardianName  string    `gorm:"column:guardian_name;not null"   json:"guardianName"`
	GuardianPhone string    `gorm:"column:guardian_phone;not null"  json:"guardianPhone"`

	Enrollments []Enrollment `gorm:"foreignKey:StudentID" json:"enrollments,omitempty"`
}

func (Student) TableName() string { return "students" }
