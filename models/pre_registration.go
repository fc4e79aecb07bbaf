package models

import (
	"time"

	"gorm.io/gorm"
)

// PreRegistration is an enrollment intent from a family new to the school,
// submitted through the public site. Student data is captured inline; a
// Student row only exists once the lead converts.
type PreRegistration struct {
	gorm.Model

	StudentID *uint `gorm:"column:student_id;index" json:"studentId,omitempty"`

	StudentName   string    `gorm:"column:student_name;not null"    json:"studentName"`
	BirthDate     time.Time `gorm:"column:birth_date;type:date"     json:"birthDate"`
	GuardianName  string    `gorm:"column:guardian_name;not null"   json:"guardianName"`
	GuardianPhone string    `gorm:"column:guardian_phone;not null"  json:"guardianPhone"`

	TargetYear  int   `gorm:"column:target_year;index;not null" json:"targetYear"`
	TargetGrade Grade `gorm:"column:target_grade;not null"      json:"targetGrade"`

	ServiceID *uint `gorm:"column:service_id;index" json:"serviceId,omitempty"`
	ValueID   *uint `gorm:"column:value_id"         json:"valueId,omitempty"`

	PriceTier         *PriceTier `gorm:"column:price_tier"          json:"priceTier,omitempty"`
	AppliedPriceCents *int64     `gorm:"column:applied_price_cents" json:"appliedPriceCents,omitempty"`

	PaymentOption *PaymentOption `gorm:"column:payment_option"            json:"paymentOption,omitempty"`
	Status        PreStatus      `gorm:"column:status;index;default:realizada" json:"status"`

	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Service *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

func (PreRegistration) TableName() string { return "pre_registrations" }
