package models

import "gorm.io/gorm"

// PreReenrollment is a returning student's intent to re-enroll for the next
// school year. It references the existing Student row and, once the family
// starts paying the reenrollment fee, owns an Agreement with its
// installments.
type PreReenrollment struct {
	gorm.Model

	StudentID uint `gorm:"column:student_id;index" json:"studentId"`

	CurrentYear  int   `gorm:"column:current_year;not null"  json:"currentYear"`
	CurrentGrade Grade `gorm:"column:current_grade;not null" json:"currentGrade"`
	NextYear     int   `gorm:"column:next_year;index;not null" json:"nextYear"`
	NextGrade    Grade `gorm:"column:next_grade;not null"    json:"nextGrade"`

	ServiceID *uint `gorm:"column:service_id;index" json:"serviceId,omitempty"`
	ValueID   *uint `gorm:"column:value_id"         json:"valueId,omitempty"`

	PriceTier         *PriceTier `gorm:"column:price_tier"          json:"priceTier,omitempty"`
	AppliedPriceCents *int64     `gorm:"column:applied_price_cents" json:"appliedPriceCents,omitempty"`

	PaymentOption *PaymentOption `gorm:"column:payment_option"                  json:"paymentOption,omitempty"`
	Status        PreStatus      `gorm:"column:status;index;default:realizada"  json:"status"`

	AgreementID *uint `gorm:"column:agreement_id;index" json:"agreementId,omitempty"`

	Student   *Student      `gorm:"foreignKey:StudentID"   json:"student,omitempty"`
	Service   *Service      `gorm:"foreignKey:ServiceID"   json:"service,omitempty"`
	Value     *ServiceValue `gorm:"foreignKey:ValueID"     json:"value,omitempty"`
	Agreement *Agreement    `gorm:"foreignKey:AgreementID" json:"agreement,omitempty"`
}

func (PreReenrollment) TableName() string { return "pre_reenrollments" }
