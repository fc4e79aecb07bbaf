package models

import "gorm.io/gorm"

// Enrollment is a student's registration for one school year. A student has
// at most one enrollment per year.
type Enrollment struct {
	gorm.Model
	StudentID uint  `gorm:"column:student_id;index;uniqueIndex:uq_enrollment_student_year" json:"studentId"`
	Year      int   `gorm:"column:year;index;uniqueIndex:uq_enrollment_student_year"       json:"year"`
	Grade     Grade `gorm:"column:grade;not null"                                          json:"grade"`

	ServiceID *uint `gorm:"column:service_id;index" json:"serviceId,omitempty"`
	ValueID   *uint `gorm:"column:value_id"         json:"valueId,omitempty"`

	PriceTier         *PriceTier `gorm:"column:price_tier"          json:"priceTier,omitempty"`
	AppliedPriceCents *int64     `gorm:"column:applied_price_cents" json:"appliedPriceCents,omitempty"`

	Status EnrollmentStatus `gorm:"column:status;default:pending" json:"status"`

	Student *Student      `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Service *Service      `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Value   *ServiceValue `gorm:"foreignKey:ValueID"   json:"value,omitempty"`
}

func (Enrollment) TableName() string { return "enrollments" }
