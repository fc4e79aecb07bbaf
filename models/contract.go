package models

import "gorm.io/gorm"

// Contract is the signed service contract for one student and one school
// year. Its installment schedule lives on the linked Agreement.
type Contract struct {
	gorm.Model

	StudentID    uint  `gorm:"column:student_id;index;uniqueIndex:uq_contract_student_year" json:"studentId"`
	Year         int   `gorm:"column:year;index;uniqueIndex:uq_contract_student_year"       json:"year"`
	Grade        Grade `gorm:"column:grade;not null"                                        json:"grade"`
	ServiceID    uint  `gorm:"column:service_id;index;not null"                             json:"serviceId"`
	EnrollmentID *uint `gorm:"column:enrollment_id"                                         json:"enrollmentId,omitempty"`

	Status ContractStatus `gorm:"column:status;default:active" json:"status"`
	Notes  string         `gorm:"column:notes"                 json:"notes"`

	AgreementID *uint `gorm:"column:agreement_id;index" json:"agreementId,omitempty"`

	Student    *Student    `gorm:"foreignKey:StudentID"    json:"student,omitempty"`
	Service    *Service    `gorm:"foreignKey:ServiceID"    json:"service,omitempty"`
	Enrollment *Enrollment `gorm:"foreignKey:EnrollmentID" json:"enrollment,omitempty"`
	Agreement  *Agreement  `gorm:"foreignKey:AgreementID"  json:"agreement,omitempty"`
}

func (Contract) TableName() string { return "contracts" }
