package models

import (
	"time"

	"gorm.io/gorm"
)

// AgreementKind tells which record owns the agreement.
type AgreementKind string

const (
	AgreementContract        AgreementKind = "contract"
	AgreementPreReenrollment AgreementKind = "pre_reenrollment"
)

// Agreement is the billing parent of an installment schedule. Contracts and
// pre-reenrollments each own exactly one; the installment ledger only ever
// sees the agreement id.
type Agreement struct {
	gorm.Model

	Kind       AgreementKind `gorm:"column:kind;not null"        json:"kind"`
	Year       int           `gorm:"column:year;index;not null"  json:"year"`
	TotalCents int64         `gorm:"column:total_cents;not null" json:"totalCents"`

	StudentID uint  `gorm:"column:student_id;index" json:"studentId"`
	ServiceID *uint `gorm:"column:service_id"       json:"serviceId,omitempty"`

	Installments []Installment `gorm:"foreignKey:AgreementID" json:"installments,omitempty"`
}

func (Agreement) TableName() string { return "agreements" }

// Installment is one scheduled (or already collected) payment obligation of
// an agreement. Rows are hard-deleted: the ledger semantics have no
// soft-delete, so there is deliberately no DeletedAt column here.
type Installment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	AgreementID uint `gorm:"column:agreement_id;index;uniqueIndex:uq_installment_agreement_seq" json:"agreementId"`
	Seq         int  `gorm:"column:seq;not null;uniqueIndex:uq_installment_agreement_seq"       json:"seq"`

	DueDate       time.Time `gorm:"column:due_date;type:date;index" json:"dueDate"`
	AmountCents   int64     `gorm:"column:amount_cents;not null"    json:"amountCents"`
	DiscountCents int64     `gorm:"column:discount_cents;default:0" json:"discountCents"`

	SettledAt          *time.Time `gorm:"column:settled_at"           json:"settledAt,omitempty"`
	SettledAmountCents *int64     `gorm:"column:settled_amount_cents" json:"settledAmountCents,omitempty"`
}

func (Installment) TableName() string { return "installments" }

// NetPayableCents is the amount still expected for the row, never negative.
func (i Installment) NetPayableCents() int64 {
	net := i.AmountCents - i.DiscountCents
	if net < 0 {
		return 0
	}
	return net
}

// Settled reports whether the row was marked paid.
func (i Installment) Settled() bool { return i.SettledAt != nil }
