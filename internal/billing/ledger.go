package billing

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/felipekgouvea/cerg/models"
)

// Ledger owns the installment rows of agreements. Every mutation is atomic:
// multi-row writes run in one transaction, single-row writes validate before
// touching the store, and no partial state is ever committed.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// InstallmentPatch carries the fields of an installment a staff edit may
// change. Nil fields are left untouched.
type InstallmentPatch struct {
	DueDate       *time.Time
	AmountCents   *Cents
	DiscountCents *Cents
}

// Generate computes the schedule for the given plan and persists it. With
// replace, existing rows of the agreement are discarded and the new rows get
// seq 1..N; a reader inside the transaction never sees the agreement empty
// or mixed. Without replace, rows are appended continuing after the current
// highest seq.
func (l *Ledger) Generate(agreementID uint, plan PaymentPlan, total Cents, baseYear int, replace bool) ([]models.Installment, error) {
	if total < 0 {
		return nil, validationErr("amount", "must not be negative")
	}
	return l.insertSpecs(agreementID, BuildSchedule(total, plan, baseYear), replace)
}

// GenerateStandard replaces the agreement's schedule with the monthly
// contract plan (see BuildStandard).
func (l *Ledger) GenerateStandard(agreementID uint, year int, monthlyCents Cents, startMonth time.Month, months int) ([]models.Installment, error) {
	if monthlyCents < 0 {
		return nil, validationErr("amount", "must not be negative")
	}
	return l.insertSpecs(agreementID, BuildStandard(year, monthlyCents, startMonth, months), true)
}

func (l *Ledger) insertSpecs(agreementID uint, specs []InstallmentSpec, replace bool) ([]models.Installment, error) {
	var rows []models.Installment

	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := agreementExists(tx, agreementID); err != nil {
			return err
		}

		offset := 0
		if replace {
			if err := tx.Where("agreement_id = ?", agreementID).Delete(&models.Installment{}).Error; err != nil {
				return err
			}
		} else {
			maxSeq, err := maxSeqFor(tx, agreementID)
			if err != nil {
				return err
			}
			offset = maxSeq
		}

		rows = make([]models.Installment, 0, len(specs))
		for _, s := range specs {
			rows = append(rows, models.Installment{
				AgreementID:   agreementID,
				Seq:           offset + s.Seq,
				DueDate:       s.DueDate,
				AmountCents:   s.AmountCents,
				DiscountCents: 0,
			})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Add appends one manual row with the agreement's next sequence number.
func (l *Ledger) Add(agreementID uint, dueDate time.Time, amount, discount Cents) (models.Installment, error) {
	if amount < 0 {
		return models.Installment{}, validationErr("amount", "must not be negative")
	}
	if discount < 0 {
		return models.Installment{}, validationErr("discount", "must not be negative")
	}
	if discount > amount {
		return models.Installment{}, validationErr("discount", "must not exceed amount")
	}
	if dueDate.IsZero() {
		return models.Installment{}, validationErr("dueDate", "is required")
	}

	var row models.Installment
	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := agreementExists(tx, agreementID); err != nil {
			return err
		}
		maxSeq, err := maxSeqFor(tx, agreementID)
		if err != nil {
			return err
		}
		row = models.Installment{
			AgreementID:   agreementID,
			Seq:           maxSeq + 1,
			DueDate:       dueDate,
			AmountCents:   amount,
			DiscountCents: discount,
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return models.Installment{}, err
	}
	return row, nil
}

// Update applies the patch to one row. The row is rejected unchanged when
// the result would owe a negative amount or a discount above the amount.
func (l *Ledger) Update(rowID uint, patch InstallmentPatch) (models.Installment, error) {
	var row models.Installment
	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, rowID).Error; err != nil {
			return mapNotFound(err)
		}

		updates := map[string]any{}
		if patch.DueDate != nil {
			if patch.DueDate.IsZero() {
				return validationErr("dueDate", "is required")
			}
			row.DueDate = *patch.DueDate
			updates["due_date"] = *patch.DueDate
		}
		if patch.AmountCents != nil {
			row.AmountCents = *patch.AmountCents
			updates["amount_cents"] = *patch.AmountCents
		}
		if patch.DiscountCents != nil {
			row.DiscountCents = *patch.DiscountCents
			updates["discount_cents"] = *patch.DiscountCents
		}

		if row.AmountCents < 0 {
			return validationErr("amount", "must not be negative")
		}
		if row.DiscountCents < 0 {
			return validationErr("discount", "must not be negative")
		}
		if row.DiscountCents > row.AmountCents {
			return validationErr("discount", "must not exceed amount")
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.Installment{}).Where("id = ?", rowID).Updates(updates).Error
	})
	if err != nil {
		return models.Installment{}, err
	}
	return row, nil
}

// Settle marks the row paid. Last write wins: re-settling overwrites the
// previous timestamp and amount, and settling twice with the same values is
// a no-op.
func (l *Ledger) Settle(rowID uint, settledAt time.Time, settledAmount Cents) (models.Installment, error) {
	if settledAmount < 0 {
		return models.Installment{}, validationErr("settledAmount", "must not be negative")
	}
	if settledAt.IsZero() {
		return models.Installment{}, validationErr("settledAt", "is required")
	}

	var row models.Installment
	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, rowID).Error; err != nil {
			return mapNotFound(err)
		}
		row.SettledAt = &settledAt
		row.SettledAmountCents = &settledAmount
		return tx.Model(&models.Installment{}).Where("id = ?", rowID).Updates(map[string]any{
			"settled_at":           settledAt,
			"settled_amount_cents": settledAmount,
		}).Error
	})
	if err != nil {
		return models.Installment{}, err
	}
	return row, nil
}

// Get loads one row by id.
func (l *Ledger) Get(rowID uint) (models.Installment, error) {
	var row models.Installment
	if err := l.db.First(&row, rowID).Error; err != nil {
		return models.Installment{}, mapNotFound(err)
	}
	return row, nil
}

// Delete removes the row unconditionally; settled rows are deletable.
func (l *Ledger) Delete(rowID uint) error {
	res := l.db.Delete(&models.Installment{}, rowID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the agreement's rows ordered by due date, ties by id.
func (l *Ledger) List(agreementID uint) ([]models.Installment, error) {
	if err := agreementExists(l.db, agreementID); err != nil {
		return nil, err
	}
	var rows []models.Installment
	err := l.db.
		Where("agreement_id = ?", agreementID).
		Order("due_date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func agreementExists(tx *gorm.DB, agreementID uint) error {
	var n int64
	if err := tx.Model(&models.Agreement{}).Where("id = ?", agreementID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func maxSeqFor(tx *gorm.DB, agreementID uint) (int, error) {
	var maxSeq int
	err := tx.Model(&models.Installment{}).
		Where("agreement_id = ?", agreementID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error
	return maxSeq, err
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
