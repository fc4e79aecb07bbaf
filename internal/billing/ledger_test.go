package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/felipekgouvea/cerg/models"
)

func newTestLedger(t *testing.T) (*Ledger, uint) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Agreement{}, &models.Installment{}))

	agreement := models.Agreement{
		Kind:       models.AgreementPreReenrollment,
		Year:       2026,
		TotalCents: 135000,
		StudentID:  1,
	}
	require.NoError(t, db.Create(&agreement).Error)

	return NewLedger(db), agreement.ID
}

func mustPlan(t *testing.T, name string) PaymentPlan {
	t.Helper()
	plan, ok := PlanByName(name)
	require.True(t, ok)
	return plan
}

func TestLedgerGenerate(t *testing.T) {
	ledger, agreementID := newTestLedger(t)

	rows, err := ledger.Generate(agreementID, mustPlan(t, PlanTwoSepOct), 135000, 2025, true)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Seq)
	assert.Equal(t, 2, rows[1].Seq)
	assert.Equal(t, int64(67500), rows[0].AmountCents)
	assert.Equal(t, int64(67500), rows[1].AmountCents)
}

func TestLedgerGenerateUnknownAgreement(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.Generate(9999, mustPlan(t, PlanOneOct), 135000, 2025, true)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedgerGenerateNegativeTotal(t *testing.T) {
	ledger, agreementID := newTestLedger(t)

	_, err := ledger.Generate(agreementID, mustPlan(t, PlanOneOct), -1, 2025, true)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestLedgerGenerateReplaceDiscardsOldRows(t *testing.T) {
	ledger, agreementID := newTestLedger(t)

	_, err := ledger.Generate(agreementID, mustPlan(t, PlanThreeSepNov), 135000, 2025, true)
	require.NoError(t, err)

	rows, err := ledger.Generate(agreementID, mustPlan(t, PlanOneOct), 135000, 2025, true)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	listed, err := ledger.List(agreementID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 1, listed[0].Seq)
	assert.Equal(t, int64(135000), listed[0].AmountCents)
}

func TestLedgerGenerateAppendContinuesSequence(t *testing.T) {
	ledger, agreementID := newTestLedger(t)

	_, err := ledger.Generate(agreementID, mustPlan(t, PlanTwoSepOct), 135000, 2025, true)
	require.NoError(t, err)

	rows, err := ledger.Generate(agreementID, mustPlan(t, PlanOneOct), 15000, 2025, false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Seq)

	listed, err := ledger.List(agreementID)
	require.NoError(t, err)
	assert.Len(t, listed, 3)
}

func TestLedgerAdd(t *testing.T) {
	ledger, agreementID := newTestLedger(t)

	due := time.Date(2025, time.December, 5, 0, 0, 0, 0, time.UTC)
	row, err := ledger.Add(agreementID, due, 20000, 5000)

	require.NoError(t, err)
	assert.Equal(t, 1, row.Seq)
	assert.Equal(t, int64(20000), row.AmountCents)
	assert.Equal(t, int64(5000), row.DiscountCents)
	assert.Equal(t, int64(15000), row.NetPayableCents())
}

func TestLedgerAddRejectsDiscountAboveAmount(t *testing.T) {
	ledger, agreementID := newTestLedger(t)

	due := time.Date(2025, time.December, 5, 0, 0, 0, 0, time.UTC)
	_, err := ledger.Add(agreementID, due, 10000, 10001)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "discount", vErr.Field)

	listed, err := ledger.List(agreementID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestLedgerUpdate(t *testing.T) {
	ledger, agreementID := newTestLedger(t)

	rows, err := ledger.Generate(agreementID, mustPlan(t, PlanOneOct), 135000, 2025, true)
	require.NoError(t, err)

	newDue := time.Date(2025, time.November, 5, 0, 0, 0, 0, time.UTC)
	discount := Cents(5000)
	updated, err := ledger.Update(rows[0].ID, InstallmentPatch{
		DueDate:       &newDue,
		DiscountCents: &discount,
	})

	require.NoError(t, err)
	assert.Equal(t, newDue, updated.DueDate.UTC())
	assert.Equal(t, int64(5000), updated.DiscountCents)
	assert.Equal(t, int64(135000), updated.AmountCents)
}

func TestLedgerUpdateRejectionLeavesRowUnchanged(t *testing.T) {
	ledger, agreementID := newTestLedger(t)

	rows, err := ledger.Generate(agreementID, mustPlan(t, PlanOneOct), 135000, 2025, true)
	require.NoError(t, err)

	badDiscount := Cents(200000)
	_, err = ledger.Update(rows[0].ID, InstallmentPatch{DiscountCents: &badDiscount})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	current, err := ledger.Get(rows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), current.DiscountCents)
	assert.Equal(t, int64(135000), current.AmountCents)
}

func TestLedgerUpdateUnknownRow(t *testing.T) {
	ledger, _ := newTestLedger(t)

	amount := Cents(1000)
	_, err := ledger.Update(9999, InstallmentPatch{AmountCents: &amount})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedgerSettleLastWriteWins(t *testing.T) {
	ledger, agreementID := newTestLedger(t)

	rows, err := ledger.Generate(agreementID, mustPlan(t, PlanOneOct), 135000, 2025, true)
	require.NoError(t, err)
	rowID := rows[0].ID

	first := time.Date(2025, time.October, 3, 0, 0, 0, 0, time.UTC)
	settled, err := ledger.Settle(rowID, first, 135000)
	require.NoError(t, err)
	require.True(t, settled.Settled())
	assert.Equal(t, int64(135000), *settled.SettledAmountCents)

	second := time.Date(2025, time.October, 7, 0, 0, 0, 0, time.UTC)
	settled, err = ledger.Settle(rowID, second, 130000)
	require.NoError(t, err)
	assert.Equal(t, second, settled.SettledAt.UTC())
	assert.Equal(t, int64(130000), *settled.SettledAmountCents)

	// same values again is a no-op
	settled, err = ledger.Settle(rowID, second, 130000)
	require.NoError(t, err)
	assert.Equal(t, second, settled.SettledAt.UTC())
	assert.Equal(t, int64(130000), *settled.SettledAmountCents)
}

func TestLedgerSettleRejectsNegativeAmount(t *testing.T) {
	ledger, agreementID := newTestLedger(t)

	rows, err := ledger.Generate(agreementID, mustPlan(t, PlanOneOct), 135000, 2025, true)
	require.NoError(t, err)

	_, err = ledger.Settle(rows[0].ID, time.Now(), -1)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestLedgerDeleteSettledRow(t *testing.T) {
	ledger, agreementID := newTestLedger(t)

	rows, err := ledger.Generate(agreementID, mustPlan(t, PlanOneOct), 135000, 2025, true)
	require.NoError(t, err)

	_, err = ledger.Settle(rows[0].ID, time.Now(), 135000)
	require.NoError(t, err)

	require.NoError(t, ledger.Delete(rows[0].ID))

	listed, err := ledger.List(agreementID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestLedgerDeleteUnknownRow(t *testing.T) {
	ledger, _ := newTestLedger(t)

	assert.ErrorIs(t, ledger.Delete(9999), ErrNotFound)
}

func TestLedgerListOrdering(t *testing.T) {
	ledger, agreementID := newTestLedger(t)

	later := time.Date(2025, time.December, 5, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC)

	_, err := ledger.Add(agreementID, later, 1000, 0)
	require.NoError(t, err)
	_, err = ledger.Add(agreementID, earlier, 2000, 0)
	require.NoError(t, err)

	listed, err := ledger.List(agreementID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, earlier, listed[0].DueDate.UTC())
	assert.Equal(t, later, listed[1].DueDate.UTC())
}

func TestLedgerListUnknownAgreement(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.List(9999)

	assert.ErrorIs(t, err, ErrNotFound)
}
