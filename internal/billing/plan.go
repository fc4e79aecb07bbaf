package billing

import (
	"sort"
	"time"
)

// PaymentPlan describes the shape of a reenrollment payment schedule: one
// installment in a single month, or the total split over two or three
// months. Plans are fixed policy, not user-entered data.
type PaymentPlan struct {
	months []time.Month
}

// Single returns the plan with one installment due in the given month.
func Single(m time.Month) PaymentPlan {
	return PaymentPlan{months: []time.Month{m}}
}

// Split returns the plan that divides the total over the given months, in
// the given order. Callers pass two or three months.
func Split(months ...time.Month) PaymentPlan {
	return PaymentPlan{months: append([]time.Month(nil), months...)}
}

// Months returns a copy of the plan's due months in input order.
func (p PaymentPlan) Months() []time.Month {
	return append([]time.Month(nil), p.months...)
}

// Named plans offered by the reenrollment UI.
const (
	PlanOneSep      = "1_sep"
	PlanOneOct      = "1_oct"
	PlanTwoSepOct   = "2_sep_oct"
	PlanThreeSepNov = "3_sep_oct_nov"
)

// PlanByName resolves a UI plan selector to its PaymentPlan.
func PlanByName(name string) (PaymentPlan, bool) {
	switch name {
	case PlanOneSep:
		return Single(time.September), true
	case PlanOneOct:
		return Single(time.October), true
	case PlanTwoSepOct:
		return Split(time.September, time.October), true
	case PlanThreeSepNov:
		return Split(time.September, time.October, time.November), true
	}
	return PaymentPlan{}, false
}

// DueDay is the policy day-of-month for reenrollment installments: the
// September installment falls on the 20th, every other month on the 5th.
func DueDay(m time.Month) int {
	if m == time.September {
		return 20
	}
	return 5
}

// InstallmentSpec is one generated schedule row, not yet persisted.
type InstallmentSpec struct {
	Seq         int
	DueDate     time.Time
	AmountCents Cents
}

// BuildSchedule turns a total and a plan into the ordered installment rows
// for baseYear. Amounts come from SplitEven, so they always sum back to
// total; rows are ordered by due date, ties keeping plan order, and Seq is
// assigned 1..N over that order. A zero total yields zero-amount rows.
func BuildSchedule(total Cents, plan PaymentPlan, baseYear int) []InstallmentSpec {
	months := plan.months
	if len(months) == 0 {
		return nil
	}

	amounts := SplitEven(total, len(months))

	out := make([]InstallmentSpec, len(months))
	for i, m := range months {
		out[i] = InstallmentSpec{
			DueDate:     time.Date(baseYear, m, DueDay(m), 0, 0, 0, 0, time.UTC),
			AmountCents: amounts[i],
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})
	for i := range out {
		out[i].Seq = i + 1
	}
	return out
}

// standardDueDay is the due day of the monthly contract plan.
const standardDueDay = 5

// BuildStandard is the contract plan: months equal installments of
// monthlyCents starting at startMonth of year, each due on the 5th. Months
// past December roll into the next year.
func BuildStandard(year int, monthlyCents Cents, startMonth time.Month, months int) []InstallmentSpec {
	out := make([]InstallmentSpec, 0, months)
	for i := 0; i < months; i++ {
		out = append(out, InstallmentSpec{
			Seq:         i + 1,
			DueDate:     time.Date(year, startMonth+time.Month(i), standardDueDay, 0, 0, 0, 0, time.UTC),
			AmountCents: monthlyCents,
		})
	}
	return out
}
