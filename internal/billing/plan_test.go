package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanByName(t *testing.T) {
	tests := []struct {
		name   string
		months []time.Month
	}{
		{PlanOneSep, []time.Month{time.September}},
		{PlanOneOct, []time.Month{time.October}},
		{PlanTwoSepOct, []time.Month{time.September, time.October}},
		{PlanThreeSepNov, []time.Month{time.September, time.October, time.November}},
	}
	for _, tt := range tests {
		plan, ok := PlanByName(tt.name)

		require.True(t, ok, tt.name)
		assert.Equal(t, tt.months, plan.Months())
	}

	_, ok := PlanByName("4_jan")
	assert.False(t, ok)
}

func TestDueDayPolicy(t *testing.T) {
	assert.Equal(t, 20, DueDay(time.September))
	assert.Equal(t, 5, DueDay(time.October))
	assert.Equal(t, 5, DueDay(time.November))
	assert.Equal(t, 5, DueDay(time.January))
}

func TestBuildScheduleSingle(t *testing.T) {
	plan, _ := PlanByName(PlanOneOct)
	out := BuildSchedule(135000, plan, 2025)

	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Seq)
	assert.Equal(t, time.Date(2025, time.October, 5, 0, 0, 0, 0, time.UTC), out[0].DueDate)
	assert.Equal(t, Cents(135000), out[0].AmountCents)
}

func TestBuildScheduleTwoInstallments(t *testing.T) {
	plan, _ := PlanByName(PlanTwoSepOct)
	out := BuildSchedule(135000, plan, 2025)

	require.Len(t, out, 2)
	assert.Equal(t, time.Date(2025, time.September, 20, 0, 0, 0, 0, time.UTC), out[0].DueDate)
	assert.Equal(t, time.Date(2025, time.October, 5, 0, 0, 0, 0, time.UTC), out[1].DueDate)
	assert.Equal(t, Cents(67500), out[0].AmountCents)
	assert.Equal(t, Cents(67500), out[1].AmountCents)
}

func TestBuildScheduleThreeEqualInstallments(t *testing.T) {
	plan, _ := PlanByName(PlanThreeSepNov)
	out := BuildSchedule(135000, plan, 2025)

	require.Len(t, out, 3)
	for _, spec := range out {
		assert.Equal(t, Cents(45000), spec.AmountCents)
	}
}

func TestBuildScheduleThreeInstallmentsOrderedByDate(t *testing.T) {
	plan, _ := PlanByName(PlanThreeSepNov)
	out := BuildSchedule(100000, plan, 2025)

	require.Len(t, out, 3)
	for i, spec := range out {
		assert.Equal(t, i+1, spec.Seq)
		if i > 0 {
			assert.True(t, out[i-1].DueDate.Before(spec.DueDate))
		}
	}

	var sum Cents
	for _, spec := range out {
		sum += spec.AmountCents
	}
	assert.Equal(t, Cents(100000), sum)
}

func TestBuildScheduleDeterministic(t *testing.T) {
	plan, _ := PlanByName(PlanThreeSepNov)

	first := BuildSchedule(100001, plan, 2025)
	second := BuildSchedule(100001, plan, 2025)

	assert.Equal(t, first, second)
}

func TestBuildScheduleZeroTotal(t *testing.T) {
	plan, _ := PlanByName(PlanTwoSepOct)
	out := BuildSchedule(0, plan, 2025)

	require.Len(t, out, 2)
	for _, spec := range out {
		assert.Equal(t, Cents(0), spec.AmountCents)
	}
}

func TestBuildScheduleEmptyPlan(t *testing.T) {
	assert.Nil(t, BuildSchedule(1000, PaymentPlan{}, 2025))
}

func TestBuildStandardTwelveMonths(t *testing.T) {
	out := BuildStandard(2026, 141000, time.January, 12)

	require.Len(t, out, 12)
	for i, spec := range out {
		assert.Equal(t, i+1, spec.Seq)
		assert.Equal(t, Cents(141000), spec.AmountCents)
		assert.Equal(t, time.Date(2026, time.January+time.Month(i), 5, 0, 0, 0, 0, time.UTC), spec.DueDate)
	}
}

func TestBuildStandardRollsIntoNextYear(t *testing.T) {
	out := BuildStandard(2025, 50000, time.November, 4)

	require.Len(t, out, 4)
	assert.Equal(t, time.Date(2025, time.November, 5, 0, 0, 0, 0, time.UTC), out[0].DueDate)
	assert.Equal(t, time.Date(2026, time.February, 5, 0, 0, 0, 0, time.UTC), out[3].DueDate)
}
