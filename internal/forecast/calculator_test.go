package forecast

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkraev/finflow/internal/models"
)

func plannedTx(id int64, date time.Time, amount string) models.Transaction {
	d := date
	return models.Transaction{
		ID:          id,
		AccountID:   1,
		Amount:      dec(amount),
		Status:      models.StatusPlanned,
		PlannedDate: &d,
	}
}

func estimateOf(avg string) models.SpendingEstimate {
	return models.SpendingEstimate{AverageDaily: dec(avg), Confidence: models.ConfidenceHigh, ShouldDisplay: true}
}

func TestProjectSingleDayTodayEqualsBalance(t *testing.T) {
	t.Parallel()

	c := NewCalculator(testLogger())
	today := day("2026-08-29")

	days := c.Project(dec("500"), today, today, nil, estimateOf("25"), today)

	require.Len(t, days, 1)
	assert.True(t, days[0].Date.Equal(today))
	assert.True(t, days[0].ProjectedBalance.Equal(dec("500")),
		"today's entry must anchor at the current balance, got %s", days[0].ProjectedBalance)
	assert.True(t, days[0].DailySpending.IsZero())
}

func TestProjectContiguousAscendingDays(t *testing.T) {
	t.Parallel()

	c := NewCalculator(testLogger())
	today := day("2026-08-29")
	end := today.AddDate(0, 0, 9)

	days := c.Project(dec("1000"), today, end, nil, estimateOf("0"), today)

	require.Len(t, days, 10)
	for i, d := range days {
		want := today.AddDate(0, 0, i)
		assert.True(t, d.Date.Equal(want), "day %d: expected %s, got %s", i, want, d.Date)
	}
}

func TestProjectSpendingOnlyAfterToday(t *testing.T) {
	t.Parallel()

	c := NewCalculator(testLogger())
	today := day("2026-08-29")

	days := c.Project(dec("500"), today, today.AddDate(0, 0, 10), nil, estimateOf("20"), today)

	require.Len(t, days, 11)
	assert.True(t, days[0].ProjectedBalance.Equal(dec("500")))
	for i := 1; i <= 10; i++ {
		want := dec("500").Sub(dec("20").Mul(decimal.NewFromInt(int64(i))))
		assert.True(t, days[i].ProjectedBalance.Equal(want),
			"day %d: expected %s, got %s", i, want, days[i].ProjectedBalance)
		assert.True(t, days[i].DailySpending.Equal(dec("20")))
	}
	// Day 10 lands on 500 - 200 = 300.
	assert.True(t, days[10].ProjectedBalance.Equal(dec("300")))
}

func TestProjectConservesPlannedCashFlow(t *testing.T) {
	t.Parallel()

	c := NewCalculator(testLogger())
	today := day("2026-08-29")
	end := today.AddDate(0, 0, 13)

	planned := []models.Transaction{
		plannedTx(1, today.AddDate(0, 0, 2), "-150.25"),
		plannedTx(2, today.AddDate(0, 0, 2), "-49.75"),
		plannedTx(3, today.AddDate(0, 0, 7), "1200"),
		plannedTx(4, today.AddDate(0, 0, 13), "-300.10"),
	}

	days := c.Project(dec("1000"), today, end, planned, estimateOf("0"), today)

	require.Len(t, days, 14)
	sum := decimal.Zero
	for _, tx := range planned {
		sum = sum.Add(tx.Amount)
	}
	final := days[len(days)-1].ProjectedBalance
	assert.True(t, final.Equal(dec("1000").Add(sum)),
		"final balance %s must equal balance plus planned flow %s", final, sum)

	// Same-day transactions all apply on their day.
	assert.True(t, days[2].ProjectedBalance.Equal(dec("800")),
		"expected 800 after two same-day payments, got %s", days[2].ProjectedBalance)
}

func TestProjectExactDecimalAccumulation(t *testing.T) {
	t.Parallel()

	c := NewCalculator(testLogger())
	today := day("2026-08-29")

	days := c.Project(dec("500"), today, today.AddDate(0, 0, 30), nil, estimateOf("0.1"), today)

	// 30 subtractions of 0.1 must land exactly on 497, no float drift.
	final := days[len(days)-1].ProjectedBalance
	assert.True(t, final.Equal(dec("497")), "expected exactly 497, got %s", final)
}

func TestProjectEmptyPlannedSetStillProducesFullSequence(t *testing.T) {
	t.Parallel()

	c := NewCalculator(testLogger())
	today := day("2026-08-29")
	start := today.AddDate(0, 0, 1)
	end := today.AddDate(0, 0, 5)

	days := c.Project(dec("100"), start, end, []models.Transaction{}, estimateOf("10"), today)

	require.Len(t, days, 5)
	for i, d := range days {
		want := dec("100").Sub(dec("10").Mul(decimal.NewFromInt(int64(i + 1))))
		assert.True(t, d.ProjectedBalance.Equal(want),
			"day %d: expected %s, got %s", i, want, d.ProjectedBalance)
	}
}
