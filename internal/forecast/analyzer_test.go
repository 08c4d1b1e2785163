package forecast

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkraev/finflow/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func completedOutflow(id int64, date time.Time, amount string) models.Transaction {
	return models.Transaction{
		ID:              id,
		AccountID:       1,
		Amount:          dec(amount),
		Status:          models.StatusCompleted,
		TransactionDate: date,
	}
}

func TestEstimateZeroTransactions(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(testLogger())
	today := day("2026-08-29")

	est := a.Estimate(nil, today.AddDate(0, 0, -89), today)

	assert.True(t, est.AverageDaily.IsZero(), "average should be zero with no history")
	assert.Equal(t, models.ConfidenceNone, est.Confidence)
	assert.False(t, est.ShouldDisplay)
	assert.Zero(t, est.SpendingDays)
}

func TestEstimateUniformDailySpendingGradesHigh(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(testLogger())
	today := day("2026-08-29")

	var history []models.Transaction
	for i := 1; i <= 30; i++ {
		history = append(history, completedOutflow(int64(i), today.AddDate(0, 0, -i), "-20"))
	}

	est := a.Estimate(history, today.AddDate(0, 0, -89), today)

	assert.Equal(t, models.ConfidenceHigh, est.Confidence)
	assert.True(t, est.ShouldDisplay)
	assert.Equal(t, 30, est.SpendingDays)
	// 600 spent over the 31-day span from the earliest outflow
	// through today.
	assert.True(t, est.AverageDaily.GreaterThanOrEqual(dec("19")), "average %s too low", est.AverageDaily)
	assert.True(t, est.AverageDaily.LessThanOrEqual(dec("20")), "average %s too high", est.AverageDaily)
}

func TestEstimateTooFewSpendingDays(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(testLogger())
	today := day("2026-08-29")

	history := []models.Transaction{
		completedOutflow(1, today.AddDate(0, 0, -3), "-50"),
		completedOutflow(2, today.AddDate(0, 0, -10), "-75"),
	}

	est := a.Estimate(history, today.AddDate(0, 0, -89), today)

	assert.Equal(t, models.ConfidenceNone, est.Confidence)
	assert.False(t, est.ShouldDisplay)
	// The raw number is still computed for internal use.
	assert.True(t, est.AverageDaily.GreaterThan(decimal.Zero))
}

func TestEstimateVolatileSpendingGradesLow(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(testLogger())
	today := day("2026-08-29")

	var history []models.Transaction
	for i := 1; i <= 7; i++ {
		history = append(history, completedOutflow(int64(i), today.AddDate(0, 0, -i), "-1"))
	}
	history = append(history, completedOutflow(8, today.AddDate(0, 0, -8), "-500"))

	est := a.Estimate(history, today.AddDate(0, 0, -89), today)

	assert.Equal(t, models.ConfidenceLow, est.Confidence)
	assert.False(t, est.ShouldDisplay)
}

func TestEstimateModerateSampleGradesMedium(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(testLogger())
	today := day("2026-08-29")

	var history []models.Transaction
	for i := 1; i <= 10; i++ {
		amount := "-10"
		if i%2 == 0 {
			amount = "-20"
		}
		history = append(history, completedOutflow(int64(i), today.AddDate(0, 0, -i), amount))
	}

	est := a.Estimate(history, today.AddDate(0, 0, -89), today)

	assert.Equal(t, models.ConfidenceMedium, est.Confidence)
	assert.True(t, est.ShouldDisplay)
}

func TestEstimateExcludesInflowsAndOutOfWindow(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(testLogger())
	today := day("2026-08-29")
	windowStart := today.AddDate(0, 0, -89)

	var history []models.Transaction
	for i := 1; i <= 14; i++ {
		history = append(history, completedOutflow(int64(i), today.AddDate(0, 0, -i), "-20"))
	}
	baseline := a.Estimate(history, windowStart, today)

	// Inflows and out-of-window outflows must not shift the estimate.
	history = append(history,
		models.Transaction{ID: 100, Amount: dec("5000"), Status: models.StatusCompleted, TransactionDate: today.AddDate(0, 0, -5)},
		completedOutflow(101, today.AddDate(0, 0, -200), "-9999"),
		completedOutflow(102, today.AddDate(0, 0, 5), "-9999"),
	)
	got := a.Estimate(history, windowStart, today)

	require.True(t, got.AverageDaily.Equal(baseline.AverageDaily),
		"expected %s, got %s", baseline.AverageDaily, got.AverageDaily)
	assert.Equal(t, baseline.Confidence, got.Confidence)
}
