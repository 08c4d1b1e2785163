package forecast

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mkraev/finflow/internal/models"
)

// Tunable estimation parameters. Confidence is a function of how many
// distinct days carry at least one outflow and of the coefficient of
// variation of the per-day outflow totals.
const (
	// minSpendingDays is the sample size below which no estimate is
	// considered possible at all.
	minSpendingDays = 3

	// mediumMinDays / highMinDays are the sample sizes required for
	// the medium and high grades.
	mediumMinDays = 7
	highMinDays   = 14

	// mediumMaxVariation / highMaxVariation cap the coefficient of
	// variation allowed for the medium and high grades.
	mediumMaxVariation = 1.0
	highMaxVariation   = 0.5
)

// Analyzer derives an average daily spending figure and a confidence
// grade from historical completed transactions.
type Analyzer struct {
	log *logrus.Logger
}

// NewAnalyzer initializes a new spending pattern analyzer.
func NewAnalyzer(log *logrus.Logger) *Analyzer {
	return &Analyzer{log: log}
}

// Estimate computes the spending estimate over [windowStart, today].
// Only negative-amount completed transactions count toward spending;
// the divisor is the calendar span from the later of windowStart and
// the earliest observed outflow through today, so sparse history on a
// young account is not diluted by an empty window. Zero history yields
// a zero average with confidence "none" rather than an error.
func (a *Analyzer) Estimate(completed []models.Transaction, windowStart, today time.Time) models.SpendingEstimate {
	windowStart = DateOnly(windowStart)
	today = DateOnly(today)

	dailyOutflow := make(map[time.Time]decimal.Decimal)
	total := decimal.Zero
	var earliest time.Time
	for _, tx := range completed {
		if tx.Status != models.StatusCompleted || tx.Amount.Sign() >= 0 {
			continue
		}
		day := DateOnly(tx.TransactionDate)
		if day.Before(windowStart) || day.After(today) {
			continue
		}
		outflow := tx.Amount.Neg()
		dailyOutflow[day] = dailyOutflow[day].Add(outflow)
		total = total.Add(outflow)
		if earliest.IsZero() || day.Before(earliest) {
			earliest = day
		}
	}

	estimate := models.SpendingEstimate{
		AverageDaily: decimal.Zero,
		Confidence:   models.ConfidenceNone,
		SpendingDays: len(dailyOutflow),
	}
	if len(dailyOutflow) == 0 {
		return estimate
	}

	effectiveStart := windowStart
	if earliest.After(windowStart) {
		effectiveStart = earliest
	}
	windowDays := daysBetween(effectiveStart, today)
	if windowDays < 1 {
		windowDays = 1
	}
	estimate.AverageDaily = total.Div(decimal.NewFromInt(int64(windowDays)))

	estimate.Confidence = gradeConfidence(len(dailyOutflow), coefficientOfVariation(dailyOutflow))
	estimate.ShouldDisplay = estimate.Confidence == models.ConfidenceMedium || estimate.Confidence == models.ConfidenceHigh

	a.log.Debugf("Spending estimate: avg=%s/day over %d days, %d spending days, confidence=%s",
		estimate.AverageDaily.StringFixed(2), windowDays, estimate.SpendingDays, estimate.Confidence)
	return estimate
}

// gradeConfidence maps sample size and variation to a confidence grade.
func gradeConfidence(spendingDays int, variation float64) models.Confidence {
	switch {
	case spendingDays < minSpendingDays:
		return models.ConfidenceNone
	case spendingDays >= highMinDays && variation <= highMaxVariation:
		return models.ConfidenceHigh
	case spendingDays >= mediumMinDays && variation <= mediumMaxVariation:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// coefficientOfVariation measures day-to-day volatility of the outflow
// totals. It is a dimensionless statistic, so float64 is fine here;
// only balance arithmetic needs exact decimals.
func coefficientOfVariation(dailyOutflow map[time.Time]decimal.Decimal) float64 {
	n := float64(len(dailyOutflow))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range dailyOutflow {
		sum += v.InexactFloat64()
	}
	mean := sum / n
	if mean == 0 {
		return 0
	}
	var sq float64
	for _, v := range dailyOutflow {
		d := v.InexactFloat64() - mean
		sq += d * d
	}
	return math.Sqrt(sq/n) / mean
}
