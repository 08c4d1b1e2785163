package forecast

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mkraev/finflow/internal/models"
)

// Calculator projects an account balance forward one calendar day at a
// time across a requested date range.
type Calculator struct {
	log *logrus.Logger
}

// NewCalculator initializes a new daily forecast calculator.
func NewCalculator(log *logrus.Logger) *Calculator {
	return &Calculator{log: log}
}

// Project returns one DailyForecast per calendar day in [start, end],
// inclusive. The running balance starts at current; each day first
// applies the signed amounts of planned transactions dated that day,
// then subtracts the average daily spending, but only for days
// strictly after today. Today's entry reflects the current balance
// exactly, anchoring the projection: days already reflected in the
// current balance must not have estimated spending applied again.
// All arithmetic is exact decimal; rounding happens only at
// presentation boundaries.
func (c *Calculator) Project(current decimal.Decimal, start, end time.Time, planned []models.Transaction, estimate models.SpendingEstimate, today time.Time) []models.DailyForecast {
	start = DateOnly(start)
	end = DateOnly(end)
	today = DateOnly(today)

	plannedByDay := make(map[time.Time]decimal.Decimal)
	for _, tx := range planned {
		if tx.Status != models.StatusPlanned || tx.PlannedDate == nil {
			continue
		}
		day := DateOnly(*tx.PlannedDate)
		plannedByDay[day] = plannedByDay[day].Add(tx.Amount)
	}

	days := make([]models.DailyForecast, 0, daysBetween(start, end))
	balance := current
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if delta, ok := plannedByDay[day]; ok {
			balance = balance.Add(delta)
		}
		spending := decimal.Zero
		if day.After(today) && estimate.AverageDaily.Sign() > 0 {
			spending = estimate.AverageDaily
			balance = balance.Sub(spending)
		}
		days = append(days, models.DailyForecast{
			Date:             day,
			ProjectedBalance: balance,
			DailySpending:    spending,
		})
	}

	c.log.Debugf("Projected %d days from %s to %s, final balance %s",
		len(days), start.Format("2006-01-02"), end.Format("2006-01-02"), balance.StringFixed(2))
	return days
}
