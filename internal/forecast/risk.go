package forecast

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mkraev/finflow/internal/models"
)

// deepShortfallRatio is the fraction of the minimum safe balance the
// shortfall must exceed before a risk grades medium instead of low.
// Severity is monotonic in both shortfall depth and proximity: a
// negative projected balance forces at least high, and occurrence
// within the safety buffer bumps the grade one step.
var deepShortfallRatio = decimal.New(5, -1)

// Assessor scans planned transactions within the forecast horizon and
// flags those whose execution drops the projected balance below the
// minimum safe balance.
type Assessor struct {
	log *logrus.Logger
}

// NewAssessor initializes a new payment risk assessor.
func NewAssessor(log *logrus.Logger) *Assessor {
	return &Assessor{log: log}
}

// Assess returns one PaymentRisk per planned transaction whose posting
// day's projected end-of-day balance is below the minimum safe
// balance. Transactions on days that stay at or above the threshold
// produce no entry. The result is ordered by date, ties broken by
// transaction ID.
func (a *Assessor) Assess(days []models.DailyForecast, planned []models.Transaction, settings models.UserSettings, today time.Time) []models.PaymentRisk {
	today = DateOnly(today)
	byDay := make(map[time.Time]models.DailyForecast, len(days))
	for _, d := range days {
		byDay[DateOnly(d.Date)] = d
	}

	var risks []models.PaymentRisk
	for _, tx := range planned {
		if tx.Status != models.StatusPlanned || tx.PlannedDate == nil {
			continue
		}
		day := DateOnly(*tx.PlannedDate)
		entry, ok := byDay[day]
		if !ok {
			continue
		}
		if entry.ProjectedBalance.GreaterThanOrEqual(settings.MinimumSafeBalance) {
			continue
		}
		shortfall := settings.MinimumSafeBalance.Sub(entry.ProjectedBalance)
		risks = append(risks, models.PaymentRisk{
			TransactionID:    tx.ID,
			Date:             day,
			ProjectedBalance: entry.ProjectedBalance,
			Shortfall:        shortfall,
			Severity:         a.severity(entry, shortfall, settings, daysBetween(today, day)-1),
		})
	}

	sort.Slice(risks, func(i, j int) bool {
		if !risks[i].Date.Equal(risks[j].Date) {
			return risks[i].Date.Before(risks[j].Date)
		}
		return risks[i].TransactionID < risks[j].TransactionID
	})

	if len(risks) > 0 {
		a.log.Debugf("Flagged %d payment risks below safe balance %s",
			len(risks), settings.MinimumSafeBalance.StringFixed(2))
	}
	return risks
}

// severity grades a risk from its shortfall depth, then bumps the
// grade when the transaction lands within the safety buffer window.
func (a *Assessor) severity(entry models.DailyForecast, shortfall decimal.Decimal, settings models.UserSettings, daysAway int) models.Severity {
	deep := settings.MinimumSafeBalance.Mul(deepShortfallRatio)

	grade := models.SeverityLow
	switch {
	case entry.ProjectedBalance.Sign() < 0:
		grade = models.SeverityHigh
	case shortfall.GreaterThan(deep):
		grade = models.SeverityMedium
	}
	if daysAway <= settings.SafetyBufferDays {
		grade = grade.Bump()
	}
	return grade
}
