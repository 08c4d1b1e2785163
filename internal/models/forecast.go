package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Confidence grades how trustworthy the average-daily-spending estimate is.
type Confidence string

const (
	ConfidenceNone   Confidence = "none"
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// SpendingEstimate is the output of the spending pattern analysis.
// AverageDaily is always populated when any outflow history exists;
// ShouldDisplay tells consumers whether the figure is strong enough to
// surface to the user.
type SpendingEstimate struct {
	AverageDaily  decimal.Decimal `json:"average_daily_spending"`
	Confidence    Confidence      `json:"spending_confidence"`
	SpendingDays  int             `json:"spending_days"`
	ShouldDisplay bool            `json:"should_display"`
}

// DailyForecast represents the projected balance at the end of one
// calendar day, together with the spending estimate applied that day.
type DailyForecast struct {
	Date             time.Time       `json:"date"`
	ProjectedBalance decimal.Decimal `json:"projected_balance"`
	DailySpending    decimal.Decimal `json:"daily_spending_applied"`
}

// Severity grades how urgent a payment risk is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Bump returns the next-more-urgent severity.
func (s Severity) Bump() Severity {
	switch s {
	case SeverityLow:
		return SeverityMedium
	case SeverityMedium:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

// PaymentRisk flags a planned transaction whose posting day is
// projected to fall below the minimum safe balance.
type PaymentRisk struct {
	TransactionID    int64           `json:"transaction_id"`
	Date             time.Time       `json:"date"`
	ProjectedBalance decimal.Decimal `json:"projected_balance"`
	Shortfall        decimal.Decimal `json:"shortfall"`
	Severity         Severity        `json:"severity"`
}

// CompleteForecast bundles everything a single forecast call produces.
type CompleteForecast struct {
	WorkspaceID    int64            `json:"workspace_id"`
	AccountID      int64            `json:"account_id"`
	CurrentBalance decimal.Decimal  `json:"current_balance"`
	Days           []DailyForecast  `json:"daily_forecast"`
	Risks          []PaymentRisk    `json:"payment_risks"`
	Estimate       SpendingEstimate `json:"spending_estimate"`
	Settings       UserSettings     `json:"settings"`
	GeneratedAt    time.Time        `json:"generated_at"`
}
