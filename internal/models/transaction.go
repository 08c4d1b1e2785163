package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses.
const (
	StatusCompleted = "completed"
	StatusPlanned   = "planned"
)

// Transaction represents a financial transaction. Amounts are signed:
// negative for outflows, positive for inflows.
type Transaction struct {
	ID              int64           `json:"id"`
	AccountID       int64           `json:"account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	TransactionDate time.Time       `json:"transaction_date"`
	PlannedDate     *time.Time      `json:"planned_date,omitempty"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// EffectiveDate returns the date that places the transaction on the
// forecast timeline: the planned date for planned transactions, the
// posting date otherwise.
func (t *Transaction) EffectiveDate() time.Time {
	if t.Status == StatusPlanned && t.PlannedDate != nil {
		return *t.PlannedDate
	}
	return t.TransactionDate
}
