package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserSettings holds the per-workspace forecasting preferences.
// MinimumSafeBalance is the floor below which a projected day is
// considered at risk; SafetyBufferDays is the lookahead window used
// when scoring the urgency of a payment risk.
type UserSettings struct {
	WorkspaceID        int64           `json:"workspace_id"`
	MinimumSafeBalance decimal.Decimal `json:"minimum_safe_balance"`
	SafetyBufferDays   int             `json:"safety_buffer_days"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}
