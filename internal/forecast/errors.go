package forecast

import "errors"

// Sentinel errors returned by the forecast engine and its data sources.
// Not-found conditions are distinct from transient fetch failures so
// callers can map them to user-facing messaging; the engine never
// retries either kind.
var (
	// ErrSettingsNotFound is returned when no forecasting settings
	// exist for the workspace. Missing settings are a hard input
	// error, not a default-substitution case.
	ErrSettingsNotFound = errors.New("user settings not found")

	// ErrAccountNotFound is returned when the account (and therefore
	// its current balance) cannot be resolved.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidRange is returned when the requested end date
	// precedes the start date.
	ErrInvalidRange = errors.New("end date before start date")

	// ErrRangeTooLarge is returned when the requested range exceeds
	// the maximum forecast span.
	ErrRangeTooLarge = errors.New("date range exceeds maximum forecast span")
)
