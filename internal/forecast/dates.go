package forecast

import "time"

// DateOnly truncates a time to its calendar day. All engine dates are
// timezone-naive calendar days; callers normalize to a single zone
// before invoking the engine, and the engine pins everything to UTC
// midnight so map keys and comparisons line up.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of calendar days from a through b,
// inclusive. Both arguments must already be day-truncated.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours()/24) + 1
}
