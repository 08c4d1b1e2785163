package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkraev/finflow/internal/models"
)

func settingsOf(minSafe string, bufferDays int) models.UserSettings {
	return models.UserSettings{
		WorkspaceID:        1,
		MinimumSafeBalance: dec(minSafe),
		SafetyBufferDays:   bufferDays,
	}
}

var severityRank = map[models.Severity]int{
	models.SeverityLow:      0,
	models.SeverityMedium:   1,
	models.SeverityHigh:     2,
	models.SeverityCritical: 3,
}

func TestAssessSinglePaymentBelowThreshold(t *testing.T) {
	t.Parallel()

	c := NewCalculator(testLogger())
	a := NewAssessor(testLogger())
	today := day("2026-08-29")

	// Balance 1000, minimum 200, one planned payment of -900 three
	// days out, no spending history: projected 100, shortfall 100.
	planned := []models.Transaction{plannedTx(7, today.AddDate(0, 0, 3), "-900")}
	days := c.Project(dec("1000"), today, today.AddDate(0, 0, 9), planned, estimateOf("0"), today)

	risks := a.Assess(days, planned, settingsOf("200", 7), today)

	require.Len(t, risks, 1)
	assert.Equal(t, int64(7), risks[0].TransactionID)
	assert.True(t, risks[0].Date.Equal(today.AddDate(0, 0, 3)))
	assert.True(t, risks[0].ProjectedBalance.Equal(dec("100")))
	assert.True(t, risks[0].Shortfall.Equal(dec("100")))
}

func TestAssessSafePaymentsProduceNoRisks(t *testing.T) {
	t.Parallel()

	c := NewCalculator(testLogger())
	a := NewAssessor(testLogger())
	today := day("2026-08-29")

	planned := []models.Transaction{plannedTx(1, today.AddDate(0, 0, 2), "-100")}
	days := c.Project(dec("1000"), today, today.AddDate(0, 0, 9), planned, estimateOf("0"), today)

	risks := a.Assess(days, planned, settingsOf("200", 7), today)
	assert.Empty(t, risks)
}

func TestAssessRaisingThresholdOnlyAddsRisks(t *testing.T) {
	t.Parallel()

	c := NewCalculator(testLogger())
	a := NewAssessor(testLogger())
	today := day("2026-08-29")

	planned := []models.Transaction{
		plannedTx(1, today.AddDate(0, 0, 1), "-300"),
		plannedTx(2, today.AddDate(0, 0, 4), "-300"),
		plannedTx(3, today.AddDate(0, 0, 8), "-300"),
	}
	days := c.Project(dec("1000"), today, today.AddDate(0, 0, 9), planned, estimateOf("0"), today)

	lower := a.Assess(days, planned, settingsOf("150", 5), today)
	higher := a.Assess(days, planned, settingsOf("450", 5), today)

	flagged := make(map[int64]bool)
	for _, r := range higher {
		flagged[r.TransactionID] = true
	}
	for _, r := range lower {
		assert.True(t, flagged[r.TransactionID],
			"transaction %d flagged at the lower threshold must stay flagged at the higher one", r.TransactionID)
	}
	assert.Greater(t, len(higher), len(lower))
}

func TestAssessOrderingByDateThenID(t *testing.T) {
	t.Parallel()

	c := NewCalculator(testLogger())
	a := NewAssessor(testLogger())
	today := day("2026-08-29")

	planned := []models.Transaction{
		plannedTx(9, today.AddDate(0, 0, 2), "-400"),
		plannedTx(4, today.AddDate(0, 0, 2), "-400"),
		plannedTx(1, today.AddDate(0, 0, 5), "-100"),
	}
	days := c.Project(dec("500"), today, today.AddDate(0, 0, 9), planned, estimateOf("0"), today)

	risks := a.Assess(days, planned, settingsOf("100", 3), today)

	require.Len(t, risks, 3)
	assert.Equal(t, int64(4), risks[0].TransactionID)
	assert.Equal(t, int64(9), risks[1].TransactionID)
	assert.Equal(t, int64(1), risks[2].TransactionID)
	for i := 1; i < len(risks); i++ {
		assert.False(t, risks[i].Date.Before(risks[i-1].Date))
	}
}

func TestAssessSeverityMonotonicInShortfall(t *testing.T) {
	t.Parallel()

	c := NewCalculator(testLogger())
	a := NewAssessor(testLogger())
	today := day("2026-08-29")

	// Two payments far outside the buffer window, the second digging
	// much deeper below the threshold.
	planned := []models.Transaction{
		plannedTx(1, today.AddDate(0, 0, 20), "-150"),
		plannedTx(2, today.AddDate(0, 0, 25), "-900"),
	}
	days := c.Project(dec("330"), today, today.AddDate(0, 0, 29), planned, estimateOf("0"), today)

	risks := a.Assess(days, planned, settingsOf("200", 3), today)

	require.Len(t, risks, 2)
	assert.GreaterOrEqual(t, severityRank[risks[1].Severity], severityRank[risks[0].Severity],
		"deeper shortfall must never grade less urgent")
	assert.Equal(t, models.SeverityHigh, risks[1].Severity, "negative projected balance outside the buffer grades high")
}

func TestAssessSeverityBumpsInsideBufferWindow(t *testing.T) {
	t.Parallel()

	c := NewCalculator(testLogger())
	a := NewAssessor(testLogger())
	today := day("2026-08-29")

	near := []models.Transaction{plannedTx(1, today.AddDate(0, 0, 2), "-150")}
	far := []models.Transaction{plannedTx(1, today.AddDate(0, 0, 20), "-150")}

	nearDays := c.Project(dec("330"), today, today.AddDate(0, 0, 29), near, estimateOf("0"), today)
	farDays := c.Project(dec("330"), today, today.AddDate(0, 0, 29), far, estimateOf("0"), today)

	settings := settingsOf("200", 5)
	nearRisks := a.Assess(nearDays, near, settings, today)
	farRisks := a.Assess(farDays, far, settings, today)

	require.Len(t, nearRisks, 1)
	require.Len(t, farRisks, 1)
	assert.Greater(t, severityRank[nearRisks[0].Severity], severityRank[farRisks[0].Severity],
		"a risk inside the safety buffer must grade more urgent than the same risk further out")
}
