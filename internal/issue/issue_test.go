package issue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerAdd(t *testing.T) {
	tr := NewTracker()
	tr.Add("C-001", SeverityError, MissingRequired, "Contact ID", "missing required field")
	tr.Add("C-002", SeverityWarning, InvalidFormat, "Zip", "zip does not start with 5 digits")

	issues := tr.Issues()
	require.Len(t, issues, 2)
	assert.Equal(t, "C-001", issues[0].RecordID)
	assert.Equal(t, MissingRequired, issues[0].Category)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.False(t, issues[0].Timestamp.IsZero())
	assert.Equal(t, InvalidFormat, issues[1].Category)
}

func TestTrackerCurrentRecord(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, "", tr.CurrentRecord())
	tr.SetCurrentRecord("T-42")
	assert.Equal(t, "T-42", tr.CurrentRecord())
}

func TestSummarize(t *testing.T) {
	tr := NewTracker()
	tr.RecordProcessed(true)
	tr.RecordProcessed(true)
	tr.RecordProcessed(true)
	tr.RecordProcessed(false)
	tr.Add("r1", SeverityError, MissingRequired, "Contact ID", "missing")
	tr.Add("r2", SeverityError, InvalidValue, "LegalEntity", "no data")
	tr.Add("r2", SeverityError, InvalidValue, "FIPS_Code", "no data")
	tr.Add("r3", SeverityWarning, TruncatedValue, "Notes", "truncated")
	tr.Add("r3", SeverityInfo, StandardizedValue, "Topic", "defaulted")

	s := tr.Summarize()
	assert.Equal(t, 4, s.TotalRecords)
	assert.Equal(t, 3, s.SuccessfulRecords)
	assert.Equal(t, 1, s.FailedRecords)
	assert.InDelta(t, 75.0, s.SuccessRate, 0.001)
	assert.Equal(t, 3, s.ErrorCount)
	assert.Equal(t, 1, s.WarningCount)
	assert.Equal(t, 2, s.ErrorsByCategory[InvalidValue])
	assert.Equal(t, 1, s.ErrorsByCategory[MissingRequired])
	assert.Equal(t, 1, s.WarningsByCategory[TruncatedValue])
	assert.NotContains(t, s.WarningsByCategory, StandardizedValue)
}

func TestSummarizeEmpty(t *testing.T) {
	s := NewTracker().Summarize()
	assert.Equal(t, 0, s.TotalRecords)
	assert.Equal(t, 0.0, s.SuccessRate)
	assert.Empty(t, s.ErrorsByCategory)
}
