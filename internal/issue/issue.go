// Package issue accumulates structured validation findings during a
// conversion run. The tracker is a passive sink: builders and validators
// append Issues and record outcomes, reporting reads them back afterwards.
package issue

import "time"

// Severity of a validation finding.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Category classifies a finding. The set is closed: reporting groups and
// counts by these values, so builders must not invent new ones.
type Category string

const (
	MissingRequired   Category = "missing_required_field"
	MissingField      Category = "missing_field"
	InvalidFormat     Category = "invalid_format"
	InvalidValue      Category = "invalid_value"
	InvalidDate       Category = "invalid_date"
	TruncatedValue    Category = "truncated_value"
	StandardizedValue Category = "standardized_value"
	ProcessingError   Category = "processing_error"
	FileAccess        Category = "file_access"
	FileWrite         Category = "file_write"
)

// Issue is one validation finding. Issues are append-only: once added to a
// Tracker they are never mutated or removed.
type Issue struct {
	RecordID  string
	Severity  Severity
	Category  Category
	Field     string
	Message   string
	Timestamp time.Time
}

// Tracker collects Issues and per-record outcomes for one conversion run.
// It is owned by a single run and is not safe for concurrent use.
type Tracker struct {
	issues    []Issue
	counts    map[Severity]map[Category]int
	total     int
	succeeded int
	currentID string
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{counts: make(map[Severity]map[Category]int)}
}

// SetCurrentRecord notes the record subsequent findings belong to, for
// callers that add issues without threading the ID themselves.
func (t *Tracker) SetCurrentRecord(id string) { t.currentID = id }

// CurrentRecord returns the most recently set record ID.
func (t *Tracker) CurrentRecord() string { return t.currentID }

// Add appends one finding.
func (t *Tracker) Add(recordID string, sev Severity, cat Category, field, message string) {
	t.issues = append(t.issues, Issue{
		RecordID:  recordID,
		Severity:  sev,
		Category:  cat,
		Field:     field,
		Message:   message,
		Timestamp: time.Now(),
	})
	if t.counts[sev] == nil {
		t.counts[sev] = make(map[Category]int)
	}
	t.counts[sev][cat]++
}

// RecordProcessed counts one attempted record and whether it succeeded.
func (t *Tracker) RecordProcessed(success bool) {
	t.total++
	if success {
		t.succeeded++
	}
}

// Issues returns all findings in the order they were added.
func (t *Tracker) Issues() []Issue { return t.issues }

// Summary is the aggregate view consumed by reporting.
type Summary struct {
	TotalRecords       int
	SuccessfulRecords  int
	FailedRecords      int
	SuccessRate        float64
	ErrorCount         int
	WarningCount       int
	ErrorsByCategory   map[Category]int
	WarningsByCategory map[Category]int
}

// Summarize computes the aggregate view of the run so far.
func (t *Tracker) Summarize() Summary {
	s := Summary{
		TotalRecords:       t.total,
		SuccessfulRecords:  t.succeeded,
		FailedRecords:      t.total - t.succeeded,
		ErrorsByCategory:   make(map[Category]int),
		WarningsByCategory: make(map[Category]int),
	}
	if t.total > 0 {
		s.SuccessRate = float64(t.succeeded) / float64(t.total) * 100
	}
	for cat, n := range t.counts[SeverityError] {
		s.ErrorsByCategory[cat] = n
		s.ErrorCount += n
	}
	for cat, n := range t.counts[SeverityWarning] {
		s.WarningsByCategory[cat] = n
		s.WarningCount += n
	}
	return s
}
