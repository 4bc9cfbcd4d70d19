package convert

import (
	"fmt"
	"strings"
	"time"

	"github.com/wbciowa/sba-converter/internal/clean"
	"github.com/wbciowa/sba-converter/internal/issue"
	"github.com/wbciowa/sba-converter/internal/reader"
)

// validateCounselingRecord decides whether a counseling row is processable
// at all. Only a missing primary identifier rejects the row; everything
// else is advisory and lands in the tracker without blocking emission.
func validateCounselingRecord(ctx *Context, row reader.Row, rowIndex int) bool {
	required := ctx.Cfg.Counseling.RequiredField
	recordID := row.Get(required)
	if recordID == "" {
		ctx.Tracker.Add(fmt.Sprintf("Row_%d", rowIndex), issue.SeverityError,
			issue.MissingRequired, required, "Missing required Contact ID.")
		return false
	}
	ctx.Tracker.SetCurrentRecord(recordID)

	if row.Get("Last Name") == "" {
		ctx.Tracker.Add(recordID, issue.SeverityWarning, issue.MissingField,
			"Last Name", "Missing Last Name.")
	}

	if email := row.Get("Email"); email != "" && !strings.Contains(email, "@") {
		ctx.Tracker.Add(recordID, issue.SeverityWarning, issue.InvalidFormat,
			"Email", fmt.Sprintf("Invalid email format: %s", email))
	}

	if raw := row.Get("Date"); raw != "" {
		formatted := clean.Date(raw, nil, "")
		switch {
		case formatted == "":
			ctx.Tracker.Add(recordID, issue.SeverityWarning, issue.InvalidFormat,
				"Date Counseled", fmt.Sprintf("Invalid date format: %s", raw))
		case !counselingDateValid(formatted, ctx.Cfg.Counseling.MinDate):
			ctx.Tracker.Add(recordID, issue.SeverityWarning, issue.InvalidDate,
				"Date Counseled",
				fmt.Sprintf("Date %s is before minimum of %s", formatted, ctx.Cfg.Counseling.MinDate))
		}
	}

	return true
}

// validateTrainingRecord rejects a training row only when its event
// identifier is empty; such rows are excluded from grouping entirely.
func validateTrainingRecord(ctx *Context, row reader.Row, rowIndex int) bool {
	required := ctx.Cfg.Training.RequiredField
	eventID := row.Get(required)
	if eventID == "" {
		ctx.Tracker.Add(fmt.Sprintf("Row_%d", rowIndex), issue.SeverityError,
			issue.MissingRequired, required, "Missing required Class/Event ID.")
		return false
	}
	ctx.Tracker.SetCurrentRecord(eventID)
	return true
}

// counselingDateValid reports whether an already-ISO date is on or after
// the configured floor. Unparsable values are invalid; blanks are fine.
func counselingDateValid(isoDate, minDate string) bool {
	if isoDate == "" {
		return true
	}
	d, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return false
	}
	floor, err := time.Parse("2006-01-02", minDate)
	if err != nil {
		return true
	}
	return !d.Before(floor)
}

// CounselingAnalysis summarizes a pre-flight scan of a counseling extract.
type CounselingAnalysis struct {
	RowCount         int
	MissingContactID int
	MissingNames     int
	InvalidDates     int
}

// AnalyzeCounseling scans an extract for the problems that most often ruin
// a submission, without converting anything.
func AnalyzeCounseling(t *reader.Table, requiredField string) CounselingAnalysis {
	a := CounselingAnalysis{RowCount: len(t.Rows)}
	for _, row := range t.Rows {
		if row.Get(requiredField) == "" {
			a.MissingContactID++
		}
		if row.Get("Last Name") == "" || row.Get("First Name") == "" {
			a.MissingNames++
		}
		if raw := row.Get("Date"); raw != "" && clean.Date(raw, nil, "") == "" {
			a.InvalidDates++
		}
	}
	return a
}

// TrainingAnalysis summarizes a pre-flight scan of a training extract.
type TrainingAnalysis struct {
	RowCount       int
	MissingEventID int
}

// AnalyzeTraining scans a training extract for rows that would be dropped.
func AnalyzeTraining(t *reader.Table, requiredField string) TrainingAnalysis {
	a := TrainingAnalysis{RowCount: len(t.Rows)}
	for _, row := range t.Rows {
		if row.Get(requiredField) == "" {
			a.MissingEventID++
		}
	}
	return a
}
