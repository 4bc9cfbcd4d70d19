// Package report renders the outcome of a conversion run for humans and
// spreadsheets: a console summary grouped by severity and category, and a
// flat CSV export of every issue for partner follow-up.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/wbciowa/sba-converter/internal/issue"
	"github.com/wbciowa/sba-converter/pkg/fileutil"
)

// WriteSummary prints the run summary to w.
func WriteSummary(w io.Writer, s issue.Summary) {
	line := "=================================================="
	fmt.Fprintln(w)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "VALIDATION SUMMARY")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Total records processed: %d\n", s.TotalRecords)
	fmt.Fprintf(w, "Successfully processed: %d (%.1f%%)\n", s.SuccessfulRecords, s.SuccessRate)
	fmt.Fprintf(w, "Failed records: %d\n", s.FailedRecords)
	fmt.Fprintln(w, "\nIssue Summary:")
	fmt.Fprintf(w, "  Errors: %d\n", s.ErrorCount)
	fmt.Fprintf(w, "  Warnings: %d\n", s.WarningCount)

	if len(s.ErrorsByCategory) > 0 {
		fmt.Fprintln(w, "\nErrors by category:")
		writeCategoryCounts(w, s.ErrorsByCategory)
	}
	if len(s.WarningsByCategory) > 0 {
		fmt.Fprintln(w, "\nWarnings by category:")
		writeCategoryCounts(w, s.WarningsByCategory)
	}
	fmt.Fprintln(w, line)
}

// writeCategoryCounts prints categories by descending count, breaking ties
// by name so output is stable.
func writeCategoryCounts(w io.Writer, counts map[issue.Category]int) {
	type entry struct {
		cat issue.Category
		n   int
	}
	entries := make([]entry, 0, len(counts))
	for cat, n := range counts {
		entries = append(entries, entry{cat, n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].n != entries[j].n {
			return entries[i].n > entries[j].n
		}
		return entries[i].cat < entries[j].cat
	})
	for _, e := range entries {
		fmt.Fprintf(w, "  %s: %d\n", e.cat, e.n)
	}
}

// SaveIssuesCSV writes every issue to a uniquely named CSV file in dir and
// returns its path. No issues means no file and an empty path.
func SaveIssuesCSV(dir string, issues []issue.Issue) (string, error) {
	if len(issues) == 0 {
		return "", nil
	}
	if err := fileutil.EnsureDir(dir); err != nil {
		return "", err
	}

	path := fileutil.IssueReportPath(dir)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating issue report: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"record_id", "severity", "category", "field_name", "message", "timestamp"}); err != nil {
		return "", fmt.Errorf("writing issue report header: %w", err)
	}
	for _, is := range issues {
		rec := []string{
			is.RecordID,
			string(is.Severity),
			string(is.Category),
			is.Field,
			is.Message,
			is.Timestamp.Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return "", fmt.Errorf("writing issue report row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flushing issue report %s: %w", path, err)
	}
	return path, nil
}
