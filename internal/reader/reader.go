// =============================================================================
// SBA Report Converter - Input Readers
// =============================================================================
//
// This package reads tabular CRM extracts into header-keyed rows. CSV is the
// primary format (UTF-8, BOM-tolerant, first row is the header); XLSX
// workbooks exported by the same CRM are accepted as a convenience and read
// through excelize.
//
// Column presence and order are not fixed across exports, so downstream code
// looks fields up by name and treats a missing column exactly like an empty
// cell. Row.Get encodes that contract.
//
// =============================================================================

package reader

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one input record keyed by header name. An absent column reads
// the same as an empty cell.
type Row map[string]string

// Get returns the trimmed value for the first of the given column names
// that has a non-blank value. This is how builders consume the historical
// header variants the CRM has used over time.
func (r Row) Get(columns ...string) string {
	for _, col := range columns {
		if v, ok := r[col]; ok {
			if t := strings.TrimSpace(v); t != "" && !strings.EqualFold(t, "nan") {
				return t
			}
		}
	}
	return ""
}

// GetOr is Get with a fallback for when every candidate column is blank.
func (r Row) GetOr(def string, columns ...string) string {
	if v := r.Get(columns...); v != "" {
		return v
	}
	return def
}

// Table is a fully read input file.
type Table struct {
	Headers []string
	Rows    []Row
	Source  string
}

// HasColumn reports whether the input carried the named header.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Read dispatches on the file extension: .xlsx goes through excelize,
// everything else is treated as CSV.
func Read(path string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path)
	}
	return ReadCSV(path)
}

// ReadCSV reads an entire CSV file into memory. The first row is the
// header; a UTF-8 BOM on the first header cell is stripped.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV file: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(bufio.NewReader(f))
	cr.FieldsPerRecord = -1 // ragged exports happen; pad short rows below

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file %s is empty", path)
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	t := &Table{Headers: headers, Source: path}
	for _, rec := range records[1:] {
		t.Rows = append(t.Rows, rowFromRecord(headers, rec))
	}
	return t, nil
}

// ReadXLSX reads the first sheet of a workbook; the first row is the header.
func ReadXLSX(path string) (*Table, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX file: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file %s has no sheets", path)
	}
	records, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("XLSX file %s is empty", path)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	t := &Table{Headers: headers, Source: path}
	for _, rec := range records[1:] {
		t.Rows = append(t.Rows, rowFromRecord(headers, rec))
	}
	return t, nil
}

func rowFromRecord(headers, rec []string) Row {
	row := make(Row, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if i < len(rec) {
			row[h] = rec[i]
		} else {
			row[h] = ""
		}
	}
	return row
}
