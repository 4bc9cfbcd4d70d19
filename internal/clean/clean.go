// =============================================================================
// SBA Report Converter - Field Cleaners
// =============================================================================
//
// This package normalizes raw CRM cell values into the canonical forms the
// SBA reporting schemas expect: digits-only phone numbers, ISO dates,
// bounded percentages, plain numerics, and whitespace-cleaned free text.
//
// Every cleaner is total: blank input, the literal "nan" exported by the CRM,
// and unparsable garbage all resolve to a documented fallback instead of an
// error. The single exception is Percentage, which reports unparsable
// non-empty input as an error so callers can surface data corruption.
//
// =============================================================================

package clean

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultDateFormats is the ordered list of input layouts Date tries when
// the caller does not supply its own. Order matters: on ambiguous
// day/month collisions the first layout that parses wins.
var DefaultDateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
	"01/02/06",
	"02-01-2006",
	"2006/01/02",
	"06/01/02",
	"01-02-06",
}

var (
	nonDigitRe    = regexp.MustCompile(`\D`)
	looseISORe    = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})`)
	crmArtifactRe = regexp.MustCompile(`\[\w+\]:`)
	spaceRunRe    = regexp.MustCompile(`\s+`)
)

// IsBlank reports whether a raw cell value is effectively missing.
// The CRM export writes the literal string "nan" for empty cells.
func IsBlank(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || strings.EqualFold(t, "nan")
}

// Phone strips every non-digit character from a raw phone value.
//
//	"(515) 555-7890" -> "5155557890"
//	"+1 515.555.7890" -> "15155557890"
func Phone(raw string) string {
	if IsBlank(raw) {
		return ""
	}
	return nonDigitRe.ReplaceAllString(raw, "")
}

// Date parses a raw date against each layout in order and reformats the
// first successful parse as YYYY-MM-DD. If no layout matches, a lenient
// year-month-day pattern is attempted before giving up and returning def.
// A nil or empty formats slice means DefaultDateFormats.
func Date(raw string, formats []string, def string) string {
	if IsBlank(raw) {
		return def
	}
	s := strings.TrimSpace(raw)
	if len(formats) == 0 {
		formats = DefaultDateFormats
	}

	for _, layout := range formats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}

	// Fallback for unpadded ISO-ish dates such as "2024-5-7".
	if m := looseISORe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			// time.Date normalizes overflow (e.g. Feb 30); reject those.
			if int(t.Month()) == month && t.Day() == day {
				return t.Format("2006-01-02")
			}
		}
	}

	return def
}

// Percentage parses a raw value as a number and clamps it into [0,100].
// Blank input returns "0". Unparsable non-empty input is the one loud
// failure in this package: it signals corrupt source data, not ordinary
// missingness, and callers decide whether that ends the record or the run.
func Percentage(raw string) (string, error) {
	if IsBlank(raw) {
		return "0", nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", fmt.Errorf("invalid percentage value: %q", raw)
	}
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}

// Numeric parses a raw value as a number and renders it without a
// redundant trailing ".0". Unparsable or blank input becomes "".
func Numeric(raw string) string {
	if IsBlank(raw) {
		return ""
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SplitMulti splits a multi-value cell on delim, trimming each segment and
// dropping empties. Blank input yields a nil slice. The CRM delimits
// multi-select picklists with ";".
func SplitMulti(raw, delim string) []string {
	if IsBlank(raw) {
		return nil
	}
	if delim == "" {
		delim = ";"
	}
	var out []string
	for _, part := range strings.Split(raw, delim) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Whitespace collapses runs of spaces per line, drops blank lines, strips
// bracketed CRM artifacts like "[User]:", and rejoins with single newlines.
func Whitespace(raw string) string {
	if IsBlank(raw) {
		return ""
	}
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = crmArtifactRe.ReplaceAllString(line, "")
		line = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// Truncate cleans whitespace and, if the result is still over max, cuts at
// the last sentence boundary within the limit, then the last space, then
// hard at max. Idempotent: truncating an already-truncated value is a no-op.
func Truncate(raw string, max int) string {
	cleaned := Whitespace(raw)
	if len(cleaned) <= max {
		return cleaned
	}

	// Back the cut off to a rune boundary so multibyte text is never
	// severed into invalid UTF-8.
	cut := max
	for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
		cut--
	}
	head := cleaned[:cut]
	boundary := -1
	for _, b := range []string{".", "!", "?", "\n"} {
		if pos := strings.LastIndex(head, b); pos > boundary {
			boundary = pos
		}
	}
	if boundary > 0 {
		return cleaned[:boundary+1]
	}
	if pos := strings.LastIndex(head, " "); pos > 0 {
		return cleaned[:pos]
	}
	return head
}

// GenderToSex maps free-text gender values onto the two values the schema
// accepts. Anything else (non-binary, declined, blank) returns "" and the
// caller omits the element.
func GenderToSex(raw string) string {
	if IsBlank(raw) {
		return ""
	}
	g := strings.ToLower(raw)
	switch {
	case strings.Contains(g, "female"):
		return "Female"
	case strings.Contains(g, "male"):
		return "Male"
	}
	return ""
}
