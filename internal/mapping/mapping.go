// Package mapping translates free-form CRM text into the fixed enumerations
// the reporting schemas accept. A Table is an ordered synonym list with a
// first-match-wins lookup; unmatched values degrade to the caller's default
// rather than failing the record.
package mapping

import (
	"strings"

	"github.com/wbciowa/sba-converter/internal/clean"
)

// Entry is one (synonym, canonical value) pair in a Table.
type Entry struct {
	Key   string
	Value string
}

// Table is an ordered set of synonym entries. Order is significant: the
// first matching entry wins, so broader synonyms should come later.
type Table []Entry

// Lookup returns the canonical value for raw, or def when raw is blank or
// matches no entry. Matching folds case unless caseSensitive is set.
func (t Table) Lookup(raw, def string, caseSensitive bool) string {
	if clean.IsBlank(raw) {
		return def
	}
	s := strings.TrimSpace(raw)
	for _, e := range t {
		if caseSensitive {
			if e.Key == s {
				return e.Value
			}
		} else if strings.EqualFold(e.Key, s) {
			return e.Value
		}
	}
	return def
}

// Map is the package-level convenience with case folding on, the common
// case for schema enumeration fields.
func Map(raw string, t Table, def string) string {
	return t.Lookup(raw, def, false)
}
