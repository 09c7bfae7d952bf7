package segment

import (
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

var parenRe = regexp.MustCompile(`\(.*?\)`)

// dateLayouts are tried in order. Commas are removed before parsing, so
// "May 16, 1929" parses under the second layout. The month-year layout
// defaults the day to the first of the month.
var dateLayouts = []string{
	"2 January 2006",
	"January 2 2006",
	"January 2006",
}

// Date normalizes a free-text date to ISO YYYY-MM-DD. Bracketed and
// parenthesised content, commas and extra whitespace are stripped before
// the layout list is attempted.
func Date(raw string) (string, error) {
	clean := bracketRe.ReplaceAllString(raw, "")
	clean = strings.ReplaceAll(strings.Join(strings.Fields(clean), " "), ",", "")
	clean = strings.TrimSpace(parenRe.ReplaceAllString(clean, ""))

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", eris.Errorf("segment: unparseable date %q", raw)
}

// NormalizeISODate widens a partial ISO date: a bare year becomes
// YYYY-01-01 and a year-month becomes YYYY-MM-01. Full dates and anything
// unrecognized pass through unchanged.
func NormalizeISODate(date string) string {
	date = strings.TrimSpace(date)
	switch len(date) {
	case 4:
		if _, err := time.Parse("2006", date); err == nil {
			return date + "-01-01"
		}
	case 7:
		if _, err := time.Parse("2006-01", date); err == nil {
			return date + "-01"
		}
	}
	return date
}
