package model

import "strings"

// AwardEdition is one numbered ceremony. The idempotency key is
// (edition, venue_id, network); Date is ISO YYYY-MM-DD.
type AwardEdition struct {
	ID       int64
	Edition  int
	Year     int
	Date     string
	VenueID  int64
	Duration int
	Network  string
}

// Position is a role title ("Director", "Host", "Star"). Small fixed
// vocabulary in practice, deduped by exact title.
type Position struct {
	ID    int64
	Title string
}

// Category is one award category within an edition's nomination table.
type Category struct {
	ID   int64
	Name string
}

// Nomination links a movie to a category within an edition. Won marks the
// category winner; there is no natural key, duplicates are possible by
// design when a ceremony is re-processed without the edition guard.
type Nomination struct {
	ID         int64
	EditionID  int64
	MovieID    int64
	CategoryID int64
	Won        bool
}

// NormalizedCategory lower-cases a category label and strips bracketed
// citation markers left over from the table cell.
func NormalizedCategory(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for {
		open := strings.Index(name, "[")
		if open < 0 {
			break
		}
		close := strings.Index(name[open:], "]")
		if close < 0 {
			name = name[:open]
			break
		}
		name = name[:open] + name[open+close+1:]
	}
	return strings.TrimSpace(name)
}
