package model

// Person is an individual credited on an edition or a film. Dates are ISO
// YYYY-MM-DD strings; partial dates are normalized before they reach the
// store (year-only becomes YYYY-01-01), and an empty string means unknown.
type Person struct {
	ID           int64
	First        string
	Middle       string
	Last         string
	BirthDate    string
	BirthCountry string
	DeathDate    string
}

// BirthRecord carries the biography facts scraped from a person's own page.
// All fields may be empty when the page was missing or unparseable.
type BirthRecord struct {
	BirthDate    string
	BirthCountry string
	DeathDate    string
}

// NameParts is an ordered list of name tokens as segmented from a cell.
type NameParts []string

// First returns the leading name token, or "".
func (n NameParts) First() string {
	if len(n) == 0 {
		return ""
	}
	return n[0]
}

// Middle returns the middle token only for exactly three parts; longer
// names keep everything between first and last out of the record.
func (n NameParts) Middle() string {
	if len(n) == 3 {
		return n[1]
	}
	return ""
}

// Last returns the final name token, or "" for single-token names.
func (n NameParts) Last() string {
	if len(n) < 2 {
		return ""
	}
	return n[len(n)-1]
}

// Person builds a Person row from the parts plus scraped biography facts.
func (n NameParts) Person(rec BirthRecord) Person {
	return Person{
		First:        n.First(),
		Middle:       n.Middle(),
		Last:         n.Last(),
		BirthDate:    rec.BirthDate,
		BirthCountry: rec.BirthCountry,
		DeathDate:    rec.DeathDate,
	}
}
