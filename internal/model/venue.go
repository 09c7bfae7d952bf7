package model

import (
	"regexp"
	"strings"
)

// Venue is a physical ceremony location. Neighborhood, city and state are
// optional; classification fills in California/U.S. defaults for early
// editions that never left Los Angeles.
type Venue struct {
	ID           int64
	Name         string
	Neighborhood string
	City         string
	State        string
	Country      string
}

var leadingTheRe = regexp.MustCompile(`(?i)^the\s+`)

// NormalizedVenueName strips a leading "the " and lower-cases the name.
// "The Kodak Theatre" and "Kodak Theatre" dedup to the same venue.
func NormalizedVenueName(name string) string {
	return strings.ToLower(leadingTheRe.ReplaceAllString(strings.TrimSpace(name), ""))
}
