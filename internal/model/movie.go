package model

// Movie is a film referenced by a nomination or a best-picture row. A movie
// scraped from a page without an infobox is stored as a bare name; run time
// zero means unknown.
type Movie struct {
	ID          int64
	Name        string
	RunTime     int
	ReleaseDate []string
	Languages   []string
	Countries   []string
}

// ProductionCompany is deduped by exact name.
type ProductionCompany struct {
	ID   int64
	Name string
}

// CrewCredit is one resolved (person, role) pair attached to a movie.
type CrewCredit struct {
	PersonID   int64
	PositionID int64
	Role       string
}
