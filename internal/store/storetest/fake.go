// Package storetest provides an in-memory Store for unit tests, recording
// every write in order so tests can assert persistence sequencing.
package storetest

import (
	"context"
	"fmt"

	"github.com/cinegraph/awards-cli/internal/model"
)

// Fake is an in-memory store.Store. Not safe for concurrent use.
type Fake struct {
	Calls []string // ordered log of mutating operations

	Venues      map[int64]model.Venue
	Persons     map[int64]model.Person
	Movies      map[int64]model.Movie
	Companies   map[int64]string
	Positions   map[int64]string
	Categories  map[int64]string
	EditionRows map[int64]model.AwardEdition
	Nominations map[int64]model.Nomination

	editionPersons    map[string]bool
	movieCrew         map[string]bool
	nominationPersons map[string]bool
	movieCompanies    map[string]bool
	movieDates        map[string]bool
	movieLanguages    map[string]bool
	movieCountries    map[string]bool

	nextID int64
}

// New creates an empty Fake.
func New() *Fake {
	return &Fake{
		Venues:            make(map[int64]model.Venue),
		Persons:           make(map[int64]model.Person),
		Movies:            make(map[int64]model.Movie),
		Companies:         make(map[int64]string),
		Positions:         make(map[int64]string),
		Categories:        make(map[int64]string),
		EditionRows:       make(map[int64]model.AwardEdition),
		Nominations:       make(map[int64]model.Nomination),
		editionPersons:    make(map[string]bool),
		movieCrew:         make(map[string]bool),
		nominationPersons: make(map[string]bool),
		movieCompanies:    make(map[string]bool),
		movieDates:        make(map[string]bool),
		movieLanguages:    make(map[string]bool),
		movieCountries:    make(map[string]bool),
	}
}

func (f *Fake) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *Fake) record(format string, args ...any) {
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
}

func (f *Fake) FindVenueByName(_ context.Context, name string) (int64, bool, error) {
	norm := model.NormalizedVenueName(name)
	for id, v := range f.Venues {
		if model.NormalizedVenueName(v.Name) == norm {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (f *Fake) ResolveOrCreateVenue(ctx context.Context, v model.Venue) (int64, bool, error) {
	if id, found, _ := f.FindVenueByName(ctx, v.Name); found {
		return id, false, nil
	}
	id := f.id()
	f.Venues[id] = v
	f.record("venue:%s", v.Name)
	return id, true, nil
}

func (f *Fake) ResolveOrCreatePerson(_ context.Context, p model.Person) (int64, bool, error) {
	for id, existing := range f.Persons {
		if existing.First != p.First || existing.Last != p.Last {
			continue
		}
		if p.BirthDate == "" || existing.BirthDate == p.BirthDate {
			return id, false, nil
		}
	}
	id := f.id()
	f.Persons[id] = p
	f.record("person:%s %s", p.First, p.Last)
	return id, true, nil
}

func (f *Fake) ResolveOrCreateMovie(_ context.Context, m model.Movie) (int64, bool, error) {
	for id, existing := range f.Movies {
		if existing.Name == m.Name {
			return id, false, nil
		}
	}
	id := f.id()
	f.Movies[id] = m
	f.record("movie:%s", m.Name)
	return id, true, nil
}

func (f *Fake) ResolveOrCreateCompany(_ context.Context, name string) (int64, error) {
	for id, existing := range f.Companies {
		if existing == name {
			return id, nil
		}
	}
	id := f.id()
	f.Companies[id] = name
	f.record("company:%s", name)
	return id, nil
}

func (f *Fake) ResolveOrCreatePosition(_ context.Context, title string) (int64, error) {
	for id, existing := range f.Positions {
		if existing == title {
			return id, nil
		}
	}
	id := f.id()
	f.Positions[id] = title
	f.record("position:%s", title)
	return id, nil
}

func (f *Fake) ResolveOrCreateCategory(_ context.Context, name string) (int64, error) {
	name = model.NormalizedCategory(name)
	for id, existing := range f.Categories {
		if existing == name {
			return id, nil
		}
	}
	id := f.id()
	f.Categories[id] = name
	f.record("category:%s", name)
	return id, nil
}

func (f *Fake) EditionExists(_ context.Context, edition int) (bool, error) {
	for _, e := range f.EditionRows {
		if e.Edition == edition {
			return true, nil
		}
	}
	return false, nil
}

func (f *Fake) FindEditionByNumber(_ context.Context, edition int) (int64, bool, error) {
	for id, e := range f.EditionRows {
		if e.Edition == edition {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (f *Fake) InsertEditionIfAbsent(_ context.Context, e model.AwardEdition) (int64, bool, error) {
	for id, existing := range f.EditionRows {
		if existing.Edition == e.Edition && existing.VenueID == e.VenueID && existing.Network == e.Network {
			return id, false, nil
		}
	}
	id := f.id()
	f.EditionRows[id] = e
	f.record("edition:%d", e.Edition)
	return id, true, nil
}

func (f *Fake) InsertNomination(_ context.Context, n model.Nomination) (int64, error) {
	id := f.id()
	f.Nominations[id] = n
	f.record("nomination:movie=%d,won=%t", n.MovieID, n.Won)
	return id, nil
}

func (f *Fake) link(set map[string]bool, format string, args ...any) (bool, error) {
	key := fmt.Sprintf(format, args...)
	if set[key] {
		return false, nil
	}
	set[key] = true
	f.record("%s", key)
	return true, nil
}

func (f *Fake) LinkEditionPerson(_ context.Context, editionID, personID, positionID int64) (bool, error) {
	return f.link(f.editionPersons, "edition_person:%d/%d/%d", editionID, personID, positionID)
}

func (f *Fake) LinkMovieCrew(_ context.Context, movieID, personID, positionID int64) (bool, error) {
	return f.link(f.movieCrew, "movie_crew:%d/%d/%d", movieID, personID, positionID)
}

func (f *Fake) LinkNominationPerson(_ context.Context, nominationID, personID int64) (bool, error) {
	return f.link(f.nominationPersons, "nomination_person:%d/%d", nominationID, personID)
}

func (f *Fake) LinkMovieCompany(_ context.Context, movieID, companyID int64) (bool, error) {
	return f.link(f.movieCompanies, "movie_company:%d/%d", movieID, companyID)
}

func (f *Fake) LinkMovieReleaseDate(_ context.Context, movieID int64, date string) (bool, error) {
	return f.link(f.movieDates, "movie_release:%d/%s", movieID, date)
}

func (f *Fake) LinkMovieLanguage(_ context.Context, movieID int64, language string) (bool, error) {
	return f.link(f.movieLanguages, "movie_language:%d/%s", movieID, language)
}

func (f *Fake) LinkMovieCountry(_ context.Context, movieID int64, country string) (bool, error) {
	return f.link(f.movieCountries, "movie_country:%d/%s", movieID, country)
}

func (f *Fake) Counts(context.Context) (map[string]int64, error) {
	return map[string]int64{
		"venue":         int64(len(f.Venues)),
		"person":        int64(len(f.Persons)),
		"movie":         int64(len(f.Movies)),
		"award_edition": int64(len(f.EditionRows)),
		"nomination":    int64(len(f.Nominations)),
	}, nil
}

func (f *Fake) Editions(context.Context) ([]model.AwardEdition, error) {
	var editions []model.AwardEdition
	for id, e := range f.EditionRows {
		e.ID = id
		editions = append(editions, e)
	}
	return editions, nil
}

func (f *Fake) Migrate(context.Context) error { return nil }
func (f *Fake) Close() error                  { return nil }
