// Package store persists extracted entities. Every operation is an
// idempotent resolve-or-create: a read by the entity's dedup key followed
// by an insert only when the read comes back empty. There is no merge; an
// entity is never mutated after creation, growth happens only through new
// link rows.
package store

import (
	"context"

	"github.com/cinegraph/awards-cli/internal/model"
)

// Store is the persistence interface for the extraction pipeline.
type Store interface {
	// Entities. The bool reports whether a new row was created.
	ResolveOrCreateVenue(ctx context.Context, v model.Venue) (int64, bool, error)
	FindVenueByName(ctx context.Context, name string) (int64, bool, error)
	ResolveOrCreatePerson(ctx context.Context, p model.Person) (int64, bool, error)
	ResolveOrCreateMovie(ctx context.Context, m model.Movie) (int64, bool, error)
	ResolveOrCreateCompany(ctx context.Context, name string) (int64, error)
	ResolveOrCreatePosition(ctx context.Context, title string) (int64, error)
	ResolveOrCreateCategory(ctx context.Context, name string) (int64, error)

	// Editions. Idempotency key is (edition, venue_id, network).
	EditionExists(ctx context.Context, edition int) (bool, error)
	FindEditionByNumber(ctx context.Context, edition int) (int64, bool, error)
	InsertEditionIfAbsent(ctx context.Context, e model.AwardEdition) (int64, bool, error)

	// Nominations have no natural key; duplicates are possible by design.
	InsertNomination(ctx context.Context, n model.Nomination) (int64, error)

	// Link rows, created only when the full composite is absent.
	LinkEditionPerson(ctx context.Context, editionID, personID, positionID int64) (bool, error)
	LinkMovieCrew(ctx context.Context, movieID, personID, positionID int64) (bool, error)
	LinkNominationPerson(ctx context.Context, nominationID, personID int64) (bool, error)
	LinkMovieCompany(ctx context.Context, movieID, companyID int64) (bool, error)
	LinkMovieReleaseDate(ctx context.Context, movieID int64, date string) (bool, error)
	LinkMovieLanguage(ctx context.Context, movieID int64, language string) (bool, error)
	LinkMovieCountry(ctx context.Context, movieID int64, country string) (bool, error)

	// Lifecycle.
	Counts(ctx context.Context) (map[string]int64, error)
	Editions(ctx context.Context) ([]model.AwardEdition, error)
	Migrate(ctx context.Context) error
	Close() error
}

// countTables lists the tables reported by Counts, shared by both backends.
var countTables = []string{
	"venue",
	"person",
	"movie",
	"production_company",
	"positions",
	"category",
	"award_edition",
	"nomination",
	"award_edition_person",
	"movie_crew",
	"nomination_person",
}
