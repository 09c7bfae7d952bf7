package store

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinegraph/awards-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_ResolveOrCreateVenue_Existing(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT venue_id FROM venue WHERE LOWER\(venue_name\) = \$1 OR LOWER\(venue_name\) = \$2`).
		WithArgs("kodak theatre", "the kodak theatre").
		WillReturnRows(pgxmock.NewRows([]string{"venue_id"}).AddRow(int64(7)))

	id, created, err := s.ResolveOrCreateVenue(context.Background(), model.Venue{Name: "The Kodak Theatre"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ResolveOrCreateVenue_Creates(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT venue_id FROM venue`).
		WithArgs("dolby theatre", "the dolby theatre").
		WillReturnRows(pgxmock.NewRows([]string{"venue_id"}))
	mock.ExpectQuery(`INSERT INTO venue .* RETURNING venue_id`).
		WithArgs("Dolby Theatre", "Hollywood", "Los Angeles", "California", "U.S.").
		WillReturnRows(pgxmock.NewRows([]string{"venue_id"}).AddRow(int64(1)))

	id, created, err := s.ResolveOrCreateVenue(context.Background(), model.Venue{
		Name:         "Dolby Theatre",
		Neighborhood: "Hollywood",
		City:         "Los Angeles",
		State:        "California",
		Country:      "U.S.",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ResolveOrCreatePerson_ByBirthDate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT person_id FROM person WHERE first_name = \$1 AND last_name = \$2 AND birth_date = \$3`).
		WithArgs("Billy", "Crystal", "1948-03-14").
		WillReturnRows(pgxmock.NewRows([]string{"person_id"}).AddRow(int64(42)))

	id, created, err := s.ResolveOrCreatePerson(context.Background(), model.Person{
		First: "Billy", Last: "Crystal", BirthDate: "1948-03-14",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ResolveOrCreatePerson_NoBirthDateCreates(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT person_id FROM person WHERE first_name = \$1 AND last_name = \$2$`).
		WithArgs("Bob", "Hope").
		WillReturnRows(pgxmock.NewRows([]string{"person_id"}))
	mock.ExpectQuery(`INSERT INTO person .* RETURNING person_id`).
		WithArgs("Bob", nil, "Hope", nil, nil, nil).
		WillReturnRows(pgxmock.NewRows([]string{"person_id"}).AddRow(int64(9)))

	id, created, err := s.ResolveOrCreatePerson(context.Background(), model.Person{First: "Bob", Last: "Hope"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(9), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertEditionIfAbsent_Skips(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT award_edition_id FROM award_edition WHERE edition = \$1 AND venue_id = \$2 AND network = \$3`).
		WithArgs(97, int64(1), "ABC").
		WillReturnRows(pgxmock.NewRows([]string{"award_edition_id"}).AddRow(int64(3)))

	id, created, err := s.InsertEditionIfAbsent(context.Background(), model.AwardEdition{
		Edition: 97, VenueID: 1, Network: "ABC",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(3), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LinkEditionPerson_AlreadyPresent(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT 1 FROM award_edition_person`).
		WithArgs(int64(3), int64(42), int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))

	created, err := s.LinkEditionPerson(context.Background(), 3, 42, 5)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LinkMovieCrew_Creates(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT 1 FROM movie_crew`).
		WithArgs(int64(8), int64(42), int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}))
	mock.ExpectExec(`INSERT INTO movie_crew`).
		WithArgs(int64(8), int64(42), int64(5)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := s.LinkMovieCrew(context.Background(), 8, 42, 5)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ResolveOrCreateCategory_Normalizes(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT category_id FROM category WHERE category_name = \$1`).
		WithArgs("best picture").
		WillReturnRows(pgxmock.NewRows([]string{"category_id"}).AddRow(int64(2)))

	id, err := s.ResolveOrCreateCategory(context.Background(), "Best Picture[4]")
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}
