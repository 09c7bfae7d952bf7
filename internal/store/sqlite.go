package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/cinegraph/awards-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Useful for local
// runs without a Postgres instance.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS venue (
	venue_id     INTEGER PRIMARY KEY AUTOINCREMENT,
	venue_name   TEXT NOT NULL,
	neighborhood TEXT,
	city         TEXT,
	state        TEXT,
	country      TEXT
);

CREATE TABLE IF NOT EXISTS person (
	person_id     INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name    TEXT NOT NULL,
	middle_name   TEXT,
	last_name     TEXT,
	birth_date    TEXT,
	birth_country TEXT,
	death_date    TEXT
);

CREATE TABLE IF NOT EXISTS movie (
	movie_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	movie_name TEXT NOT NULL,
	run_time   INTEGER
);

CREATE TABLE IF NOT EXISTS production_company (
	company_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	company_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	position_id INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS category (
	category_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	category_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS award_edition (
	award_edition_id INTEGER PRIMARY KEY AUTOINCREMENT,
	edition          INTEGER NOT NULL,
	award_year       INTEGER,
	ceremony_date    TEXT,
	venue_id         INTEGER REFERENCES venue(venue_id),
	duration         INTEGER,
	network          TEXT
);

CREATE TABLE IF NOT EXISTS nomination (
	nomination_id    INTEGER PRIMARY KEY AUTOINCREMENT,
	award_edition_id INTEGER REFERENCES award_edition(award_edition_id),
	movie_id         INTEGER REFERENCES movie(movie_id),
	category_id      INTEGER REFERENCES category(category_id),
	won              INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS award_edition_person (
	award_edition_id INTEGER NOT NULL REFERENCES award_edition(award_edition_id),
	person_id        INTEGER NOT NULL REFERENCES person(person_id),
	position_id      INTEGER NOT NULL REFERENCES positions(position_id)
);

CREATE TABLE IF NOT EXISTS movie_crew (
	movie_id    INTEGER NOT NULL REFERENCES movie(movie_id),
	person_id   INTEGER NOT NULL REFERENCES person(person_id),
	position_id INTEGER NOT NULL REFERENCES positions(position_id)
);

CREATE TABLE IF NOT EXISTS nomination_person (
	nomination_id INTEGER NOT NULL REFERENCES nomination(nomination_id),
	person_id     INTEGER NOT NULL REFERENCES person(person_id)
);

CREATE TABLE IF NOT EXISTS movie_produced_by (
	movie_id   INTEGER NOT NULL REFERENCES movie(movie_id),
	company_id INTEGER NOT NULL REFERENCES production_company(company_id)
);

CREATE TABLE IF NOT EXISTS movie_release_date (
	movie_id     INTEGER NOT NULL REFERENCES movie(movie_id),
	release_date TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS movie_language (
	movie_id INTEGER NOT NULL REFERENCES movie(movie_id),
	language TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS movie_country (
	movie_id INTEGER NOT NULL REFERENCES movie(movie_id),
	country  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_person_name ON person(first_name, last_name);
CREATE INDEX IF NOT EXISTS idx_movie_name ON movie(movie_name);
CREATE INDEX IF NOT EXISTS idx_award_edition_edition ON award_edition(edition);
`

// Migrate applies the schema. Idempotent.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) queryID(ctx context.Context, query string, args ...any) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (s *SQLiteStore) insertID(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) FindVenueByName(ctx context.Context, name string) (int64, bool, error) {
	norm := model.NormalizedVenueName(name)
	id, found, err := s.queryID(ctx,
		`SELECT venue_id FROM venue WHERE LOWER(venue_name) = ? OR LOWER(venue_name) = ?`,
		norm, "the "+norm,
	)
	if err != nil {
		return 0, false, eris.Wrapf(err, "sqlite: find venue %q", name)
	}
	return id, found, nil
}

func (s *SQLiteStore) ResolveOrCreateVenue(ctx context.Context, v model.Venue) (int64, bool, error) {
	if id, found, err := s.FindVenueByName(ctx, v.Name); err != nil || found {
		return id, false, err
	}
	id, err := s.insertID(ctx,
		`INSERT INTO venue (venue_name, neighborhood, city, state, country) VALUES (?, ?, ?, ?, ?)`,
		v.Name, nullable(v.Neighborhood), nullable(v.City), nullable(v.State), nullable(v.Country),
	)
	if err != nil {
		return 0, false, eris.Wrapf(err, "sqlite: insert venue %q", v.Name)
	}
	return id, true, nil
}

func (s *SQLiteStore) ResolveOrCreatePerson(ctx context.Context, p model.Person) (int64, bool, error) {
	var (
		id    int64
		found bool
		err   error
	)
	if p.BirthDate != "" {
		id, found, err = s.queryID(ctx,
			`SELECT person_id FROM person WHERE first_name = ? AND last_name = ? AND birth_date = ?`,
			p.First, p.Last, p.BirthDate,
		)
	} else {
		id, found, err = s.queryID(ctx,
			`SELECT person_id FROM person WHERE first_name = ? AND last_name = ?`,
			p.First, p.Last,
		)
	}
	if err != nil {
		return 0, false, eris.Wrapf(err, "sqlite: find person %s %s", p.First, p.Last)
	}
	if found {
		return id, false, nil
	}

	id, err = s.insertID(ctx,
		`INSERT INTO person (first_name, middle_name, last_name, birth_date, birth_country, death_date) VALUES (?, ?, ?, ?, ?, ?)`,
		p.First, nullable(p.Middle), nullable(p.Last), nullable(p.BirthDate), nullable(p.BirthCountry), nullable(p.DeathDate),
	)
	if err != nil {
		return 0, false, eris.Wrapf(err, "sqlite: insert person %s %s", p.First, p.Last)
	}
	return id, true, nil
}

func (s *SQLiteStore) ResolveOrCreateMovie(ctx context.Context, m model.Movie) (int64, bool, error) {
	id, found, err := s.queryID(ctx, `SELECT movie_id FROM movie WHERE movie_name = ?`, m.Name)
	if err != nil {
		return 0, false, eris.Wrapf(err, "sqlite: find movie %q", m.Name)
	}
	if found {
		return id, false, nil
	}
	id, err = s.insertID(ctx, `INSERT INTO movie (movie_name, run_time) VALUES (?, ?)`, m.Name, m.RunTime)
	if err != nil {
		return 0, false, eris.Wrapf(err, "sqlite: insert movie %q", m.Name)
	}
	return id, true, nil
}

func (s *SQLiteStore) ResolveOrCreateCompany(ctx context.Context, name string) (int64, error) {
	id, found, err := s.queryID(ctx, `SELECT company_id FROM production_company WHERE company_name = ?`, name)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: find company %q", name)
	}
	if found {
		return id, nil
	}
	id, err = s.insertID(ctx, `INSERT INTO production_company (company_name) VALUES (?)`, name)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: insert company %q", name)
	}
	return id, nil
}

func (s *SQLiteStore) ResolveOrCreatePosition(ctx context.Context, title string) (int64, error) {
	id, found, err := s.queryID(ctx, `SELECT position_id FROM positions WHERE title = ?`, title)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: find position %q", title)
	}
	if found {
		return id, nil
	}
	id, err = s.insertID(ctx, `INSERT INTO positions (title) VALUES (?)`, title)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: insert position %q", title)
	}
	return id, nil
}

func (s *SQLiteStore) ResolveOrCreateCategory(ctx context.Context, name string) (int64, error) {
	name = model.NormalizedCategory(name)
	id, found, err := s.queryID(ctx, `SELECT category_id FROM category WHERE category_name = ?`, name)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: find category %q", name)
	}
	if found {
		return id, nil
	}
	id, err = s.insertID(ctx, `INSERT INTO category (category_name) VALUES (?)`, name)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: insert category %q", name)
	}
	return id, nil
}

func (s *SQLiteStore) EditionExists(ctx context.Context, edition int) (bool, error) {
	_, found, err := s.queryID(ctx, `SELECT award_edition_id FROM award_edition WHERE edition = ? LIMIT 1`, edition)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: edition exists %d", edition)
	}
	return found, nil
}

func (s *SQLiteStore) FindEditionByNumber(ctx context.Context, edition int) (int64, bool, error) {
	id, found, err := s.queryID(ctx, `SELECT award_edition_id FROM award_edition WHERE edition = ? LIMIT 1`, edition)
	if err != nil {
		return 0, false, eris.Wrapf(err, "sqlite: find edition %d", edition)
	}
	return id, found, nil
}

func (s *SQLiteStore) InsertEditionIfAbsent(ctx context.Context, e model.AwardEdition) (int64, bool, error) {
	var (
		id    int64
		found bool
		err   error
	)
	if e.VenueID == 0 {
		id, found, err = s.queryID(ctx,
			`SELECT award_edition_id FROM award_edition WHERE edition = ? AND venue_id IS NULL AND network = ?`,
			e.Edition, e.Network,
		)
	} else {
		id, found, err = s.queryID(ctx,
			`SELECT award_edition_id FROM award_edition WHERE edition = ? AND venue_id = ? AND network = ?`,
			e.Edition, e.VenueID, e.Network,
		)
	}
	if err != nil {
		return 0, false, eris.Wrapf(err, "sqlite: find edition %d venue %d", e.Edition, e.VenueID)
	}
	if found {
		return id, false, nil
	}
	id, err = s.insertID(ctx,
		`INSERT INTO award_edition (edition, award_year, ceremony_date, venue_id, duration, network) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Edition, e.Year, nullable(e.Date), nullableID(e.VenueID), e.Duration, e.Network,
	)
	if err != nil {
		return 0, false, eris.Wrapf(err, "sqlite: insert edition %d", e.Edition)
	}
	return id, true, nil
}

func (s *SQLiteStore) InsertNomination(ctx context.Context, n model.Nomination) (int64, error) {
	id, err := s.insertID(ctx,
		`INSERT INTO nomination (award_edition_id, movie_id, category_id, won) VALUES (?, ?, ?, ?)`,
		n.EditionID, n.MovieID, n.CategoryID, n.Won,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: insert nomination")
	}
	return id, nil
}

func (s *SQLiteStore) linkIfAbsent(ctx context.Context, selectSQL, insertSQL string, args ...any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, selectSQL, args...).Scan(&one)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	if _, err := s.db.ExecContext(ctx, insertSQL, args...); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLiteStore) LinkEditionPerson(ctx context.Context, editionID, personID, positionID int64) (bool, error) {
	created, err := s.linkIfAbsent(ctx,
		`SELECT 1 FROM award_edition_person WHERE award_edition_id = ? AND person_id = ? AND position_id = ?`,
		`INSERT INTO award_edition_person (award_edition_id, person_id, position_id) VALUES (?, ?, ?)`,
		editionID, personID, positionID,
	)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: link edition person")
	}
	return created, nil
}

func (s *SQLiteStore) LinkMovieCrew(ctx context.Context, movieID, personID, positionID int64) (bool, error) {
	created, err := s.linkIfAbsent(ctx,
		`SELECT 1 FROM movie_crew WHERE movie_id = ? AND person_id = ? AND position_id = ?`,
		`INSERT INTO movie_crew (movie_id, person_id, position_id) VALUES (?, ?, ?)`,
		movieID, personID, positionID,
	)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: link movie crew")
	}
	return created, nil
}

func (s *SQLiteStore) LinkNominationPerson(ctx context.Context, nominationID, personID int64) (bool, error) {
	created, err := s.linkIfAbsent(ctx,
		`SELECT 1 FROM nomination_person WHERE nomination_id = ? AND person_id = ?`,
		`INSERT INTO nomination_person (nomination_id, person_id) VALUES (?, ?)`,
		nominationID, personID,
	)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: link nomination person")
	}
	return created, nil
}

func (s *SQLiteStore) LinkMovieCompany(ctx context.Context, movieID, companyID int64) (bool, error) {
	created, err := s.linkIfAbsent(ctx,
		`SELECT 1 FROM movie_produced_by WHERE movie_id = ? AND company_id = ?`,
		`INSERT INTO movie_produced_by (movie_id, company_id) VALUES (?, ?)`,
		movieID, companyID,
	)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: link movie company")
	}
	return created, nil
}

func (s *SQLiteStore) LinkMovieReleaseDate(ctx context.Context, movieID int64, date string) (bool, error) {
	created, err := s.linkIfAbsent(ctx,
		`SELECT 1 FROM movie_release_date WHERE movie_id = ? AND release_date = ?`,
		`INSERT INTO movie_release_date (movie_id, release_date) VALUES (?, ?)`,
		movieID, date,
	)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: link movie release date")
	}
	return created, nil
}

func (s *SQLiteStore) LinkMovieLanguage(ctx context.Context, movieID int64, language string) (bool, error) {
	created, err := s.linkIfAbsent(ctx,
		`SELECT 1 FROM movie_language WHERE movie_id = ? AND language = ?`,
		`INSERT INTO movie_language (movie_id, language) VALUES (?, ?)`,
		movieID, language,
	)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: link movie language")
	}
	return created, nil
}

func (s *SQLiteStore) LinkMovieCountry(ctx context.Context, movieID int64, country string) (bool, error) {
	created, err := s.linkIfAbsent(ctx,
		`SELECT 1 FROM movie_country WHERE movie_id = ? AND country = ?`,
		`INSERT INTO movie_country (movie_id, country) VALUES (?, ?)`,
		movieID, country,
	)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: link movie country")
	}
	return created, nil
}

func (s *SQLiteStore) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(countTables))
	for _, table := range countTables {
		var n int64
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
			return nil, eris.Wrapf(err, "sqlite: count %s", table)
		}
		counts[table] = n
	}
	return counts, nil
}

func (s *SQLiteStore) Editions(ctx context.Context) ([]model.AwardEdition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT award_edition_id, edition, award_year, COALESCE(ceremony_date, ''), COALESCE(venue_id, 0), COALESCE(duration, 0), COALESCE(network, '') FROM award_edition ORDER BY edition`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list editions")
	}
	defer rows.Close()

	var editions []model.AwardEdition
	for rows.Next() {
		var e model.AwardEdition
		if err := rows.Scan(&e.ID, &e.Edition, &e.Year, &e.Date, &e.VenueID, &e.Duration, &e.Network); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan edition")
		}
		editions = append(editions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate editions")
	}
	return editions, nil
}
