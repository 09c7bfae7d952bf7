package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/cinegraph/awards-cli/internal/db"
	"github.com/cinegraph/awards-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS venue (
	venue_id     BIGSERIAL PRIMARY KEY,
	venue_name   TEXT NOT NULL,
	neighborhood TEXT,
	city         TEXT,
	state        TEXT,
	country      TEXT
);

CREATE TABLE IF NOT EXISTS person (
	person_id     BIGSERIAL PRIMARY KEY,
	first_name    TEXT NOT NULL,
	middle_name   TEXT,
	last_name     TEXT,
	birth_date    TEXT,
	birth_country TEXT,
	death_date    TEXT
);

CREATE TABLE IF NOT EXISTS movie (
	movie_id   BIGSERIAL PRIMARY KEY,
	movie_name TEXT NOT NULL,
	run_time   INTEGER
);

CREATE TABLE IF NOT EXISTS production_company (
	company_id   BIGSERIAL PRIMARY KEY,
	company_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	position_id BIGSERIAL PRIMARY KEY,
	title       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS category (
	category_id   BIGSERIAL PRIMARY KEY,
	category_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS award_edition (
	award_edition_id BIGSERIAL PRIMARY KEY,
	edition          INTEGER NOT NULL,
	award_year       INTEGER,
	ceremony_date    TEXT,
	venue_id         BIGINT REFERENCES venue(venue_id),
	duration         INTEGER,
	network          TEXT
);

CREATE TABLE IF NOT EXISTS nomination (
	nomination_id    BIGSERIAL PRIMARY KEY,
	award_edition_id BIGINT REFERENCES award_edition(award_edition_id),
	movie_id         BIGINT REFERENCES movie(movie_id),
	category_id      BIGINT REFERENCES category(category_id),
	won              BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS award_edition_person (
	award_edition_id BIGINT NOT NULL REFERENCES award_edition(award_edition_id),
	person_id        BIGINT NOT NULL REFERENCES person(person_id),
	position_id      BIGINT NOT NULL REFERENCES positions(position_id)
);

CREATE TABLE IF NOT EXISTS movie_crew (
	movie_id    BIGINT NOT NULL REFERENCES movie(movie_id),
	person_id   BIGINT NOT NULL REFERENCES person(person_id),
	position_id BIGINT NOT NULL REFERENCES positions(position_id)
);

CREATE TABLE IF NOT EXISTS nomination_person (
	nomination_id BIGINT NOT NULL REFERENCES nomination(nomination_id),
	person_id     BIGINT NOT NULL REFERENCES person(person_id)
);

CREATE TABLE IF NOT EXISTS movie_produced_by (
	movie_id   BIGINT NOT NULL REFERENCES movie(movie_id),
	company_id BIGINT NOT NULL REFERENCES production_company(company_id)
);

CREATE TABLE IF NOT EXISTS movie_release_date (
	movie_id     BIGINT NOT NULL REFERENCES movie(movie_id),
	release_date TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS movie_language (
	movie_id BIGINT NOT NULL REFERENCES movie(movie_id),
	language TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS movie_country (
	movie_id BIGINT NOT NULL REFERENCES movie(movie_id),
	country  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_venue_name ON venue(LOWER(venue_name));
CREATE INDEX IF NOT EXISTS idx_person_name ON person(first_name, last_name);
CREATE INDEX IF NOT EXISTS idx_movie_name ON movie(movie_name);
CREATE INDEX IF NOT EXISTS idx_award_edition_edition ON award_edition(edition);
`

// Migrate applies the schema. Idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// nullable converts "" to NULL so optional fields stay absent, not empty.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableID(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

// queryID runs a single-id lookup, mapping no-rows to found=false.
func (s *PostgresStore) queryID(ctx context.Context, sql string, args ...any) (int64, bool, error) {
	var id int64
	err := s.pool.QueryRow(ctx, sql, args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// FindVenueByName looks a venue up by its normalized name or the
// "the "-prefixed variant.
func (s *PostgresStore) FindVenueByName(ctx context.Context, name string) (int64, bool, error) {
	norm := model.NormalizedVenueName(name)
	id, found, err := s.queryID(ctx,
		`SELECT venue_id FROM venue WHERE LOWER(venue_name) = $1 OR LOWER(venue_name) = $2`,
		norm, "the "+norm,
	)
	if err != nil {
		return 0, false, eris.Wrapf(err, "postgres: find venue %q", name)
	}
	return id, found, nil
}

// ResolveOrCreateVenue returns the existing venue matching the normalized
// name, or inserts a new row.
func (s *PostgresStore) ResolveOrCreateVenue(ctx context.Context, v model.Venue) (int64, bool, error) {
	if id, found, err := s.FindVenueByName(ctx, v.Name); err != nil || found {
		return id, false, err
	}

	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO venue (venue_name, neighborhood, city, state, country) VALUES ($1, $2, $3, $4, $5) RETURNING venue_id`,
		v.Name, nullable(v.Neighborhood), nullable(v.City), nullable(v.State), nullable(v.Country),
	).Scan(&id)
	if err != nil {
		return 0, false, eris.Wrapf(err, "postgres: insert venue %q", v.Name)
	}
	return id, true, nil
}

// ResolveOrCreatePerson dedups by (first, last, birth date) when the birth
// date is known, else by (first, last) alone.
func (s *PostgresStore) ResolveOrCreatePerson(ctx context.Context, p model.Person) (int64, bool, error) {
	var (
		id    int64
		found bool
		err   error
	)
	if p.BirthDate != "" {
		id, found, err = s.queryID(ctx,
			`SELECT person_id FROM person WHERE first_name = $1 AND last_name = $2 AND birth_date = $3`,
			p.First, p.Last, p.BirthDate,
		)
	} else {
		id, found, err = s.queryID(ctx,
			`SELECT person_id FROM person WHERE first_name = $1 AND last_name = $2`,
			p.First, p.Last,
		)
	}
	if err != nil {
		return 0, false, eris.Wrapf(err, "postgres: find person %s %s", p.First, p.Last)
	}
	if found {
		return id, false, nil
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO person (first_name, middle_name, last_name, birth_date, birth_country, death_date) VALUES ($1, $2, $3, $4, $5, $6) RETURNING person_id`,
		p.First, nullable(p.Middle), nullable(p.Last), nullable(p.BirthDate), nullable(p.BirthCountry), nullable(p.DeathDate),
	).Scan(&id)
	if err != nil {
		return 0, false, eris.Wrapf(err, "postgres: insert person %s %s", p.First, p.Last)
	}
	return id, true, nil
}

// ResolveOrCreateMovie dedups by exact name.
func (s *PostgresStore) ResolveOrCreateMovie(ctx context.Context, m model.Movie) (int64, bool, error) {
	id, found, err := s.queryID(ctx,
		`SELECT movie_id FROM movie WHERE movie_name = $1`, m.Name,
	)
	if err != nil {
		return 0, false, eris.Wrapf(err, "postgres: find movie %q", m.Name)
	}
	if found {
		return id, false, nil
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO movie (movie_name, run_time) VALUES ($1, $2) RETURNING movie_id`,
		m.Name, m.RunTime,
	).Scan(&id)
	if err != nil {
		return 0, false, eris.Wrapf(err, "postgres: insert movie %q", m.Name)
	}
	return id, true, nil
}

// ResolveOrCreateCompany dedups by exact name.
func (s *PostgresStore) ResolveOrCreateCompany(ctx context.Context, name string) (int64, error) {
	id, found, err := s.queryID(ctx,
		`SELECT company_id FROM production_company WHERE company_name = $1`, name,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: find company %q", name)
	}
	if found {
		return id, nil
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO production_company (company_name) VALUES ($1) RETURNING company_id`, name,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: insert company %q", name)
	}
	return id, nil
}

// ResolveOrCreatePosition dedups by exact title.
func (s *PostgresStore) ResolveOrCreatePosition(ctx context.Context, title string) (int64, error) {
	id, found, err := s.queryID(ctx,
		`SELECT position_id FROM positions WHERE title = $1`, title,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: find position %q", title)
	}
	if found {
		return id, nil
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO positions (title) VALUES ($1) RETURNING position_id`, title,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: insert position %q", title)
	}
	return id, nil
}

// ResolveOrCreateCategory dedups by the normalized category name.
func (s *PostgresStore) ResolveOrCreateCategory(ctx context.Context, name string) (int64, error) {
	name = model.NormalizedCategory(name)
	id, found, err := s.queryID(ctx,
		`SELECT category_id FROM category WHERE category_name = $1`, name,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: find category %q", name)
	}
	if found {
		return id, nil
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO category (category_name) VALUES ($1) RETURNING category_id`, name,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: insert category %q", name)
	}
	return id, nil
}

// EditionExists reports whether any row for the edition number is present.
func (s *PostgresStore) EditionExists(ctx context.Context, edition int) (bool, error) {
	_, found, err := s.queryID(ctx,
		`SELECT award_edition_id FROM award_edition WHERE edition = $1 LIMIT 1`, edition,
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: edition exists %d", edition)
	}
	return found, nil
}

// FindEditionByNumber returns the first stored row for an edition number.
func (s *PostgresStore) FindEditionByNumber(ctx context.Context, edition int) (int64, bool, error) {
	id, found, err := s.queryID(ctx,
		`SELECT award_edition_id FROM award_edition WHERE edition = $1 LIMIT 1`, edition,
	)
	if err != nil {
		return 0, false, eris.Wrapf(err, "postgres: find edition %d", edition)
	}
	return id, found, nil
}

// InsertEditionIfAbsent inserts an edition row unless one already exists
// for the (edition, venue_id, network) composite.
func (s *PostgresStore) InsertEditionIfAbsent(ctx context.Context, e model.AwardEdition) (int64, bool, error) {
	var (
		id    int64
		found bool
		err   error
	)
	if e.VenueID == 0 {
		id, found, err = s.queryID(ctx,
			`SELECT award_edition_id FROM award_edition WHERE edition = $1 AND venue_id IS NULL AND network = $2`,
			e.Edition, e.Network,
		)
	} else {
		id, found, err = s.queryID(ctx,
			`SELECT award_edition_id FROM award_edition WHERE edition = $1 AND venue_id = $2 AND network = $3`,
			e.Edition, e.VenueID, e.Network,
		)
	}
	if err != nil {
		return 0, false, eris.Wrapf(err, "postgres: find edition %d venue %d", e.Edition, e.VenueID)
	}
	if found {
		return id, false, nil
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO award_edition (edition, award_year, ceremony_date, venue_id, duration, network) VALUES ($1, $2, $3, $4, $5, $6) RETURNING award_edition_id`,
		e.Edition, e.Year, nullable(e.Date), nullableID(e.VenueID), e.Duration, e.Network,
	).Scan(&id)
	if err != nil {
		return 0, false, eris.Wrapf(err, "postgres: insert edition %d", e.Edition)
	}
	return id, true, nil
}

// InsertNomination always inserts; nominations carry no natural key.
func (s *PostgresStore) InsertNomination(ctx context.Context, n model.Nomination) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO nomination (award_edition_id, movie_id, category_id, won) VALUES ($1, $2, $3, $4) RETURNING nomination_id`,
		n.EditionID, n.MovieID, n.CategoryID, n.Won,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert nomination")
	}
	return id, nil
}

// linkIfAbsent inserts a link row unless the composite already exists.
func (s *PostgresStore) linkIfAbsent(ctx context.Context, selectSQL, insertSQL string, args ...any) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx, selectSQL, args...).Scan(&one)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}
	if _, err := s.pool.Exec(ctx, insertSQL, args...); err != nil {
		return false, err
	}
	return true, nil
}

func (s *PostgresStore) LinkEditionPerson(ctx context.Context, editionID, personID, positionID int64) (bool, error) {
	created, err := s.linkIfAbsent(ctx,
		`SELECT 1 FROM award_edition_person WHERE award_edition_id = $1 AND person_id = $2 AND position_id = $3`,
		`INSERT INTO award_edition_person (award_edition_id, person_id, position_id) VALUES ($1, $2, $3)`,
		editionID, personID, positionID,
	)
	if err != nil {
		return false, eris.Wrap(err, "postgres: link edition person")
	}
	return created, nil
}

func (s *PostgresStore) LinkMovieCrew(ctx context.Context, movieID, personID, positionID int64) (bool, error) {
	created, err := s.linkIfAbsent(ctx,
		`SELECT 1 FROM movie_crew WHERE movie_id = $1 AND person_id = $2 AND position_id = $3`,
		`INSERT INTO movie_crew (movie_id, person_id, position_id) VALUES ($1, $2, $3)`,
		movieID, personID, positionID,
	)
	if err != nil {
		return false, eris.Wrap(err, "postgres: link movie crew")
	}
	return created, nil
}

func (s *PostgresStore) LinkNominationPerson(ctx context.Context, nominationID, personID int64) (bool, error) {
	created, err := s.linkIfAbsent(ctx,
		`SELECT 1 FROM nomination_person WHERE nomination_id = $1 AND person_id = $2`,
		`INSERT INTO nomination_person (nomination_id, person_id) VALUES ($1, $2)`,
		nominationID, personID,
	)
	if err != nil {
		return false, eris.Wrap(err, "postgres: link nomination person")
	}
	return created, nil
}

func (s *PostgresStore) LinkMovieCompany(ctx context.Context, movieID, companyID int64) (bool, error) {
	created, err := s.linkIfAbsent(ctx,
		`SELECT 1 FROM movie_produced_by WHERE movie_id = $1 AND company_id = $2`,
		`INSERT INTO movie_produced_by (movie_id, company_id) VALUES ($1, $2)`,
		movieID, companyID,
	)
	if err != nil {
		return false, eris.Wrap(err, "postgres: link movie company")
	}
	return created, nil
}

func (s *PostgresStore) LinkMovieReleaseDate(ctx context.Context, movieID int64, date string) (bool, error) {
	created, err := s.linkIfAbsent(ctx,
		`SELECT 1 FROM movie_release_date WHERE movie_id = $1 AND release_date = $2`,
		`INSERT INTO movie_release_date (movie_id, release_date) VALUES ($1, $2)`,
		movieID, date,
	)
	if err != nil {
		return false, eris.Wrap(err, "postgres: link movie release date")
	}
	return created, nil
}

func (s *PostgresStore) LinkMovieLanguage(ctx context.Context, movieID int64, language string) (bool, error) {
	created, err := s.linkIfAbsent(ctx,
		`SELECT 1 FROM movie_language WHERE movie_id = $1 AND language = $2`,
		`INSERT INTO movie_language (movie_id, language) VALUES ($1, $2)`,
		movieID, language,
	)
	if err != nil {
		return false, eris.Wrap(err, "postgres: link movie language")
	}
	return created, nil
}

func (s *PostgresStore) LinkMovieCountry(ctx context.Context, movieID int64, country string) (bool, error) {
	created, err := s.linkIfAbsent(ctx,
		`SELECT 1 FROM movie_country WHERE movie_id = $1 AND country = $2`,
		`INSERT INTO movie_country (movie_id, country) VALUES ($1, $2)`,
		movieID, country,
	)
	if err != nil {
		return false, eris.Wrap(err, "postgres: link movie country")
	}
	return created, nil
}

// Counts returns per-table row counts for the status command.
func (s *PostgresStore) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(countTables))
	for _, table := range countTables {
		var n int64
		if err := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
			return nil, eris.Wrapf(err, "postgres: count %s", table)
		}
		counts[table] = n
	}
	return counts, nil
}

// Editions returns all stored edition rows ordered by edition number.
func (s *PostgresStore) Editions(ctx context.Context) ([]model.AwardEdition, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT award_edition_id, edition, award_year, COALESCE(ceremony_date, ''), COALESCE(venue_id, 0), COALESCE(duration, 0), COALESCE(network, '') FROM award_edition ORDER BY edition`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list editions")
	}
	defer rows.Close()

	var editions []model.AwardEdition
	for rows.Next() {
		var e model.AwardEdition
		if err := rows.Scan(&e.ID, &e.Edition, &e.Year, &e.Date, &e.VenueID, &e.Duration, &e.Network); err != nil {
			return nil, eris.Wrap(err, "postgres: scan edition")
		}
		editions = append(editions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate editions")
	}
	return editions, nil
}
