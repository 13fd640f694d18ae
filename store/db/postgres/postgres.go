package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/recomendashka/recomendashka/internal/profile"
	"github.com/recomendashka/recomendashka/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a PostgreSQL database using the DSN from the profile.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	pgDB, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// Modest pool for a chat workload; each update is handled on its own
	// goroutine but queries are short.
	pgDB.SetMaxOpenConns(10)
	pgDB.SetMaxIdleConns(5)
	pgDB.SetConnMaxLifetime(30 * time.Minute)

	if err := pgDB.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	driver := DB{db: pgDB, profile: profile}

	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

var schema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL UNIQUE,
	username TEXT NOT NULL DEFAULT '',
	created_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS movies (
	id SERIAL PRIMARY KEY,
	tmdb_id BIGINT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	original_title TEXT NOT NULL DEFAULT '',
	overview TEXT NOT NULL DEFAULT '',
	release_date TEXT NOT NULL DEFAULT '',
	vote_average DOUBLE PRECISION NOT NULL DEFAULT 0,
	poster_path TEXT NOT NULL DEFAULT '',
	genres TEXT NOT NULL DEFAULT '',
	runtime INTEGER NOT NULL DEFAULT 0,
	actors TEXT NOT NULL DEFAULT '[]',
	directors TEXT NOT NULL DEFAULT '[]',
	popularity DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS ratings (
	id SERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	movie_id INTEGER NOT NULL,
	rating INTEGER NOT NULL,
	updated_ts BIGINT NOT NULL,
	UNIQUE (user_id, movie_id)
);

CREATE TABLE IF NOT EXISTS user_preferences (
	id SERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	kind TEXT NOT NULL,
	value TEXT NOT NULL,
	created_ts BIGINT NOT NULL,
	UNIQUE (user_id, kind, value)
);

CREATE TABLE IF NOT EXISTS history (
	id SERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	movie_id INTEGER NOT NULL,
	action TEXT NOT NULL,
	created_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_user_id ON history (user_id);

CREATE TABLE IF NOT EXISTS feedback (
	id SERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	query TEXT NOT NULL DEFAULT '',
	text TEXT NOT NULL,
	created_ts BIGINT NOT NULL
);
`

func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to migrate schema")
	}
	return nil
}

func encodeNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	raw, err := json.Marshal(names)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode name list")
	}
	return string(raw), nil
}

func decodeNames(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, errors.Wrap(err, "failed to decode name list")
	}
	return names, nil
}

func joinGenres(genres []string) string {
	return strings.Join(genres, ", ")
}

func splitGenres(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ", ")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			genres = append(genres, p)
		}
	}
	return genres
}

func joinWhere(where []string) string {
	query := where[0]
	for _, w := range where[1:] {
		query += " AND " + w
	}
	return query
}
