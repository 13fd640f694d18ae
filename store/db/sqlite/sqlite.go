package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/recomendashka/recomendashka/internal/profile"
	"github.com/recomendashka/recomendashka/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a database specified by its database driver name and a
// driver-specific data source name, usually consisting of at least a
// database name and connection information.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	// Ensure a DSN is set before attempting to open the database.
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	// Connect to the database with some sane settings:
	// - No shared-cache: it's obsolete; WAL journal mode is a better solution.
	// - No foreign key constraints: it's currently disabled by default, but it's a
	// good practice to be explicit and prevent future surprises on SQLite upgrades.
	// - Journal mode set to WAL: it's the recommended journal mode for most applications
	// as it prevents locking issues.
	//
	// Notes:
	// - When using the `modernc.org/sqlite` driver, each pragma must be prefixed with `_pragma=`.
	//
	// References:
	// - https://pkg.go.dev/modernc.org/sqlite#Driver.Open
	// - https://www.sqlite.org/pragma.html
	sqliteDB, err := sql.Open("sqlite", profile.DSN+"?_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// SQLite handles concurrency differently; a single connection is
	// optimal with WAL and avoids SQLITE_BUSY under concurrent chats.
	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)
	sqliteDB.SetConnMaxLifetime(0)
	sqliteDB.SetConnMaxIdleTime(0)

	driver := DB{db: sqliteDB, profile: profile}

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
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id BIGINT NOT NULL UNIQUE,
	username TEXT NOT NULL DEFAULT '',
	created_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS movies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tmdb_id BIGINT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	original_title TEXT NOT NULL DEFAULT '',
	overview TEXT NOT NULL DEFAULT '',
	release_date TEXT NOT NULL DEFAULT '',
	vote_average REAL NOT NULL DEFAULT 0,
	poster_path TEXT NOT NULL DEFAULT '',
	genres TEXT NOT NULL DEFAULT '',
	runtime INTEGER NOT NULL DEFAULT 0,
	actors TEXT NOT NULL DEFAULT '[]',
	directors TEXT NOT NULL DEFAULT '[]',
	popularity REAL NOT NULL DEFAULT 0,
	created_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS ratings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id BIGINT NOT NULL,
	movie_id INTEGER NOT NULL,
	rating INTEGER NOT NULL,
	updated_ts BIGINT NOT NULL,
	UNIQUE (user_id, movie_id)
);

CREATE TABLE IF NOT EXISTS user_preferences (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id BIGINT NOT NULL,
	kind TEXT NOT NULL,
	value TEXT NOT NULL,
	created_ts BIGINT NOT NULL,
	UNIQUE (user_id, kind, value)
);

CREATE TABLE IF NOT EXISTS history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id BIGINT NOT NULL,
	movie_id INTEGER NOT NULL,
	action TEXT NOT NULL,
	created_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_user_id ON history (user_id);

CREATE TABLE IF NOT EXISTS feedback (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
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

// encodeNames stores actor/director lists as JSON arrays so names
// containing commas survive a round trip.
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
