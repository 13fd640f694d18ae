package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store database drivers.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate creates the schema when missing. Both drivers use
	// idempotent CREATE TABLE IF NOT EXISTS statements.
	Migrate(ctx context.Context) error

	// User model related methods.
	UpsertUser(ctx context.Context, upsert *UpsertUser) (*User, error)
	GetUser(ctx context.Context, userID int64) (*User, error)

	// Movie model related methods.
	UpsertMovie(ctx context.Context, upsert *UpsertMovie) (*Movie, error)
	ListMovies(ctx context.Context, find *FindMovie) ([]*Movie, error)

	// Rating model related methods.
	UpsertRating(ctx context.Context, upsert *UpsertRating) (*Rating, error)
	ListRatings(ctx context.Context, find *FindRating) ([]*Rating, error)

	// UserPreference model related methods.
	CreateUserPreference(ctx context.Context, upsert *UpsertUserPreference) (*UserPreference, error)
	ListUserPreferences(ctx context.Context, find *FindUserPreference) ([]*UserPreference, error)
	DeleteUserPreferences(ctx context.Context, userID int64) error

	// History model related methods.
	CreateHistoryEntry(ctx context.Context, create *CreateHistoryEntry) (*HistoryEntry, error)
	ListHistoryEntries(ctx context.Context, find *FindHistoryEntry) ([]*HistoryEntry, error)
	DeleteHistoryEntries(ctx context.Context, userID int64) error

	// Feedback model related methods.
	CreateFeedback(ctx context.Context, create *CreateFeedback) (*Feedback, error)
	ListFeedback(ctx context.Context, find *FindFeedback) ([]*Feedback, error)
}
