package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/recomendashka/recomendashka/store"
)

func (d *DB) UpsertUser(ctx context.Context, upsert *store.UpsertUser) (*store.User, error) {
	stmt := `
		INSERT INTO users (user_id, username, created_ts)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			username = excluded.username
		RETURNING id, user_id, username, created_ts
	`
	var user store.User
	err := d.db.QueryRowContext(ctx, stmt,
		upsert.UserID,
		upsert.Username,
		time.Now().Unix(),
	).Scan(
		&user.ID,
		&user.UserID,
		&user.Username,
		&user.CreatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert user")
	}
	return &user, nil
}

func (d *DB) GetUser(ctx context.Context, userID int64) (*store.User, error) {
	stmt := `SELECT id, user_id, username, created_ts FROM users WHERE user_id = ?`
	var user store.User
	err := d.db.QueryRowContext(ctx, stmt, userID).Scan(
		&user.ID,
		&user.UserID,
		&user.Username,
		&user.CreatedTs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get user")
	}
	return &user, nil
}
