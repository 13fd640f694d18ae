package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/recomendashka/recomendashka/store"
)

func (d *DB) CreateUserPreference(ctx context.Context, upsert *store.UpsertUserPreference) (*store.UserPreference, error) {
	stmt := `
		INSERT INTO user_preferences (user_id, kind, value, created_ts)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, kind, value) DO NOTHING
		RETURNING id, user_id, kind, value, created_ts
	`
	var pref store.UserPreference
	err := d.db.QueryRowContext(ctx, stmt,
		upsert.UserID,
		upsert.Kind,
		strings.ToLower(strings.TrimSpace(upsert.Value)),
		time.Now().Unix(),
	).Scan(
		&pref.ID,
		&pref.UserID,
		&pref.Kind,
		&pref.Value,
		&pref.CreatedTs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to create user preference")
	}
	return &pref, nil
}

func (d *DB) ListUserPreferences(ctx context.Context, find *store.FindUserPreference) ([]*store.UserPreference, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.UserID != nil {
		where, args = append(where, fmt.Sprintf("user_id = $%d", len(args)+1)), append(args, *find.UserID)
	}
	if find.Kind != nil {
		where, args = append(where, fmt.Sprintf("kind = $%d", len(args)+1)), append(args, *find.Kind)
	}

	query := `SELECT id, user_id, kind, value, created_ts
		FROM user_preferences
		WHERE ` + joinWhere(where) + `
		ORDER BY created_ts ASC, id ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list user preferences")
	}
	defer rows.Close()

	var prefs []*store.UserPreference
	for rows.Next() {
		var pref store.UserPreference
		err := rows.Scan(
			&pref.ID,
			&pref.UserID,
			&pref.Kind,
			&pref.Value,
			&pref.CreatedTs,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan user preference")
		}
		prefs = append(prefs, &pref)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return prefs, nil
}

func (d *DB) DeleteUserPreferences(ctx context.Context, userID int64) error {
	stmt := `DELETE FROM user_preferences WHERE user_id = $1`
	if _, err := d.db.ExecContext(ctx, stmt, userID); err != nil {
		return errors.Wrap(err, "failed to delete user preferences")
	}
	return nil
}
