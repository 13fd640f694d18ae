package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/recomendashka/recomendashka/store"
)

func (d *DB) CreateHistoryEntry(ctx context.Context, create *store.CreateHistoryEntry) (*store.HistoryEntry, error) {
	stmt := `
		INSERT INTO history (user_id, movie_id, action, created_ts)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, movie_id, action, created_ts
	`
	var entry store.HistoryEntry
	err := d.db.QueryRowContext(ctx, stmt,
		create.UserID,
		create.MovieID,
		create.Action,
		time.Now().Unix(),
	).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.MovieID,
		&entry.Action,
		&entry.CreatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create history entry")
	}
	return &entry, nil
}

func (d *DB) ListHistoryEntries(ctx context.Context, find *store.FindHistoryEntry) ([]*store.HistoryEntry, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.UserID != nil {
		where, args = append(where, fmt.Sprintf("user_id = $%d", len(args)+1)), append(args, *find.UserID)
	}
	if find.Action != nil {
		where, args = append(where, fmt.Sprintf("action = $%d", len(args)+1)), append(args, *find.Action)
	}

	query := `SELECT id, user_id, movie_id, action, created_ts
		FROM history
		WHERE ` + joinWhere(where) + `
		ORDER BY created_ts DESC, id DESC`

	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list history entries")
	}
	defer rows.Close()

	var entries []*store.HistoryEntry
	for rows.Next() {
		var entry store.HistoryEntry
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.MovieID,
			&entry.Action,
			&entry.CreatedTs,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan history entry")
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (d *DB) DeleteHistoryEntries(ctx context.Context, userID int64) error {
	stmt := `DELETE FROM history WHERE user_id = $1`
	if _, err := d.db.ExecContext(ctx, stmt, userID); err != nil {
		return errors.Wrap(err, "failed to delete history entries")
	}
	return nil
}
