package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/recomendashka/recomendashka/store"
)

func (d *DB) CreateFeedback(ctx context.Context, create *store.CreateFeedback) (*store.Feedback, error) {
	stmt := `
		INSERT INTO feedback (user_id, query, text, created_ts)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, query, text, created_ts
	`
	var feedback store.Feedback
	err := d.db.QueryRowContext(ctx, stmt,
		create.UserID,
		create.Query,
		create.Text,
		time.Now().Unix(),
	).Scan(
		&feedback.ID,
		&feedback.UserID,
		&feedback.Query,
		&feedback.Text,
		&feedback.CreatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create feedback")
	}
	return &feedback, nil
}

func (d *DB) ListFeedback(ctx context.Context, find *store.FindFeedback) ([]*store.Feedback, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.UserID != nil {
		where, args = append(where, fmt.Sprintf("user_id = $%d", len(args)+1)), append(args, *find.UserID)
	}

	query := `SELECT id, user_id, query, text, created_ts
		FROM feedback
		WHERE ` + joinWhere(where) + `
		ORDER BY created_ts DESC, id DESC`

	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list feedback")
	}
	defer rows.Close()

	var feedbacks []*store.Feedback
	for rows.Next() {
		var feedback store.Feedback
		err := rows.Scan(
			&feedback.ID,
			&feedback.UserID,
			&feedback.Query,
			&feedback.Text,
			&feedback.CreatedTs,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan feedback")
		}
		feedbacks = append(feedbacks, &feedback)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return feedbacks, nil
}
