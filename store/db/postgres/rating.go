package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/recomendashka/recomendashka/store"
)

func (d *DB) UpsertRating(ctx context.Context, upsert *store.UpsertRating) (*store.Rating, error) {
	stmt := `
		INSERT INTO ratings (user_id, movie_id, rating, updated_ts)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, movie_id) DO UPDATE SET
			rating = excluded.rating,
			updated_ts = excluded.updated_ts
		RETURNING id, user_id, movie_id, rating, updated_ts
	`
	var rating store.Rating
	err := d.db.QueryRowContext(ctx, stmt,
		upsert.UserID,
		upsert.MovieID,
		upsert.Rating,
		time.Now().Unix(),
	).Scan(
		&rating.ID,
		&rating.UserID,
		&rating.MovieID,
		&rating.Rating,
		&rating.UpdatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert rating")
	}
	return &rating, nil
}

func (d *DB) ListRatings(ctx context.Context, find *store.FindRating) ([]*store.Rating, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.UserID != nil {
		where, args = append(where, fmt.Sprintf("user_id = $%d", len(args)+1)), append(args, *find.UserID)
	}
	if find.MovieID != nil {
		where, args = append(where, fmt.Sprintf("movie_id = $%d", len(args)+1)), append(args, *find.MovieID)
	}

	query := `SELECT id, user_id, movie_id, rating, updated_ts
		FROM ratings
		WHERE ` + joinWhere(where) + `
		ORDER BY updated_ts DESC, id DESC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list ratings")
	}
	defer rows.Close()

	var ratings []*store.Rating
	for rows.Next() {
		var rating store.Rating
		err := rows.Scan(
			&rating.ID,
			&rating.UserID,
			&rating.MovieID,
			&rating.Rating,
			&rating.UpdatedTs,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan rating")
		}
		ratings = append(ratings, &rating)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ratings, nil
}
