package sqlite

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/recomendashka/recomendashka/store"
)

func (d *DB) UpsertMovie(ctx context.Context, upsert *store.UpsertMovie) (*store.Movie, error) {
	actors, err := encodeNames(upsert.Actors)
	if err != nil {
		return nil, err
	}
	directors, err := encodeNames(upsert.Directors)
	if err != nil {
		return nil, err
	}

	stmt := `
		INSERT INTO movies (tmdb_id, title, original_title, overview, release_date,
			vote_average, poster_path, genres, runtime, actors, directors, popularity, created_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tmdb_id) DO UPDATE SET
			title = excluded.title,
			original_title = excluded.original_title,
			overview = excluded.overview,
			release_date = excluded.release_date,
			vote_average = excluded.vote_average,
			poster_path = excluded.poster_path,
			genres = excluded.genres,
			runtime = excluded.runtime,
			actors = excluded.actors,
			directors = excluded.directors,
			popularity = excluded.popularity
		RETURNING id, tmdb_id, title, original_title, overview, release_date,
			vote_average, poster_path, genres, runtime, actors, directors, popularity, created_ts
	`
	row := d.db.QueryRowContext(ctx, stmt,
		upsert.TmdbID,
		upsert.Title,
		upsert.OriginalTitle,
		upsert.Overview,
		upsert.ReleaseDate,
		upsert.VoteAverage,
		upsert.PosterPath,
		joinGenres(upsert.Genres),
		upsert.Runtime,
		actors,
		directors,
		upsert.Popularity,
		time.Now().Unix(),
	)
	movie, err := scanMovie(row)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert movie")
	}
	return movie, nil
}

func (d *DB) ListMovies(ctx context.Context, find *store.FindMovie) ([]*store.Movie, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.TmdbID != nil {
		where, args = append(where, "tmdb_id = ?"), append(args, *find.TmdbID)
	}
	if find.Title != nil {
		where, args = append(where, "LOWER(title) = LOWER(?)"), append(args, *find.Title)
	}

	query := `SELECT id, tmdb_id, title, original_title, overview, release_date,
			vote_average, poster_path, genres, runtime, actors, directors, popularity, created_ts
		FROM movies
		WHERE ` + joinWhere(where) + `
		ORDER BY created_ts DESC, id DESC`

	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list movies")
	}
	defer rows.Close()

	var movies []*store.Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan movie")
		}
		movies = append(movies, movie)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return movies, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*store.Movie, error) {
	var movie store.Movie
	var genres, actors, directors string
	err := row.Scan(
		&movie.ID,
		&movie.TmdbID,
		&movie.Title,
		&movie.OriginalTitle,
		&movie.Overview,
		&movie.ReleaseDate,
		&movie.VoteAverage,
		&movie.PosterPath,
		&genres,
		&movie.Runtime,
		&actors,
		&directors,
		&movie.Popularity,
		&movie.CreatedTs,
	)
	if err != nil {
		return nil, err
	}
	movie.Genres = splitGenres(genres)
	if movie.Actors, err = decodeNames(actors); err != nil {
		return nil, err
	}
	if movie.Directors, err = decodeNames(directors); err != nil {
		return nil, err
	}
	return &movie, nil
}

func joinWhere(where []string) string {
	query := where[0]
	for _, w := range where[1:] {
		query += " AND " + w
	}
	return query
}
