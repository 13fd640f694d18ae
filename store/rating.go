package store

// Rating is a user's 0-10 score for a movie. One row per (user, movie);
// re-rating overwrites the previous value.
type Rating struct {
	ID        int32
	UserID    int64
	MovieID   int32
	Rating    int
	UpdatedTs int64
}

type UpsertRating struct {
	UserID  int64
	MovieID int32
	Rating  int
}

type FindRating struct {
	UserID  *int64
	MovieID *int32
}
