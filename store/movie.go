package store

// Movie is a TMDB-verified film. Rows are unique by TmdbID; the internal
// ID stays stable across repeated upserts of the same film.
type Movie struct {
	ID            int32
	TmdbID        int64
	Title         string
	OriginalTitle string
	Overview      string
	ReleaseDate   string // YYYY-MM-DD as reported by TMDB, may be empty
	VoteAverage   float64
	PosterPath    string
	Genres        []string
	Runtime       int
	Actors        []string // top billed cast, nominative form
	Directors     []string
	Popularity    float64
	CreatedTs     int64
}

// ReleaseYear returns the four-digit release year or an empty string.
func (m *Movie) ReleaseYear() string {
	if len(m.ReleaseDate) >= 4 {
		return m.ReleaseDate[:4]
	}
	return ""
}

// PosterURL returns the full TMDB image URL, or empty when no poster exists.
func (m *Movie) PosterURL() string {
	if m.PosterPath == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/w500" + m.PosterPath
}

// UpsertMovie inserts a movie or refreshes its metadata when the TmdbID
// already exists.
type UpsertMovie struct {
	TmdbID        int64
	Title         string
	OriginalTitle string
	Overview      string
	ReleaseDate   string
	VoteAverage   float64
	PosterPath    string
	Genres        []string
	Runtime       int
	Actors        []string
	Directors     []string
	Popularity    float64
}

// FindMovie filters movie lookups. Nil fields are ignored.
type FindMovie struct {
	ID     *int32
	TmdbID *int64
	Title  *string
	Limit  *int
}
