package tmdb

// Movie is a verified film with metadata from TMDB.
type Movie struct {
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

// ReleaseYear returns the four-digit release year or an empty string.
func (m *Movie) ReleaseYear() string {
	if len(m.ReleaseDate) >= 4 {
		return m.ReleaseDate[:4]
	}
	return ""
}

// Person is an actor or director found via person search.
type Person struct {
	ID         int64
	Name       string
	Department string
	Popularity float64
}

type movieResult struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"`
	VoteAverage   float64 `json:"vote_average"`
	PosterPath    string  `json:"poster_path"`
	Popularity    float64 `json:"popularity"`
}

type searchResponse struct {
	Page         int           `json:"page"`
	Results      []movieResult `json:"results"`
	TotalResults int           `json:"total_results"`
}

type genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type castMember struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type crewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

type credits struct {
	Cast []castMember `json:"cast"`
	Crew []crewMember `json:"crew"`
}

type detailsResponse struct {
	movieResult
	Runtime int      `json:"runtime"`
	Genres  []genre  `json:"genres"`
	Credits *credits `json:"credits"`
}

type personResult struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	KnownForDepartment string  `json:"known_for_department"`
	Popularity         float64 `json:"popularity"`
}

type personSearchResponse struct {
	Results []personResult `json:"results"`
}

type movieCreditsResponse struct {
	Cast []movieResult `json:"cast"`
}
