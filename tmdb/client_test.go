package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(&Config{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		RateLimit: 100,
	})
}

func TestSearchMovie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "ru-RU", r.URL.Query().Get("language"))
		_ = json.NewEncoder(w).Encode(searchResponse{Results: []movieResult{
			{ID: 604, Title: "Матрица: Перезагрузка", OriginalTitle: "The Matrix Reloaded", ReleaseDate: "2003-05-15"},
			{ID: 603, Title: "Матрица", OriginalTitle: "The Matrix", ReleaseDate: "1999-03-30", VoteAverage: 8.2},
		}})
	})
	mux.HandleFunc("/movie/603", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "credits", r.URL.Query().Get("append_to_response"))
		_ = json.NewEncoder(w).Encode(detailsResponse{
			movieResult: movieResult{ID: 603, Title: "Матрица", OriginalTitle: "The Matrix", ReleaseDate: "1999-03-30"},
			Runtime:     136,
			Genres:      []genre{{ID: 28, Name: "боевик"}, {ID: 878, Name: "фантастика"}},
			Credits: &credits{
				Cast: []castMember{
					{Name: "Киану Ривз", Order: 0},
					{Name: "Лоренс Фишборн", Order: 1},
					{Name: "Статист", Order: 7},
				},
				Crew: []crewMember{
					{Name: "Лана Вачовски", Job: "Director"},
					{Name: "Джоэл Сильвер", Job: "Producer"},
				},
			},
		})
	})

	client := newTestClient(t, mux)
	movie, err := client.SearchMovie(context.Background(), "Матрица", "1999")
	require.NoError(t, err)
	require.NotNil(t, movie)

	assert.Equal(t, int64(603), movie.TmdbID)
	assert.Equal(t, "1999", movie.ReleaseYear())
	assert.Equal(t, 136, movie.Runtime)
	assert.Equal(t, []string{"боевик", "фантастика"}, movie.Genres)
	assert.Equal(t, []string{"Киану Ривз", "Лоренс Фишборн"}, movie.Actors)
	assert.Equal(t, []string{"Лана Вачовски"}, movie.Directors)
}

func TestSearchMovie_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(searchResponse{Results: []movieResult{
			{ID: 1, Title: "Совсем другое кино", OriginalTitle: "Unrelated", ReleaseDate: "2010-01-01"},
		}})
	})

	client := newTestClient(t, mux)
	movie, err := client.SearchMovie(context.Background(), "Выдуманный шедевр", "2023")
	require.NoError(t, err)
	assert.Nil(t, movie, "implausible matches are treated as not found")
}

func TestSearchMovie_RetriesWithoutYear(t *testing.T) {
	var sawYearless bool
	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("year") != "" {
			_ = json.NewEncoder(w).Encode(searchResponse{})
			return
		}
		sawYearless = true
		_ = json.NewEncoder(w).Encode(searchResponse{Results: []movieResult{
			{ID: 27205, Title: "Начало", OriginalTitle: "Inception", ReleaseDate: "2010-07-15"},
		}})
	})
	mux.HandleFunc("/movie/27205", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(detailsResponse{
			movieResult: movieResult{ID: 27205, Title: "Начало", OriginalTitle: "Inception", ReleaseDate: "2010-07-15"},
		})
	})

	client := newTestClient(t, mux)
	movie, err := client.SearchMovie(context.Background(), "Начало", "2012")
	require.NoError(t, err)
	require.NotNil(t, movie)
	assert.True(t, sawYearless)
	assert.Equal(t, int64(27205), movie.TmdbID)
}

func TestSearchPerson_PicksMostPopular(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/person", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(personSearchResponse{Results: []personResult{
			{ID: 1, Name: "Tom Hanks Jr.", Popularity: 3.1},
			{ID: 31, Name: "Tom Hanks", KnownForDepartment: "Acting", Popularity: 84.5},
		}})
	})

	client := newTestClient(t, mux)
	person, err := client.SearchPerson(context.Background(), "Tom Hanks")
	require.NoError(t, err)
	require.NotNil(t, person)
	assert.Equal(t, int64(31), person.ID)
	assert.Equal(t, "Acting", person.Department)
}

func TestPersonFilmography_SortsByRating(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/person/31/movie_credits", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(movieCreditsResponse{Cast: []movieResult{
			{ID: 1, Title: "Проходной фильм", VoteAverage: 5.1},
			{ID: 13, Title: "Форрест Гамп", VoteAverage: 8.8},
			{ID: 2, Title: "Середняк", VoteAverage: 6.9},
		}})
	})

	client := newTestClient(t, mux)
	movies, err := client.PersonFilmography(context.Background(), 31)
	require.NoError(t, err)
	require.Len(t, movies, 3)
	assert.Equal(t, "Форрест Гамп", movies[0].Title)
}

func TestMoviesByGenre(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "878", r.URL.Query().Get("with_genres"))
		assert.Equal(t, "popularity.desc", r.URL.Query().Get("sort_by"))
		_ = json.NewEncoder(w).Encode(searchResponse{Results: []movieResult{
			{ID: 693134, Title: "Дюна: Часть вторая"},
			{ID: 157336, Title: "Интерстеллар"},
		}})
	})

	client := newTestClient(t, mux)
	movies, err := client.MoviesByGenre(context.Background(), "Фантастика", 5)
	require.NoError(t, err)
	require.Len(t, movies, 2)
}

func TestMoviesByGenre_UnknownGenre(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	movies, err := client.MoviesByGenre(context.Background(), "неведомый жанр", 5)
	require.NoError(t, err)
	assert.Nil(t, movies)
}

func TestGet_RetriesOnServerError(t *testing.T) {
	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("/search/person", func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(personSearchResponse{Results: []personResult{{ID: 1, Name: "X"}}})
	})

	client := newTestClient(t, mux)
	person, err := client.SearchPerson(context.Background(), "X")
	require.NoError(t, err)
	require.NotNil(t, person)
	assert.Equal(t, 2, calls)
}

func TestBestMatch(t *testing.T) {
	results := []movieResult{
		{ID: 1, Title: "Начало конца", OriginalTitle: "Beginning of the End", ReleaseDate: "1957-06-28"},
		{ID: 27205, Title: "Начало", OriginalTitle: "Inception", ReleaseDate: "2010-07-15"},
	}

	best := bestMatch(results, "Начало", "2010")
	require.NotNil(t, best)
	assert.Equal(t, int64(27205), best.ID)
}

func TestBestMatch_BelowThreshold(t *testing.T) {
	results := []movieResult{
		{ID: 1, Title: "Другое кино", OriginalTitle: "Something Else", ReleaseDate: "2005-01-01"},
	}
	assert.Nil(t, bestMatch(results, "Интерстеллар", "2014"))
}
