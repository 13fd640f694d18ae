// Package tmdb is a client for The Movie Database API used to verify
// that suggested titles are real films and to enrich their metadata.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/recomendashka/recomendashka/metrics"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	defaultLanguage = "ru-RU"

	// Search results scoring below this threshold count as "not found".
	matchThreshold = 40

	maxAttempts = 3

	topBilledActors   = 5
	filmographyLimit  = 10
	filmographyScan   = 15
	similarPageLimit  = 10
	discoverPageLimit = 10
)

// Config represents TMDB client configuration.
type Config struct {
	APIKey    string
	BaseURL   string
	Language  string
	RateLimit int // requests per second, default 10
}

// Client talks to the TMDB v3 API. All requests go through a shared
// rate limiter to stay under the API quota.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	language := cfg.Language
	if language == "" {
		language = defaultLanguage
	}
	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = 10
	}

	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
	}
}

// SearchMovie finds the film best matching the title and returns it
// with full metadata. Year narrows the search but is not required to
// match exactly. Returns (nil, nil) when nothing plausible exists.
func (c *Client) SearchMovie(ctx context.Context, title, year string) (*Movie, error) {
	params := url.Values{}
	params.Set("query", title)
	if year != "" {
		params.Set("year", year)
	}

	var resp searchResponse
	if err := c.get(ctx, "/search/movie", "search_movie", params, &resp); err != nil {
		return nil, err
	}

	// A wrong year from the LLM should not bury a real film.
	if len(resp.Results) == 0 && year != "" {
		params.Del("year")
		if err := c.get(ctx, "/search/movie", "search_movie", params, &resp); err != nil {
			return nil, err
		}
	}

	best := bestMatch(resp.Results, title, year)
	if best == nil {
		slog.Debug("tmdb: no plausible match", "title", title, "year", year)
		return nil, nil
	}

	return c.MovieDetails(ctx, best.ID)
}

// MovieDetails fetches full movie metadata including top billed cast
// and directors.
func (c *Client) MovieDetails(ctx context.Context, id int64) (*Movie, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits")

	var resp detailsResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), "movie_details", params, &resp); err != nil {
		return nil, err
	}

	movie := resultToMovie(resp.movieResult)
	movie.Runtime = resp.Runtime
	for _, g := range resp.Genres {
		movie.Genres = append(movie.Genres, g.Name)
	}
	if resp.Credits != nil {
		for _, member := range resp.Credits.Cast {
			if member.Order < topBilledActors {
				movie.Actors = append(movie.Actors, member.Name)
			}
		}
		for _, member := range resp.Credits.Crew {
			if member.Job == "Director" {
				movie.Directors = append(movie.Directors, member.Name)
			}
		}
	}
	return movie, nil
}

// SimilarMovies returns films TMDB considers similar to the given one.
func (c *Client) SimilarMovies(ctx context.Context, id int64, limit int) ([]*Movie, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > similarPageLimit {
		limit = similarPageLimit
	}

	var resp searchResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/similar", id), "similar_movies", url.Values{}, &resp); err != nil {
		return nil, err
	}

	movies := make([]*Movie, 0, limit)
	for _, result := range resp.Results {
		if len(movies) >= limit {
			break
		}
		movies = append(movies, resultToMovie(result))
	}
	return movies, nil
}

// SearchPerson finds the most popular person matching the name.
// Returns (nil, nil) when nobody matches.
func (c *Client) SearchPerson(ctx context.Context, name string) (*Person, error) {
	params := url.Values{}
	params.Set("query", name)

	var resp personSearchResponse
	if err := c.get(ctx, "/search/person", "search_person", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	best := resp.Results[0]
	for _, result := range resp.Results[1:] {
		if result.Popularity > best.Popularity {
			best = result
		}
	}
	return &Person{
		ID:         best.ID,
		Name:       best.Name,
		Department: best.KnownForDepartment,
		Popularity: best.Popularity,
	}, nil
}

// PersonFilmography returns the person's best-rated films as an actor.
func (c *Client) PersonFilmography(ctx context.Context, personID int64) ([]*Movie, error) {
	var resp movieCreditsResponse
	if err := c.get(ctx, fmt.Sprintf("/person/%d/movie_credits", personID), "person_credits", url.Values{}, &resp); err != nil {
		return nil, err
	}

	cast := resp.Cast
	if len(cast) > filmographyScan {
		cast = cast[:filmographyScan]
	}
	sort.SliceStable(cast, func(i, j int) bool {
		return cast[i].VoteAverage > cast[j].VoteAverage
	})

	movies := make([]*Movie, 0, filmographyLimit)
	for _, result := range cast {
		if len(movies) >= filmographyLimit {
			break
		}
		if result.Title == "" {
			continue
		}
		movies = append(movies, resultToMovie(result))
	}
	return movies, nil
}

// MoviesByGenre discovers popular films for a Russian genre name.
// Unknown genres return an empty list.
func (c *Client) MoviesByGenre(ctx context.Context, genreName string, limit int) ([]*Movie, error) {
	genreID, ok := GenreID(genreName)
	if !ok {
		return nil, nil
	}
	if limit <= 0 || limit > discoverPageLimit {
		limit = discoverPageLimit
	}

	params := url.Values{}
	params.Set("with_genres", strconv.FormatInt(genreID, 10))
	params.Set("sort_by", "popularity.desc")

	var resp searchResponse
	if err := c.get(ctx, "/discover/movie", "discover_movie", params, &resp); err != nil {
		return nil, err
	}

	movies := make([]*Movie, 0, limit)
	for _, result := range resp.Results {
		if len(movies) >= limit {
			break
		}
		movies = append(movies, resultToMovie(result))
	}
	return movies, nil
}

func (c *Client) get(ctx context.Context, path, endpoint string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("tmdb rate limiter: %w", err)
	}

	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)
	requestURL := c.baseURL + path + "?" + params.Encode()

	var lastErr error
	delay := time.Second
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		start := time.Now()
		err := c.doRequest(ctx, requestURL, out)
		metrics.TMDBRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		if err == nil {
			return nil
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < maxAttempts && isRetryable(err) {
			slog.Warn("tmdb: request failed, retrying",
				"endpoint", endpoint,
				"attempt", attempt,
				"error", err,
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("tmdb request: %w", ctx.Err())
			}
			delay *= 2
			continue
		}
		break
	}
	return fmt.Errorf("tmdb %s: %w", endpoint, lastErr)
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func isRetryable(err error) bool {
	if statusErr, ok := err.(*statusError); ok {
		return statusErr.code == http.StatusTooManyRequests || statusErr.code >= 500
	}
	return true
}

func (c *Client) doRequest(ctx context.Context, requestURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &statusError{code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// bestMatch scores search results against the suggested title and year
// and returns the winner, or nil when nothing scores above threshold.
func bestMatch(results []movieResult, title, year string) *movieResult {
	queryLower := strings.ToLower(strings.TrimSpace(title))
	queryWords := wordSet(queryLower)

	var best *movieResult
	bestScore := 0

	for i := range results {
		result := &results[i]
		localized := strings.ToLower(result.Title)
		original := strings.ToLower(result.OriginalTitle)

		score := 0
		switch {
		case localized == queryLower || original == queryLower:
			score += 100
		case strings.Contains(localized, queryLower):
			score += 80
		case strings.Contains(original, queryLower):
			score += 75
		}

		common := 0
		for word := range wordSet(localized) {
			if _, ok := queryWords[word]; ok {
				common++
			}
		}
		score += common * 20

		if year != "" && len(result.ReleaseDate) >= 4 {
			resultYear := result.ReleaseDate[:4]
			if resultYear == year {
				score += 50
			} else if yearDiff(resultYear, year) > 2 {
				score -= 30
			}
		}

		if score > bestScore {
			best = result
			bestScore = score
		}
	}

	if bestScore < matchThreshold {
		return nil
	}
	return best
}

func wordSet(s string) map[string]struct{} {
	words := map[string]struct{}{}
	for _, word := range strings.Fields(s) {
		words[word] = struct{}{}
	}
	return words
}

func yearDiff(a, b string) int {
	yearA, errA := strconv.Atoi(a)
	yearB, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return 0
	}
	diff := yearA - yearB
	if diff < 0 {
		diff = -diff
	}
	return diff
}

func resultToMovie(result movieResult) *Movie {
	return &Movie{
		TmdbID:        result.ID,
		Title:         result.Title,
		OriginalTitle: result.OriginalTitle,
		Overview:      result.Overview,
		ReleaseDate:   result.ReleaseDate,
		VoteAverage:   result.VoteAverage,
		PosterPath:    result.PosterPath,
		Popularity:    result.Popularity,
	}
}
