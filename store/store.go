package store

import (
	"context"
	"fmt"
	"time"

	"github.com/recomendashka/recomendashka/internal/profile"
	"github.com/recomendashka/recomendashka/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Caches
	userCache  *cache.Cache // telegram user rows
	movieCache *cache.Cache // movies by tmdb id
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
	}

	return &Store{
		driver:     driver,
		profile:    profile,
		userCache:  cache.New(cacheConfig),
		movieCache: cache.New(cacheConfig),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	s.userCache.Close()
	s.movieCache.Close()
	return s.driver.Close()
}

func (s *Store) UpsertUser(ctx context.Context, upsert *UpsertUser) (*User, error) {
	user, err := s.driver.UpsertUser(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(userCacheKey(user.UserID), user)
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (*User, error) {
	if cached, ok := s.userCache.Get(userCacheKey(userID)); ok {
		if user, ok := cached.(*User); ok {
			return user, nil
		}
	}
	user, err := s.driver.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		s.userCache.Set(userCacheKey(userID), user)
	}
	return user, nil
}

func (s *Store) UpsertMovie(ctx context.Context, upsert *UpsertMovie) (*Movie, error) {
	movie, err := s.driver.UpsertMovie(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.movieCache.Set(movieCacheKey(movie.TmdbID), movie)
	return movie, nil
}

func (s *Store) GetMovie(ctx context.Context, id int32) (*Movie, error) {
	movies, err := s.driver.ListMovies(ctx, &FindMovie{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, nil
	}
	return movies[0], nil
}

func (s *Store) GetMovieByTmdbID(ctx context.Context, tmdbID int64) (*Movie, error) {
	if cached, ok := s.movieCache.Get(movieCacheKey(tmdbID)); ok {
		if movie, ok := cached.(*Movie); ok {
			return movie, nil
		}
	}
	movies, err := s.driver.ListMovies(ctx, &FindMovie{TmdbID: &tmdbID})
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, nil
	}
	s.movieCache.Set(movieCacheKey(tmdbID), movies[0])
	return movies[0], nil
}

func (s *Store) GetMovieByTitle(ctx context.Context, title string) (*Movie, error) {
	movies, err := s.driver.ListMovies(ctx, &FindMovie{Title: &title})
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, nil
	}
	return movies[0], nil
}

func (s *Store) ListMovies(ctx context.Context, find *FindMovie) ([]*Movie, error) {
	return s.driver.ListMovies(ctx, find)
}

func (s *Store) UpsertRating(ctx context.Context, upsert *UpsertRating) (*Rating, error) {
	return s.driver.UpsertRating(ctx, upsert)
}

func (s *Store) ListRatings(ctx context.Context, find *FindRating) ([]*Rating, error) {
	return s.driver.ListRatings(ctx, find)
}

func (s *Store) CreateUserPreference(ctx context.Context, upsert *UpsertUserPreference) (*UserPreference, error) {
	return s.driver.CreateUserPreference(ctx, upsert)
}

func (s *Store) ListUserPreferences(ctx context.Context, find *FindUserPreference) ([]*UserPreference, error) {
	return s.driver.ListUserPreferences(ctx, find)
}

func (s *Store) DeleteUserPreferences(ctx context.Context, userID int64) error {
	return s.driver.DeleteUserPreferences(ctx, userID)
}

func (s *Store) CreateHistoryEntry(ctx context.Context, create *CreateHistoryEntry) (*HistoryEntry, error) {
	return s.driver.CreateHistoryEntry(ctx, create)
}

func (s *Store) ListHistoryEntries(ctx context.Context, find *FindHistoryEntry) ([]*HistoryEntry, error) {
	return s.driver.ListHistoryEntries(ctx, find)
}

func (s *Store) DeleteHistoryEntries(ctx context.Context, userID int64) error {
	return s.driver.DeleteHistoryEntries(ctx, userID)
}

func (s *Store) CreateFeedback(ctx context.Context, create *CreateFeedback) (*Feedback, error) {
	return s.driver.CreateFeedback(ctx, create)
}

func (s *Store) ListFeedback(ctx context.Context, find *FindFeedback) ([]*Feedback, error) {
	return s.driver.ListFeedback(ctx, find)
}

func userCacheKey(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

func movieCacheKey(tmdbID int64) string {
	return fmt.Sprintf("movie:%d", tmdbID)
}
