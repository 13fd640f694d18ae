package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recomendashka/recomendashka/internal/profile"
	"github.com/recomendashka/recomendashka/store"
)

func newTestDB(t *testing.T) store.Driver {
	t.Helper()

	driver, err := NewDB(&profile.Profile{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "recomendashka_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })

	require.NoError(t, driver.Migrate(context.Background()))
	return driver
}

func TestUpsertUser(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	user, err := db.UpsertUser(ctx, &store.UpsertUser{UserID: 42, Username: "ivan"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.UserID)
	assert.Equal(t, "ivan", user.Username)

	// Repeated upserts keep the internal id and refresh the username.
	updated, err := db.UpsertUser(ctx, &store.UpsertUser{UserID: 42, Username: "ivan_new"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, updated.ID)
	assert.Equal(t, "ivan_new", updated.Username)

	found, err := db.GetUser(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "ivan_new", found.Username)
}

func TestGetUser_NotFound(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	user, err := db.GetUser(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUpsertMovie(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	movie, err := db.UpsertMovie(ctx, &store.UpsertMovie{
		TmdbID:        603,
		Title:         "Матрица",
		OriginalTitle: "The Matrix",
		Overview:      "Хакер Нео узнает правду о реальности.",
		ReleaseDate:   "1999-03-30",
		VoteAverage:   8.2,
		PosterPath:    "/matrix.jpg",
		Genres:        []string{"фантастика", "боевик"},
		Runtime:       136,
		Actors:        []string{"Киану Ривз", "Лоренс Фишборн"},
		Directors:     []string{"Лана Вачовски", "Лилли Вачовски"},
		Popularity:    85.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "1999", movie.ReleaseYear())
	assert.Equal(t, []string{"фантастика", "боевик"}, movie.Genres)
	assert.Equal(t, []string{"Киану Ривз", "Лоренс Фишборн"}, movie.Actors)
	assert.Equal(t, []string{"Лана Вачовски", "Лилли Вачовски"}, movie.Directors)

	// Upserting the same tmdb_id refreshes metadata without minting a new row.
	refreshed, err := db.UpsertMovie(ctx, &store.UpsertMovie{
		TmdbID:      603,
		Title:       "Матрица",
		VoteAverage: 8.3,
	})
	require.NoError(t, err)
	assert.Equal(t, movie.ID, refreshed.ID)
	assert.Equal(t, 8.3, refreshed.VoteAverage)
	assert.Equal(t, movie.CreatedTs, refreshed.CreatedTs)

	movies, err := db.ListMovies(ctx, &store.FindMovie{TmdbID: &movie.TmdbID})
	require.NoError(t, err)
	require.Len(t, movies, 1)
}

func TestListMovies_TitleCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.UpsertMovie(ctx, &store.UpsertMovie{TmdbID: 27205, Title: "Inception"})
	require.NoError(t, err)

	title := "inception"
	movies, err := db.ListMovies(ctx, &store.FindMovie{Title: &title})
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Inception", movies[0].Title)
}

func TestUpsertRating_Overwrites(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	movie, err := db.UpsertMovie(ctx, &store.UpsertMovie{TmdbID: 680, Title: "Криминальное чтиво"})
	require.NoError(t, err)

	first, err := db.UpsertRating(ctx, &store.UpsertRating{UserID: 42, MovieID: movie.ID, Rating: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, first.Rating)

	second, err := db.UpsertRating(ctx, &store.UpsertRating{UserID: 42, MovieID: movie.ID, Rating: 10})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 10, second.Rating)

	userID := int64(42)
	ratings, err := db.ListRatings(ctx, &store.FindRating{UserID: &userID})
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, 10, ratings[0].Rating)
}

func TestCreateUserPreference(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	pref, err := db.CreateUserPreference(ctx, &store.UpsertUserPreference{
		UserID: 42,
		Kind:   store.PreferenceGenre,
		Value:  "Фантастика",
	})
	require.NoError(t, err)
	require.NotNil(t, pref)
	assert.Equal(t, "фантастика", pref.Value, "values are stored lowercased")

	// Duplicates are silently skipped.
	dup, err := db.CreateUserPreference(ctx, &store.UpsertUserPreference{
		UserID: 42,
		Kind:   store.PreferenceGenre,
		Value:  "фантастика",
	})
	require.NoError(t, err)
	assert.Nil(t, dup)

	userID := int64(42)
	kind := store.PreferenceGenre
	prefs, err := db.ListUserPreferences(ctx, &store.FindUserPreference{UserID: &userID, Kind: &kind})
	require.NoError(t, err)
	require.Len(t, prefs, 1)
}

func TestDeleteUserPreferences(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.CreateUserPreference(ctx, &store.UpsertUserPreference{UserID: 42, Kind: store.PreferenceGenre, Value: "драма"})
	require.NoError(t, err)
	_, err = db.CreateUserPreference(ctx, &store.UpsertUserPreference{UserID: 7, Kind: store.PreferenceGenre, Value: "драма"})
	require.NoError(t, err)

	require.NoError(t, db.DeleteUserPreferences(ctx, 42))

	userID := int64(42)
	prefs, err := db.ListUserPreferences(ctx, &store.FindUserPreference{UserID: &userID})
	require.NoError(t, err)
	assert.Empty(t, prefs)

	otherID := int64(7)
	prefs, err = db.ListUserPreferences(ctx, &store.FindUserPreference{UserID: &otherID})
	require.NoError(t, err)
	assert.Len(t, prefs, 1)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	movie, err := db.UpsertMovie(ctx, &store.UpsertMovie{TmdbID: 157336, Title: "Интерстеллар"})
	require.NoError(t, err)

	_, err = db.CreateHistoryEntry(ctx, &store.CreateHistoryEntry{UserID: 42, MovieID: movie.ID, Action: store.HistoryRecommended})
	require.NoError(t, err)
	_, err = db.CreateHistoryEntry(ctx, &store.CreateHistoryEntry{UserID: 42, MovieID: movie.ID, Action: store.HistorySaved})
	require.NoError(t, err)

	userID := int64(42)
	entries, err := db.ListHistoryEntries(ctx, &store.FindHistoryEntry{UserID: &userID})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, store.HistorySaved, entries[0].Action, "newest first")

	action := store.HistorySaved
	entries, err = db.ListHistoryEntries(ctx, &store.FindHistoryEntry{UserID: &userID, Action: &action})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, db.DeleteHistoryEntries(ctx, 42))
	entries, err = db.ListHistoryEntries(ctx, &store.FindHistoryEntry{UserID: &userID})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFeedback(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	feedback, err := db.CreateFeedback(ctx, &store.CreateFeedback{
		UserID: 42,
		Query:  "что-то про космос",
		Text:   "Бот отличный, спасибо!",
	})
	require.NoError(t, err)
	assert.NotZero(t, feedback.ID)

	userID := int64(42)
	limit := 10
	feedbacks, err := db.ListFeedback(ctx, &store.FindFeedback{UserID: &userID, Limit: &limit})
	require.NoError(t, err)
	require.Len(t, feedbacks, 1)
	assert.Equal(t, "Бот отличный, спасибо!", feedbacks[0].Text)
}
