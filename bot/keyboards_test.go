package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recomendashka/recomendashka/store"
)

func TestRatingKeyboard(t *testing.T) {
	keyboard := ratingKeyboard(42)
	require.Len(t, keyboard.InlineKeyboard, 3)

	// Zero sits alone, then two rows of five.
	assert.Len(t, keyboard.InlineKeyboard[0], 1)
	assert.Len(t, keyboard.InlineKeyboard[1], 5)
	assert.Len(t, keyboard.InlineKeyboard[2], 5)

	assert.Equal(t, "rate:42:0", *keyboard.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "rate:42:1", *keyboard.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "rate:42:10", *keyboard.InlineKeyboard[2][4].CallbackData)
}

func TestMovieKeyboard(t *testing.T) {
	keyboard := movieKeyboard(7)
	require.Len(t, keyboard.InlineKeyboard, 2)

	assert.Equal(t, "select_movie_for_rating_7", *keyboard.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "save:7", *keyboard.InlineKeyboard[0][1].CallbackData)
	assert.Equal(t, "details:7", *keyboard.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "similar:7", *keyboard.InlineKeyboard[1][1].CallbackData)
}

func TestMovieSelectionKeyboard(t *testing.T) {
	movies := []*store.Movie{
		{ID: 1, Title: "Матрица", ReleaseDate: "1999-03-31"},
		{ID: 2, Title: "Начало"},
	}
	keyboard := movieSelectionKeyboard(movies)
	require.Len(t, keyboard.InlineKeyboard, 3)

	assert.Equal(t, "Матрица (1999)", keyboard.InlineKeyboard[0][0].Text)
	assert.Equal(t, "select_movie_for_rating_1", *keyboard.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "Начало", keyboard.InlineKeyboard[1][0].Text)
	assert.Equal(t, "back:main_menu", *keyboard.InlineKeyboard[2][0].CallbackData)
}

func TestConfirmationKeyboard(t *testing.T) {
	keyboard := confirmationKeyboard("clear_history", "")
	require.Len(t, keyboard.InlineKeyboard, 1)
	require.Len(t, keyboard.InlineKeyboard[0], 2)

	assert.Equal(t, "confirm:clear_history:", *keyboard.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "cancel", *keyboard.InlineKeyboard[0][1].CallbackData)
}

func TestParseMovieID(t *testing.T) {
	id, ok := parseMovieID("42")
	assert.True(t, ok)
	assert.Equal(t, int32(42), id)

	for _, raw := range []string{"", "abc", "-1", "0", "99999999999999999999"} {
		_, ok := parseMovieID(raw)
		assert.False(t, ok, raw)
	}
}
