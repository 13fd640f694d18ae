package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recomendashka/recomendashka/store"
)

func TestTruncateText(t *testing.T) {
	short := "короткий текст"
	assert.Equal(t, short, truncateText(short, 700))

	long := strings.Repeat("слово ", 200)
	truncated := truncateText(long, 700)
	assert.True(t, strings.HasSuffix(truncated, "..."))
	assert.LessOrEqual(t, len([]rune(truncated)), 703)
	// The cut lands on a word boundary, not mid-word.
	assert.False(t, strings.HasSuffix(strings.TrimSuffix(truncated, "..."), "сло"))
}

func TestFormatMovie(t *testing.T) {
	movie := &store.Movie{
		Title:       "Матрица",
		ReleaseDate: "1999-03-31",
		VoteAverage: 8.2,
		Genres:      []string{"фантастика", "боевик"},
		Runtime:     136,
		Directors:   []string{"Лана Вачовски", "Лилли Вачовски"},
		Actors:      []string{"Киану Ривз", "Лоренс Фишберн"},
		Overview:    "Хакер Нео узнает правду о реальности.",
	}

	card := FormatMovie(movie)
	assert.Contains(t, card, "🎬 *Матрица* (1999)")
	assert.Contains(t, card, "⭐ Рейтинг: `8.2/10`")
	assert.Contains(t, card, "🎭 Жанры: фантастика, боевик")
	assert.Contains(t, card, "⏳ Длительность: 136 мин")
	assert.Contains(t, card, "👥 В ролях: Киану Ривз, Лоренс Фишберн")
	assert.Contains(t, card, "📝 *Описание:* Хакер Нео")
}

func TestFormatMovie_MissingFields(t *testing.T) {
	card := FormatMovie(&store.Movie{Title: "Безымянный"})
	assert.Contains(t, card, "🎬 *Безымянный* (–)")
	assert.Contains(t, card, "⏳ Длительность: –")
	assert.Contains(t, card, "Описание недоступно.")
}

func TestFormatMovieCaption(t *testing.T) {
	caption := FormatMovieCaption(&store.Movie{Title: "Матрица", ReleaseDate: "1999-03-31"})
	assert.Equal(t, "🎬 *Матрица* (1999)", caption)

	assert.Equal(t, "🎬 *Безымянный* (–)", FormatMovieCaption(&store.Movie{Title: "Безымянный"}))
}

func TestFormatMoviesList(t *testing.T) {
	assert.Equal(t, "Список фильмов пуст.", FormatMoviesList(nil))

	movies := []*store.Movie{
		{Title: "Матрица", ReleaseDate: "1999-03-31", VoteAverage: 8.2},
		{Title: "Начало", ReleaseDate: "2010-07-15", VoteAverage: 8.4},
	}
	list := FormatMoviesList(movies)
	assert.Contains(t, list, "1. *Матрица* — 1999, ⭐ 8.2/10")
	assert.Contains(t, list, "2. *Начало* — 2010, ⭐ 8.4/10")
}

func TestFormatRecommendations(t *testing.T) {
	out := FormatRecommendations("  Посмотрите «Матрицу»!  ")
	assert.Equal(t, "📢 *Рекомендации для вас:*\n\nПосмотрите «Матрицу»!", out)
}

func TestFormatError(t *testing.T) {
	out := FormatError("не удалось подобрать фильмы")
	assert.Contains(t, out, "❌ Произошла ошибка: *не удалось подобрать фильмы*")
	assert.Contains(t, out, "Пожалуйста, попробуйте еще раз.")
}
