package bot

import (
	"fmt"
	"strings"

	"github.com/recomendashka/recomendashka/store"
)

// Telegram photo captions are capped at 1024 characters; the overview
// gets less so the rest of the card always fits.
const maxOverviewLength = 700

// truncateText cuts text at the limit, breaking on the last full word.
func truncateText(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	truncated := string(runes[:maxLength])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace != -1 {
		return truncated[:lastSpace] + "..."
	}
	return truncated + "..."
}

// FormatMovie renders a full movie card in Telegram Markdown.
func FormatMovie(movie *store.Movie) string {
	overview := movie.Overview
	if overview == "" {
		overview = "Описание недоступно."
	}
	overview = truncateText(overview, maxOverviewLength)

	year := movie.ReleaseYear()
	if year == "" {
		year = "–"
	}
	genres := strings.Join(movie.Genres, ", ")
	if genres == "" {
		genres = "–"
	}
	runtime := "–"
	if movie.Runtime > 0 {
		runtime = fmt.Sprintf("%d мин", movie.Runtime)
	}
	directors := strings.Join(movie.Directors, ", ")
	if directors == "" {
		directors = "–"
	}
	actors := strings.Join(movie.Actors, ", ")
	if actors == "" {
		actors = "–"
	}

	lines := []string{
		fmt.Sprintf("🎬 *%s* (%s)", movie.Title, year),
		fmt.Sprintf("⭐ Рейтинг: `%.1f/10`", movie.VoteAverage),
		"🎭 Жанры: " + genres,
		"⏳ Длительность: " + runtime,
		"🎥 Режиссер: " + directors,
		"👥 В ролях: " + actors,
		"",
		"📝 *Описание:* " + overview,
	}
	return strings.Join(lines, "\n")
}

// FormatMovieCaption is the short per-card caption used with posters.
func FormatMovieCaption(movie *store.Movie) string {
	year := movie.ReleaseYear()
	if year == "" {
		year = "–"
	}
	return fmt.Sprintf("🎬 *%s* (%s)", movie.Title, year)
}

// FormatMoviesList renders a compact numbered list.
func FormatMoviesList(movies []*store.Movie) string {
	if len(movies) == 0 {
		return "Список фильмов пуст."
	}

	lines := make([]string, 0, len(movies))
	for i, movie := range movies {
		year := movie.ReleaseYear()
		if year == "" {
			year = "–"
		}
		lines = append(lines, fmt.Sprintf("%d. *%s* — %s, ⭐ %.1f/10", i+1, movie.Title, year, movie.VoteAverage))
	}
	return strings.Join(lines, "\n")
}

// FormatRecommendations frames the engine's phrased response.
func FormatRecommendations(response string) string {
	return "📢 *Рекомендации для вас:*\n\n" + strings.TrimSpace(response)
}

// FormatError renders a user-facing error.
func FormatError(message string) string {
	return fmt.Sprintf("❌ Произошла ошибка: *%s*\n\nПожалуйста, попробуйте еще раз.", message)
}
