package recommend

import (
	"log/slog"
	"strings"

	"github.com/recomendashka/recomendashka/tmdb"
)

// Query keywords mapped to acceptable genre names. Used when the LLM
// relevance check is unavailable.
var genreKeywords = map[string][]string{
	"боевик":         {"боевик", "экшн", "action"},
	"комедия":        {"комедия", "comedy"},
	"драма":          {"драма", "drama"},
	"ужасы":          {"ужасы", "хоррор", "horror"},
	"фантастика":     {"фантастика", "sci-fi", "научная фантастика"},
	"триллер":        {"триллер", "thriller"},
	"мелодрама":      {"мелодрама", "романтика", "romance"},
	"детектив":       {"детектив", "mystery"},
	"анимация":       {"анимация", "мультфильм", "animation"},
	"документальный": {"документальный", "documentary"},
}

// Request keywords whose presence excludes certain found genres.
var incompatibleGenres = []struct {
	requestKeyword string
	genres         []string
}{
	{"боевик", []string{"мелодрама", "комедия", "документальный"}},
	{"ужасы", []string{"комедия", "мелодрама", "детский"}},
	{"комедия", []string{"ужасы", "триллер", "драма"}},
	{"детск", []string{"ужасы", "триллер", "взрослый"}},
}

// validateByGenre is the keyword heuristic used when the LLM check
// fails. It only rejects clear genre contradictions.
func validateByGenre(movie *tmdb.Movie, userQuery string) bool {
	queryLower := strings.ToLower(userQuery)
	genres := make([]string, 0, len(movie.Genres))
	for _, g := range movie.Genres {
		genres = append(genres, strings.ToLower(g))
	}

	var expectedGenres []string
	var foundKeywords []string
	for keyword, genreList := range genreKeywords {
		if strings.Contains(queryLower, keyword) {
			expectedGenres = append(expectedGenres, genreList...)
			foundKeywords = append(foundKeywords, keyword)
		}
	}

	// An explicit action request never matches romance or pure comedy.
	if strings.Contains(queryLower, "боевик") || strings.Contains(queryLower, "экшн") {
		if containsAny(genres, []string{"мелодрама", "комедия", "романтический", "романтика"}) {
			slog.Info("genre heuristic: requested action, found romance/comedy", "genres", genres)
			return false
		}
	}

	if len(expectedGenres) > 0 {
		hasMatch := containsAny(genres, expectedGenres)

		if contains(foundKeywords, "боевик") {
			hasAction := containsAny(genres, []string{"боевик", "экшн", "триллер", "криминал", "приключения"})
			isNonAction := containsAny(genres, []string{"мелодрама", "комедия", "документальный"})
			if isNonAction && !hasAction {
				slog.Info("genre heuristic: requested action, found non-action", "genres", genres)
				return false
			}
		}

		slog.Info("genre heuristic",
			"expected", expectedGenres,
			"found", genres,
			"match", hasMatch,
		)
		return hasMatch
	}

	// No genre keyword in the query: only reject explicit mismatches.
	for _, rule := range incompatibleGenres {
		if strings.Contains(queryLower, rule.requestKeyword) && containsAny(genres, rule.genres) {
			slog.Info("genre heuristic: incompatible genres",
				"keyword", rule.requestKeyword,
				"genres", genres,
			)
			return false
		}
	}
	return true
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func containsAny(values, targets []string) bool {
	for _, target := range targets {
		if contains(values, target) {
			return true
		}
	}
	return false
}
