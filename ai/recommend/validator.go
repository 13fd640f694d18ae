package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/recomendashka/recomendashka/ai/llm"
	"github.com/recomendashka/recomendashka/ai/translate"
	"github.com/recomendashka/recomendashka/tmdb"
)

// Any fuzzy title ratio at or above this accepts the candidate.
const fuzzyThreshold = 0.4

// Rejection reasons, used as metric labels.
const (
	RejectPersonMismatch = "person_mismatch"
	RejectRelevance      = "relevance"
	RejectNotFound       = "not_found"
	RejectDuplicate      = "duplicate"
)

// Validator decides whether a TMDB-verified movie actually answers the
// user's request.
type Validator struct {
	llm        llm.Service
	translator *translate.Translator
}

func NewValidator(llmService llm.Service, translator *translate.Translator) *Validator {
	return &Validator{llm: llmService, translator: translator}
}

// Validate checks the movie against the query and the title the
// generator suggested. The returned reason is empty on acceptance.
//
// Order of checks: explicit person constraints are hard requirements;
// with none present, fuzzy title similarity accepts cheaply; an LLM
// yes/no check covers the rest, degrading to a genre heuristic and
// finally to acceptance, so verification failures never starve the
// user of results.
func (v *Validator) Validate(ctx context.Context, movie *tmdb.Movie, userQuery, suggestedTitle string) (bool, string) {
	if movie == nil {
		return false, RejectNotFound
	}

	requestedActors, requestedDirectors := ExtractPersonConstraints(userQuery)

	for _, actor := range requestedActors {
		if !personInList(actor, movie.Actors) {
			slog.Warn("requested actor not in cast",
				"actor", actor,
				"movie", movie.Title,
				"cast", movie.Actors,
			)
			return false, RejectPersonMismatch
		}
	}
	for _, director := range requestedDirectors {
		if !personInList(director, movie.Directors) {
			slog.Warn("requested director not in crew",
				"director", director,
				"movie", movie.Title,
				"crew", movie.Directors,
			)
			return false, RejectPersonMismatch
		}
	}

	// A satisfied person constraint is the strongest signal we have.
	if len(requestedActors) > 0 || len(requestedDirectors) > 0 {
		return true, ""
	}

	if v.fuzzyTitleMatch(ctx, movie, userQuery, suggestedTitle) {
		return true, ""
	}

	if v.llmRelevanceCheck(ctx, movie, userQuery, suggestedTitle) {
		return true, ""
	}
	return false, RejectRelevance
}

// fuzzyTitleMatch compares cleaned titles with a character-level
// similarity ratio. The original title is translated to Russian first
// when it is in another language, so «Начало» can match "Inception".
func (v *Validator) fuzzyTitleMatch(ctx context.Context, movie *tmdb.Movie, userQuery, suggestedTitle string) bool {
	cleanedQuery := strings.ToLower(translate.CleanText(userQuery))
	cleanedSuggested := strings.ToLower(translate.CleanText(suggestedTitle))
	cleanedLocalized := strings.ToLower(translate.CleanText(movie.Title))
	cleanedOriginal := strings.ToLower(translate.CleanText(movie.OriginalTitle))

	var cleanedTranslated string
	if cleanedOriginal != "" && v.translator != nil {
		if lang, ok := v.translator.DetectLanguage(ctx, movie.OriginalTitle); !ok || lang != "ru" {
			translated := v.translator.TranslateToRussian(ctx, movie.OriginalTitle)
			cleanedTranslated = strings.ToLower(translate.CleanText(translated))
		}
	}

	if cleanedSuggested != "" {
		if cleanedLocalized != "" && translate.Ratio(cleanedSuggested, cleanedLocalized) >= fuzzyThreshold {
			return true
		}
		if cleanedTranslated != "" && translate.Ratio(cleanedSuggested, cleanedTranslated) >= fuzzyThreshold {
			return true
		}
	}

	// Only meaty queries are themselves worth comparing against titles.
	if len(strings.Fields(cleanedQuery)) > 1 && len([]rune(cleanedQuery)) > 5 {
		for _, title := range []string{cleanedLocalized, cleanedOriginal, cleanedTranslated} {
			if title != "" && translate.Ratio(cleanedQuery, title) >= fuzzyThreshold {
				return true
			}
		}
	}
	return false
}

// llmRelevanceCheck asks the model for a bare yes/no verdict. On
// provider failure the genre heuristic takes over.
func (v *Validator) llmRelevanceCheck(ctx context.Context, movie *tmdb.Movie, userQuery, suggestedTitle string) bool {
	description := fmt.Sprintf(
		"Название: %s\nОригинальное название: %s\nГод: %s\nЖанры: %s\nАктеры: %s\nРежиссеры: %s\nОписание: %s",
		movie.Title,
		movie.OriginalTitle,
		movie.ReleaseYear(),
		strings.Join(movie.Genres, ", "),
		strings.Join(movie.Actors, ", "),
		strings.Join(movie.Directors, ", "),
		movie.Overview,
	)

	prompt := fmt.Sprintf(`Проанализируй, соответствует ли найденный фильм пользовательскому запросу.

ПОЛЬЗОВАТЕЛЬСКИЙ ЗАПРОС: %s

РЕКОМЕНДОВАННЫЙ ФИЛЬМ: %s

НАЙДЕННЫЙ В БАЗЕ ФИЛЬМ:
%s

Ответь ТОЛЬКО одним словом:
- "ДА" - если фильм соответствует запросу
- "НЕТ" - если фильм НЕ соответствует запросу

Ответ:`, userQuery, suggestedTitle, description)

	response, err := v.llm.ChatWithParams(ctx,
		[]llm.Message{llm.UserMessage(prompt)},
		llm.Params{MaxTokens: 10, Temperature: 0.1},
	)
	if err != nil {
		slog.Warn("LLM relevance check failed, using genre heuristic", "error", err)
		return validateByGenre(movie, userQuery)
	}

	verdict := strings.ToUpper(strings.TrimSpace(response))
	isValid := strings.Contains(verdict, "ДА") || strings.Contains(verdict, "YES")
	slog.Info("LLM relevance verdict",
		"movie", movie.Title,
		"verdict", verdict,
		"valid", isValid,
	)
	return isValid
}
