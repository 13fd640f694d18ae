// Package recommend implements the recommendation pipeline: LLM
// candidate generation, title extraction, TMDB verification, relevance
// validation, persistence and response composition.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/recomendashka/recomendashka/ai/llm"
	"github.com/recomendashka/recomendashka/ai/translate"
	"github.com/recomendashka/recomendashka/metrics"
	"github.com/recomendashka/recomendashka/store"
	"github.com/recomendashka/recomendashka/tmdb"
)

const (
	// Per-round cap on candidates taken from the generator output.
	maxCandidatesPerRound = 5

	// Below this many accepted movies the engine retries generation.
	minAcceptedMovies = 2

	// Retry rounds stop early once this many movies are accepted.
	retryAcceptTarget = 3

	maxRetryRounds = 2

	maxContextRatedTitles    = 5
	maxContextExcludedTitles = 10

	maxEnrichedMovies  = 2
	maxEnrichedPersons = 2
	maxEnrichedGenres  = 2

	maxSimilarMovies = 5
)

// MetadataProvider is the movie metadata surface the engine needs.
// *tmdb.Client satisfies it.
type MetadataProvider interface {
	SearchMovie(ctx context.Context, title, year string) (*tmdb.Movie, error)
	MovieDetails(ctx context.Context, id int64) (*tmdb.Movie, error)
	SimilarMovies(ctx context.Context, id int64, limit int) ([]*tmdb.Movie, error)
	SearchPerson(ctx context.Context, name string) (*tmdb.Person, error)
	PersonFilmography(ctx context.Context, personID int64) ([]*tmdb.Movie, error)
	MoviesByGenre(ctx context.Context, genre string, limit int) ([]*tmdb.Movie, error)
}

// Engine orchestrates the pipeline for a single user request.
type Engine struct {
	llm        llm.Service
	translator *translate.Translator
	metadata   MetadataProvider
	store      *store.Store
	validator  *Validator
}

// Result is a completed recommendation response. An apology body with
// no movies is still a successful result.
type Result struct {
	Response string
	Movies   []*store.Movie
	Note     string
}

func NewEngine(llmService llm.Service, translator *translate.Translator, metadata MetadataProvider, st *store.Store) *Engine {
	return &Engine{
		llm:        llmService,
		translator: translator,
		metadata:   metadata,
		store:      st,
		validator:  NewValidator(llmService, translator),
	}
}

// roundState accumulates pipeline outcomes across generation rounds.
type roundState struct {
	accepted           []*store.Movie
	acceptedTitles     []string // escaped "**Title** (Year)" fragments
	seen               map[string]struct{}
	excludedTitles     []string
	rejectedValidation int
}

// GenerateRecommendations runs the full pipeline for a user query.
// Per-candidate failures are logged and skipped; only a failed first
// generation surfaces as an error.
func (e *Engine) GenerateRecommendations(ctx context.Context, userQuery string, userID int64) (*Result, error) {
	requestID := uuid.NewString()[:8]
	log := slog.With("request_id", requestID, "user_id", userID)
	log.Info("generating recommendations", "query", userQuery)

	contextBlock := e.buildUserContext(ctx, userID, log)
	enrichedQuery := e.enrichQuery(ctx, userQuery, log)

	queryLanguage, _ := e.translator.DetectLanguage(ctx, userQuery)

	response, err := e.llm.Chat(ctx, []llm.Message{
		llm.SystemPrompt(initialSystemPrompt),
		llm.UserMessage(enrichedQuery + contextBlock),
	})
	if err != nil {
		return nil, fmt.Errorf("candidate generation: %w", err)
	}
	log.Debug("candidate response", "response", response)

	candidates := ExtractTitles(response)
	if len(candidates) == 0 {
		log.Warn("no titles extracted from response")
		return &Result{Response: extractionFailedResponse}, nil
	}
	if len(candidates) > maxCandidatesPerRound {
		candidates = candidates[:maxCandidatesPerRound]
	}

	state := &roundState{seen: map[string]struct{}{}}
	e.processCandidates(ctx, state, candidates, userQuery, queryLanguage, userID, 0, log)

	retries := 0
	for len(state.accepted) < minAcceptedMovies && state.rejectedValidation >= 1 && retries < maxRetryRounds {
		retries++
		log.Info("retrying generation",
			"round", retries,
			"accepted", len(state.accepted),
			"excluded", len(state.excludedTitles),
		)

		retryResponse, err := e.llm.Chat(ctx, []llm.Message{
			llm.SystemPrompt(initialSystemPrompt),
			llm.UserMessage(e.buildRetryPrompt(userQuery, state) + contextBlock),
		})
		if err != nil {
			log.Warn("retry generation failed", "error", err)
			break
		}

		retryCandidates := ExtractTitles(retryResponse)
		if len(retryCandidates) > maxCandidatesPerRound {
			retryCandidates = retryCandidates[:maxCandidatesPerRound]
		}
		e.processCandidates(ctx, state, retryCandidates, userQuery, queryLanguage, userID, retryAcceptTarget, log)
	}

	result := &Result{Movies: state.accepted}
	if retries > 0 && len(state.accepted) < minAcceptedMovies {
		result.Note = fmt.Sprintf(
			"⚠️ После %d попыток улучшить рекомендации, некоторые фильмы все еще были исключены из-за неточной информации (найдено %d несоответствий).",
			retries, state.rejectedValidation,
		)
	}

	result.Response = e.composeResponse(ctx, state, log)
	metrics.RecommendationsServed.Inc()
	log.Info("recommendations ready", "movies", len(state.accepted), "retries", retries)
	return result, nil
}

// processCandidates verifies and persists candidates in order.
// acceptTarget > 0 stops the round early once reached.
func (e *Engine) processCandidates(ctx context.Context, state *roundState, candidates []Candidate, userQuery, queryLanguage string, userID int64, acceptTarget int, log *slog.Logger) {
	for _, candidate := range candidates {
		if acceptTarget > 0 && len(state.accepted) >= acceptTarget {
			return
		}

		dedupeKey := strings.ToLower(candidate.Title)
		if _, ok := state.seen[dedupeKey]; ok {
			metrics.CandidatesRejected.WithLabelValues(RejectDuplicate).Inc()
			continue
		}
		state.seen[dedupeKey] = struct{}{}

		movie := e.verifyCandidate(ctx, state, candidate, userQuery, queryLanguage, log)
		if movie == nil {
			continue
		}

		persisted, err := e.persistRecommendation(ctx, movie, userID)
		if err != nil {
			log.Error("failed to persist recommendation", "title", movie.Title, "error", err)
			continue
		}

		state.accepted = append(state.accepted, persisted)
		state.acceptedTitles = append(state.acceptedTitles,
			fmt.Sprintf("**%s** (%s)", escapeMarkdownV2(persisted.Title), displayYear(persisted)))
	}
}

// verifyCandidate bridges the language gap, resolves the candidate in
// TMDB and validates its relevance. Returns nil when rejected.
func (e *Engine) verifyCandidate(ctx context.Context, state *roundState, candidate Candidate, userQuery, queryLanguage string, log *slog.Logger) *tmdb.Movie {
	searchTitle := candidate.Title
	if queryLanguage == "ru" {
		translated := e.translator.TranslateToEnglish(ctx, candidate.Title)
		if e.translator.IsTranslationDifferent(candidate.Title, translated) {
			searchTitle = translated
			log.Debug("using translated title for search",
				"original", candidate.Title,
				"translated", translated,
			)
		}
	}

	year := ""
	if candidate.Year > 0 {
		year = strconv.Itoa(candidate.Year)
	}

	movie, err := e.metadata.SearchMovie(ctx, searchTitle, year)
	if err != nil {
		log.Warn("TMDB search failed", "title", searchTitle, "error", err)
		return nil
	}
	if movie == nil {
		log.Warn("candidate not found in TMDB", "title", candidate.Title)
		metrics.CandidatesRejected.WithLabelValues(RejectNotFound).Inc()
		state.excludedTitles = append(state.excludedTitles, candidate.Title)
		return nil
	}

	if ok, reason := e.validator.Validate(ctx, movie, userQuery, candidate.Title); !ok {
		log.Warn("candidate rejected",
			"title", movie.Title,
			"reason", reason,
		)
		metrics.CandidatesRejected.WithLabelValues(reason).Inc()
		state.excludedTitles = append(state.excludedTitles, candidate.Title)
		state.rejectedValidation++
		return nil
	}
	return movie
}

func (e *Engine) persistRecommendation(ctx context.Context, movie *tmdb.Movie, userID int64) (*store.Movie, error) {
	persisted, err := e.store.UpsertMovie(ctx, &store.UpsertMovie{
		TmdbID:        movie.TmdbID,
		Title:         movie.Title,
		OriginalTitle: movie.OriginalTitle,
		Overview:      movie.Overview,
		ReleaseDate:   movie.ReleaseDate,
		VoteAverage:   movie.VoteAverage,
		PosterPath:    movie.PosterPath,
		Genres:        movie.Genres,
		Runtime:       movie.Runtime,
		Actors:        movie.Actors,
		Directors:     movie.Directors,
		Popularity:    movie.Popularity,
	})
	if err != nil {
		return nil, err
	}

	if _, err := e.store.CreateHistoryEntry(ctx, &store.CreateHistoryEntry{
		UserID:  userID,
		MovieID: persisted.ID,
		Action:  store.HistoryRecommended,
	}); err != nil {
		// History is advisory; the recommendation itself stands.
		slog.Warn("failed to record history", "movie_id", persisted.ID, "error", err)
	}
	return persisted, nil
}

// composeResponse asks the LLM for a friendly phrasing of the accepted
// titles, falling back to a plain template and then to an apology.
func (e *Engine) composeResponse(ctx context.Context, state *roundState, log *slog.Logger) string {
	if len(state.accepted) == 0 {
		return noRecommendationsResponse
	}

	prompt := fmt.Sprintf(
		"Вот список фильмов, которые я для вас подобрал: %s. "+
			"Напиши короткий, дружелюбный текст, рекомендуя эти фильмы, "+
			"как будто ты только что их нашел специально для пользователя. "+
			"Не используй общие фразы типа 'Вот что я могу порекомендовать'. "+
			"Просто представь список фильмов в естественной манере. "+
			"Упоминай только те фильмы, которые были предоставлены.",
		strings.Join(state.acceptedTitles, ", "),
	)

	response, err := e.llm.Chat(ctx, []llm.Message{
		llm.SystemPrompt(finalSystemPrompt),
		llm.UserMessage(prompt),
	})
	if err != nil {
		log.Warn("phrasing generation failed, using plain list", "error", err)
		return "Вот фильмы, которые я для вас подобрал: " + strings.Join(state.acceptedTitles, ", ")
	}
	return response
}

func (e *Engine) buildRetryPrompt(userQuery string, state *roundState) string {
	excluded := state.excludedTitles
	if len(excluded) > maxContextRatedTitles {
		excluded = excluded[len(excluded)-maxContextRatedTitles:]
	}
	return userQuery +
		"\n\nВАЖНО: НЕ предлагай эти фильмы, они не подошли: " + strings.Join(excluded, ", ") +
		". Предложи ДРУГИЕ реальные фильмы. Не выдумывай названия и не повторяйся."
}

// buildUserContext assembles the personalization block: learned
// preferences, highly rated titles and an exclusion list. Store
// failures degrade to an empty block.
func (e *Engine) buildUserContext(ctx context.Context, userID int64, log *slog.Logger) string {
	var contextBlock strings.Builder

	prefs, err := e.store.ListUserPreferences(ctx, &store.FindUserPreference{UserID: &userID})
	if err != nil {
		log.Warn("failed to load preferences", "error", err)
	} else if len(prefs) > 0 {
		pairs := make([]string, 0, len(prefs))
		for _, pref := range prefs {
			pairs = append(pairs, pref.Kind+": "+pref.Value)
		}
		contextBlock.WriteString("\n\nПользовательские предпочтения: " + strings.Join(pairs, ", "))
	}

	ratings, err := e.store.ListRatings(ctx, &store.FindRating{UserID: &userID})
	if err != nil {
		log.Warn("failed to load ratings", "error", err)
		return contextBlock.String()
	}

	var highRated []string
	var known []string
	for _, rating := range ratings {
		movie, err := e.store.GetMovie(ctx, rating.MovieID)
		if err != nil || movie == nil {
			continue
		}
		if rating.Rating >= 8 && len(highRated) < maxContextRatedTitles {
			highRated = append(highRated, fmt.Sprintf("«%s» (%d/10)", movie.Title, rating.Rating))
		}
		if len(known) < maxContextExcludedTitles {
			known = append(known, movie.Title)
		}
	}

	if len(highRated) > 0 {
		contextBlock.WriteString("\n\nФильмы, высоко оцененные пользователем: " + strings.Join(highRated, ", "))
	}
	if len(known) > 0 {
		contextBlock.WriteString("\n\nНЕ рекомендуй эти фильмы (уже известны пользователю): " + strings.Join(known, ", "))
	}
	return contextBlock.String()
}

// ProcessRating stores a rating and learns preferences from
// exceptional scores: the first genre at 9+, the first director at a
// perfect 10. Caps are first-come.
func (e *Engine) ProcessRating(ctx context.Context, userID int64, movieID int32, rating int) (*store.Rating, error) {
	saved, err := e.store.UpsertRating(ctx, &store.UpsertRating{
		UserID:  userID,
		MovieID: movieID,
		Rating:  rating,
	})
	if err != nil {
		return nil, fmt.Errorf("save rating: %w", err)
	}

	if _, err := e.store.CreateHistoryEntry(ctx, &store.CreateHistoryEntry{
		UserID:  userID,
		MovieID: movieID,
		Action:  store.HistoryRated,
	}); err != nil {
		slog.Warn("failed to record rating history", "movie_id", movieID, "error", err)
	}

	if rating < 9 {
		return saved, nil
	}

	movie, err := e.store.GetMovie(ctx, movieID)
	if err != nil || movie == nil {
		slog.Warn("cannot learn preferences without movie", "movie_id", movieID, "error", err)
		return saved, nil
	}

	if len(movie.Genres) > 0 {
		e.learnPreference(ctx, userID, store.PreferenceGenre, movie.Genres[0], store.MaxGenrePreferences)
	}
	if rating == 10 && len(movie.Directors) > 0 {
		e.learnPreference(ctx, userID, store.PreferenceDirector, movie.Directors[0], store.MaxDirectorPreferences)
	}
	return saved, nil
}

func (e *Engine) learnPreference(ctx context.Context, userID int64, kind, value string, limit int) {
	existing, err := e.store.ListUserPreferences(ctx, &store.FindUserPreference{UserID: &userID, Kind: &kind})
	if err != nil {
		slog.Warn("failed to list preferences", "kind", kind, "error", err)
		return
	}
	if len(existing) >= limit {
		return
	}

	pref, err := e.store.CreateUserPreference(ctx, &store.UpsertUserPreference{
		UserID: userID,
		Kind:   kind,
		Value:  value,
	})
	if err != nil {
		slog.Warn("failed to save preference", "kind", kind, "value", value, "error", err)
		return
	}
	if pref != nil {
		slog.Info("learned preference", "user_id", userID, "kind", kind, "value", pref.Value)
	}
}

// SimilarMovies resolves a title and returns enriched, persisted films
// TMDB considers similar, excluding ones the user already rated.
func (e *Engine) SimilarMovies(ctx context.Context, userID int64, title string) ([]*store.Movie, error) {
	var tmdbID int64

	if known, err := e.store.GetMovieByTitle(ctx, title); err == nil && known != nil {
		tmdbID = known.TmdbID
	} else {
		found, err := e.metadata.SearchMovie(ctx, title, "")
		if err != nil {
			return nil, fmt.Errorf("resolve movie: %w", err)
		}
		if found == nil {
			return nil, nil
		}
		tmdbID = found.TmdbID
	}

	candidates, err := e.metadata.SimilarMovies(ctx, tmdbID, 2*maxSimilarMovies)
	if err != nil {
		return nil, fmt.Errorf("similar movies: %w", err)
	}

	ratedTitles := e.ratedTitles(ctx, userID)

	var movies []*store.Movie
	for _, candidate := range candidates {
		if len(movies) >= maxSimilarMovies {
			break
		}
		if isKnownTitle(candidate, ratedTitles) {
			slog.Debug("skipping already rated similar movie", "title", candidate.Title)
			continue
		}

		details, err := e.metadata.MovieDetails(ctx, candidate.TmdbID)
		if err != nil || details == nil {
			slog.Warn("failed to enrich similar movie", "tmdb_id", candidate.TmdbID, "error", err)
			continue
		}

		persisted, err := e.store.UpsertMovie(ctx, &store.UpsertMovie{
			TmdbID:        details.TmdbID,
			Title:         details.Title,
			OriginalTitle: details.OriginalTitle,
			Overview:      details.Overview,
			ReleaseDate:   details.ReleaseDate,
			VoteAverage:   details.VoteAverage,
			PosterPath:    details.PosterPath,
			Genres:        details.Genres,
			Runtime:       details.Runtime,
			Actors:        details.Actors,
			Directors:     details.Directors,
			Popularity:    details.Popularity,
		})
		if err != nil {
			slog.Error("failed to persist similar movie", "title", details.Title, "error", err)
			continue
		}

		if _, err := e.store.CreateHistoryEntry(ctx, &store.CreateHistoryEntry{
			UserID:  userID,
			MovieID: persisted.ID,
			Action:  store.HistoryViewedSimilar,
		}); err != nil {
			slog.Warn("failed to record similar history", "movie_id", persisted.ID, "error", err)
		}
		movies = append(movies, persisted)
	}
	return movies, nil
}

func (e *Engine) ratedTitles(ctx context.Context, userID int64) []string {
	ratings, err := e.store.ListRatings(ctx, &store.FindRating{UserID: &userID})
	if err != nil {
		slog.Warn("failed to load ratings for similar filter", "error", err)
		return nil
	}

	var titles []string
	for _, rating := range ratings {
		movie, err := e.store.GetMovie(ctx, rating.MovieID)
		if err != nil || movie == nil {
			continue
		}
		titles = append(titles, strings.ToLower(movie.Title), strings.ToLower(movie.OriginalTitle))
	}
	return titles
}

func isKnownTitle(movie *tmdb.Movie, knownTitles []string) bool {
	localized := strings.ToLower(movie.Title)
	original := strings.ToLower(movie.OriginalTitle)
	for _, known := range knownTitles {
		if known == "" {
			continue
		}
		if strings.Contains(localized, known) || strings.Contains(known, localized) ||
			(original != "" && (strings.Contains(original, known) || strings.Contains(known, original))) {
			return true
		}
	}
	return false
}

// Query enrichment: mentioned movies, persons and genres are resolved
// against TMDB and appended to the prompt as factual context, so the
// generator grounds its suggestions in real data.

var mentionedMoviePatterns = []*regexp.Regexp{
	regexp.MustCompile(`"([^"]+)"`),
	regexp.MustCompile(`как\s+([А-ЯЁ][а-яё]+(?:\s+[А-ЯЁ][а-яё]+)*)`),
	regexp.MustCompile(`типа\s+([А-ЯЁ][а-яё]+(?:\s+[А-ЯЁ][а-яё]+)*)`),
	regexp.MustCompile(`похож[а-я]*\s+на\s+([А-ЯЁ][а-яё]+(?:\s+[А-ЯЁ][а-яё]+)*)`),
}

var mentionedPersonPatterns = append(append([]*regexp.Regexp{}, actorPatterns...), directorPatterns...)

var movieMentionStopwords = map[string]struct{}{
	"Все": {}, "Что": {}, "Как": {}, "Где": {}, "Это": {}, "Там": {},
}

// Genre stems matched against the query for discover-based context.
var enrichmentGenreStems = map[string]string{
	"боевик":       "боевик",
	"экшн":         "боевик",
	"комеди":       "комедия",
	"драм":         "драма",
	"ужас":         "ужасы",
	"хоррор":       "ужасы",
	"фантастик":    "фантастика",
	"триллер":      "триллер",
	"мелодрам":     "мелодрама",
	"романтик":     "мелодрама",
	"детектив":     "детектив",
	"мультфильм":   "мультфильм",
	"анимаци":      "мультфильм",
	"документальн": "документальный",
}

func (e *Engine) enrichQuery(ctx context.Context, userQuery string, log *slog.Logger) string {
	enriched := userQuery

	foundMovies := map[string]struct{}{}
	for _, pattern := range mentionedMoviePatterns {
		for _, match := range pattern.FindAllStringSubmatch(userQuery, -1) {
			title := strings.TrimSpace(match[1])
			if len([]rune(title)) <= 2 {
				continue
			}
			if _, stop := movieMentionStopwords[title]; stop {
				continue
			}
			foundMovies[title] = struct{}{}
		}
	}

	enrichedMovies := 0
	for title := range foundMovies {
		if enrichedMovies >= maxEnrichedMovies {
			break
		}
		movie, err := e.metadata.SearchMovie(ctx, title, "")
		if err != nil || movie == nil {
			continue
		}
		enrichedMovies++
		enriched += fmt.Sprintf(
			"\n\nИнформация из TMDB о фильме \"%s\": жанры - %s, режиссер - %s, рейтинг - %.1f/10",
			movie.Title,
			strings.Join(movie.Genres, ", "),
			strings.Join(movie.Directors, ", "),
			movie.VoteAverage,
		)
	}

	foundPersons := map[string]struct{}{}
	for _, pattern := range mentionedPersonPatterns {
		for _, match := range pattern.FindAllStringSubmatch(userQuery, -1) {
			name := strings.TrimSpace(match[1])
			if len(strings.Fields(name)) != 2 {
				continue
			}
			if _, isMovie := foundMovies[name]; isMovie {
				continue
			}
			foundPersons[NormalizePersonName(name)] = struct{}{}
		}
	}

	enrichedPersons := 0
	for name := range foundPersons {
		if enrichedPersons >= maxEnrichedPersons {
			break
		}
		person, err := e.metadata.SearchPerson(ctx, name)
		if err != nil || person == nil {
			continue
		}
		filmography, err := e.metadata.PersonFilmography(ctx, person.ID)
		if err != nil || len(filmography) == 0 {
			continue
		}
		enrichedPersons++

		titles := make([]string, 0, maxContextRatedTitles)
		for _, movie := range filmography {
			if len(titles) >= maxContextRatedTitles {
				break
			}
			titles = append(titles, fmt.Sprintf("\"%s\" (%s)", movie.Title, displayYear(movie)))
		}
		enriched += fmt.Sprintf("\n\nИнформация из TMDB - %s снимался в: %s", person.Name, strings.Join(titles, ", "))
	}

	queryLower := strings.ToLower(userQuery)
	seenGenres := map[string]struct{}{}
	enrichedGenres := 0
	for stem, genre := range enrichmentGenreStems {
		if enrichedGenres >= maxEnrichedGenres {
			break
		}
		if !strings.Contains(queryLower, stem) {
			continue
		}
		if _, ok := seenGenres[genre]; ok {
			continue
		}
		seenGenres[genre] = struct{}{}

		popular, err := e.metadata.MoviesByGenre(ctx, genre, maxContextRatedTitles)
		if err != nil || len(popular) == 0 {
			continue
		}
		enrichedGenres++

		titles := make([]string, 0, len(popular))
		for _, movie := range popular {
			titles = append(titles, fmt.Sprintf("\"%s\" (%s, рейтинг %.1f/10)", movie.Title, displayYear(movie), movie.VoteAverage))
		}
		enriched += fmt.Sprintf("\n\nПопулярные фильмы жанра %s из TMDB: %s", genre, strings.Join(titles, ", "))
	}

	if enriched != userQuery {
		log.Debug("query enriched with TMDB context")
	}
	return enriched
}

func displayYear(movie interface{ ReleaseYear() string }) string {
	if year := movie.ReleaseYear(); year != "" {
		return year
	}
	return "N/A"
}

// escapeMarkdownV2 escapes Telegram MarkdownV2 special characters.
func escapeMarkdownV2(text string) string {
	var builder strings.Builder
	for _, r := range text {
		if strings.ContainsRune(`_*[]()~`+"`"+`>#+-.=|{}!`, r) {
			builder.WriteRune('\\')
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
