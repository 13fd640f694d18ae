package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/recomendashka/recomendashka/store"
)

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Acknowledge immediately so the button stops spinning.
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		slog.Warn("failed to answer callback", "error", err)
	}
	if query.Message == nil {
		return
	}

	chatID := query.Message.Chat.ID
	userID := query.From.ID
	data := query.Data

	switch {
	case data == callbackGetRecommendations:
		b.setState(chatID, stateAwaitingQuery)
		b.send(chatID, askQueryText)

	case data == callbackViewSavedMovies:
		b.showSavedMovies(ctx, chatID, userID)

	case data == callbackViewHistory:
		b.handleHistory(ctx, chatID, userID)

	case data == callbackStartFeedback:
		b.setState(chatID, stateAwaitingFeedback)
		b.send(chatID, askFeedbackText)

	case data == callbackCancel:
		b.setState(chatID, stateIdle)
		keyboard := startKeyboard()
		b.sendWithKeyboard(chatID, "Действие отменено.", &keyboard)

	case data == callbackClearHistory:
		keyboard := confirmationKeyboard("clear_history", "")
		b.sendWithKeyboard(chatID, "Удалить всю историю? Это действие нельзя отменить.", &keyboard)

	case strings.HasPrefix(data, callbackConfirmPrefix):
		b.handleConfirm(ctx, chatID, userID, strings.TrimPrefix(data, callbackConfirmPrefix))

	case strings.HasPrefix(data, callbackBackPrefix):
		keyboard := startKeyboard()
		b.sendWithKeyboard(chatID, "Чем могу помочь?", &keyboard)

	case strings.HasPrefix(data, callbackRatePrefix):
		b.handleRateCallback(ctx, chatID, userID, strings.TrimPrefix(data, callbackRatePrefix))

	case strings.HasPrefix(data, callbackSelectForRatingPrefix):
		movieID, ok := parseMovieID(strings.TrimPrefix(data, callbackSelectForRatingPrefix))
		if !ok {
			return
		}
		keyboard := ratingKeyboard(movieID)
		b.sendWithKeyboard(chatID, "Ваша оценка от 0 до 10:", &keyboard)

	case strings.HasPrefix(data, callbackSavePrefix):
		b.handleSaveCallback(ctx, chatID, userID, strings.TrimPrefix(data, callbackSavePrefix))

	case strings.HasPrefix(data, callbackDetailsPrefix):
		b.handleDetailsCallback(ctx, chatID, strings.TrimPrefix(data, callbackDetailsPrefix))

	case strings.HasPrefix(data, callbackSimilarPrefix):
		b.handleSimilarCallback(ctx, chatID, userID, strings.TrimPrefix(data, callbackSimilarPrefix))

	default:
		slog.Warn("unknown callback", "data", data)
	}
}

// handleRateCallback processes "movieID:score" rating payloads.
func (b *Bot) handleRateCallback(ctx context.Context, chatID, userID int64, payload string) {
	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		return
	}
	movieID, ok := parseMovieID(parts[0])
	if !ok {
		return
	}
	score, err := strconv.Atoi(parts[1])
	if err != nil || score < 0 || score > 10 {
		return
	}

	if _, err := b.engine.ProcessRating(ctx, userID, movieID, score); err != nil {
		slog.Error("failed to process rating", "movie_id", movieID, "error", err)
		b.send(chatID, FormatError("не удалось сохранить оценку"))
		return
	}

	keyboard := postActionKeyboard()
	b.sendWithKeyboard(chatID, fmt.Sprintf("Оценка %d/10 сохранена ⭐ Спасибо!", score), &keyboard)
}

func (b *Bot) handleSaveCallback(ctx context.Context, chatID, userID int64, payload string) {
	movieID, ok := parseMovieID(payload)
	if !ok {
		return
	}

	if _, err := b.store.CreateHistoryEntry(ctx, &store.CreateHistoryEntry{
		UserID:  userID,
		MovieID: movieID,
		Action:  store.HistorySaved,
	}); err != nil {
		slog.Error("failed to save movie", "movie_id", movieID, "error", err)
		b.send(chatID, FormatError("не удалось сохранить фильм"))
		return
	}
	b.send(chatID, "Фильм сохранен ❤️")
}

func (b *Bot) handleDetailsCallback(ctx context.Context, chatID int64, payload string) {
	movieID, ok := parseMovieID(payload)
	if !ok {
		return
	}

	movie, err := b.store.GetMovie(ctx, movieID)
	if err != nil || movie == nil {
		slog.Error("failed to load movie details", "movie_id", movieID, "error", err)
		b.send(chatID, FormatError("фильм не найден"))
		return
	}
	b.send(chatID, FormatMovie(movie))
}

func (b *Bot) handleSimilarCallback(ctx context.Context, chatID, userID int64, payload string) {
	movieID, ok := parseMovieID(payload)
	if !ok {
		return
	}

	movie, err := b.store.GetMovie(ctx, movieID)
	if err != nil || movie == nil {
		b.send(chatID, FormatError("фильм не найден"))
		return
	}

	b.send(chatID, "🔍 Ищу похожие фильмы...")
	similar, err := b.engine.SimilarMovies(ctx, userID, movie.Title)
	if err != nil {
		slog.Error("similar movies failed", "movie_id", movieID, "error", err)
		b.send(chatID, FormatError("не удалось найти похожие фильмы"))
		return
	}
	if len(similar) == 0 {
		b.send(chatID, fmt.Sprintf("Не нашла похожих на «%s» 😔", movie.Title))
		return
	}

	b.send(chatID, fmt.Sprintf("🎞 *Похожие на «%s»:*", movie.Title))
	for _, m := range similar {
		b.sendMovieCard(chatID, m)
	}
}

func (b *Bot) handleConfirm(ctx context.Context, chatID, userID int64, payload string) {
	action, _, _ := strings.Cut(payload, ":")
	switch action {
	case "clear_history":
		if err := b.store.DeleteHistoryEntries(ctx, userID); err != nil {
			slog.Error("failed to clear history", "user_id", userID, "error", err)
			b.send(chatID, FormatError("не удалось очистить историю"))
			return
		}
		keyboard := startKeyboard()
		b.sendWithKeyboard(chatID, "История очищена 🗑", &keyboard)
	default:
		slog.Warn("unknown confirm action", "action", action)
	}
}

func (b *Bot) showSavedMovies(ctx context.Context, chatID, userID int64) {
	movies, err := b.recentMovies(ctx, userID, store.HistorySaved)
	if err != nil {
		slog.Error("failed to load saved movies", "user_id", userID, "error", err)
		b.send(chatID, FormatError("не удалось загрузить сохраненные фильмы"))
		return
	}

	keyboard := backKeyboard("main_menu")
	b.sendWithKeyboard(chatID, "❤️ *Сохраненные фильмы:*\n\n"+FormatMoviesList(movies), &keyboard)
}

func parseMovieID(raw string) (int32, bool) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}
