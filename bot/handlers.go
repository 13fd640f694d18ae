package bot

import (
	"context"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/recomendashka/recomendashka/store"
)

const (
	greetingText = "Привет! Я РекоменДашка 🎬\n\n" +
		"Опишите, что хотите посмотреть, и я подберу для вас фильмы. " +
		"Например: «посоветуй боевик с Томом Хэнксом» или «что-нибудь лёгкое на вечер»."

	helpText = "Вот что я умею:\n\n" +
		"/recommend — подобрать фильмы по описанию\n" +
		"/rate — оценить фильм из недавних рекомендаций\n" +
		"/history — история ваших фильмов\n" +
		"/feedback — оставить отзыв о боте\n\n" +
		"Или просто напишите, что хотите посмотреть."

	askQueryText    = "Опишите, что хотите посмотреть 🎬"
	askFeedbackText = "Напишите ваш отзыв о боте ✍️"
	thinkingText    = "🔍 Подбираю фильмы, это может занять до минуты..."
	feedbackThanks  = "Спасибо за отзыв! 💙"

	historyLimit = 10
)

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := message.From.ID

	if _, err := b.store.UpsertUser(ctx, &store.UpsertUser{
		UserID:   userID,
		Username: message.From.UserName,
	}); err != nil {
		slog.Error("failed to upsert user", "user_id", userID, "error", err)
	}

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}

	switch b.chatState(chatID) {
	case stateAwaitingFeedback:
		b.handleFeedbackText(ctx, chatID, userID, text)
	default:
		// Free text is a recommendation query.
		b.handleRecommendation(ctx, chatID, userID, text)
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := message.From.ID
	b.setState(chatID, stateIdle)

	switch message.Command() {
	case "start":
		keyboard := startKeyboard()
		b.sendWithKeyboard(chatID, greetingText, &keyboard)
	case "help":
		b.send(chatID, helpText)
	case "recommend":
		if query := strings.TrimSpace(message.CommandArguments()); query != "" {
			b.handleRecommendation(ctx, chatID, userID, query)
			return
		}
		b.setState(chatID, stateAwaitingQuery)
		b.send(chatID, askQueryText)
	case "rate":
		b.handleRateCommand(ctx, chatID, userID)
	case "history":
		b.handleHistory(ctx, chatID, userID)
	case "feedback":
		b.setState(chatID, stateAwaitingFeedback)
		b.send(chatID, askFeedbackText)
	default:
		b.send(chatID, "Неизвестная команда. Посмотрите /help.")
	}
}

func (b *Bot) handleRecommendation(ctx context.Context, chatID, userID int64, query string) {
	if ok, reason := b.queryValidator.Validate(query); !ok {
		b.send(chatID, reason)
		return
	}

	b.setState(chatID, stateIdle)
	b.setLastQuery(chatID, query)
	b.send(chatID, thinkingText)

	result, err := b.engine.GenerateRecommendations(ctx, query, userID)
	if err != nil {
		slog.Error("recommendation pipeline failed", "user_id", userID, "error", err)
		b.send(chatID, FormatError("не удалось подобрать фильмы"))
		return
	}

	b.send(chatID, FormatRecommendations(result.Response))
	for _, movie := range result.Movies {
		b.sendMovieCard(chatID, movie)
	}
	if result.Note != "" {
		b.send(chatID, result.Note)
	}

	keyboard := postActionKeyboard()
	b.sendWithKeyboard(chatID, "Что дальше?", &keyboard)
}

// handleRateCommand offers the user's recently recommended movies to
// pick one for rating.
func (b *Bot) handleRateCommand(ctx context.Context, chatID, userID int64) {
	movies, err := b.recentMovies(ctx, userID, store.HistoryRecommended)
	if err != nil {
		slog.Error("failed to load recent movies", "user_id", userID, "error", err)
		b.send(chatID, FormatError("не удалось загрузить фильмы"))
		return
	}
	if len(movies) == 0 {
		b.send(chatID, "Пока нечего оценивать. Сначала получите рекомендации 🎬")
		return
	}

	keyboard := movieSelectionKeyboard(movies)
	b.sendWithKeyboard(chatID, "Выберите фильм для оценки:", &keyboard)
}

func (b *Bot) handleHistory(ctx context.Context, chatID, userID int64) {
	movies, err := b.recentMovies(ctx, userID, "")
	if err != nil {
		slog.Error("failed to load history", "user_id", userID, "error", err)
		b.send(chatID, FormatError("не удалось загрузить историю"))
		return
	}

	keyboard := historyKeyboard()
	b.sendWithKeyboard(chatID, "📜 *Ваша история:*\n\n"+FormatMoviesList(movies), &keyboard)
}

func (b *Bot) handleFeedbackText(ctx context.Context, chatID, userID int64, text string) {
	b.setState(chatID, stateIdle)

	if _, err := b.store.CreateFeedback(ctx, &store.CreateFeedback{
		UserID: userID,
		Query:  b.lastQuery(chatID),
		Text:   text,
	}); err != nil {
		slog.Error("failed to save feedback", "user_id", userID, "error", err)
		b.send(chatID, FormatError("не удалось сохранить отзыв"))
		return
	}

	keyboard := postActionKeyboard()
	b.sendWithKeyboard(chatID, feedbackThanks, &keyboard)
}

// recentMovies resolves the user's latest history entries to unique
// movies, newest first. An empty action matches all actions.
func (b *Bot) recentMovies(ctx context.Context, userID int64, action string) ([]*store.Movie, error) {
	limit := historyLimit * 2
	find := &store.FindHistoryEntry{UserID: &userID, Limit: &limit}
	if action != "" {
		find.Action = &action
	}
	entries, err := b.store.ListHistoryEntries(ctx, find)
	if err != nil {
		return nil, err
	}

	seen := map[int32]struct{}{}
	var movies []*store.Movie
	for _, entry := range entries {
		if len(movies) >= historyLimit {
			break
		}
		if _, ok := seen[entry.MovieID]; ok {
			continue
		}
		seen[entry.MovieID] = struct{}{}

		movie, err := b.store.GetMovie(ctx, entry.MovieID)
		if err != nil || movie == nil {
			continue
		}
		movies = append(movies, movie)
	}
	return movies, nil
}
