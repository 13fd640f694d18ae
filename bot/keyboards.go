package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/recomendashka/recomendashka/store"
)

// Callback data prefixes. Payloads are colon-separated.
const (
	callbackGetRecommendations = "get_recommendations"
	callbackViewSavedMovies    = "view_saved_movies"
	callbackViewHistory        = "view_history"
	callbackStartFeedback      = "start_feedback"
	callbackClearHistory       = "clear_history"
	callbackCancel             = "cancel"

	callbackRatePrefix    = "rate:"
	callbackSavePrefix    = "save:"
	callbackDetailsPrefix = "details:"
	callbackSimilarPrefix = "similar:"
	callbackConfirmPrefix = "confirm:"
	callbackBackPrefix    = "back:"

	callbackSelectForRatingPrefix = "select_movie_for_rating_"
)

func startKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎬 Получить рекомендации", callbackGetRecommendations),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❤️ Сохраненные фильмы", callbackViewSavedMovies),
			tgbotapi.NewInlineKeyboardButtonData("📜 История", callbackViewHistory),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ Оставить отзыв", callbackStartFeedback),
		),
	)
}

// postActionKeyboard is shown after a completed flow so the user never
// dead-ends.
func postActionKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎬 Ещё рекомендации", callbackGetRecommendations),
			tgbotapi.NewInlineKeyboardButtonData("❤️ Сохраненные", callbackViewSavedMovies),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📜 История", callbackViewHistory),
			tgbotapi.NewInlineKeyboardButtonData("✍️ Отзыв", callbackStartFeedback),
		),
	)
}

// movieKeyboard is attached to a single movie card.
func movieKeyboard(movieID int32) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⭐ Оценить", fmt.Sprintf("%s%d", callbackSelectForRatingPrefix, movieID)),
			tgbotapi.NewInlineKeyboardButtonData("❤️ Сохранить", fmt.Sprintf("%s%d", callbackSavePrefix, movieID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("ℹ️ Подробнее", fmt.Sprintf("%s%d", callbackDetailsPrefix, movieID)),
			tgbotapi.NewInlineKeyboardButtonData("🎞 Похожие", fmt.Sprintf("%s%d", callbackSimilarPrefix, movieID)),
		),
	)
}

// ratingKeyboard offers the 0..10 scale: zero on its own row, then two
// rows of five.
func ratingKeyboard(movieID int32) tgbotapi.InlineKeyboardMarkup {
	rateButton := func(score int) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d", score),
			fmt.Sprintf("%s%d:%d", callbackRatePrefix, movieID, score),
		)
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(rateButton(0)),
	}
	for start := 1; start <= 6; start += 5 {
		row := make([]tgbotapi.InlineKeyboardButton, 0, 5)
		for score := start; score < start+5; score++ {
			row = append(row, rateButton(score))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// movieSelectionKeyboard lists movies to pick one for rating.
func movieSelectionKeyboard(movies []*store.Movie) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(movies)+1)
	for _, movie := range movies {
		label := movie.Title
		if year := movie.ReleaseYear(); year != "" {
			label = fmt.Sprintf("%s (%s)", movie.Title, year)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", callbackSelectForRatingPrefix, movie.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", callbackBackPrefix+"main_menu"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func historyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Очистить историю", callbackClearHistory),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", callbackBackPrefix+"main_menu"),
		),
	)
}

func confirmationKeyboard(action, payload string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да", fmt.Sprintf("%s%s:%s", callbackConfirmPrefix, action, payload)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Нет", callbackCancel),
		),
	)
}

func backKeyboard(target string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", callbackBackPrefix+target),
		),
	)
}
