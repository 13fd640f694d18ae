// Package bot is the Telegram transport: long polling, command and
// callback routing, and per-chat conversation state.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/recomendashka/recomendashka/ai/recommend"
	"github.com/recomendashka/recomendashka/store"
)

const pollTimeoutSeconds = 30

// state is what the bot expects next from a chat.
type state int

const (
	stateIdle state = iota
	stateAwaitingQuery
	stateAwaitingFeedback
)

// session is the per-chat conversation memory. lastQuery gives feedback
// entries their context.
type session struct {
	state     state
	lastQuery string
}

type Config struct {
	Token string
	Debug bool
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("telegram bot token is required")
	}
	return nil
}

type Bot struct {
	api            *tgbotapi.BotAPI
	engine         *recommend.Engine
	store          *store.Store
	queryValidator *recommend.QueryValidator

	mu       sync.Mutex
	sessions map[int64]*session
}

func New(config *Config, engine *recommend.Engine, st *store.Store) (*Bot, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	api, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	api.Debug = config.Debug
	slog.Info("telegram bot authorized", "username", api.Self.UserName)

	return &Bot{
		api:            api,
		engine:         engine,
		store:          st,
		queryValidator: recommend.NewQueryValidator(),
		sessions:       make(map[int64]*session),
	}, nil
}

// Start runs the long-polling loop until the context is canceled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = pollTimeoutSeconds
	updates := b.api.GetUpdatesChan(updateConfig)

	slog.Info("bot started, polling for updates")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			slog.Info("bot stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			// Each update is handled on its own goroutine so a slow
			// recommendation run never blocks other chats.
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while handling update", "panic", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// chatState reads the conversation state under the lock; updates are
// handled concurrently, so sessions are never handed out by pointer.
func (b *Bot) chatState(chatID int64) state {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sessions[chatID]; ok {
		return s.state
	}
	return stateIdle
}

func (b *Bot) lastQuery(chatID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sessions[chatID]; ok {
		return s.lastQuery
	}
	return ""
}

func (b *Bot) setState(chatID int64, st state) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok {
		s = &session{}
		b.sessions[chatID] = s
	}
	s.state = st
}

func (b *Bot) setLastQuery(chatID int64, query string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok {
		s = &session{}
		b.sessions[chatID] = s
	}
	s.lastQuery = query
}

// send delivers a Markdown message, logging delivery failures instead
// of propagating them.
func (b *Bot) send(chatID int64, text string) {
	b.sendWithKeyboard(chatID, text, nil)
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		// Markdown from LLM output is not always balanced; retry as
		// plain text before giving up.
		msg.ParseMode = ""
		if _, plainErr := b.api.Send(msg); plainErr != nil {
			slog.Error("failed to send message", "chat_id", chatID, "error", err)
		}
	}
}

// sendMovieCard sends the poster with a short caption when one exists,
// and the full text card otherwise. The details button serves the full
// card for poster sends.
func (b *Bot) sendMovieCard(chatID int64, movie *store.Movie) {
	keyboard := movieKeyboard(movie.ID)

	if posterURL := movie.PosterURL(); posterURL != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(posterURL))
		photo.Caption = FormatMovieCaption(movie)
		photo.ParseMode = tgbotapi.ModeMarkdown
		photo.ReplyMarkup = keyboard
		if _, err := b.api.Send(photo); err == nil {
			return
		}
		slog.Warn("failed to send poster, falling back to text", "movie_id", movie.ID)
	}
	b.sendWithKeyboard(chatID, FormatMovie(movie), &keyboard)
}
