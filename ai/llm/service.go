// Package llm wraps OpenAI-compatible chat providers behind a small
// service interface used by the recommendation and translation layers.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/recomendashka/recomendashka/metrics"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// Params overrides generation settings for a single call. Zero values
// fall back to the service defaults.
type Params struct {
	MaxTokens   int
	Temperature float32
}

// Service is the LLM service interface.
type Service interface {
	// Chat performs synchronous chat with the service defaults.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatWithParams performs synchronous chat with per-call overrides.
	// Validation calls use it to pin low temperature and tiny outputs.
	ChatWithParams(ctx context.Context, messages []Message, params Params) (string, error)
}

// Config represents LLM service configuration.
type Config struct {
	Provider    string // openrouter, deepseek, openai, zai, ollama
	Model       string // deepseek/deepseek-chat, gpt-4o-mini, ...
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 1000
	Temperature float32 // default: 0.7
	Timeout     int     // Request timeout in seconds (default: 120)
}

const (
	maxAttempts = 3
	retryDelay  = time.Second
)

type service struct {
	client      *openai.Client
	model       string
	provider    string
	maxTokens   int
	temperature float32
	timeout     int // Request timeout in seconds
}

// NewService creates a new LLM Service.
func NewService(cfg *Config) (Service, error) {
	var clientConfig openai.ClientConfig

	// Create custom HTTP client with timeout
	httpClient := newHTTPClient()

	switch cfg.Provider {
	case "openrouter":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://openrouter.ai/api/v1"
		}
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		clientConfig.BaseURL = baseURL
		clientConfig.HTTPClient = httpClient

	case "deepseek":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.deepseek.com"
		}
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		clientConfig.BaseURL = baseURL
		clientConfig.HTTPClient = httpClient

	case "zai":
		// Z.AI OpenAI-compatible API.
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://open.bigmodel.cn/api/paas/v4"
		}
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		clientConfig.BaseURL = baseURL
		clientConfig.HTTPClient = httpClient

	case "openai":
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
		clientConfig.HTTPClient = httpClient

	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434/v1"
		}
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		clientConfig.BaseURL = baseURL
		clientConfig.HTTPClient = httpClient

	default:
		// Generic fallback for any other OpenAI-compatible provider
		slog.Info("using generic OpenAI-compatible provider", "provider", cfg.Provider)
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
		clientConfig.HTTPClient = httpClient
	}

	client := openai.NewClientWithConfig(clientConfig)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}

	return &service{
		client:      client,
		model:       cfg.Model,
		provider:    cfg.Provider,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
	}, nil
}

func (s *service) Chat(ctx context.Context, messages []Message) (string, error) {
	return s.chat(ctx, messages, s.maxTokens, s.temperature)
}

func (s *service) ChatWithParams(ctx context.Context, messages []Message, params Params) (string, error) {
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}
	temperature := params.Temperature
	if temperature <= 0 {
		temperature = s.temperature
	}
	return s.chat(ctx, messages, maxTokens, temperature)
}

func (s *service) chat(ctx context.Context, messages []Message, maxTokens int, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.timeout)*time.Second)
	defer cancel()

	slog.Debug("LLM: chat request",
		"model", s.model,
		"messages_count", len(messages),
		"max_tokens", maxTokens,
	)

	req := openai.ChatCompletionRequest{
		Model:       s.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages:    convertMessages(messages),
	}

	// Transient provider errors are common on free tiers; retry with a
	// growing delay before giving up.
	var lastErr error
	delay := retryDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		startTime := time.Now()
		resp, err := s.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("empty response from LLM")
			}
			slog.Debug("LLM: chat response received",
				"content_length", len(resp.Choices[0].Message.Content),
				"total_tokens", resp.Usage.TotalTokens,
				"duration_ms", time.Since(startTime).Milliseconds(),
			)
			return resp.Choices[0].Message.Content, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < maxAttempts {
			metrics.LLMRetries.Inc()
			slog.Warn("LLM: chat attempt failed, retrying",
				"attempt", attempt,
				"delay", delay,
				"error", err,
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", fmt.Errorf("LLM chat failed: %w", ctx.Err())
			}
			delay *= 2
		}
	}

	slog.Error("LLM: chat request failed", "error", lastErr)
	return "", fmt.Errorf("LLM chat failed: %w", lastErr)
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	llmMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		switch m.Role {
		case "system":
			llmMessages[i] = openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleSystem,
				Content: m.Content,
			}
		case "assistant":
			llmMessages[i] = openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: m.Content,
			}
		default:
			llmMessages[i] = openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: m.Content,
			}
		}
	}
	return llmMessages
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// Helper for creating system prompts.
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// Helper for creating user messages.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}
