package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the bot process.
type Profile struct {
	// Unified LLM configuration (OpenAI-compatible protocol)
	// All providers (openrouter, deepseek, openai, zai, ollama) use the same config
	LLMProvider    string  // Provider identifier: openrouter, deepseek, openai, zai, ollama
	LLMAPIKey      string  // Unified LLM API key
	LLMBaseURL     string  // Unified LLM base URL (optional, has default per provider)
	LLMModel       string  // Model name: deepseek/deepseek-chat, gpt-4o, etc.
	LLMMaxTokens   int     // Generation token cap (default: 800)
	LLMTemperature float64 // Sampling temperature (default: 0.7)
	LLMTimeout     int     // LLM request timeout in seconds (default: 120)

	// Telegram transport
	TelegramToken string

	// TMDB metadata provider
	TMDBAPIKey    string
	TMDBBaseURL   string
	TMDBLanguage  string  // localized titles and overviews, default ru-RU
	TMDBRateLimit float64 // requests per second towards TMDB (default: 10)

	// Other configurations
	Mode        string
	Data        string
	Driver      string
	DSN         string
	Version     string
	MetricsPort int // 0 disables the /metrics endpoint
}

// Provider default configurations for LLM.
// Used when LLM_BASE_URL is not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"openrouter": {
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "deepseek/deepseek-chat",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
	},
	"zai": {
		BaseURL: "https://open.bigmodel.cn/api/paas/v4",
		Model:   "glm-4.7",
	},
	"ollama": {
		BaseURL: "http://localhost:11434",
		Model:   "llama3.1",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvOrDefaultFloat returns environment variable value as float64 or default value.
func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.LLMProvider = getEnvOrDefault("RECOMENDASHKA_LLM_PROVIDER", "openrouter")
	p.LLMAPIKey = getEnvOrDefault("RECOMENDASHKA_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("RECOMENDASHKA_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("RECOMENDASHKA_LLM_MODEL", "")
	p.LLMMaxTokens = getEnvOrDefaultInt("RECOMENDASHKA_LLM_MAX_TOKENS", 800)
	p.LLMTemperature = getEnvOrDefaultFloat("RECOMENDASHKA_LLM_TEMPERATURE", 0.7)
	p.LLMTimeout = getEnvOrDefaultInt("RECOMENDASHKA_LLM_TIMEOUT_SECONDS", 120)

	if p.LLMProvider != "" {
		if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
			slog.Warn("Unknown LLM provider, using default: openrouter", "provider", p.LLMProvider)
			p.LLMProvider = "openrouter"
		}
	}
	if p.LLMBaseURL == "" || p.LLMModel == "" {
		if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
			if p.LLMBaseURL == "" {
				p.LLMBaseURL = defaults.BaseURL
			}
			if p.LLMModel == "" {
				p.LLMModel = defaults.Model
			}
		}
	}

	p.TelegramToken = getEnvOrDefault("RECOMENDASHKA_TELEGRAM_TOKEN", "")

	p.TMDBAPIKey = getEnvOrDefault("RECOMENDASHKA_TMDB_API_KEY", "")
	p.TMDBBaseURL = getEnvOrDefault("RECOMENDASHKA_TMDB_BASE_URL", "https://api.themoviedb.org/3")
	p.TMDBLanguage = getEnvOrDefault("RECOMENDASHKA_TMDB_LANGUAGE", "ru-RU")
	p.TMDBRateLimit = getEnvOrDefaultFloat("RECOMENDASHKA_TMDB_RATE_LIMIT", 10)

	p.MetricsPort = getEnvOrDefaultInt("RECOMENDASHKA_METRICS_PORT", p.MetricsPort)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}

	if p.TelegramToken == "" {
		return errors.New("telegram bot token required (RECOMENDASHKA_TELEGRAM_TOKEN)")
	}
	if p.TMDBAPIKey == "" {
		return errors.New("TMDB API key required (RECOMENDASHKA_TMDB_API_KEY)")
	}
	if p.LLMAPIKey == "" && p.LLMProvider != "ollama" {
		return errors.New("LLM API key required (RECOMENDASHKA_LLM_API_KEY)")
	}

	if p.Driver == "sqlite" {
		if p.Data == "" {
			p.Data = "."
		}
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
			return err
		}
		p.Data = dataDir
		if p.DSN == "" {
			dbFile := fmt.Sprintf("recomendashka_%s.db", p.Mode)
			p.DSN = filepath.Join(dataDir, dbFile)
		}
	} else if p.DSN == "" {
		return errors.New("dsn required for postgres driver")
	}

	return nil
}
