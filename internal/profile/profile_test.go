package profile

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RECOMENDASHKA_LLM_PROVIDER",
		"RECOMENDASHKA_LLM_API_KEY",
		"RECOMENDASHKA_LLM_BASE_URL",
		"RECOMENDASHKA_LLM_MODEL",
		"RECOMENDASHKA_LLM_MAX_TOKENS",
		"RECOMENDASHKA_LLM_TEMPERATURE",
		"RECOMENDASHKA_LLM_TIMEOUT_SECONDS",
		"RECOMENDASHKA_TELEGRAM_TOKEN",
		"RECOMENDASHKA_TMDB_API_KEY",
		"RECOMENDASHKA_TMDB_BASE_URL",
		"RECOMENDASHKA_TMDB_LANGUAGE",
		"RECOMENDASHKA_TMDB_RATE_LIMIT",
		"RECOMENDASHKA_METRICS_PORT",
	} {
		os.Unsetenv(key)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnvVars(t)

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "openrouter", p.LLMProvider)
	assert.Equal(t, "https://openrouter.ai/api/v1", p.LLMBaseURL)
	assert.Equal(t, "deepseek/deepseek-chat", p.LLMModel)
	assert.Equal(t, 800, p.LLMMaxTokens)
	assert.Equal(t, 120, p.LLMTimeout)
	assert.Equal(t, "https://api.themoviedb.org/3", p.TMDBBaseURL)
	assert.Equal(t, "ru-RU", p.TMDBLanguage)
	assert.InDelta(t, 10.0, p.TMDBRateLimit, 0.001)
}

func TestFromEnvUnknownProviderFallsBack(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("RECOMENDASHKA_LLM_PROVIDER", "carrier-pigeon")

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "openrouter", p.LLMProvider)
	assert.Equal(t, "https://openrouter.ai/api/v1", p.LLMBaseURL)
}

func TestFromEnvProviderDefaultsRespectExplicitValues(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("RECOMENDASHKA_LLM_PROVIDER", "deepseek")
	t.Setenv("RECOMENDASHKA_LLM_MODEL", "deepseek-reasoner")

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "deepseek-reasoner", p.LLMModel)
	assert.Equal(t, "https://api.deepseek.com", p.LLMBaseURL)
}

func TestValidateModeFallback(t *testing.T) {
	p := &Profile{
		Mode:          "staging",
		Driver:        "sqlite",
		Data:          t.TempDir(),
		TelegramToken: "token",
		TMDBAPIKey:    "tmdb-key",
		LLMAPIKey:     "llm-key",
	}
	require.NoError(t, p.Validate())
	assert.Equal(t, "demo", p.Mode)
	assert.Contains(t, p.DSN, "recomendashka_demo.db")
}

func TestValidateMissingCredentials(t *testing.T) {
	p := &Profile{Mode: "dev", Driver: "sqlite", Data: t.TempDir()}
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram")
}

func TestValidatePostgresNeedsDSN(t *testing.T) {
	p := &Profile{
		Mode:          "prod",
		Driver:        "postgres",
		TelegramToken: "token",
		TMDBAPIKey:    "tmdb-key",
		LLMAPIKey:     "llm-key",
	}
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dsn")
}
