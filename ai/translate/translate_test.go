package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recomendashka/recomendashka/ai/llm"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Chat(_ context.Context, _ []llm.Message) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) ChatWithParams(_ context.Context, _ []llm.Message, _ llm.Params) (string, error) {
	return f.response, f.err
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantOK   bool
	}{
		{"bare code", "ru", "ru", true},
		{"code with chatter", "Язык текста: en", "en", true},
		{"uppercase code", "EN", "en", true},
		{"embedded code no word boundary", "code:fr.", "fr", true},
		{"no code at all", "не знаю", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTranslator(&fakeLLM{response: tt.response})
			got, ok := tr.DetectLanguage(context.Background(), "some text")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectLanguage_LLMError(t *testing.T) {
	tr := NewTranslator(&fakeLLM{err: errors.New("provider down")})
	_, ok := tr.DetectLanguage(context.Background(), "some text")
	assert.False(t, ok)
}

func TestTranslateToEnglish_CleansResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"plain", "The Matrix", "The Matrix"},
		{"prefixed", `Translation: "The Matrix"`, "The Matrix"},
		{"russian prefix", "Перевод: Начало", "Начало"},
		{"parenthetical", "Inception (2010 film)", "Inception"},
		{"guillemets", "«Интерстеллар»", "Интерстеллар"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTranslator(&fakeLLM{response: tt.response})
			got := tr.TranslateToEnglish(context.Background(), "whatever")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate_ReturnsOriginalOnError(t *testing.T) {
	tr := NewTranslator(&fakeLLM{err: errors.New("provider down")})
	assert.Equal(t, "Матрица", tr.TranslateToEnglish(context.Background(), "Матрица"))
	assert.Equal(t, "The Matrix", tr.TranslateToRussian(context.Background(), "The Matrix"))
}

func TestIsTranslationDifferent(t *testing.T) {
	tr := NewTranslator(&fakeLLM{})

	assert.False(t, tr.IsTranslationDifferent("The Matrix", "the matrix"))
	assert.False(t, tr.IsTranslationDifferent("The Matrix!", "The Matrix"))
	assert.True(t, tr.IsTranslationDifferent("Матрица", "The Matrix"))
	assert.True(t, tr.IsTranslationDifferent("Начало", "Inception"))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("интерстеллар", "интерстеллар"))
	assert.Greater(t, Ratio("интерстеллар", "интерстеллер"), 0.8)
	assert.Less(t, Ratio("матрица", "inception"), 0.4)
	assert.Equal(t, 1.0, Ratio("", ""))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Матрица 1999", CleanText("«Матрица» (1999)!"))
	assert.Equal(t, "The Matrix", CleanText(`"The Matrix"`))
}
