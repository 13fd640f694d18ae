// Package translate provides LLM-backed translation and language
// detection for comparing user phrasing against TMDB titles.
package translate

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/recomendashka/recomendashka/ai/llm"
)

// Cleaned-text threshold below which a translation counts as different.
const sameTextRatio = 0.95

var (
	langCodeWordRegexp = regexp.MustCompile(`\b([a-z]{2})\b`)
	langCodeAnyRegexp  = regexp.MustCompile(`([a-z]{2})`)

	translationPrefixRegexp = regexp.MustCompile(`(?i)^(Translation|Перевод|English|Russian|Текст|:)\s*['"]?`)
	parentheticalRegexp     = regexp.MustCompile(`\(.*?\)`)
	quoteCharsRegexp        = regexp.MustCompile(`[«»"]`)

	nonWordRegexp = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
)

// Translator detects languages and translates titles through the LLM.
type Translator struct {
	llm llm.Service
}

func NewTranslator(llmService llm.Service) *Translator {
	return &Translator{llm: llmService}
}

// DetectLanguage returns a two-letter ISO 639-1 code for the text. The
// second return value is false when detection failed.
func (t *Translator) DetectLanguage(ctx context.Context, text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}

	messages := []llm.Message{
		llm.SystemPrompt("Определи язык текста. Ответь только кодом языка ISO 639-1 (например: ru, en, fr). Без пояснений."),
		llm.UserMessage(text),
	}
	response, err := t.llm.ChatWithParams(ctx, messages, llm.Params{MaxTokens: 10, Temperature: 0.1})
	if err != nil {
		slog.Warn("language detection failed", "error", err)
		return "", false
	}

	lowered := strings.ToLower(strings.TrimSpace(response))
	if match := langCodeWordRegexp.FindStringSubmatch(lowered); match != nil {
		return match[1], true
	}
	if match := langCodeAnyRegexp.FindStringSubmatch(lowered); match != nil {
		return match[1], true
	}
	return "", false
}

// TranslateToEnglish translates the text to English. On failure the
// original text is returned so callers can keep matching on it.
func (t *Translator) TranslateToEnglish(ctx context.Context, text string) string {
	return t.translate(ctx, text, "английский")
}

// TranslateToRussian translates the text to Russian. On failure the
// original text is returned.
func (t *Translator) TranslateToRussian(ctx context.Context, text string) string {
	return t.translate(ctx, text, "русский")
}

func (t *Translator) translate(ctx context.Context, text, targetLanguage string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	messages := []llm.Message{
		llm.SystemPrompt("Переведи название фильма на " + targetLanguage + " язык. Ответь только переводом, без пояснений и кавычек."),
		llm.UserMessage(text),
	}
	response, err := t.llm.ChatWithParams(ctx, messages, llm.Params{MaxTokens: 100, Temperature: 0.1})
	if err != nil {
		slog.Warn("translation failed, keeping original text", "error", err)
		return text
	}

	cleaned := cleanResponse(response)
	if cleaned == "" {
		return text
	}
	return cleaned
}

// IsTranslationDifferent reports whether the translation meaningfully
// differs from the original. Near-identical texts (transliterations,
// punctuation changes) do not count.
func (t *Translator) IsTranslationDifferent(original, translated string) bool {
	a := strings.ToLower(CleanText(original))
	b := strings.ToLower(CleanText(translated))
	if a == b {
		return false
	}
	return Ratio(a, b) < sameTextRatio
}

// cleanResponse strips LLM chatter around the actual translation.
func cleanResponse(response string) string {
	cleaned := strings.TrimSpace(response)
	cleaned = translationPrefixRegexp.ReplaceAllString(cleaned, "")
	cleaned = strings.Trim(cleaned, `'"`)
	cleaned = parentheticalRegexp.ReplaceAllString(cleaned, "")
	cleaned = quoteCharsRegexp.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// CleanText drops punctuation, keeping letters, digits and spaces.
func CleanText(text string) string {
	return strings.TrimSpace(nonWordRegexp.ReplaceAllString(text, ""))
}

// Ratio computes a character-level similarity between two strings in
// [0, 1]. Comparison happens per rune so Cyrillic titles compare the
// same way as Latin ones.
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	matcher := difflib.NewMatcher(splitRunes(a), splitRunes(b))
	return matcher.Ratio()
}

func splitRunes(s string) []string {
	runes := []rune(s)
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = string(r)
	}
	return parts
}
