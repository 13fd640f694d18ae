package recommend

import (
	"log/slog"
	"regexp"
	"strings"
)

const defaultMinQueryLength = 3

type invalidPattern struct {
	pattern *regexp.Regexp
	reason  string
}

// QueryValidator rejects queries the pipeline cannot do anything
// useful with, before any LLM call is spent on them.
type QueryValidator struct {
	minLength int
	patterns  []invalidPattern
}

func NewQueryValidator() *QueryValidator {
	return &QueryValidator{
		minLength: defaultMinQueryLength,
		patterns: []invalidPattern{
			{regexp.MustCompile(`^/\w+$`), "Ваш запрос выглядит как команда бота. Пожалуйста, введите обычный текст."},
			{regexp.MustCompile(`^\d+$`), "Ваш запрос состоит только из цифр. Пожалуйста, опишите, что вы ищете."},
			{regexp.MustCompile(`^[^\p{L}\p{N}\s]+$`), "Ваш запрос состоит только из специальных символов. Пожалуйста, введите осмысленный текст."},
			{regexp.MustCompile(`^\s*$`), "Ваш запрос пуст. Пожалуйста, введите что-нибудь."},
		},
	}
}

// Validate returns whether the query is usable and, if not, a
// user-facing Russian reason.
func (v *QueryValidator) Validate(query string) (bool, string) {
	cleaned := strings.TrimSpace(query)

	if cleaned == "" {
		return false, "Ваш запрос пуст. Пожалуйста, введите что-нибудь."
	}
	if len([]rune(cleaned)) < v.minLength {
		return false, "Ваш запрос слишком короткий. Пожалуйста, опишите подробнее, что вы хотите посмотреть."
	}

	for _, p := range v.patterns {
		if p.pattern.MatchString(cleaned) {
			slog.Warn("query rejected", "query", query, "reason", p.reason)
			return false, p.reason
		}
	}
	return true, ""
}
