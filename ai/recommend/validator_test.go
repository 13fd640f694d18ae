package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recomendashka/recomendashka/ai/llm"
	"github.com/recomendashka/recomendashka/ai/translate"
	"github.com/recomendashka/recomendashka/tmdb"
)

// scriptedLLM replays canned responses in call order. A set error
// fails every call.
type scriptedLLM struct {
	responses []string
	err       error
	calls     int
}

func (s *scriptedLLM) next() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.calls < len(s.responses) {
		response := s.responses[s.calls]
		s.calls++
		return response, nil
	}
	return "", nil
}

func (s *scriptedLLM) Chat(_ context.Context, _ []llm.Message) (string, error) {
	return s.next()
}

func (s *scriptedLLM) ChatWithParams(_ context.Context, _ []llm.Message, _ llm.Params) (string, error) {
	return s.next()
}

func newTestValidator(script *scriptedLLM) *Validator {
	return NewValidator(script, translate.NewTranslator(script))
}

func TestValidate_PersonMismatchRejects(t *testing.T) {
	v := newTestValidator(&scriptedLLM{})
	movie := &tmdb.Movie{
		Title:  "Джон Уик",
		Actors: []string{"Киану Ривз", "Иэн МакШейн"},
	}

	ok, reason := v.Validate(context.Background(), movie, "боевик с Томом Хэнксом", "Джон Уик")
	assert.False(t, ok)
	assert.Equal(t, RejectPersonMismatch, reason)
}

func TestValidate_PersonMatchAcceptsWithoutTitleCheck(t *testing.T) {
	v := newTestValidator(&scriptedLLM{})
	movie := &tmdb.Movie{
		Title:  "Терминал",
		Actors: []string{"Том Хэнкс", "Кэтрин Зета-Джонс"},
	}

	// The titles have nothing in common; a satisfied cast constraint
	// is enough on its own.
	ok, reason := v.Validate(context.Background(), movie, "драма с Томом Хэнксом", "Изгой")
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestValidate_FuzzyTitleAccepts(t *testing.T) {
	script := &scriptedLLM{responses: []string{"en", "Матрица"}}
	v := newTestValidator(script)
	movie := &tmdb.Movie{
		Title:         "Матрица",
		OriginalTitle: "The Matrix",
	}

	ok, reason := v.Validate(context.Background(), movie, "фантастика", "Матрица")
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestValidate_LLMVerdictNoRejects(t *testing.T) {
	// detect language, translate, then the yes/no verdict.
	script := &scriptedLLM{responses: []string{"en", "Иное", "НЕТ"}}
	v := newTestValidator(script)
	movie := &tmdb.Movie{
		Title:         "Совсем другое кино",
		OriginalTitle: "Something Else",
		Genres:        []string{"драма"},
	}

	ok, reason := v.Validate(context.Background(), movie, "боевик", "Перестрелка")
	assert.False(t, ok)
	assert.Equal(t, RejectRelevance, reason)
}

func TestValidate_LLMVerdictYesAccepts(t *testing.T) {
	script := &scriptedLLM{responses: []string{"en", "Иное", "ДА"}}
	v := newTestValidator(script)
	movie := &tmdb.Movie{
		Title:         "Совсем другое кино",
		OriginalTitle: "Something Else",
	}

	ok, reason := v.Validate(context.Background(), movie, "боевик", "Перестрелка")
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestValidate_LLMFailureFallsBackToGenres(t *testing.T) {
	script := &scriptedLLM{err: errors.New("provider down")}
	v := newTestValidator(script)

	romance := &tmdb.Movie{
		Title:         "Реальная любовь",
		OriginalTitle: "Love Actually",
		Genres:        []string{"мелодрама"},
	}
	ok, reason := v.Validate(context.Background(), romance, "хочу боевик", "Перестрелка")
	assert.False(t, ok)
	assert.Equal(t, RejectRelevance, reason)

	action := &tmdb.Movie{
		Title:         "Неудержимые",
		OriginalTitle: "The Expendables",
		Genres:        []string{"боевик"},
	}
	ok, reason = v.Validate(context.Background(), action, "хочу боевик", "Перестрелка")
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestValidate_NilMovieRejects(t *testing.T) {
	v := newTestValidator(&scriptedLLM{})
	ok, reason := v.Validate(context.Background(), nil, "боевик", "Перестрелка")
	assert.False(t, ok)
	assert.Equal(t, RejectNotFound, reason)
}
