package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePersonName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"known instrumental", "Томом Хэнксом", "Том Хэнкс"},
		{"known genitive", "Стивена Спилберга", "Стивен Спилберг"},
		{"known mixed case", "кристофером ноланом", "Кристофер Нолан"},
		{"unknown instrumental", "Петром Ивановым", "Петр Иванов"},
		{"unknown genitive", "Дениса Петрова", "Денис Петров"},
		{"already nominative", "Иван Петров", "Иван Петров"},
		{"single word", "Нолан", "Нолан"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePersonName(tt.in))
		})
	}
}

func TestExtractPersonConstraints(t *testing.T) {
	actors, directors := ExtractPersonConstraints("Фильм с Томом Хэнксом про войну")
	assert.Equal(t, []string{"том хэнкс"}, actors)
	assert.Empty(t, directors)

	actors, directors = ExtractPersonConstraints("Что-нибудь от режиссера Кристофера Нолана")
	assert.Empty(t, actors)
	assert.Equal(t, []string{"кристофер нолан"}, directors)
}

func TestExtractPersonConstraints_NoPersons(t *testing.T) {
	actors, directors := ExtractPersonConstraints("хочу посмотреть комедию на вечер")
	assert.Empty(t, actors)
	assert.Empty(t, directors)
}

func TestNamesMatch(t *testing.T) {
	assert.True(t, namesMatch("том хэнкс", "том хэнкс"))
	assert.True(t, namesMatch("том хэнкс", "томас хэнкс"))
	assert.False(t, namesMatch("том хэнкс", "том круз"))
	assert.False(t, namesMatch("нолан", "кристофер нолан"))
}

func TestPersonInList(t *testing.T) {
	cast := []string{"Tom Hanks", "Робин Райт"}
	assert.True(t, personInList("tom hanks", cast))
	assert.True(t, personInList("робин райт", cast))
	assert.False(t, personInList("том круз", cast))
}
