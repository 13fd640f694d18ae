package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recomendashka/recomendashka/tmdb"
)

func TestValidateByGenre(t *testing.T) {
	tests := []struct {
		name  string
		query string
		movie *tmdb.Movie
		want  bool
	}{
		{
			"action request matches action movie",
			"посоветуй боевик",
			&tmdb.Movie{Genres: []string{"боевик", "триллер"}},
			true,
		},
		{
			"action request rejects romance",
			"посоветуй боевик",
			&tmdb.Movie{Genres: []string{"мелодрама"}},
			false,
		},
		{
			"horror request rejects comedy",
			"хочу ужасы",
			&tmdb.Movie{Genres: []string{"комедия"}},
			false,
		},
		{
			"no genre keyword accepts anything",
			"что-нибудь интересное на вечер",
			&tmdb.Movie{Genres: []string{"драма"}},
			true,
		},
		{
			"kids request rejects horror",
			"детский фильм",
			&tmdb.Movie{Genres: []string{"ужасы"}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validateByGenre(tt.movie, tt.query))
		})
	}
}
