package tmdb

import "strings"

// Russian genre names mapped to TMDB genre ids.
var genreIDs = map[string]int64{
	"боевик":         28,
	"приключения":    12,
	"мультфильм":     16,
	"комедия":        35,
	"криминал":       80,
	"документальный": 99,
	"драма":          18,
	"семейный":       10751,
	"фэнтези":        14,
	"история":        36,
	"ужасы":          27,
	"музыка":         10402,
	"детектив":       9648,
	"мелодрама":      10749,
	"фантастика":     878,
	"триллер":        53,
	"военный":        10752,
	"вестерн":        37,
}

// GenreID resolves a Russian genre name to a TMDB genre id.
func GenreID(name string) (int64, bool) {
	id, ok := genreIDs[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}
