package recommend

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Patterns that capture "FirstName LastName" in oblique Russian cases
// after actor or director markers in the query.
var actorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`с\s+([А-ЯЁ][а-яё]+[ыоауеймх]?\s+[А-ЯЁ][а-яё]+[ыоауеймх]?)`),
	regexp.MustCompile(`актер[а-я]*\s+([А-ЯЁ][а-яё]+[ауы]?\s+[А-ЯЁ][а-яё]+[ауы]?)`),
	regexp.MustCompile(`участие[мн]\s+([А-ЯЁ][а-яё]+[ауы]?\s+[А-ЯЁ][а-яё]+[ауы]?)`),
}

var directorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`от\s+(?:режиссера\s+)?([А-ЯЁ][а-яё]+[ауы]?\s+[А-ЯЁ][а-яё]+[ауы]?)`),
	regexp.MustCompile(`режиссер[а-я]*\s+([А-ЯЁ][а-яё]+[ауы]?\s+[А-ЯЁ][а-яё]+[ауы]?)`),
}

// Declined forms of names that come up constantly, mapped straight to
// the nominative. Everything else goes through suffix stripping.
var knownNameForms = map[string]string{
	"томом хэнксом":        "Том Хэнкс",
	"тома хэнкса":          "Том Хэнкс",
	"стивена спилберга":    "Стивен Спилберг",
	"стивеном спилбергом":  "Стивен Спилберг",
	"роберта дауни":        "Роберт Дауни",
	"робертом дауни":       "Роберт Дауни",
	"кристофера нолана":    "Кристофер Нолан",
	"кристофером ноланом":  "Кристофер Нолан",
	"леонардо дикаприо":    "Леонардо ДиКаприо",
	"леонардом дикаприо":   "Леонардо ДиКаприо",
	"брэда питта":          "Брэд Питт",
	"брэдом питтом":        "Брэд Питт",
	"джонни деппа":         "Джонни Депп",
	"джонни деппом":        "Джонни Депп",
	"уилла смита":          "Уилл Смит",
	"уиллом смитом":        "Уилл Смит",
	"квентина тарантино":   "Квентин Тарантино",
	"квентином тарантино":  "Квентин Тарантино",
	"мартина скорсезе":     "Мартин Скорсезе",
	"мартином скорсезе":    "Мартин Скорсезе",
	"скарлетт йоханссон":   "Скарлетт Йоханссон",
	"анджелины джоли":      "Анджелина Джоли",
	"анджелиной джоли":     "Анджелина Джоли",
}

var instrumentalSuffixes = []string{"ом", "ем", "ым", "им"}

var vowelSuffixes = []string{"а", "я", "у", "ю", "ы", "и", "е"}

var titleCaser = cases.Title(language.Russian)

// ExtractPersonConstraints pulls requested actor and director names
// out of a query, normalized to nominative lowercase.
func ExtractPersonConstraints(query string) (actors, directors []string) {
	return matchNames(query, actorPatterns), matchNames(query, directorPatterns)
}

func matchNames(query string, patterns []*regexp.Regexp) []string {
	var names []string
	seen := map[string]struct{}{}
	for _, pattern := range patterns {
		for _, match := range pattern.FindAllStringSubmatch(query, -1) {
			name := strings.ToLower(NormalizePersonName(strings.TrimSpace(match[1])))
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// NormalizePersonName converts a Russian name from an oblique case to
// the nominative. Known names use the lookup table; the rest get a
// suffix-stripping heuristic that is knowingly imprecise on rare
// declensions.
func NormalizePersonName(name string) string {
	if canonical, ok := knownNameForms[strings.ToLower(strings.TrimSpace(name))]; ok {
		return canonical
	}

	words := strings.Fields(name)
	if len(words) != 2 {
		return titleCaser.String(name)
	}

	firstName := stripCaseSuffix(words[0], 3)
	lastName := stripCaseSuffix(words[1], 4)
	return titleCaser.String(firstName + " " + lastName)
}

// stripCaseSuffix drops a typical oblique-case ending. minLen guards
// against truncating short names into nothing.
func stripCaseSuffix(word string, minLen int) string {
	runes := []rune(strings.ToLower(word))
	for _, suffix := range instrumentalSuffixes {
		if strings.HasSuffix(string(runes), suffix) {
			return string([]rune(word)[:len(runes)-2])
		}
	}
	if len(runes) > minLen {
		for _, suffix := range vowelSuffixes {
			if strings.HasSuffix(string(runes), suffix) {
				return string([]rune(word)[:len(runes)-1])
			}
		}
	}
	return word
}

// namesMatch reports whether two "first last" names likely refer to
// the same person. Both the first and the last parts must overlap by
// substring in either direction.
func namesMatch(a, b string) bool {
	partsA := strings.Fields(a)
	partsB := strings.Fields(b)
	if len(partsA) < 2 || len(partsB) < 2 {
		return false
	}

	firstMatch := strings.Contains(partsA[0], partsB[0]) || strings.Contains(partsB[0], partsA[0])
	lastA, lastB := partsA[len(partsA)-1], partsB[len(partsB)-1]
	lastMatch := strings.Contains(lastA, lastB) || strings.Contains(lastB, lastA)
	return firstMatch && lastMatch
}

// personInList reports whether the requested person matches any name
// in the movie credits.
func personInList(requested string, names []string) bool {
	for _, name := range names {
		nameLower := strings.ToLower(name)
		if strings.Contains(nameLower, requested) ||
			strings.Contains(requested, nameLower) ||
			namesMatch(requested, nameLower) {
			return true
		}
	}
	return false
}
