package recommend

import (
	"regexp"
	"strconv"
	"strings"
)

// Candidate is a movie title pulled out of an LLM response. Year 0
// means the year could not be parsed.
type Candidate struct {
	Title string
	Year  int
}

// Extraction patterns in priority order: guillemets, straight quotes,
// then a bare run of text before the parenthesized year.
var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`«([^»]+)»\s*\((\d{4})\)`),
	regexp.MustCompile(`"([^"]+)"\s*\((\d{4})\)`),
	regexp.MustCompile(`([^,;]+?)\s*\((\d{4})\)`),
}

// ExtractTitles parses movie candidates out of a generated response.
// All patterns run over the whole text; duplicates by exact
// (title, year) are dropped, first-appearance order is preserved.
// An empty result is a valid outcome, not an error.
func ExtractTitles(text string) []Candidate {
	var candidates []Candidate
	seen := map[Candidate]struct{}{}

	for _, pattern := range titlePatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			title := strings.Trim(strings.TrimSpace(match[1]), `«»" `)
			if title == "" {
				continue
			}
			year, _ := strconv.Atoi(match[2])

			candidate := Candidate{Title: title, Year: year}
			if _, ok := seen[candidate]; ok {
				continue
			}
			seen[candidate] = struct{}{}
			candidates = append(candidates, candidate)
		}
	}

	return candidates
}
