package briefing

import (
	"regexp"
	"sort"
	"strings"
)

const maxThemes = 10

var themeWordPattern = regexp.MustCompile(`[a-zA-Z]{4,}`)

// themeStopWords are generic news vocabulary excluded from theme
// extraction.
var themeStopWords = map[string]struct{}{
	"news": {}, "report": {}, "reports": {}, "says": {}, "said": {},
	"company": {}, "companies": {}, "market": {}, "stock": {}, "stocks": {},
	"price": {}, "prices": {}, "will": {}, "new": {}, "first": {},
	"year": {}, "years": {}, "time": {}, "could": {}, "would": {}, "should": {},
}

// ExtractKeyThemes counts word frequency over the given titles and
// keeps words of length >= 4 that appear more than once, excluding
// stop words, ranked by frequency. Relevance is frequency over title
// count.
func ExtractKeyThemes(titles []string) []Theme {
	if len(titles) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, title := range titles {
		for _, word := range themeWordPattern.FindAllString(strings.ToLower(title), -1) {
			if _, stop := themeStopWords[word]; stop {
				continue
			}
			counts[word]++
		}
	}

	words := make([]string, 0, len(counts))
	for word, count := range counts {
		if count > 1 {
			words = append(words, word)
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > maxThemes {
		words = words[:maxThemes]
	}

	themes := make([]Theme, 0, len(words))
	for _, word := range words {
		themes = append(themes, Theme{
			Theme:     word,
			Frequency: counts[word],
			Relevance: float64(counts[word]) / float64(len(titles)),
		})
	}
	return themes
}
