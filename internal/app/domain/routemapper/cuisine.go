// Package routemapper implements the Route Mapper (spec §4.H): LLM route
// plans plus deterministic, language-independent post-processing.
package routemapper

import (
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// cuisineAliases maps every recognised multilingual cuisine phrase to its
// canonical cuisineKey. Extraction always runs after the LLM call and is
// authoritative over any cuisineKey the LLM itself may have guessed.
var cuisineAliases = map[string]string{
	"italian": "italian", "איטלקי": "italian", "איטלקית": "italian", "italiano": "italian", "итальянск": "italian", "إيطالي": "italian", "italien": "italian",
	"sushi": "sushi", "סושי": "sushi", "суши": "sushi", "سوشي": "sushi",
	"chinese": "chinese", "סיני": "chinese", "китайск": "chinese", "صيني": "chinese", "chinois": "chinese",
	"mexican": "mexican", "מקסיקני": "mexican", "мексиканск": "mexican", "مكسيكي": "mexican", "mexicain": "mexican",
	"indian": "indian", "הודי": "indian", "индийск": "indian", "هندي": "indian", "indien": "indian",
	"thai": "thai", "תאילנדי": "thai", "тайск": "thai", "تايلاندي": "thai",
	"burger": "burger", "המבורגר": "burger", "гамбургер": "burger", "برغر": "burger",
	"pizza": "pizza", "פיצה": "pizza", "пицца": "pizza", "بيتزا": "pizza",
}

var cuisineMatcher, cuisinePatterns = buildCuisineMatcher()

func buildCuisineMatcher() (ahocorasick.AhoCorasick, []string) {
	aliases := make([]string, 0, len(cuisineAliases))
	for alias := range cuisineAliases {
		aliases = append(aliases, alias)
	}
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
		DFA:                  true,
	})
	return builder.Build(aliases), aliases
}

// ExtractCuisineKey pattern-matches queryText against the multilingual
// alias table and returns the canonical cuisineKey, or "" when no cuisine
// concept was mentioned.
func ExtractCuisineKey(queryText string) string {
	lower := strings.ToLower(queryText)
	matches := cuisineMatcher.FindAll(lower)
	if len(matches) == 0 {
		return ""
	}
	// Longest-match semantics already picked the best single span; the
	// pattern index refers into cuisinePatterns, the exact slice the
	// matcher was built from, so the index always resolves correctly.
	idx := matches[0].Pattern()
	if idx < 0 || idx >= len(cuisinePatterns) {
		return ""
	}
	return cuisineAliases[cuisinePatterns[idx]]
}
