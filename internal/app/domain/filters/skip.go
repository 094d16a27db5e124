// Package filters implements the Parallel Filter Stages (spec §4.G):
// PostConstraints and BaseFilters, each conditional, plus the deterministic
// skip rule that decides whether either LLM call runs at all.
package filters

import (
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// keywordsByLanguage is the small, language-tagged keyword set covering
// open/price/rating/reviews/distance concepts, used to decide whether
// BaseFilters is worth running for an otherwise-generic query.
var keywordsByLanguage = map[string][]string{
	"en": {"open now", "cheap", "expensive", "rating", "reviews", "near", "nearby", "price"},
	"he": {"פתוח עכשיו", "זול", "יקר", "דירוג", "ביקורות", "קרוב"},
	"es": {"abierto ahora", "barato", "caro", "calificación", "reseñas", "cerca"},
	"ru": {"открыто сейчас", "дешево", "дорого", "рейтинг", "отзывы", "рядом"},
	"ar": {"مفتوح الآن", "رخيص", "غالي", "تقييم", "مراجعات", "قريب"},
	"fr": {"ouvert maintenant", "pas cher", "cher", "note", "avis", "proche"},
}

var skipKeywordMatcher = buildMatcher()

func buildMatcher() ahocorasick.AhoCorasick {
	var all []string
	for _, kws := range keywordsByLanguage {
		all = append(all, kws...)
	}
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchKind:            ahocorasick.LeftMostFirstMatch,
		DFA:                  true,
	})
	return builder.Build(all)
}

// ContainsFilterKeyword reports whether queryText mentions any
// open/price/rating/review/distance concept across the supported
// languages, in one aho-corasick pass rather than repeated
// strings.Contains loops.
func ContainsFilterKeyword(queryText string) bool {
	matches := skipKeywordMatcher.FindAll(strings.ToLower(queryText))
	return len(matches) > 0
}

// SkipDecision is the deterministic skip rule's output.
type SkipDecision struct {
	SkipPostConstraints bool
	SkipBaseFilters     bool
}

// DecideSkip implements §4.G's rule: for a generic query (gate foodSignal
// YES, no explicit city, user has location), PostConstraints is always
// skipped, and BaseFilters is skipped unless the query mentions a
// filter-relevant keyword.
func DecideSkip(foodSignalYes bool, hasExplicitCity bool, hasUserLocation bool, queryText string) SkipDecision {
	isGeneric := foodSignalYes && !hasExplicitCity && hasUserLocation
	if !isGeneric {
		return SkipDecision{}
	}
	return SkipDecision{
		SkipPostConstraints: true,
		SkipBaseFilters:     !ContainsFilterKeyword(queryText),
	}
}
