// Package language implements the Language Context Resolver (spec §4.A): a
// pure function computing the four distinct languages — ui, query,
// assistant, search — from request and Intent-stage inputs.
package language

import (
	"golang.org/x/text/language"

	"github.com/shacharon/placesearch/internal/app/models"
)

// supportedTags backs the BCP-47 allow-list check via golang.org/x/text,
// the teacher's "ambient i18n" dependency, rather than a hand-rolled string
// set.
var supportedTags = buildSupportedTags()

func buildSupportedTags() map[models.Language]language.Tag {
	m := make(map[models.Language]language.Tag, len(models.SupportedLanguages))
	for _, l := range models.SupportedLanguages {
		m[l] = language.MustParse(string(l))
	}
	return m
}

// IsSupported reports whether a language tag is in the provider's
// supported-language allow-list.
func IsSupported(l models.Language) bool {
	_, ok := supportedTags[l]
	return ok
}

// assistantConfidenceThreshold is the LLM-confidence gate deciding whether
// assistantLanguage follows queryLanguage or falls back to uiLanguage.
const assistantConfidenceThreshold = 0.7

// Resolve computes a LanguageContext from the client's uiLanguage and the
// Intent stage's reported query language/confidence. Resolve does not log
// itself; the Orchestrator logs its result as one structured record named
// language_context_resolved carrying each field plus its provenance.
//
// Hard invariant: searchLanguage is a pure function of queryLanguage (and
// the supported-language allow-list) — it is never influenced by
// uiLanguage or assistantLanguage, enforced here by construction rather
// than by a downstream check.
func Resolve(uiLanguage models.Language, queryLanguage models.Language, queryConfidence float64) models.LanguageContext {
	ctx := models.LanguageContext{
		UILanguage:     uiLanguage,
		QueryLanguage:  queryLanguage,
		QueryConfidence: queryConfidence,
	}

	if queryConfidence >= assistantConfidenceThreshold {
		ctx.AssistantLanguage = queryLanguage
		ctx.AssistantProvenance = models.ProvenanceLLMConfident
	} else {
		ctx.AssistantLanguage = uiLanguage
		ctx.AssistantProvenance = models.ProvenanceUILowConfidence
	}

	if IsSupported(queryLanguage) {
		ctx.SearchLanguage = queryLanguage
		ctx.SearchProvenance = models.ProvenancePolicySupported
	} else {
		ctx.SearchLanguage = models.LangEnglish
		ctx.SearchProvenance = models.ProvenanceFallbackUnsupported
	}

	return ctx
}

// Validate rejects any context whose searchLanguage provenance mentions ui
// or assistant — the spec's explicit validator requirement.
func Validate(ctx models.LanguageContext) bool {
	switch ctx.SearchProvenance {
	case models.ProvenancePolicySupported, models.ProvenanceFallbackUnsupported:
		return true
	default:
		return false
	}
}
