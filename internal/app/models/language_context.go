package models

// Language is one of the six BCP-47 tags the service supports end to end.
type Language string

const (
	LangHebrew  Language = "he"
	LangEnglish Language = "en"
	LangSpanish Language = "es"
	LangRussian Language = "ru"
	LangArabic  Language = "ar"
	LangFrench  Language = "fr"
)

// SupportedLanguages is the allow-list backing searchLanguage resolution.
var SupportedLanguages = []Language{LangHebrew, LangEnglish, LangSpanish, LangRussian, LangArabic, LangFrench}

// UILanguages is the subset a client may request as uiLanguage.
var UILanguages = []Language{LangHebrew, LangEnglish}

// SearchLanguageProvenance names why searchLanguage took the value it did.
type SearchLanguageProvenance string

const (
	ProvenancePolicySupported  SearchLanguageProvenance = "query_language_policy"
	ProvenanceFallbackUnsupported SearchLanguageProvenance = "query_language_fallback_unsupported"
)

// AssistantLanguageProvenance names why assistantLanguage took its value.
type AssistantLanguageProvenance string

const (
	ProvenanceLLMConfident        AssistantLanguageProvenance = "llm_confident"
	ProvenanceUILowConfidence     AssistantLanguageProvenance = "uiLanguage_low_confidence"
)

// LanguageContext is computed once per request by the Language Context
// Resolver. searchLanguage must never be influenced by uiLanguage or
// assistantLanguage — see Resolve in the language package for the
// enforcement of this invariant.
type LanguageContext struct {
	UILanguage        Language
	QueryLanguage     Language
	QueryConfidence    float64
	AssistantLanguage Language
	AssistantProvenance AssistantLanguageProvenance
	SearchLanguage    Language
	SearchProvenance  SearchLanguageProvenance
}
