// Package intent implements the Intent stage (spec §4.F): an LLM call
// classifying route, language, region, explicit city, and language
// confidence.
package intent

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/shacharon/placesearch/internal/app/llm"
	"github.com/shacharon/placesearch/internal/app/models"
	"github.com/shacharon/placesearch/internal/pkg/retry"
)

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"route":              {Type: genai.TypeString, Enum: []string{"TEXTSEARCH", "NEARBY", "LANDMARK"}},
		"reason":             {Type: genai.TypeString},
		"language":           {Type: genai.TypeString},
		"languageConfidence": {Type: genai.TypeNumber},
		"regionCandidate":    {Type: genai.TypeString},
		"regionConfidence":   {Type: genai.TypeNumber},
		"cityText":           {Type: genai.TypeString},
	},
	Required: []string{"route", "reason", "language", "languageConfidence"},
}

type rawResult struct {
	Route              string  `json:"route"`
	Reason             string  `json:"reason"`
	Language           string  `json:"language"`
	LanguageConfidence float64 `json:"languageConfidence"`
	RegionCandidate    string  `json:"regionCandidate"`
	RegionConfidence   float64 `json:"regionConfidence"`
	CityText           string  `json:"cityText"`
}

// regionFixups corrects ISO-3166-1 alpha-2 codes LLMs commonly confuse.
var regionFixups = map[string]string{
	"IS": "IL", // "Israel" mis-mapped to Iceland's code.
}

var validRegions = buildValidRegions()

func buildValidRegions() map[string]bool {
	// A representative subset; extend as new markets are supported.
	codes := []string{"IL", "US", "GB", "FR", "ES", "RU", "AE", "SA", "EG", "DE", "IT"}
	m := make(map[string]bool, len(codes))
	for _, c := range codes {
		m[c] = true
	}
	return m
}

// Stage runs the Intent classifier.
type Stage struct {
	client *llm.Client
}

// New builds an Intent stage against client.
func New(client *llm.Client) *Stage {
	return &Stage{client: client}
}

// Classify asks the LLM to classify queryText. Timeouts/errors are retried
// once with jitter (intent is in the retriable set per §5); persistent
// failure yields the documented fallback (languageConfidence 0.5, reason
// "default").
func (s *Stage) Classify(ctx context.Context, queryText string) models.IntentResult {
	var out rawResult
	prompt := fmt.Sprintf("Classify the route, language, and region for this restaurant search query: %q", queryText)

	err := retry.Do(ctx, retry.DefaultConfig(), func(error) bool { return true }, func(ctx context.Context) error {
		return s.client.Generate(ctx, prompt, responseSchema, &out)
	})
	if err != nil {
		return models.IntentResult{
			Route:              models.RouteTextSearch,
			Reason:             models.IntentReasonDefault,
			Language:           models.LangEnglish,
			LanguageConfidence: 0.5,
		}
	}

	region := validateRegion(out.RegionCandidate)
	return models.IntentResult{
		Route:              models.Route(out.Route),
		Reason:             models.IntentReason(out.Reason),
		Language:           models.Language(out.Language),
		LanguageConfidence: out.LanguageConfidence,
		RegionCandidate:    region,
		RegionConfidence:   out.RegionConfidence,
		CityText:           out.CityText,
	}
}

// validateRegion applies the fix-up table then validates against
// ISO-3166-1 alpha-2; an invalid code becomes "" rather than being logged
// as noise.
func validateRegion(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if fixed, ok := regionFixups[code]; ok {
		code = fixed
	}
	if validRegions[code] {
		return code
	}
	return ""
}
