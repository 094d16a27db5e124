package routemapper

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"google.golang.org/genai"

	"github.com/shacharon/placesearch/internal/app/llm"
	"github.com/shacharon/placesearch/internal/app/models"
)

var textSearchSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"textQuery":      {Type: genai.TypeString},
		"region":         {Type: genai.TypeString},
		"language":       {Type: genai.TypeString},
		"requiredTerms":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"preferredTerms": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"strictness":     {Type: genai.TypeString, Enum: []string{"STRICT", "RELAX_IF_EMPTY"}},
		"typeHint":       {Type: genai.TypeString},
	},
	Required: []string{"textQuery"},
}

type rawTextSearch struct {
	TextQuery      string   `json:"textQuery"`
	Region         string   `json:"region"`
	Language       string   `json:"language"`
	RequiredTerms  []string `json:"requiredTerms"`
	PreferredTerms []string `json:"preferredTerms"`
	Strictness     string   `json:"strictness"`
	TypeHint       string   `json:"typeHint"`
}

// cityBiasRadiusMeters / userBiasRadiusMeters are the fixed bias radii from
// §4.H: explicit city strictly outranks userLocation for bias selection.
const (
	cityBiasRadiusMeters = 10000
	userBiasRadiusMeters = 20000
)

// Geocoder resolves free text to a coordinate; implementations may hit an
// external geocoding API or the landmark registry.
type Geocoder interface {
	Geocode(ctx context.Context, text, regionCode string) (*orb.Point, bool)
}

// TextSearchMapper implements the TextSearch route (§4.H first bullet).
type TextSearchMapper struct {
	client   *llm.Client
	geocoder Geocoder
}

// NewTextSearchMapper builds a TextSearchMapper.
func NewTextSearchMapper(client *llm.Client, geocoder Geocoder) *TextSearchMapper {
	return &TextSearchMapper{client: client, geocoder: geocoder}
}

// Map produces a TextSearchPlan from the LLM's structured output plus
// deterministic post-processing: cuisine-key extraction and bias
// selection (explicit city beats userLocation).
func (m *TextSearchMapper) Map(ctx context.Context, queryText string, lang models.LanguageContext, userLocation *orb.Point, cityText string) (*models.TextSearchPlan, error) {
	var out rawTextSearch
	prompt := fmt.Sprintf("Produce a Places text-search plan for: %q", queryText)
	if err := m.client.Generate(ctx, prompt, textSearchSchema, &out); err != nil {
		return nil, err
	}

	strictness := models.Strictness(out.Strictness)
	if strictness != models.StrictnessStrict && strictness != models.StrictnessRelaxIfEmpty {
		strictness = models.StrictnessRelaxIfEmpty
	}

	plan := &models.TextSearchPlan{
		TextQuery:      out.TextQuery,
		RegionCode:     out.Region,
		SearchLanguage: lang.SearchLanguage,
		RequiredTerms:  out.RequiredTerms,
		PreferredTerms: out.PreferredTerms,
		Strictness:     strictness,
		TypeHint:       out.TypeHint,
		CuisineKey:     ExtractCuisineKey(queryText),
	}

	if cityText != "" {
		if center, ok := m.geocoder.Geocode(ctx, cityText, out.Region); ok {
			plan.OptionalLocationBias = &models.LocationBias{Center: *center, RadiusMeters: cityBiasRadiusMeters}
			return plan, nil
		}
	}
	if userLocation != nil {
		plan.OptionalLocationBias = &models.LocationBias{Center: *userLocation, RadiusMeters: userBiasRadiusMeters}
	}
	return plan, nil
}
