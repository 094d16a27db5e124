package routemapper

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"google.golang.org/genai"

	"github.com/shacharon/placesearch/internal/app/llm"
	"github.com/shacharon/placesearch/internal/app/models"
)

var nearbySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"centerLat":    {Type: genai.TypeNumber},
		"centerLng":    {Type: genai.TypeNumber},
		"radiusMeters": {Type: genai.TypeNumber},
		"keyword":      {Type: genai.TypeString},
		"region":       {Type: genai.TypeString},
		"language":     {Type: genai.TypeString},
	},
	Required: []string{"centerLat", "centerLng", "radiusMeters"},
}

type rawNearby struct {
	CenterLat    float64 `json:"centerLat"`
	CenterLng    float64 `json:"centerLng"`
	RadiusMeters float64 `json:"radiusMeters"`
	Keyword      string  `json:"keyword"`
	Region       string  `json:"region"`
	Language     string  `json:"language"`
}

// NearbyMapper implements the NEARBY route (§4.H second bullet).
type NearbyMapper struct {
	client *llm.Client
}

// NewNearbyMapper builds a NearbyMapper.
func NewNearbyMapper(client *llm.Client) *NearbyMapper {
	return &NearbyMapper{client: client}
}

// Map produces a NearbyPlan. keyword is retained only as a legacy fallback
// typeKey — cuisineKey, extracted deterministically from queryText, is
// always the authoritative signal for includedTypes selection.
func (m *NearbyMapper) Map(ctx context.Context, queryText string, lang models.LanguageContext, userLocation *orb.Point) (*models.NearbyPlan, error) {
	var out rawNearby
	prompt := fmt.Sprintf("Produce a Places nearby-search plan for: %q", queryText)
	if err := m.client.Generate(ctx, prompt, nearbySchema, &out); err != nil {
		return nil, err
	}

	center := orb.Point{out.CenterLng, out.CenterLat}
	if out.CenterLat == 0 && out.CenterLng == 0 && userLocation != nil {
		center = *userLocation
	}

	return &models.NearbyPlan{
		CenterLatLng:   center,
		RadiusMeters:   out.RadiusMeters,
		CuisineKey:     ExtractCuisineKey(queryText),
		TypeKey:        out.Keyword,
		RegionCode:     out.Region,
		SearchLanguage: lang.SearchLanguage,
	}, nil
}
