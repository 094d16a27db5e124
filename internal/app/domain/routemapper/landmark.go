package routemapper

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/shacharon/placesearch/internal/app/domain/landmark"
	"github.com/shacharon/placesearch/internal/app/llm"
	"github.com/shacharon/placesearch/internal/app/models"
)

var landmarkSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"geocodeQuery": {Type: genai.TypeString},
		"radiusMeters": {Type: genai.TypeNumber},
		"keyword":      {Type: genai.TypeString},
		"region":       {Type: genai.TypeString},
		"language":     {Type: genai.TypeString},
	},
	Required: []string{"geocodeQuery"},
}

type rawLandmark struct {
	GeocodeQuery string  `json:"geocodeQuery"`
	RadiusMeters float64 `json:"radiusMeters"`
	Keyword      string  `json:"keyword"`
	Region       string  `json:"region"`
	Language     string  `json:"language"`
}

const defaultLandmarkRadiusMeters = 1500

// LandmarkMapper implements the LANDMARK route (§4.H third bullet).
type LandmarkMapper struct {
	client   *llm.Client
	registry *landmark.Registry
	geocoder Geocoder
}

// NewLandmarkMapper builds a LandmarkMapper.
func NewLandmarkMapper(client *llm.Client, registry *landmark.Registry, geocoder Geocoder) *LandmarkMapper {
	return &LandmarkMapper{client: client, registry: registry, geocoder: geocoder}
}

// Map produces a LandmarkPlan. geocodeQuery is normalised against the
// landmark registry first; only an unresolved query falls through to the
// external geocoder.
func (m *LandmarkMapper) Map(ctx context.Context, queryText string, lang models.LanguageContext) (*models.LandmarkPlan, error) {
	var out rawLandmark
	prompt := fmt.Sprintf("Produce a Places landmark-search plan for: %q", queryText)
	if err := m.client.Generate(ctx, prompt, landmarkSchema, &out); err != nil {
		return nil, err
	}

	radius := out.RadiusMeters
	if radius <= 0 {
		radius = defaultLandmarkRadiusMeters
	}

	plan := &models.LandmarkPlan{
		RadiusMeters:   radius,
		CuisineKey:     ExtractCuisineKey(queryText),
		TypeKey:        out.Keyword,
		RegionCode:     out.Region,
		SearchLanguage: lang.SearchLanguage,
	}

	if entry, ok := m.registry.Resolve(out.GeocodeQuery); ok {
		plan.LandmarkID = entry.ID
		latLng := entry.LatLng
		plan.ResolvedLatLng = &latLng
		return plan, nil
	}

	if center, ok := m.geocoder.Geocode(ctx, out.GeocodeQuery, out.Region); ok {
		plan.LandmarkID = out.GeocodeQuery
		plan.ResolvedLatLng = center
	}
	return plan, nil
}
