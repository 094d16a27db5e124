package routemapper

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/shacharon/placesearch/internal/app/models"
)

// Mapper dispatches a resolved route to its sub-mapper and returns the
// tagged-variant Mapping.
type Mapper struct {
	textSearch    *TextSearchMapper
	nearby        *NearbyMapper
	landmark      *LandmarkMapper
	canonicalizer *Canonicalizer
}

// New builds a Mapper wiring all three route sub-mappers plus the
// TextSearch canonical-query cache.
func New(textSearch *TextSearchMapper, nearby *NearbyMapper, landmark *LandmarkMapper, canonicalizer *Canonicalizer) *Mapper {
	return &Mapper{textSearch: textSearch, nearby: nearby, landmark: landmark, canonicalizer: canonicalizer}
}

// Map dispatches on route and returns the populated Mapping.
func (m *Mapper) Map(ctx context.Context, route models.Route, queryText string, lang models.LanguageContext, userLocation *orb.Point, cityText, regionCode string) (*models.Mapping, error) {
	switch route {
	case models.RouteTextSearch:
		plan, err := m.textSearch.Map(ctx, queryText, lang, userLocation, cityText)
		if err != nil {
			return nil, err
		}
		if m.canonicalizer != nil {
			canonical, err := m.canonicalizer.Canonicalise(ctx, queryText, string(lang.UILanguage), regionCode, cityText)
			if err == nil && canonical != "" {
				plan.TextQuery = canonical
			}
		}
		return &models.Mapping{Kind: models.MappingTextSearch, TextSearch: plan}, nil

	case models.RouteNearby:
		plan, err := m.nearby.Map(ctx, queryText, lang, userLocation)
		if err != nil {
			return nil, err
		}
		return &models.Mapping{Kind: models.MappingNearby, Nearby: plan}, nil

	case models.RouteLandmark:
		plan, err := m.landmark.Map(ctx, queryText, lang)
		if err != nil {
			return nil, err
		}
		return &models.Mapping{Kind: models.MappingLandmark, Landmark: plan}, nil

	default:
		return nil, fmt.Errorf("routemapper: unknown route %q", route)
	}
}
