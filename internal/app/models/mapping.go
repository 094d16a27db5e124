package models

import "github.com/paulmach/orb"

// Strictness controls how the Cuisine Enforcer treats a TextSearch plan's
// required terms.
type Strictness string

const (
	StrictnessStrict        Strictness = "STRICT"
	StrictnessRelaxIfEmpty  Strictness = "RELAX_IF_EMPTY"
)

// MappingKind tags which of the three route plans a Mapping carries.
type MappingKind string

const (
	MappingTextSearch MappingKind = "TEXT_SEARCH"
	MappingNearby     MappingKind = "NEARBY"
	MappingLandmark   MappingKind = "LANDMARK"
)

// TextSearchPlan is the TEXTSEARCH route's provider call plan.
type TextSearchPlan struct {
	TextQuery            string
	RegionCode           string
	SearchLanguage       Language
	OptionalLocationBias *LocationBias
	RequiredTerms        []string
	PreferredTerms       []string
	Strictness           Strictness
	TypeHint             string
	CuisineKey           string
}

// LocationBias is a circular bias region centred on a lat/lng.
type LocationBias struct {
	Center       orb.Point
	RadiusMeters float64
}

// NearbyPlan is the NEARBY route's provider call plan.
type NearbyPlan struct {
	CenterLatLng   orb.Point
	RadiusMeters   float64
	CuisineKey     string
	TypeKey        string
	RegionCode     string
	SearchLanguage Language
}

// LandmarkPlan is the LANDMARK route's provider call plan.
type LandmarkPlan struct {
	LandmarkID     string
	ResolvedLatLng *orb.Point
	RadiusMeters   float64
	CuisineKey     string
	TypeKey        string
	RegionCode     string
	SearchLanguage Language
}

// Mapping is the tagged-variant route plan produced by the Route Mapper.
// Exactly one of TextSearch/Nearby/Landmark is populated, selected by Kind —
// the idiomatic Go substitute for a sum type.
type Mapping struct {
	Kind       MappingKind
	TextSearch *TextSearchPlan
	Nearby     *NearbyPlan
	Landmark   *LandmarkPlan
}

// IncludedTypesForCuisine derives the provider includedTypes list
// deterministically from a cuisine key, never from the raw keyword.
func IncludedTypesForCuisine(cuisineKey string) []string {
	if cuisineKey == "" {
		return []string{"restaurant"}
	}
	return []string{cuisineKey + "_restaurant", "restaurant"}
}
