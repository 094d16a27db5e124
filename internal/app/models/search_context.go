package models

import "github.com/paulmach/orb"

// Route is the mapper dispatch key decided by the Intent stage.
type Route string

const (
	RouteTextSearch Route = "TEXTSEARCH"
	RouteNearby     Route = "NEARBY"
	RouteLandmark   Route = "LANDMARK"
)

// SoftFilterSignature is the soft-filter portion of a SearchContext: it can
// change without forcing a new provider call.
type SoftFilterSignature struct {
	OpenNow            bool     `json:"openNow"`
	OpenAtWindow       string   `json:"openAtWindow,omitempty"`
	PriceIntent        string   `json:"priceIntent,omitempty"`
	MinRatingBucket    string   `json:"minRatingBucket,omitempty"`
	MinReviewCountBucket string `json:"minReviewCountBucket,omitempty"`
	DietaryFlags       []string `json:"dietaryFlags,omitempty"`
}

// SearchContext is the immutable descriptor of what the provider was asked,
// attached to a CandidatePool so the Requery Decision can compare contexts.
type SearchContext struct {
	NormalisedQuery string
	Route           Route
	AnchorCityText  string
	UserLocation    *orb.Point // nil when no user location was supplied
	RegionCode      string
	RadiusMeters    float64
	SoftFilters     SoftFilterSignature
}
