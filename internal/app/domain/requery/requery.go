// Package requery implements the Requery Decision (spec §4.I): a pure
// function deciding whether a prior candidate pool may be reused or whether
// a fresh provider call is required.
package requery

import (
	"github.com/paulmach/orb"

	"github.com/shacharon/placesearch/internal/app/geo"
	"github.com/shacharon/placesearch/internal/app/models"
)

// userLocationMovedThresholdMeters / radiusDeltaThresholdFraction /
// minFilteredPoolSize are the fixed hard-context thresholds.
const (
	userLocationMovedThresholdMeters = 500
	radiusDeltaThresholdFraction     = 0.5
	minFilteredPoolSize              = 5
)

// Decision is the Requery Decision's output; Reason is always set, even
// when DoProviderCall is false, so every decision can be logged.
type Decision struct {
	DoProviderCall bool
	Reason         string
}

// PoolStats describes the previously-stored candidate pool's post-filter
// size, used for the exhaustion rule.
type PoolStats struct {
	FilteredSize int
}

// Decide implements the exact rule list from §4.I, checked in order; the
// first matching hard-context reason wins.
func Decide(prev *models.SearchContext, next models.SearchContext, pool *PoolStats) Decision {
	if prev == nil {
		return Decision{DoProviderCall: true, Reason: "no_prior_pool"}
	}
	if prev.NormalisedQuery != next.NormalisedQuery {
		return Decision{DoProviderCall: true, Reason: "query_changed"}
	}
	if prev.Route != next.Route {
		return Decision{DoProviderCall: true, Reason: "route_changed"}
	}
	if prev.AnchorCityText != next.AnchorCityText {
		return Decision{DoProviderCall: true, Reason: "city_text_changed"}
	}
	if prev.RegionCode != next.RegionCode {
		return Decision{DoProviderCall: true, Reason: "region_code_changed"}
	}
	if userLocationMoved(prev.UserLocation, next.UserLocation) {
		return Decision{DoProviderCall: true, Reason: "user_location_moved"}
	}
	if geo.RadiusDeltaFraction(prev.RadiusMeters, next.RadiusMeters) > radiusDeltaThresholdFraction {
		return Decision{DoProviderCall: true, Reason: "radius_changed"}
	}
	if pool != nil && pool.FilteredSize < minFilteredPoolSize {
		return Decision{DoProviderCall: true, Reason: "pool_exhausted"}
	}
	return Decision{DoProviderCall: false, Reason: "soft_filters_only"}
}

// userLocationMoved reports whether the user's location changed presence
// (nil <-> non-nil) or moved beyond the hard-context threshold.
func userLocationMoved(prev, next *orb.Point) bool {
	if (prev == nil) != (next == nil) {
		return true
	}
	if prev == nil {
		return false
	}
	return geo.DistanceMeters(*prev, *next) > userLocationMovedThresholdMeters
}
