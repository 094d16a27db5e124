package models

import "github.com/paulmach/orb"

// RankingProfileName selects which fixed weight tuple the Ranker applies.
type RankingProfileName string

const (
	ProfileBalanced   RankingProfileName = "BALANCED"
	ProfileNearby     RankingProfileName = "NEARBY"
	ProfileNoLocation RankingProfileName = "NO_LOCATION"
)

// RankingWeights is a 4-tuple that sums to 1.0 under normal operation (the
// sum may drop below 1.0 when DistanceOrigin is NONE forces wDistance to 0;
// ordering is invariant under positive rescaling so this is acceptable).
type RankingWeights struct {
	Rating    float64
	Reviews   float64
	Distance  float64
	OpenBoost float64
}

// RankingProfile pairs a profile name with its weight tuple.
type RankingProfile struct {
	Name    RankingProfileName
	Weights RankingWeights
}

var (
	balancedProfile   = RankingProfile{Name: ProfileBalanced, Weights: RankingWeights{Rating: 0.30, Reviews: 0.25, Distance: 0.35, OpenBoost: 0.10}}
	nearbyProfile     = RankingProfile{Name: ProfileNearby, Weights: RankingWeights{Rating: 0.15, Reviews: 0.10, Distance: 0.65, OpenBoost: 0.10}}
	noLocationProfile = RankingProfile{Name: ProfileNoLocation, Weights: RankingWeights{Rating: 0.45, Reviews: 0.45, Distance: 0.00, OpenBoost: 0.10}}
)

// nearbyIntentReasons are the IntentReason values that pin the NEARBY
// profile even when the route itself is not NEARBY.
var nearbyIntentReasons = map[IntentReason]bool{
	IntentReasonNearbyIntent:        true,
	IntentReasonProximityKeywords:   true,
	IntentReasonSmallRadiusDetected: true,
	IntentReasonUserLocationPrimary: true,
}

// SelectRankingProfile is the deterministic profile-selection rule from
// §3/§4.M — it must never be produced by an LLM and must never depend on
// language.
func SelectRankingProfile(route Route, hasUserLocation bool, reason IntentReason) RankingProfile {
	if !hasUserLocation {
		return noLocationProfile
	}
	if route == RouteNearby {
		return nearbyProfile
	}
	if nearbyIntentReasons[reason] {
		return nearbyProfile
	}
	return balancedProfile
}

// DistanceOriginKind tags a DistanceOrigin case.
type DistanceOriginKind string

const (
	DistanceOriginCityCenter   DistanceOriginKind = "CITY_CENTER"
	DistanceOriginUserLocation DistanceOriginKind = "USER_LOCATION"
	DistanceOriginNone         DistanceOriginKind = "NONE"
)

// DistanceOrigin is the tagged-variant reference point ranking distance is
// measured from.
type DistanceOrigin struct {
	Kind   DistanceOriginKind
	LatLng orb.Point // zero value when Kind == DistanceOriginNone
}

// SelectDistanceOrigin applies the §3 selection rule in order: explicit
// city with a resolved center wins, then user location, else NONE.
func SelectDistanceOrigin(reason IntentReason, cityCenter *orb.Point, userLocation *orb.Point) DistanceOrigin {
	if reason == IntentReasonExplicitCityMentioned && cityCenter != nil {
		return DistanceOrigin{Kind: DistanceOriginCityCenter, LatLng: *cityCenter}
	}
	if userLocation != nil {
		return DistanceOrigin{Kind: DistanceOriginUserLocation, LatLng: *userLocation}
	}
	return DistanceOrigin{Kind: DistanceOriginNone}
}

// ScoreBreakdown is the per-place explain record included in order_explain
// for the top results.
type ScoreBreakdown struct {
	PlaceID         string
	RatingComponent float64
	ReviewsComponent float64
	DistanceComponent float64
	OpenBoostComponent float64
	Total           float64
	InputRating     *float64
	InputReviews    *int
	DistanceMeters  *float64
	OpenNow         *bool
}

// OrderExplain is the meta.order_explain response record.
type OrderExplain struct {
	Profile        RankingProfileName
	Weights        RankingWeights
	DistanceOrigin DistanceOriginKind
	DistanceRef    *orb.Point
	Reordered      bool
	Breakdown      []ScoreBreakdown
}
