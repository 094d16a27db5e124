package models

// OpenState is the bucketed open/closed constraint BaseFilters may return.
type OpenState string

const (
	OpenStateOpenNow OpenState = "OPEN_NOW"
	OpenStateNone    OpenState = ""
)

// PriceIntent is the bucketed price constraint.
type PriceIntent string

const (
	PriceCheap    PriceIntent = "CHEAP"
	PriceModerate PriceIntent = "MODERATE"
	PriceExpensive PriceIntent = "EXPENSIVE"
	PriceNone      PriceIntent = ""
)

// PriceIntentRange maps a price intent bucket to its inclusive
// [min, max] priceLevel range on the provider's 1..4 scale.
var PriceIntentRange = map[PriceIntent][2]int{
	PriceCheap:     {1, 2},
	PriceModerate:  {2, 3},
	PriceExpensive: {3, 4},
}

// RatingBucket is the bucketed minimum-rating constraint; the bucket→number
// mapping below is the sole source of truth for the numeric threshold.
type RatingBucket string

const (
	Rating35 RatingBucket = "R35"
	Rating40 RatingBucket = "R40"
	Rating45 RatingBucket = "R45"
	RatingNone RatingBucket = ""
)

// RatingBucketThreshold maps a rating bucket to its numeric floor.
var RatingBucketThreshold = map[RatingBucket]float64{
	Rating35: 3.5,
	Rating40: 4.0,
	Rating45: 4.5,
}

// ReviewCountBucket is the bucketed minimum-review-count constraint.
type ReviewCountBucket string

const (
	Count25  ReviewCountBucket = "C25"
	Count100 ReviewCountBucket = "C100"
	Count500 ReviewCountBucket = "C500"
	CountNone ReviewCountBucket = ""
)

// ReviewCountBucketThreshold maps a review-count bucket to its numeric floor.
var ReviewCountBucketThreshold = map[ReviewCountBucket]int{
	Count25:  25,
	Count100: 100,
	Count500: 500,
}

// PostConstraints are the explicit user constraints extracted by the
// PostConstraints LLM call.
type PostConstraints struct {
	Dietary           []string
	AccessibilityTags []string
	MustHaveKeywords  []string
}

// BaseFilters are the bucketed soft filters extracted by the BaseFilters
// LLM call. Rule #1: these are buckets, never raw numbers.
type BaseFilters struct {
	OpenState            OpenState
	OpenAt               string // RFC3339 timestamp string, empty when unset
	OpenBetween          [2]string
	PriceIntent          PriceIntent
	MinRatingBucket      RatingBucket
	MinReviewCountBucket ReviewCountBucket
	Vegetarian           bool
	Vegan                bool
	GlutenFree            bool
	Halal                 bool
	Kosher                bool
}

// RelaxStep records one post-filter relaxation for the response's explain
// trail.
type RelaxStep struct {
	Step int
	Field string
	From  string
	To    string
}
