package ranker

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/shacharon/placesearch/internal/app/models"
)

func rp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func TestRank_OrdersByDescendingScore(t *testing.T) {
	places := []models.Place{
		{PlaceID: "low", Rating: rp(3.0), UserRatingsTotal: ip(10), LatLng: orb.Point{0, 0}},
		{PlaceID: "high", Rating: rp(4.9), UserRatingsTotal: ip(500), LatLng: orb.Point{0, 0}},
	}
	profile := models.SelectRankingProfile(models.RouteTextSearch, false, models.IntentReasonDefault)
	origin := models.SelectDistanceOrigin(models.IntentReasonDefault, nil, nil)

	result := Rank(places, profile, origin)
	if result.Places[0].PlaceID != "high" {
		t.Fatalf("expected high-rated place first, got %+v", result.Places)
	}
}

func TestRank_TieBreaksByReviewsThenPlaceID(t *testing.T) {
	places := []models.Place{
		{PlaceID: "b", Rating: rp(4.0), UserRatingsTotal: ip(10)},
		{PlaceID: "a", Rating: rp(4.0), UserRatingsTotal: ip(10)},
	}
	profile := models.RankingProfile{Weights: models.RankingWeights{Rating: 1}}
	origin := models.DistanceOrigin{Kind: models.DistanceOriginNone}

	result := Rank(places, profile, origin)
	if result.Places[0].PlaceID != "a" {
		t.Fatalf("expected placeId tie-break to pick 'a' first, got %+v", result.Places)
	}
}

func TestRank_DistanceOriginNoneForcesZeroDistanceWeight(t *testing.T) {
	places := []models.Place{{PlaceID: "a", LatLng: orb.Point{10, 10}}}
	profile := models.RankingProfile{Weights: models.RankingWeights{Distance: 0.5}}
	origin := models.DistanceOrigin{Kind: models.DistanceOriginNone}

	result := Rank(places, profile, origin)
	if result.Order.Weights.Distance != 0 {
		t.Fatalf("expected distance weight forced to 0, got %v", result.Order.Weights.Distance)
	}
	if result.Order.Breakdown[0].DistanceMeters != nil {
		t.Fatal("expected nil distanceMeters when origin is NONE")
	}
}

func TestRank_MissingRatingContributesZero(t *testing.T) {
	places := []models.Place{{PlaceID: "a", Rating: nil}}
	profile := models.RankingProfile{Weights: models.RankingWeights{Rating: 1}}
	origin := models.DistanceOrigin{Kind: models.DistanceOriginNone}

	result := Rank(places, profile, origin)
	if result.Order.Breakdown[0].RatingComponent != 0 {
		t.Fatalf("expected 0 rating component for missing rating, got %v", result.Order.Breakdown[0].RatingComponent)
	}
}
