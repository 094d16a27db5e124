// Package ranker implements the Ranker (spec §4.M): deterministic scoring,
// stable sort, and the top-10 score-breakdown explain trail.
package ranker

import (
	"math"
	"sort"

	"github.com/shacharon/placesearch/internal/app/geo"
	"github.com/shacharon/placesearch/internal/app/models"
)

const explainTopN = 10

// Result is the Ranker's output: the reordered places plus the
// order_explain response fragment.
type Result struct {
	Places []models.Place
	Order  models.OrderExplain
}

// Rank scores and sorts places using profile and origin, which the caller
// selects via models.SelectRankingProfile/SelectDistanceOrigin.
func Rank(places []models.Place, profile models.RankingProfile, origin models.DistanceOrigin) Result {
	weights := profile.Weights
	if origin.Kind == models.DistanceOriginNone {
		weights.Distance = 0
	}

	scored := make([]scoredPlace, 0, len(places))
	for _, p := range places {
		scored = append(scored, score(p, weights, origin))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].breakdown.Total != scored[j].breakdown.Total {
			return scored[i].breakdown.Total > scored[j].breakdown.Total
		}
		ri, rj := reviewCount(scored[i].place), reviewCount(scored[j].place)
		if ri != rj {
			return ri > rj
		}
		return scored[i].place.PlaceID < scored[j].place.PlaceID
	})

	out := make([]models.Place, len(scored))
	breakdown := make([]models.ScoreBreakdown, 0, explainTopN)
	for i, sp := range scored {
		out[i] = sp.place
		if i < explainTopN {
			breakdown = append(breakdown, sp.breakdown)
		}
	}

	order := models.OrderExplain{
		Profile:        profile.Name,
		Weights:        weights,
		DistanceOrigin: origin.Kind,
		Reordered:      !isAlreadySorted(places, out),
		Breakdown:      breakdown,
	}
	if origin.Kind != models.DistanceOriginNone {
		latLng := origin.LatLng
		order.DistanceRef = &latLng
	}

	return Result{Places: out, Order: order}
}

type scoredPlace struct {
	place     models.Place
	breakdown models.ScoreBreakdown
}

func score(p models.Place, weights models.RankingWeights, origin models.DistanceOrigin) scoredPlace {
	var ratingComp, reviewsComp, distanceComp, openBoostComp float64

	if p.Rating != nil {
		ratingComp = weights.Rating * (*p.Rating / 5)
	}
	if p.UserRatingsTotal != nil {
		reviewsComp = weights.Reviews * (math.Log10(float64(*p.UserRatingsTotal)+1) / 5)
	}

	var distanceMeters *float64
	if origin.Kind != models.DistanceOriginNone {
		d := geo.DistanceMeters(origin.LatLng, p.LatLng)
		distanceMeters = &d
		distanceKm := d / 1000
		distanceComp = weights.Distance * (1 / (1 + distanceKm))
	}

	var openNow *bool
	if p.OpeningHours != nil {
		if on, ok := p.OpeningHours.IsOpenNow(); ok {
			openNow = &on
			if on {
				openBoostComp = weights.OpenBoost * 1
			} else {
				openBoostComp = weights.OpenBoost * 0
			}
		} else {
			openBoostComp = weights.OpenBoost * 0.5
		}
	} else {
		openBoostComp = weights.OpenBoost * 0.5
	}

	total := ratingComp + reviewsComp + distanceComp + openBoostComp

	return scoredPlace{
		place: p,
		breakdown: models.ScoreBreakdown{
			PlaceID:            p.PlaceID,
			RatingComponent:    ratingComp,
			ReviewsComponent:   reviewsComp,
			DistanceComponent:  distanceComp,
			OpenBoostComponent: openBoostComp,
			Total:              total,
			InputRating:        p.Rating,
			InputReviews:       p.UserRatingsTotal,
			DistanceMeters:     distanceMeters,
			OpenNow:            openNow,
		},
	}
}

func reviewCount(p models.Place) int {
	if p.UserRatingsTotal == nil {
		return 0
	}
	return *p.UserRatingsTotal
}

func isAlreadySorted(before, after []models.Place) bool {
	if len(before) != len(after) {
		return false
	}
	for i := range before {
		if before[i].PlaceID != after[i].PlaceID {
			return false
		}
	}
	return true
}
