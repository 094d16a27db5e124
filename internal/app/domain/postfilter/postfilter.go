// Package postfilter implements the Post-Filter + Relax Loop (spec §4.L):
// local filtering against the resolved soft filters, with unknown values
// always kept and at most two bounded relaxation passes.
package postfilter

import (
	"strings"
	"time"

	"github.com/shacharon/placesearch/internal/app/models"
)

const (
	minResultsBeforeRelax = 5
	maxRelaxIterations    = 2
)

// Result is the Post-Filter + Relax Loop's output.
type Result struct {
	Places     []models.Place
	RelaxSteps []models.RelaxStep
}

// Apply filters places against base+post constraints, relaxing up to twice
// when the result set is too small and a relaxable filter remains.
func Apply(places []models.Place, base models.BaseFilters, post models.PostConstraints, now time.Time) Result {
	result := filterOnce(places, base, post, now)
	steps := make([]models.RelaxStep, 0, maxRelaxIterations)

	for i := 0; i < maxRelaxIterations && len(result) < minResultsBeforeRelax; i++ {
		relaxedBase, step, ok := relaxNext(base)
		if !ok {
			break
		}
		step.Step = i + 1
		steps = append(steps, step)
		base = relaxedBase
		result = filterOnce(places, base, post, now)
	}

	return Result{Places: result, RelaxSteps: steps}
}

// relaxNext drops the next relaxable field in the fixed order: open
// constraints, then dietary flags, then minRatingBucket. ok is false once
// nothing is left to relax.
func relaxNext(base models.BaseFilters) (models.BaseFilters, models.RelaxStep, bool) {
	if base.OpenState != models.OpenStateNone || base.OpenAt != "" || base.OpenBetween != [2]string{} {
		from := string(base.OpenState)
		base.OpenState = models.OpenStateNone
		base.OpenAt = ""
		base.OpenBetween = [2]string{}
		return base, models.RelaxStep{Field: "openState", From: from, To: ""}, true
	}
	if base.Vegetarian || base.Vegan || base.GlutenFree || base.Halal || base.Kosher {
		base.Vegetarian, base.Vegan, base.GlutenFree, base.Halal, base.Kosher = false, false, false, false, false
		return base, models.RelaxStep{Field: "dietary", From: "set", To: ""}, true
	}
	if base.MinRatingBucket != models.RatingNone {
		from := string(base.MinRatingBucket)
		base.MinRatingBucket = models.RatingNone
		return base, models.RelaxStep{Field: "minRatingBucket", From: from, To: ""}, true
	}
	return base, models.RelaxStep{}, false
}

func filterOnce(places []models.Place, base models.BaseFilters, post models.PostConstraints, now time.Time) []models.Place {
	out := make([]models.Place, 0, len(places))
	for _, p := range places {
		if matches(p, base, post, now) {
			out = append(out, p)
		}
	}
	return out
}

// matches applies every active constraint. Any attribute missing on the
// place (nil rating, nil review count, nil opening hours) is treated as
// unknown and never causes an exclusion.
func matches(p models.Place, base models.BaseFilters, post models.PostConstraints, now time.Time) bool {
	if base.MinRatingBucket != models.RatingNone && p.Rating != nil {
		if *p.Rating < models.RatingBucketThreshold[base.MinRatingBucket] {
			return false
		}
	}
	if base.MinReviewCountBucket != models.CountNone && p.UserRatingsTotal != nil {
		if *p.UserRatingsTotal < models.ReviewCountBucketThreshold[base.MinReviewCountBucket] {
			return false
		}
	}
	if base.PriceIntent != models.PriceNone && p.PriceLevel != nil {
		r := models.PriceIntentRange[base.PriceIntent]
		if *p.PriceLevel < r[0] || *p.PriceLevel > r[1] {
			return false
		}
	}
	if base.OpenState == models.OpenStateOpenNow {
		if openNow, ok := p.OpeningHours.IsOpenNow(); ok && !openNow {
			return false
		}
	}
	if base.OpenAt != "" {
		if ts, err := time.Parse(time.RFC3339, base.OpenAt); err == nil {
			if openAt, ok := p.OpeningHours.IsOpenAt(ts); ok && !openAt {
				return false
			}
		}
	}
	if base.OpenBetween != [2]string{} {
		start, errS := time.Parse(time.RFC3339, base.OpenBetween[0])
		if errS == nil {
			if openAt, ok := p.OpeningHours.IsOpenAt(start); ok && !openAt {
				return false
			}
		}
	}
	if !matchesDietary(p, base) {
		return false
	}
	if !matchesMustHave(p, post) {
		return false
	}
	return true
}

// matchesDietary is a placeholder: dietary tags are not part of the
// normalised Place shape the provider returns, so with no signal available
// every place is treated as unknown and kept, per the unknown-value policy.
func matchesDietary(p models.Place, base models.BaseFilters) bool {
	return true
}

func matchesMustHave(p models.Place, post models.PostConstraints) bool {
	if len(post.MustHaveKeywords) == 0 {
		return true
	}
	for _, kw := range post.MustHaveKeywords {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(kw)) ||
			strings.Contains(strings.ToLower(p.Address), strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
