package requery

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/shacharon/placesearch/internal/app/models"
)

func baseCtx() models.SearchContext {
	return models.SearchContext{
		NormalisedQuery: "italian tel aviv",
		Route:           models.RouteTextSearch,
		AnchorCityText:  "tel aviv",
		RegionCode:      "IL",
		RadiusMeters:    5000,
	}
}

func TestDecide_NoPriorPoolIsHard(t *testing.T) {
	d := Decide(nil, baseCtx(), nil)
	if !d.DoProviderCall || d.Reason != "no_prior_pool" {
		t.Fatalf("got %+v", d)
	}
}

func TestDecide_IdenticalContextReusesPool(t *testing.T) {
	prev := baseCtx()
	d := Decide(&prev, baseCtx(), &PoolStats{FilteredSize: 10})
	if d.DoProviderCall {
		t.Fatalf("expected reuse, got %+v", d)
	}
}

func TestDecide_QueryChangeIsHard(t *testing.T) {
	prev := baseCtx()
	next := baseCtx()
	next.NormalisedQuery = "sushi tel aviv"
	d := Decide(&prev, next, &PoolStats{FilteredSize: 10})
	if !d.DoProviderCall || d.Reason != "query_changed" {
		t.Fatalf("got %+v", d)
	}
}

func TestDecide_UserLocationMovedBeyondThreshold(t *testing.T) {
	prev := baseCtx()
	p := orb.Point{34.78, 32.08}
	prev.UserLocation = &p
	next := baseCtx()
	q := orb.Point{34.80, 32.10} // ~2.9km away
	next.UserLocation = &q
	d := Decide(&prev, next, &PoolStats{FilteredSize: 10})
	if !d.DoProviderCall || d.Reason != "user_location_moved" {
		t.Fatalf("got %+v", d)
	}
}

func TestDecide_RadiusChangeBeyond50Percent(t *testing.T) {
	prev := baseCtx()
	next := baseCtx()
	next.RadiusMeters = 8000 // +60%
	d := Decide(&prev, next, &PoolStats{FilteredSize: 10})
	if !d.DoProviderCall || d.Reason != "radius_changed" {
		t.Fatalf("got %+v", d)
	}
}

func TestDecide_PoolExhaustionIsHard(t *testing.T) {
	prev := baseCtx()
	d := Decide(&prev, baseCtx(), &PoolStats{FilteredSize: 2})
	if !d.DoProviderCall || d.Reason != "pool_exhausted" {
		t.Fatalf("got %+v", d)
	}
}

func TestDecide_SoftFilterOnlyChangeReusesPool(t *testing.T) {
	prev := baseCtx()
	d := Decide(&prev, baseCtx(), &PoolStats{FilteredSize: 10})
	if d.DoProviderCall || d.Reason != "soft_filters_only" {
		t.Fatalf("got %+v", d)
	}
}
