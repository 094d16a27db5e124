package postfilter

import (
	"testing"
	"time"

	"github.com/shacharon/placesearch/internal/app/models"
)

func ratingPtr(v float64) *float64 { return &v }
func countPtr(v int) *int          { return &v }
func pricePtr(v int) *int          { return &v }

func TestApply_UnknownRatingIsKept(t *testing.T) {
	places := []models.Place{
		{PlaceID: "a", Rating: nil},
		{PlaceID: "b", Rating: ratingPtr(4.8)},
	}
	base := models.BaseFilters{MinRatingBucket: models.Rating45}
	result := Apply(places, base, models.PostConstraints{}, time.Now())
	if len(result.Places) != 2 {
		t.Fatalf("expected both places kept (unknown + matching), got %d", len(result.Places))
	}
}

func TestApply_LowRatingExcluded(t *testing.T) {
	places := []models.Place{
		{PlaceID: "a", Rating: ratingPtr(3.0)},
		{PlaceID: "b", Rating: ratingPtr(4.8)},
	}
	base := models.BaseFilters{MinRatingBucket: models.Rating45}
	result := Apply(places, base, models.PostConstraints{}, time.Now())
	if len(result.Places) != 1 || result.Places[0].PlaceID != "b" {
		t.Fatalf("got %+v", result.Places)
	}
}

func TestApply_RelaxesWhenTooFewResults(t *testing.T) {
	places := make([]models.Place, 0, 6)
	for i := 0; i < 6; i++ {
		places = append(places, models.Place{PlaceID: string(rune('a' + i)), Rating: ratingPtr(3.0), UserRatingsTotal: countPtr(10)})
	}
	base := models.BaseFilters{MinRatingBucket: models.Rating45, MinReviewCountBucket: models.Count100}
	result := Apply(places, base, models.PostConstraints{}, time.Now())
	if len(result.RelaxSteps) == 0 {
		t.Fatal("expected at least one relax step")
	}
	if len(result.RelaxSteps) > maxRelaxIterations {
		t.Fatalf("relaxed more than the max %d iterations", maxRelaxIterations)
	}
}

func TestApply_UnknownPriceLevelIsKept(t *testing.T) {
	places := []models.Place{
		{PlaceID: "a", PriceLevel: nil},
		{PlaceID: "b", PriceLevel: pricePtr(2)},
		{PlaceID: "c", PriceLevel: pricePtr(4)},
	}
	base := models.BaseFilters{PriceIntent: models.PriceCheap}
	result := Apply(places, base, models.PostConstraints{}, time.Now())
	if len(result.Places) != 2 {
		t.Fatalf("expected unknown + matching places kept, got %+v", result.Places)
	}
}

func TestApply_PriceIntentExcludesOutOfRange(t *testing.T) {
	places := []models.Place{
		{PlaceID: "a", PriceLevel: pricePtr(1)},
		{PlaceID: "b", PriceLevel: pricePtr(4)},
	}
	base := models.BaseFilters{PriceIntent: models.PriceExpensive}
	result := Apply(places, base, models.PostConstraints{}, time.Now())
	if len(result.Places) != 1 || result.Places[0].PlaceID != "b" {
		t.Fatalf("got %+v", result.Places)
	}
}

func TestApply_MustHaveKeywordFilters(t *testing.T) {
	places := []models.Place{
		{PlaceID: "a", Name: "Joe's Pizza"},
		{PlaceID: "b", Name: "Sushi Place"},
	}
	post := models.PostConstraints{MustHaveKeywords: []string{"pizza"}}
	result := Apply(places, models.BaseFilters{}, post, time.Now())
	if len(result.Places) != 1 || result.Places[0].PlaceID != "a" {
		t.Fatalf("got %+v", result.Places)
	}
}
