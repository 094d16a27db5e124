package orchestrator

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"

	"github.com/shacharon/placesearch/internal/app/models"
)

func TestNormaliseQuery_CollapsesWhitespaceAndCase(t *testing.T) {
	assert.Equal(t, "pizza near me", normaliseQuery("  Pizza   NEAR   me  "))
}

func TestComputeIdempotencyKey_StableForIdenticalInput(t *testing.T) {
	pt := orb.Point{34.78, 32.08}
	in := Input{SessionID: "s1", QueryText: "sushi tel aviv", UserLocation: &pt}
	a := computeIdempotencyKey(in)
	b := computeIdempotencyKey(in)
	assert.Equal(t, a, b)
}

func TestComputeIdempotencyKey_DiffersBySession(t *testing.T) {
	in1 := Input{SessionID: "s1", QueryText: "sushi"}
	in2 := Input{SessionID: "s2", QueryText: "sushi"}
	assert.NotEqual(t, computeIdempotencyKey(in1), computeIdempotencyKey(in2))
}

func TestComputeIdempotencyKey_IgnoresQueryCaseAndSpacing(t *testing.T) {
	in1 := Input{SessionID: "s1", QueryText: "Sushi   Bar"}
	in2 := Input{SessionID: "s1", QueryText: "sushi bar"}
	assert.Equal(t, computeIdempotencyKey(in1), computeIdempotencyKey(in2))
}

func TestHardContextKey_DiffersByRoute(t *testing.T) {
	a := hardContextKey("s1", "sushi", models.RouteTextSearch, "", "IL", 0)
	b := hardContextKey("s1", "sushi", models.RouteNearby, "", "IL", 0)
	assert.NotEqual(t, a, b)
}

func TestFilterByIDs_PreservesOrderAndDropsUnkept(t *testing.T) {
	places := []models.Place{{PlaceID: "a"}, {PlaceID: "b"}, {PlaceID: "c"}}
	kept := filterByIDs(places, []string{"c", "a"})
	assert.Equal(t, []string{"a", "c"}, []string{kept[0].PlaceID, kept[1].PlaceID})
}

func TestSoftSignatureOf_CollectsEveryDietaryFlagIndependently(t *testing.T) {
	base := models.BaseFilters{Vegetarian: true, Halal: true}
	sig := softSignatureOf(base)
	assert.ElementsMatch(t, []string{"vegetarian", "halal"}, sig.DietaryFlags)
}

func TestRadiusOf_TextSearchUsesLocationBiasRadius(t *testing.T) {
	mapping := &models.Mapping{
		Kind: models.MappingTextSearch,
		TextSearch: &models.TextSearchPlan{
			OptionalLocationBias: &models.LocationBias{RadiusMeters: 5000},
		},
	}
	assert.Equal(t, 5000.0, radiusOf(mapping))
}

func TestRadiusOf_TextSearchWithoutBiasIsZero(t *testing.T) {
	mapping := &models.Mapping{Kind: models.MappingTextSearch, TextSearch: &models.TextSearchPlan{}}
	assert.Equal(t, 0.0, radiusOf(mapping))
}

func TestCuisineInputs_NonTextSearchHasNoRequiredTerms(t *testing.T) {
	mapping := &models.Mapping{Kind: models.MappingNearby, Nearby: &models.NearbyPlan{}}
	required, preferred, strictness := cuisineInputs(mapping)
	assert.Empty(t, required)
	assert.Empty(t, preferred)
	assert.Equal(t, models.StrictnessRelaxIfEmpty, strictness)
}
