package cuisine

import (
	"testing"

	"github.com/shacharon/placesearch/internal/app/models"
)

func TestIsActive_EmptyRequiredTermsNeverRuns(t *testing.T) {
	if IsActive(nil, models.StrictnessRelaxIfEmpty) {
		t.Fatal("expected inactive with no required terms")
	}
}

func TestIsActive_NonEmptyRequiredTermsRuns(t *testing.T) {
	if !IsActive([]string{"italian"}, models.StrictnessStrict) {
		t.Fatal("expected active with required terms present")
	}
}
