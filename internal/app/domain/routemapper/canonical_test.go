package routemapper

import "testing"

func TestDeterministicCanonical_ExtractsCuisineAndCity(t *testing.T) {
	got := deterministicCanonical("מסעדה איטלקית בגדרה", "גדרה")
	want := "italian גדרה"
	if got != want {
		t.Errorf("deterministicCanonical = %q, want %q", got, want)
	}
}

func TestDeterministicCanonical_FallsBackToTrimmedQuery(t *testing.T) {
	got := deterministicCanonical("  somewhere nice to eat  ", "")
	if got != "somewhere nice to eat" {
		t.Errorf("deterministicCanonical = %q", got)
	}
}
