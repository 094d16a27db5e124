package routemapper

import "testing"

func TestExtractCuisineKey_MatchesAcrossLanguages(t *testing.T) {
	cases := map[string]string{
		"best italian restaurant near me": "italian",
		"איפה יש סושי טוב":                "sushi",
		"хочу китайскую еду":              "chinese",
		"pizza margherita":                "pizza",
		"just a generic place to eat":     "",
	}
	for query, want := range cases {
		if got := ExtractCuisineKey(query); got != want {
			t.Errorf("ExtractCuisineKey(%q) = %q, want %q", query, got, want)
		}
	}
}

func TestExtractCuisineKey_StableAcrossRepeatedCalls(t *testing.T) {
	for i := 0; i < 50; i++ {
		if got := ExtractCuisineKey("thai food please"); got != "thai" {
			t.Fatalf("iteration %d: ExtractCuisineKey = %q, want thai", i, got)
		}
	}
}
