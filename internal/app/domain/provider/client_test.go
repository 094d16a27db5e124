package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shacharon/placesearch/internal/app/models"
)

func TestSearch_RejectsLanguageMismatch(t *testing.T) {
	c := NewClient("http://unused", "key", time.Second, 10, nil)
	req := Request{
		Mapping: models.Mapping{
			Kind:       models.MappingTextSearch,
			TextSearch: &models.TextSearchPlan{TextQuery: "pizza", SearchLanguage: models.LangEnglish},
		},
		SearchLanguage: models.LangHebrew,
	}
	if _, err := c.Search(context.Background(), req); err == nil {
		t.Fatal("expected language-mismatch error, got nil")
	}
}

func TestSearch_NonTwoXXIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", time.Second, 100, nil)
	req := Request{
		Mapping: models.Mapping{
			Kind:       models.MappingTextSearch,
			TextSearch: &models.TextSearchPlan{TextQuery: "pizza", SearchLanguage: models.LangEnglish},
		},
		SearchLanguage: models.LangEnglish,
	}
	if _, err := c.Search(context.Background(), req); err == nil {
		t.Fatal("expected failure on 500 status")
	}
}

func TestSearch_NearbySendsDistanceRankPreference(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(Response{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", time.Second, 100, nil)
	req := Request{
		Mapping: models.Mapping{
			Kind:   models.MappingNearby,
			Nearby: &models.NearbyPlan{SearchLanguage: models.LangEnglish},
		},
		SearchLanguage: models.LangEnglish,
	}
	if _, err := c.Search(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body["rankPreference"] != "DISTANCE" {
		t.Fatalf("expected rankPreference DISTANCE, got %+v", body)
	}
}

func TestSearch_DecodesSuccessResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{Places: []models.Place{{PlaceID: "p1", Name: "Test Place"}}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", time.Second, 100, nil)
	req := Request{
		Mapping: models.Mapping{
			Kind:   models.MappingNearby,
			Nearby: &models.NearbyPlan{SearchLanguage: models.LangEnglish},
		},
		SearchLanguage: models.LangEnglish,
	}
	resp, err := c.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Places) != 1 || resp.Places[0].PlaceID != "p1" {
		t.Fatalf("got %+v", resp)
	}
}
