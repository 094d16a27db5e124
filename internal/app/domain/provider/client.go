// Package provider implements the Provider Stage (spec §4.J): a Places
// search HTTP client with client-side rate limiting, typed failure
// surfacing, and the two-tier landmark cache.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/paulmach/orb"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/shacharon/placesearch/internal/app/models"
)

// Request is the typed outbound Places search request, one of TextSearch,
// Nearby or Landmark shape depending on Mapping.Kind.
type Request struct {
	Mapping        models.Mapping
	SearchLanguage models.Language
	RegionCode     string
}

// Response is the typed Places search result.
type Response struct {
	Places []models.Place `json:"places"`
}

// Client is the outbound Places HTTP client.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient builds a rate-limited Places client.
func NewClient(baseURL, apiKey string, timeout time.Duration, requestsPerSecond float64, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(requestsPerSecond)),
		logger:  logger,
	}
}

// Search executes one Places call for the given mapping. It asserts
// searchLanguage == mappingLanguage before the outbound call, per §4.J,
// and logs the places_call_language record.
func (c *Client) Search(ctx context.Context, req Request) (*Response, error) {
	tracer := otel.Tracer("placesearch/provider")
	ctx, span := tracer.Start(ctx, "provider.search")
	defer span.End()

	mappingLanguage, providerMethod, path, body := c.buildRequest(req)
	if req.SearchLanguage != mappingLanguage {
		err := fmt.Errorf("provider: searchLanguage %q != mappingLanguage %q", req.SearchLanguage, mappingLanguage)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	c.logger.Debug("places_call_language",
		zap.String("providerMethod", providerMethod),
		zap.String("searchLanguage", string(req.SearchLanguage)),
		zap.String("regionCode", req.RegionCode),
		zap.String("mappingLanguage", string(mappingLanguage)),
	)
	span.SetAttributes(
		attribute.String("provider.method", providerMethod),
		attribute.String("provider.search_language", string(req.SearchLanguage)),
		attribute.String("provider.region_code", req.RegionCode),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("provider: request failed: %w", err)
	}
	defer resp.Body.Close()

	// A non-2xx status, or a 2xx body that fails to parse, is always treated
	// as a failure — partial/corrupt results must never be cached.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("provider: status %d: %s", resp.StatusCode, string(b))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		err = fmt.Errorf("provider: malformed response: %w", err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return &out, nil
}

// geocodeResult is the minimal shape read back from the provider's
// findPlaceFromText endpoint.
type geocodeResult struct {
	Candidates []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"candidates"`
}

// Geocode resolves free text (a city or area name) to a coordinate via the
// same Places provider the Search call uses, satisfying
// routemapper.Geocoder for the TextSearch and Landmark route mappers. A
// lookup failure or empty result reports false rather than erroring — the
// caller falls back to its bias-less default.
func (c *Client) Geocode(ctx context.Context, text, regionCode string) (*orb.Point, bool) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false
	}

	q := url.Values{}
	q.Set("input", text)
	q.Set("inputtype", "textquery")
	q.Set("fields", "geometry")
	if regionCode != "" {
		q.Set("locationbias", "ipbias")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/places:findPlaceFromText?"+q.Encode(), nil)
	if err != nil {
		return nil, false
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false
	}

	var out geocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || len(out.Candidates) == 0 {
		return nil, false
	}

	loc := out.Candidates[0].Geometry.Location
	pt := orb.Point{loc.Lng, loc.Lat}
	return &pt, true
}

// buildRequest derives the wire path/body and the mapping's own language tag
// from the tagged-variant Mapping, so Search can assert it matches
// searchLanguage before the call goes out.
func (c *Client) buildRequest(req Request) (mappingLanguage models.Language, providerMethod, path string, body []byte) {
	switch req.Mapping.Kind {
	case models.MappingTextSearch:
		plan := req.Mapping.TextSearch
		b, _ := json.Marshal(map[string]any{
			"textQuery":    plan.TextQuery,
			"regionCode":   plan.RegionCode,
			"languageCode": plan.SearchLanguage,
			"includedType": models.IncludedTypesForCuisine(plan.CuisineKey),
			"locationBias": plan.OptionalLocationBias,
		})
		return plan.SearchLanguage, "searchText", "/v1/places:searchText", b

	case models.MappingNearby:
		plan := req.Mapping.Nearby
		b, _ := json.Marshal(map[string]any{
			"locationRestriction": map[string]any{"circle": map[string]any{"center": plan.CenterLatLng, "radius": plan.RadiusMeters}},
			"regionCode":          plan.RegionCode,
			"languageCode":        plan.SearchLanguage,
			"includedTypes":       models.IncludedTypesForCuisine(plan.CuisineKey),
			"rankPreference":      "DISTANCE",
		})
		return plan.SearchLanguage, "searchNearby", "/v1/places:searchNearby", b

	case models.MappingLandmark:
		plan := req.Mapping.Landmark
		b, _ := json.Marshal(map[string]any{
			"locationRestriction": map[string]any{"circle": map[string]any{"center": plan.ResolvedLatLng, "radius": plan.RadiusMeters}},
			"regionCode":          plan.RegionCode,
			"languageCode":        plan.SearchLanguage,
			"includedTypes":       models.IncludedTypesForCuisine(plan.CuisineKey),
			"rankPreference":      "DISTANCE",
		})
		return plan.SearchLanguage, "searchNearby", "/v1/places:searchNearby", b

	default:
		return "", "unknown", "", nil
	}
}
