package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/shacharon/placesearch/internal/app/models"
	"github.com/shacharon/placesearch/internal/pkg/cache"
)

// Stage wraps the Places Client with the three-tier result cache described
// in §4.B/§4.J: a TextSearch/Nearby result is cached under a key built from
// the mapping kind, the mapping plan, the search language and the region
// code; a landmark result is cached under a landmark_search key. A landmark
// plan without coordinates is first looked up in the landmark-resolution
// cache under landmark:<id>; that cache's fetch returns the plan unchanged
// and does no geocoding, so coordinates come only from the Route Mapper.
type Stage struct {
	client         *Client
	result         *cache.Tiered
	landmarkRes    *cache.Tiered
	landmarkSearch *cache.Tiered
}

// NewStage builds a Stage.
func NewStage(client *Client, result, landmarkRes, landmarkSearch *cache.Tiered) *Stage {
	return &Stage{client: client, result: result, landmarkRes: landmarkRes, landmarkSearch: landmarkSearch}
}

// Search executes the provider call for a non-landmark mapping through the
// shared result cache, or routes a landmark mapping through the two-tier
// landmark cache. resultTTL caches the search result; landmarkResTTL is the
// TTL of the landmark-resolution entry (the cache config's LandmarkResTTL,
// 7 days by default).
func (s *Stage) Search(ctx context.Context, req Request, resultTTL, landmarkResTTL time.Duration) (*Response, error) {
	if req.Mapping.Kind == models.MappingLandmark {
		return s.searchLandmark(ctx, req, resultTTL, landmarkResTTL)
	}
	return s.searchCached(ctx, req, resultTTL)
}

// searchCached caches TextSearch/Nearby results by their exact request key
// — the Requery Decision, not this cache, is what decides whether a fresh
// call is even attempted, so this layer only needs to dedupe identical
// outbound requests (e.g. two concurrent users, same query).
func (s *Stage) searchCached(ctx context.Context, req Request, resultTTL time.Duration) (*Response, error) {
	key, err := cache.NewCacheKeyBuilder().
		Add("kind", req.Mapping.Kind).
		Add("mapping", req.Mapping).
		Add("searchLanguage", req.SearchLanguage).
		Add("regionCode", req.RegionCode).
		BuildFast()
	if err != nil {
		return s.client.Search(ctx, req)
	}

	result, err := cache.GetOrFetchJSON(s.result, ctx, key, resultTTL,
		func(r Response) bool { return len(r.Places) == 0 },
		func(ctx context.Context) (Response, error) {
			resp, err := s.client.Search(ctx, req)
			if err != nil {
				return Response{}, err
			}
			return *resp, nil
		})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Stage) searchLandmark(ctx context.Context, req Request, resultTTL, landmarkResTTL time.Duration) (*Response, error) {
	plan := *req.Mapping.Landmark

	if plan.ResolvedLatLng == nil {
		key := fmt.Sprintf("landmark:%s", plan.LandmarkID)
		resolved, err := cache.GetOrFetchJSON(s.landmarkRes, ctx, key, landmarkResTTL,
			func(p models.LandmarkPlan) bool { return p.ResolvedLatLng == nil },
			func(ctx context.Context) (models.LandmarkPlan, error) { return plan, nil })
		if err == nil && resolved.ResolvedLatLng != nil {
			plan.ResolvedLatLng = resolved.ResolvedLatLng
		}
	}
	req.Mapping.Landmark = &plan

	typeOrCuisine := plan.CuisineKey
	if typeOrCuisine == "" {
		typeOrCuisine = plan.TypeKey
	}
	searchKey := fmt.Sprintf("landmark_search:%s:%v:%s:%s", plan.LandmarkID, plan.RadiusMeters, typeOrCuisine, plan.RegionCode)

	result, err := cache.GetOrFetchJSON(s.landmarkSearch, ctx, searchKey, resultTTL,
		func(r Response) bool { return len(r.Places) == 0 },
		func(ctx context.Context) (Response, error) {
			resp, err := s.client.Search(ctx, req)
			if err != nil {
				return Response{}, err
			}
			return *resp, nil
		})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
