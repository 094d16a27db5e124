// Package cuisine implements the Cuisine Enforcer (spec §4.K): an LLM-only
// semantic filter over a provider's raw places, with a single bounded
// relaxation step and fail-open behaviour on any error.
package cuisine

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/shacharon/placesearch/internal/app/llm"
	"github.com/shacharon/placesearch/internal/app/models"
)

// RelaxStrategy names which relaxation, if any, was applied.
type RelaxStrategy string

const (
	RelaxNone             RelaxStrategy = "none"
	RelaxFallbackPreferred RelaxStrategy = "fallback_preferred"
	RelaxDropRequiredOnce RelaxStrategy = "drop_required_once"
)

// minKeptBeforeRelax is the kept-count threshold below which one relaxation
// step is attempted.
const minKeptBeforeRelax = 5

// Result is the Enforcer's output.
type Result struct {
	KeptPlaceIDs            []string
	RelaxApplied             bool
	RelaxStrategy            RelaxStrategy
	CuisineEnforcementFailed bool
}

var keepSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"keptPlaceIds": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"keptPlaceIds"},
}

type rawKeep struct {
	KeptPlaceIDs []string `json:"keptPlaceIds"`
}

// Stage runs the Cuisine Enforcer.
type Stage struct {
	client *llm.Client
}

// New builds a Stage.
func New(client *llm.Client) *Stage {
	return &Stage{client: client}
}

// IsActive reports whether the Enforcer should run at all: only when
// requiredTerms is non-empty and strictness isn't the no-op
// RELAX_IF_EMPTY-with-empty-terms case.
func IsActive(requiredTerms []string, strictness models.Strictness) bool {
	return len(requiredTerms) > 0
}

// Enforce applies the Enforcer. On any error it fails open: all input
// places are returned unchanged with CuisineEnforcementFailed set, and the
// response is never blocked.
func (s *Stage) Enforce(ctx context.Context, places []models.Place, requiredTerms, preferredTerms []string, strictness models.Strictness) Result {
	allIDs := placeIDs(places)

	kept, err := s.classify(ctx, places, requiredTerms)
	if err != nil {
		return Result{KeptPlaceIDs: allIDs, CuisineEnforcementFailed: true}
	}
	if len(kept) >= minKeptBeforeRelax {
		return Result{KeptPlaceIDs: kept}
	}

	// One relaxation step only: fallback_preferred first, else
	// drop_required_once.
	if len(preferredTerms) > 0 {
		widened := append(append([]string{}, requiredTerms...), preferredTerms...)
		relaxed, err := s.classify(ctx, places, widened)
		if err == nil && len(relaxed) > len(kept) {
			return Result{KeptPlaceIDs: relaxed, RelaxApplied: true, RelaxStrategy: RelaxFallbackPreferred}
		}
	}

	if len(requiredTerms) > 0 {
		broadened, err := s.classify(ctx, places, requiredTerms[:len(requiredTerms)-1])
		if err != nil {
			return Result{KeptPlaceIDs: allIDs, CuisineEnforcementFailed: true}
		}
		if len(broadened) > len(kept) {
			return Result{KeptPlaceIDs: broadened, RelaxApplied: true, RelaxStrategy: RelaxDropRequiredOnce}
		}
	}
	return Result{KeptPlaceIDs: kept}
}

func (s *Stage) classify(ctx context.Context, places []models.Place, requiredTerms []string) ([]string, error) {
	var out rawKeep
	prompt := fmt.Sprintf("Given these places %v, keep only placeIds whose name/types/address strongly match these required terms: %v", placeSummaries(places), requiredTerms)
	if err := s.client.Generate(ctx, prompt, keepSchema, &out); err != nil {
		return nil, err
	}
	return out.KeptPlaceIDs, nil
}

func placeIDs(places []models.Place) []string {
	ids := make([]string, 0, len(places))
	for _, p := range places {
		ids = append(ids, p.PlaceID)
	}
	return ids
}

func placeSummaries(places []models.Place) []string {
	out := make([]string, 0, len(places))
	for _, p := range places {
		out = append(out, fmt.Sprintf("%s: %s %v %s", p.PlaceID, p.Name, p.Types, p.Address))
	}
	return out
}
