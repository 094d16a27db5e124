// Package gate implements the Gate stage (spec §4.E): an LLM-backed
// boolean-ish classifier deciding whether a query is a plausible
// food-search request, failing open to MAYBE on timeout/error.
package gate

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/shacharon/placesearch/internal/app/llm"
	"github.com/shacharon/placesearch/internal/app/models"
	"github.com/shacharon/placesearch/internal/pkg/retry"
)

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"isFoodSearch": {Type: genai.TypeBoolean},
		"reason":       {Type: genai.TypeString},
		"foodSignal":   {Type: genai.TypeString, Enum: []string{"YES", "NO", "MAYBE"}},
	},
	Required: []string{"isFoodSearch", "reason", "foodSignal"},
}

type rawResult struct {
	IsFoodSearch bool   `json:"isFoodSearch"`
	Reason       string `json:"reason"`
	FoodSignal   string `json:"foodSignal"`
}

// Stage runs the Gate classifier.
type Stage struct {
	client *llm.Client
}

// New builds a Gate stage against client.
func New(client *llm.Client) *Stage {
	return &Stage{client: client}
}

// Classify asks the LLM whether queryText is a plausible food search. Gate
// timeouts/errors are retried once with jitter (gate is in the retriable
// set per §5); persistent failure fails open to MAYBE.
func (s *Stage) Classify(ctx context.Context, queryText string) models.GateResult {
	var out rawResult
	prompt := fmt.Sprintf("Classify whether this query is a food/restaurant search request: %q", queryText)

	err := retry.Do(ctx, retry.DefaultConfig(), func(error) bool { return true }, func(ctx context.Context) error {
		return s.client.Generate(ctx, prompt, responseSchema, &out)
	})
	if err != nil {
		return models.GateResult{IsFoodSearch: true, Reason: "gate_timeout_fail_open", FoodSignal: models.FoodSignalMaybe}
	}

	signal := models.FoodSignal(out.FoodSignal)
	if signal != models.FoodSignalYes && signal != models.FoodSignalNo && signal != models.FoodSignalMaybe {
		signal = models.FoodSignalMaybe
	}
	return models.GateResult{IsFoodSearch: out.IsFoodSearch, Reason: out.Reason, FoodSignal: signal}
}
