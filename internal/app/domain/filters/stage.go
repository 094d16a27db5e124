package filters

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/shacharon/placesearch/internal/app/llm"
	"github.com/shacharon/placesearch/internal/app/models"
)

var postConstraintsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"dietary":           {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"accessibilityTags": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"mustHaveKeywords":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
}

var baseFiltersSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"openState":            {Type: genai.TypeString, Enum: []string{"OPEN_NOW", ""}},
		"openAt":               {Type: genai.TypeString},
		"openBetweenStart":     {Type: genai.TypeString},
		"openBetweenEnd":       {Type: genai.TypeString},
		"priceIntent":          {Type: genai.TypeString, Enum: []string{"CHEAP", "MODERATE", "EXPENSIVE", ""}},
		"minRatingBucket":      {Type: genai.TypeString, Enum: []string{"R35", "R40", "R45", ""}},
		"minReviewCountBucket": {Type: genai.TypeString, Enum: []string{"C25", "C100", "C500", ""}},
		"vegetarian":           {Type: genai.TypeBoolean},
		"vegan":                {Type: genai.TypeBoolean},
		"glutenFree":           {Type: genai.TypeBoolean},
		"halal":                {Type: genai.TypeBoolean},
		"kosher":               {Type: genai.TypeBoolean},
	},
}

type rawBaseFilters struct {
	OpenState            string `json:"openState"`
	OpenAt               string `json:"openAt"`
	OpenBetweenStart     string `json:"openBetweenStart"`
	OpenBetweenEnd       string `json:"openBetweenEnd"`
	PriceIntent          string `json:"priceIntent"`
	MinRatingBucket      string `json:"minRatingBucket"`
	MinReviewCountBucket string `json:"minReviewCountBucket"`
	Vegetarian           bool   `json:"vegetarian"`
	Vegan                bool   `json:"vegan"`
	GlutenFree           bool   `json:"glutenFree"`
	Halal                bool   `json:"halal"`
	Kosher               bool   `json:"kosher"`
}

type rawPostConstraints struct {
	Dietary           []string `json:"dietary"`
	AccessibilityTags []string `json:"accessibilityTags"`
	MustHaveKeywords  []string `json:"mustHaveKeywords"`
}

// Stage runs the two parallel filter-extraction LLM calls.
type Stage struct {
	client *llm.Client
}

// New builds a filters Stage against client.
func New(client *llm.Client) *Stage {
	return &Stage{client: client}
}

// DefaultPostConstraints are the typed defaults used when PostConstraints
// is skipped.
func DefaultPostConstraints() models.PostConstraints {
	return models.PostConstraints{}
}

// DefaultBaseFilters are the typed defaults used when BaseFilters is
// skipped.
func DefaultBaseFilters() models.BaseFilters {
	return models.BaseFilters{}
}

// PostConstraints extracts explicit user constraints. Rule #2: unknown
// attribute values are kept, not filtered out — this stage only reports
// what the LLM found, it never rejects a value as "unknown".
func (s *Stage) PostConstraints(ctx context.Context, queryText string) (models.PostConstraints, error) {
	var out rawPostConstraints
	prompt := fmt.Sprintf("Extract explicit dietary/accessibility/must-have constraints from this restaurant search query: %q", queryText)
	if err := s.client.Generate(ctx, prompt, postConstraintsSchema, &out); err != nil {
		return models.PostConstraints{}, err
	}
	return models.PostConstraints{
		Dietary:           out.Dietary,
		AccessibilityTags: out.AccessibilityTags,
		MustHaveKeywords:  out.MustHaveKeywords,
	}, nil
}

// BaseFilters extracts bucketed soft filters. Rule #1: the LLM returns
// enum buckets only, never raw numbers — the bucket→number mapping in
// models.RatingBucketThreshold/ReviewCountBucketThreshold is the sole
// source of truth for thresholds.
func (s *Stage) BaseFilters(ctx context.Context, queryText string) (models.BaseFilters, error) {
	var out rawBaseFilters
	prompt := fmt.Sprintf("Extract bucketed open/price/rating/review-count/dietary filters from this restaurant search query: %q", queryText)
	if err := s.client.Generate(ctx, prompt, baseFiltersSchema, &out); err != nil {
		return models.BaseFilters{}, err
	}
	return models.BaseFilters{
		OpenState:            models.OpenState(out.OpenState),
		OpenAt:               out.OpenAt,
		OpenBetween:          [2]string{out.OpenBetweenStart, out.OpenBetweenEnd},
		PriceIntent:          models.PriceIntent(out.PriceIntent),
		MinRatingBucket:      models.RatingBucket(out.MinRatingBucket),
		MinReviewCountBucket: models.ReviewCountBucket(out.MinReviewCountBucket),
		Vegetarian:           out.Vegetarian,
		Vegan:                out.Vegan,
		GlutenFree:           out.GlutenFree,
		Halal:                out.Halal,
		Kosher:               out.Kosher,
	}, nil
}
