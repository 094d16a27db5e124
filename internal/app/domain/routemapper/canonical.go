package routemapper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/shacharon/placesearch/internal/app/llm"
	"github.com/shacharon/placesearch/internal/pkg/cache"
)

const canonicalQueryTTL = 24 * time.Hour

// canonicalRewriteConfidenceThreshold gates the secondary LLM rewrite: below
// this confidence the deterministic canonicalisation is kept as-is.
const canonicalRewriteConfidenceThreshold = 0.7

var canonicalRewriteSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"canonical":  {Type: genai.TypeString},
		"confidence": {Type: genai.TypeNumber},
	},
	Required: []string{"canonical", "confidence"},
}

type rawCanonicalRewrite struct {
	Canonical  string  `json:"canonical"`
	Confidence float64 `json:"confidence"`
}

// Canonicalizer produces a stable canonical form of a TextSearch query,
// cached by (normalisedQueryHash, uiLanguage, regionCode) for 24h, with an
// optional confidence-gated LLM rewrite on a cache miss.
type Canonicalizer struct {
	client *llm.Client
	cache  *cache.Tiered
}

// NewCanonicalizer builds a Canonicalizer.
func NewCanonicalizer(client *llm.Client, tiered *cache.Tiered) *Canonicalizer {
	return &Canonicalizer{client: client, cache: tiered}
}

// Canonicalise returns a canonical, rephrasing-stable form of queryText:
// the canonical cuisine key plus any explicit city, e.g. the deterministic
// form of "מסעדה איטלקית בגדרה" with city "גדרה" is "italian גדרה".
func (c *Canonicalizer) Canonicalise(ctx context.Context, queryText, uiLanguage, regionCode, cityText string) (string, error) {
	deterministic := deterministicCanonical(queryText, cityText)

	key, err := cache.NewCacheKeyBuilder().
		Add("q", strings.ToLower(strings.TrimSpace(queryText))).
		Add("uiLanguage", uiLanguage).
		Add("regionCode", regionCode).
		Build()
	if err != nil {
		return deterministic, nil
	}

	result, err := cache.GetOrFetchJSON(c.cache, ctx, "canonical:"+key, canonicalQueryTTL,
		func(s string) bool { return s == "" },
		func(ctx context.Context) (string, error) {
			return c.rewrite(ctx, queryText, deterministic)
		})
	if err != nil {
		return deterministic, nil
	}
	return result, nil
}

// deterministicCanonical extracts the cuisine keyword and preserves any
// explicit city, with no LLM involvement — the baseline every rewrite is
// judged against.
func deterministicCanonical(queryText, cityText string) string {
	parts := make([]string, 0, 2)
	if cuisine := ExtractCuisineKey(queryText); cuisine != "" {
		parts = append(parts, cuisine)
	}
	if cityText != "" {
		parts = append(parts, cityText)
	}
	if len(parts) == 0 {
		return strings.TrimSpace(queryText)
	}
	return strings.Join(parts, " ")
}

// rewrite asks the LLM for a canonical rewrite and only accepts it above the
// confidence gate; otherwise the deterministic canonical form is kept.
func (c *Canonicalizer) rewrite(ctx context.Context, queryText, deterministic string) (string, error) {
	var out rawCanonicalRewrite
	prompt := fmt.Sprintf("Rewrite this restaurant search query into a short canonical form stable across trivial rephrasings: %q", queryText)
	if err := c.client.Generate(ctx, prompt, canonicalRewriteSchema, &out); err != nil {
		return deterministic, nil
	}
	if out.Confidence < canonicalRewriteConfidenceThreshold || out.Canonical == "" {
		return deterministic, nil
	}
	return out.Canonical, nil
}
