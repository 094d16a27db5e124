// Package llm wraps the structured-output genai calls every LLM-backed
// stage (Gate, Intent, filters, Route Mapper, Cuisine Enforcer, Assistant)
// goes through, so the JSON-schema/response-cleanup plumbing lives in one
// place instead of being duplicated per stage.
package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Client wraps a *genai.Client for structured, schema-constrained calls.
type Client struct {
	genai  *genai.Client
	model  string
	logger *zap.Logger
}

// NewClient builds a Client against the given API key and model.
func NewClient(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, errors.Wrap(err, "genai client init")
	}
	return &Client{genai: c, model: model, logger: logger}, nil
}

// Generate issues one structured-output call: the model is instructed to
// return JSON matching schema, the reply is scrubbed with cleanJSONResponse,
// and unmarshalled into out.
func (c *Client) Generate(ctx context.Context, prompt string, schema *genai.Schema, out any) error {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return errors.Wrap(err, "genai generate")
	}

	text := resp.Text()
	cleaned := cleanJSONResponse(text)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		c.logger.Warn("llm response did not parse as expected schema",
			zap.String("raw", text), zap.Error(err))
		return errors.Wrap(err, "unmarshal llm response")
	}
	return nil
}

// cleanJSONResponse strips markdown code fences and leading/trailing noise
// an LLM sometimes wraps structured output in, then extracts the first
// balanced JSON object or array by brace/bracket counting.
func cleanJSONResponse(response string) string {
	s := strings.TrimSpace(response)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s
	}
	open := s[start]
	close := byte('}')
	if open == '[' {
		close = ']'
	}

	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}
