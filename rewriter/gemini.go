package rewriter

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultModel is the rewriter model identifier.
const DefaultModel = "gemini-2.0-flash"

const promptTemplate = `You are a search query optimizer for a personal reading archive.
Rewrite the user's query for hybrid semantic search. Respond with ONLY a JSON object with these exact keys:
{
  "Optimized Query": "a longer, technically specific restatement that preserves the original intent",
  "Related Topics": ["synonyms and adjacent concepts"],
  "Tags": ["precise technical labels"]
}

User query: %s`

// Gemini rewrites queries through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// NewGemini builds a Gemini-backed rewriter.
func NewGemini(ctx context.Context, apiKey, model string, log zerolog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{
		client: client,
		model:  model,
		log:    log.With().Str("component", "rewriter").Logger(),
	}, nil
}

// Rewrite implements Rewriter. Network errors, missing fields, and parse
// failures all degrade to the raw query.
func (g *Gemini) Rewrite(ctx context.Context, query string) string {
	if query == "" {
		return query
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(fmt.Sprintf(promptTemplate, query)), nil)
	if err != nil {
		g.log.Warn().Err(err).Msg("rewrite failed, using raw query")
		return query
	}

	exp, ok := parseExpansion(resp.Text())
	if !ok {
		g.log.Warn().Msg("rewrite response unparseable, using raw query")
		return query
	}
	return exp.render()
}
