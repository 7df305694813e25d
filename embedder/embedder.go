// Package embedder produces dense embeddings with safe handling of the
// embedding model's hard context limit.
package embedder

import (
	"context"
)

// Embedder generates dense embeddings for texts. Implementations must
// return vectors of exactly Dimension components and must absorb
// context-length overruns internally (by splitting) rather than surface
// them to callers.
type Embedder interface {
	// Embed returns the embedding of a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns embeddings for texts, parallel to the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the configured output dimension.
	Dimension() int
}

// TokenCounter reports exact token counts under the model's encoding.
type TokenCounter interface {
	TokenLen(text string) int
}
