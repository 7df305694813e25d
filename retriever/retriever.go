// Package retriever answers queries with a two-stage hybrid search: a
// header pass picks candidate documents, a chunk pass ranks passages
// within them.
package retriever

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/readloom/readloom/embedder"
	"github.com/readloom/readloom/rewriter"
	"github.com/readloom/readloom/sparse"
	"github.com/readloom/readloom/tokenizer"
	"github.com/readloom/readloom/types"
	"github.com/readloom/readloom/vectorstore"
)

// Config tunes the retriever. Score thresholds assume unit-normalized
// embeddings, where dot-product scores behave like cosine similarity;
// deployments with non-normalized vectors must scale them.
type Config struct {
	// TopK is the final passage count.
	TopK int `yaml:"top_k"`
	// MinScore is the minimum chunk score.
	MinScore float32 `yaml:"min_score"`
	// HeaderTopK is the candidate-document request size.
	HeaderTopK int `yaml:"header_top_k"`
	// HeaderMinScore filters header matches; typically above MinScore
	// because header vectors concentrate tag and keyword signal.
	HeaderMinScore float32 `yaml:"header_min_score"`
	// MaxSparseTerms bounds the sparse query vector.
	MaxSparseTerms int `yaml:"max_sparse_terms"`
}

// DefaultConfig returns the standard retrieval thresholds.
func DefaultConfig() Config {
	return Config{
		TopK:           12,
		MinScore:       0.7,
		HeaderTopK:     10,
		HeaderMinScore: 0.75,
		MaxSparseTerms: sparse.DefaultMaxTerms,
	}
}

// Retriever holds no persistent state; every Search is independent.
type Retriever struct {
	store vectorstore.Store
	emb   embedder.Embedder
	rw    rewriter.Rewriter
	cfg   Config
	log   zerolog.Logger
}

// New builds a Retriever.
func New(store vectorstore.Store, emb embedder.Embedder, rw rewriter.Rewriter, cfg Config, log zerolog.Logger) *Retriever {
	return &Retriever{
		store: store,
		emb:   emb,
		rw:    rw,
		cfg:   cfg,
		log:   log.With().Str("component", "retriever").Logger(),
	}
}

// Search runs the two-stage retrieval. topK and minScore override the
// configured defaults when positive. An empty candidate set is a normal
// outcome returning no results; vector store failures propagate.
func (r *Retriever) Search(ctx context.Context, query string, topK int, minScore float32) ([]types.SearchResult, error) {
	if topK <= 0 {
		topK = r.cfg.TopK
	}
	if minScore <= 0 {
		minScore = r.cfg.MinScore
	}

	rewritten := r.rw.Rewrite(ctx, query)
	stripped := tokenizer.StripStops(rewritten)

	dense, err := r.emb.Embed(ctx, stripped)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}
	sparseVec := sparse.ToSparseVector(stripped, r.cfg.MaxSparseTerms)

	candidates, err := r.headerPass(ctx, dense, sparseVec)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		r.log.Debug().Str("query", query).Msg("no candidate documents")
		return nil, nil
	}

	return r.chunkPass(ctx, dense, sparseVec, candidates, topK, minScore)
}

// headerPass queries header vectors and returns candidate document ids in
// score order.
func (r *Retriever) headerPass(ctx context.Context, dense []float32, sparseVec types.SparseVector) ([]string, error) {
	matches, err := r.store.Query(ctx, vectorstore.Query{
		Vector:          dense,
		Sparse:          sparseVec,
		TopK:            r.cfg.HeaderTopK,
		Filter:          map[string]any{"header": true},
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("header pass: %w", err)
	}

	seen := make(map[string]bool)
	var candidates []string
	for _, m := range matches {
		if m.Score < r.cfg.HeaderMinScore {
			continue
		}
		docID, _ := m.Metadata["doc_id"].(string)
		if docID == "" || seen[docID] {
			continue
		}
		seen[docID] = true
		candidates = append(candidates, docID)
	}
	r.log.Debug().Int("candidates", len(candidates)).Msg("header pass complete")
	return candidates, nil
}

// chunkPass ranks passages within the candidate documents.
func (r *Retriever) chunkPass(ctx context.Context, dense []float32, sparseVec types.SparseVector, candidates []string, topK int, minScore float32) ([]types.SearchResult, error) {
	ids := make([]any, len(candidates))
	for i, id := range candidates {
		ids[i] = id
	}

	matches, err := r.store.Query(ctx, vectorstore.Query{
		Vector: dense,
		Sparse: sparseVec,
		TopK:   2 * topK,
		Filter: map[string]any{
			"header": false,
			"doc_id": map[string]any{"$in": ids},
		},
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("chunk pass: %w", err)
	}

	seen := make(map[string]bool)
	var results []types.SearchResult
	for _, m := range matches {
		if m.Score < minScore || seen[m.ID] {
			continue
		}
		seen[m.ID] = true

		docID, _ := m.Metadata["doc_id"].(string)
		title, _ := m.Metadata["title"].(string)
		text, _ := m.Metadata["text"].(string)
		url, _ := m.Metadata["url"].(string)
		results = append(results, types.SearchResult{
			ID:    m.ID,
			Score: m.Score,
			DocID: docID,
			Title: title,
			Text:  text,
			URL:   url,
		})
		if len(results) == topK {
			break
		}
	}
	r.log.Debug().Int("results", len(results)).Msg("chunk pass complete")
	return results, nil
}
