// Package ingest orchestrates the sync pipeline: page the reader API,
// build the TF-IDF corpus, then process each document into a super-header
// and semantic chunks upserted as hybrid vectors.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/readloom/readloom/embedder"
	"github.com/readloom/readloom/htmltext"
	"github.com/readloom/readloom/keywords"
	"github.com/readloom/readloom/reader"
	"github.com/readloom/readloom/sparse"
	"github.com/readloom/readloom/types"
	"github.com/readloom/readloom/vectorstore"
)

const (
	// existingTopK bounds the zero-vector enumeration of known ids.
	existingTopK = 10000

	// chunkTokenCap guards embedding calls against oversize chunks the
	// chunker legitimately emits (single unsplittable sentences).
	chunkTokenCap = 8000
	// chunkCharCap is the defensive character bound applied to them.
	chunkCharCap = 6000
)

// DocumentLister pages documents from the upstream reader service.
type DocumentLister interface {
	List(ctx context.Context, location, cursor, updatedAfter string) (*reader.ListResponse, error)
}

// Chunker splits normalized text into token-bounded fragments.
type Chunker interface {
	Chunk(ctx context.Context, text string) ([]string, error)
}

// TokenCounter reports exact token counts.
type TokenCounter interface {
	TokenLen(text string) int
}

// Options control one sync invocation.
type Options struct {
	// UpdatedAfter is an ISO-8601 timestamp for incremental mode.
	UpdatedAfter string
	// Force bypasses existing-id deduplication and re-upserts every
	// fetched document.
	Force bool
}

// Pipeline wires the ingestion components. A Pipeline owns one TF-IDF
// corpus per Sync invocation; it holds no cross-run state.
type Pipeline struct {
	reader   DocumentLister
	store    vectorstore.Store
	emb      embedder.Embedder
	chunker  Chunker
	counter  TokenCounter
	maxTerms int
	log      zerolog.Logger
}

// New builds a Pipeline.
func New(lister DocumentLister, store vectorstore.Store, emb embedder.Embedder, ch Chunker, counter TokenCounter, maxTerms int, log zerolog.Logger) *Pipeline {
	if maxTerms <= 0 {
		maxTerms = sparse.DefaultMaxTerms
	}
	return &Pipeline{
		reader:   lister,
		store:    store,
		emb:      emb,
		chunker:  ch,
		counter:  counter,
		maxTerms: maxTerms,
		log:      log.With().Str("component", "ingest").Logger(),
	}
}

// Sync runs the full ingestion: enumerate known ids, page every reading
// location, build the corpus-wide TF-IDF model, then process and upsert
// each new document. A failure on one document abandons that document and
// continues; reader API failures abort the sync.
func (p *Pipeline) Sync(ctx context.Context, opts Options) (*types.SyncStats, error) {
	stats := &types.SyncStats{}

	existing := map[string]bool{}
	if !opts.Force {
		existing = p.existingIDs(ctx)
	}

	docs, err := p.fetchAll(ctx, opts.UpdatedAfter)
	if err != nil {
		return stats, err
	}
	stats.Fetched = len(docs)

	// Phase 1: corpus construction over the candidate set.
	corpus := keywords.NewCorpus()
	var candidates []types.Document
	for _, doc := range docs {
		if existing[doc.ID] {
			stats.Skipped++
			continue
		}
		corpus.AddDocument(doc.ID, bodyText(doc))
		candidates = append(candidates, doc)
	}
	corpus.Build()
	p.log.Info().
		Int("fetched", stats.Fetched).
		Int("candidates", len(candidates)).
		Int("skipped", stats.Skipped).
		Msg("corpus built")

	// Phase 2: per-document processing, sequential to bound memory and
	// keep rate limits simple.
	for _, doc := range candidates {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("sync cancelled: %w", err)
		}
		chunks, err := p.processDocument(ctx, corpus, doc)
		if err != nil {
			stats.Failed++
			p.log.Error().Err(err).Str("doc_id", doc.ID).Msg("document abandoned")
			continue
		}
		stats.Processed++
		stats.Chunks += chunks
	}

	p.log.Info().
		Int("processed", stats.Processed).
		Int("chunks", stats.Chunks).
		Int("failed", stats.Failed).
		Msg("sync complete")
	return stats, nil
}

// fetchAll pages every reading location in order, deduplicating documents
// by identifier across locations.
func (p *Pipeline) fetchAll(ctx context.Context, updatedAfter string) ([]types.Document, error) {
	seen := make(map[string]bool)
	var docs []types.Document

	for _, location := range reader.Locations {
		cursor := ""
		for {
			page, err := p.reader.List(ctx, location, cursor, updatedAfter)
			if err != nil {
				return nil, fmt.Errorf("failed to page location %q: %w", location, err)
			}
			for _, doc := range page.Results {
				if doc.ID == "" || seen[doc.ID] {
					continue
				}
				seen[doc.ID] = true
				docs = append(docs, doc)
			}
			if page.NextPageCursor == "" {
				break
			}
			cursor = page.NextPageCursor
		}
	}
	return docs, nil
}

// processDocument synthesizes the super-header, chunks the body, embeds
// header and chunks, and upserts the header record followed by the chunk
// records in order. Returns the number of chunks upserted.
func (p *Pipeline) processDocument(ctx context.Context, corpus *keywords.Corpus, doc types.Document) (int, error) {
	body := bodyText(doc)
	if body == "" {
		p.log.Debug().Str("doc_id", doc.ID).Msg("empty body, nothing to index")
		return 0, nil
	}

	kw, err := keywords.ExtractKeywords(corpus, doc.ID, body)
	if err != nil {
		return 0, fmt.Errorf("keyword extraction: %w", err)
	}
	header := BuildSuperHeader(doc, kw)

	chunks, err := p.chunker.Chunk(ctx, body)
	if err != nil {
		return 0, fmt.Errorf("chunking: %w", err)
	}
	for i, chunk := range chunks {
		if p.counter.TokenLen(chunk) > chunkTokenCap {
			chunks[i] = truncate(chunk, chunkCharCap)
		}
	}

	texts := append([]string{header}, chunks...)
	vectors, err := p.emb.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding: %w", err)
	}

	headerRec := vectorstore.Record{
		ID:     types.HeaderID(doc.ID),
		Values: vectors[0],
		Sparse: sparse.ToSparseVector(header+" "+kw.BoostedText, p.maxTerms),
		Metadata: map[string]any{
			"doc_id":     doc.ID,
			"title":      doc.Title,
			"author":     doc.Author,
			"url":        doc.URL,
			"category":   doc.Category,
			"summary":    doc.Summary,
			"tags":       toAnySlice(doc.Tags),
			"header":     true,
			"created_at": doc.CreatedAt,
		},
	}
	if err := p.store.Upsert(ctx, []vectorstore.Record{headerRec}); err != nil {
		return 0, fmt.Errorf("header upsert: %w", err)
	}

	for i, chunk := range chunks {
		rec := vectorstore.Record{
			ID:     types.ChunkID(doc.ID, i),
			Values: vectors[i+1],
			Sparse: sparse.ToSparseVector(chunk, p.maxTerms),
			Metadata: map[string]any{
				"doc_id":     doc.ID,
				"title":      doc.Title,
				"author":     doc.Author,
				"url":        doc.URL,
				"category":   doc.Category,
				"text":       chunk,
				"header":     false,
				"chunk_id":   float64(i),
				"created_at": doc.CreatedAt,
			},
		}
		if err := p.store.Upsert(ctx, []vectorstore.Record{rec}); err != nil {
			return i, fmt.Errorf("chunk %d upsert: %w", i, err)
		}
	}

	p.log.Debug().Str("doc_id", doc.ID).Int("chunks", len(chunks)).Msg("document upserted")
	return len(chunks), nil
}

// existingIDs enumerates document ids already present in the index,
// best-effort: a stats call sizes the index, then a zero-vector query at
// large topK collects metadata. Any failure degrades to "no known ids"
// and ingestion proceeds without deduplication.
func (p *Pipeline) existingIDs(ctx context.Context) map[string]bool {
	ids := make(map[string]bool)

	total, err := p.store.Stats(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("stats unavailable, skipping dedup")
		return ids
	}
	if total == 0 {
		return ids
	}

	matches, err := p.store.Query(ctx, vectorstore.Query{
		Vector:          make([]float32, p.emb.Dimension()),
		TopK:            existingTopK,
		IncludeMetadata: true,
	})
	if err != nil {
		p.log.Warn().Err(err).Msg("id enumeration failed, skipping dedup")
		return ids
	}

	for _, m := range matches {
		if docID, ok := m.Metadata["doc_id"].(string); ok && docID != "" {
			ids[docID] = true
			continue
		}
		if docID := docIDFromVectorID(m.ID); docID != "" {
			ids[docID] = true
		}
	}
	p.log.Debug().Int("known", len(ids)).Msg("existing ids enumerated")
	return ids
}

// docIDFromVectorID recovers the document id prefix from a record id of
// the form "<docId>-header" or "<docId>-chunk-<i>".
func docIDFromVectorID(id string) string {
	if rest, ok := strings.CutSuffix(id, "-header"); ok {
		return rest
	}
	if i := strings.LastIndex(id, "-chunk-"); i > 0 {
		return id[:i]
	}
	return ""
}

// bodyText derives the document body, preferring HTML-derived text over
// plain content.
func bodyText(doc types.Document) string {
	if doc.HTMLContent != "" {
		return htmltext.Normalize(doc.HTMLContent)
	}
	return strings.TrimSpace(doc.Content)
}

// toAnySlice converts tags for metadata encoding.
func toAnySlice(tags types.TagList) []any {
	out := make([]any, len(tags))
	for i, t := range tags {
		out[i] = t
	}
	return out
}
