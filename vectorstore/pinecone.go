package vectorstore

import (
	"context"
	"fmt"

	"github.com/pinecone-io/go-pinecone/pinecone"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/readloom/readloom/types"
)

// Pinecone implements Store against a serverless Pinecone index with
// hybrid (dotproduct) capability.
type Pinecone struct {
	conn *pinecone.IndexConnection
	log  zerolog.Logger
}

// NewPinecone resolves the index host and opens a connection.
func NewPinecone(ctx context.Context, apiKey, indexName string, log zerolog.Logger) (*Pinecone, error) {
	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create pinecone client: %w", err)
	}
	idx, err := client.DescribeIndex(ctx, indexName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index %q: %w", indexName, err)
	}
	conn, err := client.Index(pinecone.NewIndexConnParams{Host: idx.Host})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to index %q: %w", indexName, err)
	}
	return &Pinecone{
		conn: conn,
		log:  log.With().Str("component", "vectorstore").Str("index", indexName).Logger(),
	}, nil
}

// Upsert implements Store.
func (p *Pinecone) Upsert(ctx context.Context, records []Record) error {
	vectors := make([]*pinecone.Vector, 0, len(records))
	for _, r := range records {
		meta, err := structpb.NewStruct(r.Metadata)
		if err != nil {
			return &Error{Op: "upsert", Err: fmt.Errorf("metadata for %q: %w", r.ID, err)}
		}
		vectors = append(vectors, &pinecone.Vector{
			Id:           r.ID,
			Values:       r.Values,
			SparseValues: toSparseValues(r.Sparse),
			Metadata:     meta,
		})
	}
	if _, err := p.conn.UpsertVectors(ctx, vectors); err != nil {
		return &Error{Op: "upsert", Err: err}
	}
	return nil
}

// Query implements Store.
func (p *Pinecone) Query(ctx context.Context, q Query) ([]Match, error) {
	req := &pinecone.QueryByVectorValuesRequest{
		Vector:          q.Vector,
		TopK:            uint32(q.TopK),
		SparseValues:    toSparseValues(q.Sparse),
		IncludeMetadata: q.IncludeMetadata,
	}
	if q.Filter != nil {
		filter, err := structpb.NewStruct(q.Filter)
		if err != nil {
			return nil, &Error{Op: "query", Err: fmt.Errorf("filter: %w", err)}
		}
		req.MetadataFilter = filter
	}

	resp, err := p.conn.QueryByVectorValues(ctx, req)
	if err != nil {
		return nil, &Error{Op: "query", Err: err}
	}

	matches := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		match := Match{Score: m.Score}
		if m.Vector != nil {
			match.ID = m.Vector.Id
			if m.Vector.Metadata != nil {
				match.Metadata = m.Vector.Metadata.AsMap()
			}
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// Stats implements Store.
func (p *Pinecone) Stats(ctx context.Context) (int64, error) {
	stats, err := p.conn.DescribeIndexStats(ctx)
	if err != nil {
		return 0, &Error{Op: "describe stats", Err: err}
	}
	return int64(stats.TotalVectorCount), nil
}

// toSparseValues converts the internal sparse representation; empty
// vectors map to nil so dense-only queries stay valid.
func toSparseValues(s types.SparseVector) *pinecone.SparseValues {
	if s.IsEmpty() {
		return nil
	}
	return &pinecone.SparseValues{Indices: s.Indices, Values: s.Values}
}
