// Package vectorstore abstracts the hybrid (dense + sparse) vector index.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/readloom/readloom/types"
)

// Record is the unit stored in the vector index.
type Record struct {
	ID       string
	Values   []float32
	Sparse   types.SparseVector
	Metadata map[string]any
}

// Match is one scored result from a query.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

// Query describes one hybrid search. Filter supports equality on booleans
// and {"$in": [...]} on identifier lists.
type Query struct {
	Vector          []float32
	Sparse          types.SparseVector
	TopK            int
	Filter          map[string]any
	IncludeMetadata bool
}

// Store is the hybrid vector index capability: dot-product similarity over
// dense plus sparse components.
type Store interface {
	// Upsert writes records, replacing any with the same id.
	Upsert(ctx context.Context, records []Record) error

	// Query runs one hybrid search.
	Query(ctx context.Context, q Query) ([]Match, error)

	// Stats returns the total number of stored vectors.
	Stats(ctx context.Context) (int64, error)
}

// Error wraps a vector store failure with the operation that produced it.
type Error struct {
	Op  string
	Err error
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("vector store %s failed: %v", e.Op, e.Err)
}

// Unwrap supports errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}
