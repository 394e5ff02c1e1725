// Package vector provides vector index backends holding note chunks with their embeddings and
// metadata, queried by cosine distance.
package vector

import (
	"context"
	"errors"
)

// Index stores embedded records in one named collection and answers nearest-neighbour queries.
type Index interface {
	// Add inserts or replaces records. Records without an ID get a generated one.
	Add(ctx context.Context, records []Record) error
	// Query returns up to nResults records ordered by increasing cosine distance to embedding.
	Query(ctx context.Context, embedding []float32, nResults int) (*QueryResult, error)
	// Count returns the number of records in the collection.
	Count(ctx context.Context) (int, error)
	Close() error
}

// Record is one stored chunk.
type Record struct {
	ID        string
	Document  string
	Metadata  map[string]string
	Embedding []float32
}

// QueryResult holds parallel slices, one entry per hit, nearest first.
// Distances are cosine distances (1 - cosine similarity).
type QueryResult struct {
	IDs       []string
	Documents []string
	Metadatas []map[string]string
	Distances []float64
}

// Len returns the number of hits.
func (r *QueryResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.IDs)
}

var (
	// ErrStoreNotFound is returned when the configured storage location does not exist.
	ErrStoreNotFound = errors.New("vector store not found")
	// ErrCollectionNotFound is returned when the store has no collection with the requested name.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrDimensionMismatch is returned when an embedding does not match the collection dimensions.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
