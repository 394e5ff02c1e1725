package vector

import (
	"context"
	"fmt"
)

// IndexType represents the vector index backend.
type IndexType string

const (
	// IndexTypeSQLite stores collections in a SQLite file inside the storage location.
	IndexTypeSQLite IndexType = "sqlite"
	// IndexTypePGVector stores collections in Postgres with the pgvector extension.
	IndexTypePGVector IndexType = "pgvector"
	// IndexTypeMemory keeps records in process. Nothing is persisted.
	IndexTypeMemory IndexType = "memory"
)

// OpenOptions selects and locates a collection.
type OpenOptions struct {
	IndexType  string
	Location   string
	Collection string
	// DSN is the Postgres connection string for IndexTypePGVector.
	DSN string
	// Dimensions is required by Create and by the memory backend.
	Dimensions int
}

// Open opens an existing collection.
// Supported types: "sqlite" (default), "pgvector", "memory".
func Open(ctx context.Context, opts OpenOptions) (Index, error) {
	switch IndexType(opts.IndexType) {
	case IndexTypeSQLite, "":
		return OpenSQLiteIndex(ctx, opts.Location, opts.Collection)
	case IndexTypePGVector:
		return OpenPGVectorIndex(ctx, opts.DSN, opts.Collection)
	case IndexTypeMemory:
		return NewMemoryIndex(opts.Dimensions)
	default:
		return nil, unknownIndexType(opts.IndexType)
	}
}

// Create creates the collection if needed and opens it.
func Create(ctx context.Context, opts OpenOptions) (Index, error) {
	switch IndexType(opts.IndexType) {
	case IndexTypeSQLite, "":
		return CreateSQLiteIndex(ctx, opts.Location, opts.Collection, opts.Dimensions)
	case IndexTypePGVector:
		return CreatePGVectorIndex(ctx, opts.DSN, opts.Collection, opts.Dimensions)
	case IndexTypeMemory:
		return NewMemoryIndex(opts.Dimensions)
	default:
		return nil, unknownIndexType(opts.IndexType)
	}
}

func unknownIndexType(t string) error {
	return fmt.Errorf("unknown index type: %s (supported: sqlite, pgvector, memory)", t)
}
