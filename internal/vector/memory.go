package vector

import (
	"context"
	"fmt"
	"sync"
)

// MemoryIndex is an in-memory vector index using brute-force cosine distance.
// Suitable for tests and small collections.
type MemoryIndex struct {
	dimensions int
	records    []Record
	byID       map[string]int
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory vector index with the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{
		dimensions: dimensions,
		records:    make([]Record, 0),
		byID:       make(map[string]int),
	}, nil
}

// Type returns the index type identifier.
func (m *MemoryIndex) Type() string {
	return string(IndexTypeMemory)
}

// Add inserts records, replacing any with the same ID in place.
func (m *MemoryIndex) Add(ctx context.Context, records []Record) error {
	prepared, err := prepareRecords(records, m.dimensions)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range prepared {
		vec := make([]float32, m.dimensions)
		copy(vec, r.Embedding)
		r.Embedding = vec
		if i, ok := m.byID[r.ID]; ok {
			m.records[i] = r
			continue
		}
		m.byID[r.ID] = len(m.records)
		m.records = append(m.records, r)
	}
	return nil
}

// Query returns the nResults records nearest to embedding.
func (m *MemoryIndex) Query(ctx context.Context, embedding []float32, nResults int) (*QueryResult, error) {
	if len(embedding) != m.dimensions {
		return nil, fmt.Errorf("%w: query has %d, index expects %d", ErrDimensionMismatch, len(embedding), m.dimensions)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if nResults <= 0 || len(m.records) == 0 {
		return &QueryResult{}, nil
	}
	scored := make([]scoredRecord, len(m.records))
	for i, r := range m.records {
		scored[i] = scoredRecord{record: r, distance: cosineDistance(embedding, r.Embedding)}
	}
	return nearest(scored, nResults), nil
}

// Count returns the number of records in the index.
func (m *MemoryIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// Dimensions returns the embedding dimension.
func (m *MemoryIndex) Dimensions() int {
	return m.dimensions
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}
