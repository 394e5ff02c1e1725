package embedding

import (
	"context"
	"math"

	"github.com/hyperjump/notesearch/internal/keyword"
	"github.com/hyperjump/notesearch/pkg/utils"
)

// MockEmbedder is a deterministic embedder for tests and offline use. Each lexical token is hashed
// into one dimension (a hashed bag of words), so texts sharing words get a higher cosine
// similarity. The same text always gets the same embedding.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns a unit-length hashed bag-of-words embedding.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emb := make([]float32, e.dimensions)
	tokens := keyword.Tokenize(text)
	if len(tokens) == 0 {
		// No tokens: fall back to a vector derived from the raw text hash.
		h := HashString(text)
		for i := 0; i < e.dimensions; i++ {
			emb[i] = float32(math.Sin(float64(h*(i+1)))*0.1 + 0.01)
		}
	}
	for _, tok := range tokens {
		emb[HashString(tok)%e.dimensions]++
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, e.Embed)
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}
