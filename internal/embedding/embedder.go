// Package embedding provides text embedding providers: local ONNX models, OpenAI-compatible
// endpoints, a deterministic mock, and an LRU caching wrapper.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/notesearch/internal/config"
	"github.com/hyperjump/notesearch/pkg/utils"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// Provider names accepted in embedding.provider.
const (
	ProviderONNX   = "onnx"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// ErrUnknownProvider is returned by NewEmbedder for an unrecognized provider name.
var ErrUnknownProvider = errors.New("unknown embedding provider")

// NewEmbedder builds the embedder configured by cfg, wrapped in an LRU cache when
// cfg.CacheSize > 0. The ONNX provider falls back to the mock embedder when the runtime or model
// cannot be loaded.
func NewEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	logger = utils.OrNop(logger)

	var base Embedder
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderONNX:
		onnxEmbedder, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			logger.Warn("onnx embedder unavailable, falling back to mock embedder",
				zap.String("model_path", cfg.ModelPath),
				zap.Error(err))
			base = NewMockEmbedder(cfg.Dimensions)
		} else {
			base = onnxEmbedder
		}
	case ProviderOpenAI:
		openaiEmbedder, err := NewOpenAIEmbedder(OpenAIConfig{
			Host:       cfg.Host,
			Model:      cfg.Model,
			Token:      cfg.APIKey,
			Dimensions: cfg.Dimensions,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai embedder: %w", err)
		}
		base = openaiEmbedder
	case ProviderMock:
		base = NewMockEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}

	logger.Debug("embedder initialized",
		zap.String("provider", cfg.Provider),
		zap.Int("dimensions", base.Dimensions()),
		zap.Int("cache_size", cfg.CacheSize))

	if cfg.CacheSize > 0 {
		return NewCachedEmbedder(base, cfg.CacheSize), nil
	}
	return base, nil
}

// embedEach calls embed for each text in order.
func embedEach(ctx context.Context, texts []string, embed func(context.Context, string) ([]float32, error)) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}
