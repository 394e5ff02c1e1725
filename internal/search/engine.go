// Package search provides the note retrieval engine: embed the query, over-fetch candidates from
// the vector index, and re-rank them with hybrid fusion.
package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/notesearch/internal/config"
	"github.com/hyperjump/notesearch/internal/embedding"
	"github.com/hyperjump/notesearch/internal/models"
	"github.com/hyperjump/notesearch/internal/ranking"
	"github.com/hyperjump/notesearch/internal/vector"
	"github.com/hyperjump/notesearch/pkg/utils"
)

// DefaultCollection is the collection queried when none is configured.
const DefaultCollection = "notes"

// FetchMultiplier is how many candidates per requested result are fetched for hybrid re-ranking.
const FetchMultiplier = 3

// EmbedderFactory creates the embedding provider on first use.
type EmbedderFactory func(ctx context.Context) (embedding.Embedder, error)

// IndexFactory opens the vector index collection on first use.
type IndexFactory func(ctx context.Context, location, collection string) (vector.Index, error)

// Engine answers note queries. Its embedder and index are created lazily, at most once, and then
// shared by all queries; Engine is safe for concurrent Query calls.
type Engine struct {
	location   string
	collection string
	newEmbed   EmbedderFactory
	openIndex  IndexFactory
	ranker     *ranking.Ranker
	logger     *zap.Logger
	defaults   models.RankingConfig
	maxTopK    int

	embedder *lazy[embedding.Embedder]
	index    *lazy[vector.Index]
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCollection sets the collection name.
func WithCollection(name string) EngineOption {
	return func(e *Engine) {
		if name != "" {
			e.collection = name
		}
	}
}

// WithEmbedderFactory sets how the embedding provider is created.
func WithEmbedderFactory(f EmbedderFactory) EngineOption {
	return func(e *Engine) { e.newEmbed = f }
}

// WithEmbedder uses an already-configured embedding provider.
func WithEmbedder(emb embedding.Embedder) EngineOption {
	return WithEmbedderFactory(func(context.Context) (embedding.Embedder, error) { return emb, nil })
}

// WithIndexFactory sets how the vector index is opened.
func WithIndexFactory(f IndexFactory) EngineOption {
	return func(e *Engine) { e.openIndex = f }
}

// WithRanker sets the ranker used for hybrid fusion.
func WithRanker(r *ranking.Ranker) EngineOption {
	return func(e *Engine) { e.ranker = r }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = utils.OrNop(logger) }
}

// WithRankingDefaults sets the settings NoteQuery requests fall back to and the TopK cap.
func WithRankingDefaults(cfg models.RankingConfig, maxTopK int) EngineOption {
	return func(e *Engine) {
		e.defaults = cfg
		e.maxTopK = maxTopK
	}
}

// NewEngine creates an engine for the vector store at location. Nothing is opened until the first
// query. Without options the engine embeds with the default embedding configuration and opens the
// "notes" collection of a SQLite store.
func NewEngine(location string, opts ...EngineOption) *Engine {
	e := &Engine{
		location:   location,
		collection: DefaultCollection,
		logger:     zap.NewNop(),
		defaults:   models.DefaultRankingConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.newEmbed == nil {
		logger := e.logger
		e.newEmbed = func(context.Context) (embedding.Embedder, error) {
			return embedding.NewEmbedder(config.Default().Embedding, logger)
		}
	}
	if e.openIndex == nil {
		e.openIndex = func(ctx context.Context, location, collection string) (vector.Index, error) {
			return vector.OpenSQLiteIndex(ctx, location, collection)
		}
	}
	if e.ranker == nil {
		e.ranker = ranking.NewRanker(ranking.WithLogger(e.logger))
	}

	e.embedder = newLazy(func(ctx context.Context) (embedding.Embedder, error) {
		emb, err := e.newEmbed(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
		e.logger.Debug("embedder ready", zap.Int("dimensions", emb.Dimensions()))
		return emb, nil
	})
	e.index = newLazy(func(ctx context.Context) (vector.Index, error) {
		idx, err := e.openIndex(ctx, e.location, e.collection)
		if err != nil {
			e.logger.Error("vector store unavailable",
				zap.String("location", e.location),
				zap.String("collection", e.collection),
				zap.Error(err))
			return nil, &ConnectivityError{Location: e.location, Collection: e.collection, Err: err}
		}
		e.logger.Debug("vector index ready",
			zap.String("location", e.location),
			zap.String("collection", e.collection))
		return idx, nil
	})
	return e
}

// NewEngineFromConfig wires the embedder, index backend and ranking defaults from cfg.
func NewEngineFromConfig(cfg *config.Config, logger *zap.Logger, opts ...EngineOption) *Engine {
	logger = utils.OrNop(logger)
	embCfg := cfg.Embedding
	vecCfg := cfg.Vector
	base := []EngineOption{
		WithCollection(cfg.Storage.Collection),
		WithLogger(logger),
		WithRankingDefaults(cfg.RankingDefaults(), cfg.Retrieval.MaxTopK),
		WithEmbedderFactory(func(context.Context) (embedding.Embedder, error) {
			return embedding.NewEmbedder(embCfg, logger)
		}),
		WithIndexFactory(func(ctx context.Context, location, collection string) (vector.Index, error) {
			return vector.Open(ctx, vector.OpenOptions{
				IndexType:  vecCfg.IndexType,
				Location:   location,
				Collection: collection,
				DSN:        vecCfg.DSN,
				Dimensions: embCfg.Dimensions,
			})
		}),
	}
	return NewEngine(cfg.Storage.Location, append(base, opts...)...)
}

// Location returns the configured storage location.
func (e *Engine) Location() string { return e.location }

// Collection returns the configured collection name.
func (e *Engine) Collection() string { return e.collection }

// FetchSize is the number of candidates requested from the vector index: TopK*FetchMultiplier with
// hybrid fusion, TopK otherwise.
func FetchSize(cfg models.RankingConfig) int {
	if cfg.Hybrid {
		return cfg.TopK * FetchMultiplier
	}
	return cfg.TopK
}

// Query returns up to cfg.TopK candidates for text, best first. The steps run in order: embed the
// text, fetch FetchSize(cfg) nearest chunks, convert cosine distances to similarities
// (1 - distance), then rank. A store with no hits yields an empty slice.
func (e *Engine) Query(ctx context.Context, text string, cfg models.RankingConfig) ([]*models.Candidate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	emb, err := e.embedder.get(ctx)
	if err != nil {
		return nil, err
	}
	idx, err := e.index.get(ctx)
	if err != nil {
		return nil, err
	}

	vec, err := emb.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	fetch := FetchSize(cfg)
	res, err := idx.Query(ctx, vec, fetch)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	candidates := candidatesFromResult(res)
	e.logger.Debug("fetched candidates",
		zap.Int("requested", fetch),
		zap.Int("returned", len(candidates)),
		zap.Bool("hybrid", cfg.Hybrid))
	if len(candidates) == 0 {
		return []*models.Candidate{}, nil
	}
	return e.ranker.Rank(text, candidates, cfg), nil
}

// candidatesFromResult converts index hits into candidates in index order. A hit without a
// distance is treated as distance 0.
func candidatesFromResult(res *vector.QueryResult) []*models.Candidate {
	if res == nil || len(res.Documents) == 0 {
		return nil
	}
	out := make([]*models.Candidate, len(res.Documents))
	for i, doc := range res.Documents {
		var distance float64
		if i < len(res.Distances) {
			distance = res.Distances[i]
		}
		var meta map[string]string
		if i < len(res.Metadatas) {
			meta = res.Metadatas[i]
		}
		if meta == nil {
			meta = map[string]string{}
		}
		out[i] = &models.Candidate{
			Content:     doc,
			Metadata:    meta,
			VectorScore: 1 - distance,
		}
	}
	return out
}

// Search answers a NoteQuery, filling unset fields from the engine's ranking defaults.
func (e *Engine) Search(ctx context.Context, q *models.NoteQuery) (*models.QueryResponse, error) {
	start := time.Now()
	if err := q.Validate(); err != nil {
		return nil, err
	}
	cfg, err := q.RankingConfig(e.defaults, e.maxTopK)
	if err != nil {
		return nil, err
	}
	candidates, err := e.Query(ctx, q.Query, cfg)
	if err != nil {
		return nil, err
	}
	results := models.Records(candidates)
	return &models.QueryResponse{
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
		Query:     q.Query,
		Hybrid:    cfg.Hybrid,
	}, nil
}

// Count returns the number of chunks in the collection, opening the index if needed.
func (e *Engine) Count(ctx context.Context) (int, error) {
	idx, err := e.index.get(ctx)
	if err != nil {
		return 0, err
	}
	return idx.Count(ctx)
}

// Close releases the embedder and index if they were created. It must not race with Query.
func (e *Engine) Close() error {
	var firstErr error
	if emb, ok := e.embedder.loaded(); ok {
		if err := emb.Close(); err != nil {
			firstErr = err
		}
	}
	if idx, ok := e.index.loaded(); ok {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
