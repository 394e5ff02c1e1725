// Package ranking re-ranks vector-retrieved candidates by fusing vector similarity with
// pool-local lexical relevance.
package ranking

import (
	"sort"

	"go.uber.org/zap"

	"github.com/hyperjump/notesearch/internal/keyword"
	"github.com/hyperjump/notesearch/internal/models"
)

// Ranker orders candidate pools. It holds no per-query state and is safe for concurrent use.
type Ranker struct {
	params keyword.BM25Params
	logger *zap.Logger
}

// RankerOption configures a Ranker.
type RankerOption func(*Ranker)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) RankerOption {
	return func(r *Ranker) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithBM25Params overrides the lexical scoring constants.
func WithBM25Params(p keyword.BM25Params) RankerOption {
	return func(r *Ranker) {
		r.params = p
	}
}

// NewRanker creates a Ranker with default BM25 constants.
func NewRanker(opts ...RankerOption) *Ranker {
	r := &Ranker{
		params: keyword.DefaultBM25Params(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRanker = NewRanker()

// Rank orders candidates with the default ranker.
func Rank(query string, candidates []*models.Candidate, cfg models.RankingConfig) []*models.Candidate {
	return defaultRanker.Rank(query, candidates, cfg)
}

// Rank returns at most cfg.TopK candidates, best first.
//
// With hybrid disabled the first TopK candidates are returned in their incoming order and no
// lexical scores are computed. Otherwise every candidate is scored against the query with BM25
// term frequencies (average length taken over this pool only), the lexical scores are divided by
// the pool maximum, and each candidate's fused score is
// VectorWeight*VectorScore + (1-VectorWeight)*lexical. Candidates are stable-sorted by fused score
// descending, so ties keep their incoming order.
//
// The returned candidates are copies carrying BM25Score and HybridScore; the input slice and its
// elements are left untouched. A non-positive TopK yields an empty result.
func (r *Ranker) Rank(query string, candidates []*models.Candidate, cfg models.RankingConfig) []*models.Candidate {
	if len(candidates) == 0 || cfg.TopK <= 0 {
		return []*models.Candidate{}
	}
	limit := cfg.TopK
	if limit > len(candidates) {
		limit = len(candidates)
	}

	if !cfg.Hybrid {
		out := make([]*models.Candidate, limit)
		for i := 0; i < limit; i++ {
			out[i] = candidates[i].Clone()
		}
		return out
	}

	queryTokens := keyword.Tokenize(query)
	docTokens := make([][]string, len(candidates))
	for i, c := range candidates {
		docTokens[i] = keyword.Tokenize(c.Content)
	}
	avgDocLen := keyword.AverageLength(docTokens)

	raw := make([]float64, len(candidates))
	for i, tokens := range docTokens {
		raw[i] = keyword.ScoreWithParams(queryTokens, tokens, avgDocLen, r.params)
	}
	lexical := NormalizeScores(raw)

	scored := make([]*models.Candidate, len(candidates))
	for i, c := range candidates {
		out := c.Clone()
		bm25 := lexical[i]
		hybrid := Fuse(c.VectorScore, bm25, cfg.VectorWeight)
		out.BM25Score = &bm25
		out.HybridScore = &hybrid
		scored[i] = out
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return *scored[i].HybridScore > *scored[j].HybridScore
	})

	r.logger.Debug("ranked candidate pool",
		zap.Int("pool", len(candidates)),
		zap.Int("query_tokens", len(queryTokens)),
		zap.Float64("avg_doc_len", avgDocLen),
		zap.Int("top_k", cfg.TopK),
	)
	return scored[:limit]
}
