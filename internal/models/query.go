package models

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned when a request carries no query text.
	ErrEmptyQuery = errors.New("query cannot be empty")
	// ErrInvalidTopK is returned when top_k is not a positive integer.
	ErrInvalidTopK = errors.New("top_k must be positive")
	// ErrInvalidVectorWeight is returned when vector_weight is outside [0,1].
	ErrInvalidVectorWeight = errors.New("vector_weight must be between 0 and 1")
)

// RankingConfig controls one ranking pass.
type RankingConfig struct {
	TopK         int     `json:"top_k"`
	Hybrid       bool    `json:"hybrid"`
	VectorWeight float64 `json:"vector_weight"`
}

// DefaultRankingConfig returns top_k 5, hybrid fusion on, vector weight 0.7.
func DefaultRankingConfig() RankingConfig {
	return RankingConfig{TopK: 5, Hybrid: true, VectorWeight: 0.7}
}

// LexicalWeight returns the fusion weight of the normalized lexical score.
func (c RankingConfig) LexicalWeight() float64 {
	return 1 - c.VectorWeight
}

// Validate reports whether the configuration can be used for ranking.
func (c RankingConfig) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTopK, c.TopK)
	}
	if !(c.VectorWeight >= 0 && c.VectorWeight <= 1) {
		return fmt.Errorf("%w: got %g", ErrInvalidVectorWeight, c.VectorWeight)
	}
	return nil
}

// NoteQuery is a query request as received over HTTP or MCP. Unset fields take configured defaults.
type NoteQuery struct {
	Query        string   `json:"query"`
	TopK         int      `json:"top_k,omitempty"`
	Hybrid       *bool    `json:"hybrid,omitempty"`
	VectorWeight *float64 `json:"vector_weight,omitempty"`
}

// Validate ensures the request has query text.
func (q *NoteQuery) Validate() error {
	if q.Query == "" {
		return ErrEmptyQuery
	}
	return nil
}

// RankingConfig merges the request with defaults. TopK is capped at maxTopK when maxTopK > 0.
// The result is validated.
func (q *NoteQuery) RankingConfig(defaults RankingConfig, maxTopK int) (RankingConfig, error) {
	cfg := defaults
	if q.TopK != 0 {
		cfg.TopK = q.TopK
	}
	if maxTopK > 0 && cfg.TopK > maxTopK {
		cfg.TopK = maxTopK
	}
	if q.Hybrid != nil {
		cfg.Hybrid = *q.Hybrid
	}
	if q.VectorWeight != nil {
		cfg.VectorWeight = *q.VectorWeight
	}
	if err := cfg.Validate(); err != nil {
		return RankingConfig{}, err
	}
	return cfg, nil
}
