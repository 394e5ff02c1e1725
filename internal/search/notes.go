package search

import (
	"context"

	"github.com/hyperjump/notesearch/internal/models"
)

// GetRelevantNotes opens an engine for location, runs one query, closes the engine, and returns the
// flattened results. Every call builds its own engine; long-lived callers should keep an Engine.
func GetRelevantNotes(ctx context.Context, query, location string, cfg models.RankingConfig, opts ...EngineOption) ([]models.NoteResult, error) {
	engine := NewEngine(location, opts...)
	defer engine.Close()

	candidates, err := engine.Query(ctx, query, cfg)
	if err != nil {
		return nil, err
	}
	return models.Records(candidates), nil
}
