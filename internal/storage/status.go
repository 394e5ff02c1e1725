package storage

import (
	"context"

	"github.com/hyperjump/notesearch/internal/config"
	"github.com/hyperjump/notesearch/internal/vector"
)

// Counter counts the records of the configured collection.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Status describes the configured vector store.
type Status struct {
	Location            string `json:"location"`
	Collection          string `json:"collection"`
	IndexType           string `json:"index_type"`
	Records             int    `json:"records"`
	EmbeddingProvider   string `json:"embedding_provider"`
	EmbeddingDimensions int    `json:"embedding_dimensions"`
	SQLiteBuild         string `json:"sqlite_build,omitempty"`
	Disk                Usage  `json:"disk"`
	// Error is set when the store could not be opened; Records is then 0.
	Error string `json:"error,omitempty"`
}

// CollectStatus gathers configuration, record count and disk usage. A store that cannot be opened
// is reported in Status.Error rather than returned as an error; only disk walk failures are returned.
func CollectStatus(ctx context.Context, counter Counter, cfg *config.Config) (*Status, error) {
	st := &Status{
		Location:            cfg.Storage.Location,
		Collection:          cfg.Storage.Collection,
		IndexType:           cfg.Vector.IndexType,
		EmbeddingProvider:   cfg.Embedding.Provider,
		EmbeddingDimensions: cfg.Embedding.Dimensions,
	}
	if cfg.Vector.IndexType == string(vector.IndexTypeSQLite) {
		st.SQLiteBuild = vector.BuildMode
	}
	n, err := counter.Count(ctx)
	if err != nil {
		st.Error = err.Error()
	} else {
		st.Records = n
	}
	if cfg.Vector.IndexType != string(vector.IndexTypePGVector) {
		usage, err := DiskUsage(cfg.Storage.Location)
		if err != nil {
			return nil, err
		}
		st.Disk = usage
	}
	return st, nil
}
