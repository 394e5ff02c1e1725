package config

// DefaultVectorWeight is the fusion weight of vector similarity when none is configured.
const DefaultVectorWeight = 0.7

// DefaultPath is where the CLI looks for its config file.
const DefaultPath = "/usr/local/etc/notesearch/config.yaml"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.Location == "" {
		cfg.Storage.Location = "/usr/local/var/notesearch/vector_db"
	}
	if cfg.Storage.Collection == "" {
		cfg.Storage.Collection = "notes"
	}
	if cfg.Vector.IndexType == "" {
		cfg.Vector.IndexType = "sqlite"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "onnx"
	}
	if cfg.Embedding.Provider == "onnx" && cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/notesearch/models/bge-m3.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1024
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 512
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.Embedding.Host == "" {
		cfg.Embedding.Host = "http://localhost:11434/v1"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "bge-m3"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.MaxTopK == 0 {
		cfg.Retrieval.MaxTopK = 100
	}
	// Hybrid and VectorWeight stay nil when unset so an explicit false or 0 survives a round trip.
}
