// Package config provides configuration loading and structs for the notesearch tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/notesearch/internal/models"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Vector    VectorConfig    `yaml:"vector"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig names the vector store location and the collection holding note chunks.
type StorageConfig struct {
	Location   string `yaml:"location"`
	Collection string `yaml:"collection"`
}

// VectorConfig selects the vector index backend.
type VectorConfig struct {
	// IndexType is one of "sqlite", "pgvector" or "memory".
	IndexType string `yaml:"index_type"`
	// DSN is the Postgres connection string for the pgvector backend.
	DSN string `yaml:"dsn"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Provider is one of "onnx", "openai" or "mock".
	Provider   string `yaml:"provider"`
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
	// Host and Model configure an OpenAI-compatible embeddings endpoint.
	Host   string `yaml:"host"`
	Model  string `yaml:"model"`
	APIKey string `yaml:"api_key,omitempty"`
}

// RetrievalConfig holds default ranking settings for queries that do not set them.
type RetrievalConfig struct {
	TopK         int      `yaml:"top_k"`
	Hybrid       *bool    `yaml:"hybrid"`
	VectorWeight *float64 `yaml:"vector_weight"`
	MaxTopK      int      `yaml:"max_top_k"`
}

// HybridOrDefault returns whether hybrid fusion is on; defaults to true when unset.
func (r *RetrievalConfig) HybridOrDefault() bool {
	if r.Hybrid != nil {
		return *r.Hybrid
	}
	return true
}

// VectorWeightOrDefault returns the fusion weight of vector similarity; defaults to 0.7 when unset.
func (r *RetrievalConfig) VectorWeightOrDefault() float64 {
	if r.VectorWeight != nil {
		return *r.VectorWeight
	}
	return DefaultVectorWeight
}

// RankingDefaults returns the ranking settings applied to queries that leave fields unset.
func (c *Config) RankingDefaults() models.RankingConfig {
	return models.RankingConfig{
		TopK:         c.Retrieval.TopK,
		Hybrid:       c.Retrieval.HybridOrDefault(),
		VectorWeight: c.Retrieval.VectorWeightOrDefault(),
	}
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.Location = expandPath(cfg.Storage.Location, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}

	return &cfg, nil
}

// Default returns a config with every field at its default value.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// Save writes the config to path, creating the parent directory.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Environment variables read by ApplyEnv.
const (
	EnvLocation   = "NOTESEARCH_DB_PATH"
	EnvCollection = "NOTESEARCH_COLLECTION"
	EnvIndexType  = "NOTESEARCH_INDEX_TYPE"
	EnvDSN        = "NOTESEARCH_PG_DSN"
	EnvProvider   = "NOTESEARCH_EMBEDDING_PROVIDER"
	EnvHost       = "NOTESEARCH_EMBEDDING_HOST"
	EnvModel      = "NOTESEARCH_EMBEDDING_MODEL"
	EnvAPIKey     = "NOTESEARCH_EMBEDDING_API_KEY"
	EnvDebug      = "NOTESEARCH_DEBUG"
)

// ApplyEnv overrides config fields from NOTESEARCH_* environment variables that are set.
func ApplyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString(&cfg.Storage.Location, EnvLocation)
	setString(&cfg.Storage.Collection, EnvCollection)
	setString(&cfg.Vector.IndexType, EnvIndexType)
	setString(&cfg.Vector.DSN, EnvDSN)
	setString(&cfg.Embedding.Provider, EnvProvider)
	setString(&cfg.Embedding.Host, EnvHost)
	setString(&cfg.Embedding.Model, EnvModel)
	setString(&cfg.Embedding.APIKey, EnvAPIKey)
	if v, ok := os.LookupEnv(EnvDebug); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if strings.HasPrefix(path, "~/") {
		path = path[2:]
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
