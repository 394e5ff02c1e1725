package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/notesearch/internal/config"
	"github.com/hyperjump/notesearch/internal/embedding"
	"github.com/hyperjump/notesearch/internal/search"
	"github.com/hyperjump/notesearch/internal/vector"
)

func TestParseInterspersed(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		words []string
		topK  int
	}{
		{
			name:  "flags after query",
			args:  []string{"invoice from march", "-top-k", "3"},
			words: []string{"invoice from march"},
			topK:  3,
		},
		{
			name:  "flags first",
			args:  []string{"-top-k", "3", "invoice from march"},
			words: []string{"invoice from march"},
			topK:  3,
		},
		{
			name:  "query only",
			args:  []string{"invoice from march"},
			words: []string{"invoice from march"},
			topK:  5,
		},
		{
			name:  "empty args",
			args:  []string{},
			words: nil,
			topK:  5,
		},
		{
			name:  "multiple positionals then flags",
			args:  []string{"one", "two", "-hybrid=false"},
			words: []string{"one", "two"},
			topK:  5,
		},
		{
			name:  "flag between query words keeps word order",
			args:  []string{"machine", "-top-k", "3", "learning"},
			words: []string{"machine", "learning"},
			topK:  3,
		},
		{
			name:  "several flags interleaved",
			args:  []string{"-hybrid=false", "trip", "-top-k", "2", "to", "kyoto"},
			words: []string{"trip", "to", "kyoto"},
			topK:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("query", flag.ContinueOnError)
			topK := fs.Int("top-k", 5, "")
			fs.Bool("hybrid", true, "")
			words, err := parseInterspersed(fs, tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(words, tt.words) {
				t.Errorf("parseInterspersed() words = %v, want %v", words, tt.words)
			}
			if *topK != tt.topK {
				t.Errorf("top-k = %d, want %d", *topK, tt.topK)
			}
		})
	}
}

func TestParseInterspersed_unknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Int("top-k", 5, "")
	if _, err := parseInterspersed(fs, []string{"machine", "-nope", "learning"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

type closeTrackingIndex struct {
	*vector.MemoryIndex
	closed bool
}

func (c *closeTrackingIndex) Close() error {
	c.closed = true
	return c.MemoryIndex.Close()
}

func TestWithEngine_closesBeforeReturning(t *testing.T) {
	mem, err := vector.NewMemoryIndex(8)
	if err != nil {
		t.Fatal(err)
	}
	idx := &closeTrackingIndex{MemoryIndex: mem}
	boom := errors.New("boom")

	err = withEngine(config.Default(), zap.NewNop(), func(engine *search.Engine) error {
		if _, err := engine.Count(context.Background()); err != nil {
			return err
		}
		if idx.closed {
			t.Error("index closed while the engine was in use")
		}
		return boom
	},
		search.WithEmbedder(embedding.NewMockEmbedder(8)),
		search.WithIndexFactory(func(context.Context, string, string) (vector.Index, error) {
			return idx, nil
		}),
	)
	if !errors.Is(err, boom) {
		t.Errorf("withEngine() error = %v, want %v", err, boom)
	}
	if !idx.closed {
		t.Error("index should be closed when withEngine returns an error")
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"notes"}, "notes"},
		{"multiple words", []string{"machine", "learning"}, "machine learning"},
		{"single quoted phrase", []string{"machine learning"}, "machine learning"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestNoteQueryFromFlags(t *testing.T) {
	newFlags := func() (*flag.FlagSet, *int, *bool, *float64) {
		fs := flag.NewFlagSet("query", flag.ContinueOnError)
		topK := fs.Int("top-k", 5, "")
		hybrid := fs.Bool("hybrid", true, "")
		weight := fs.Float64("vector-weight", 0.7, "")
		return fs, topK, hybrid, weight
	}

	fs, topK, hybrid, weight := newFlags()
	if err := fs.Parse([]string{"q"}); err != nil {
		t.Fatal(err)
	}
	q := noteQueryFromFlags(fs, "q", *topK, *hybrid, *weight)
	if q.TopK != 0 || q.Hybrid != nil || q.VectorWeight != nil {
		t.Errorf("unset flags should leave fields unset: %+v", q)
	}

	fs, topK, hybrid, weight = newFlags()
	if err := fs.Parse([]string{"-top-k", "9", "-hybrid=false", "-vector-weight", "0.25", "q"}); err != nil {
		t.Fatal(err)
	}
	q = noteQueryFromFlags(fs, "q", *topK, *hybrid, *weight)
	if q.TopK != 9 {
		t.Errorf("TopK = %d, want 9", q.TopK)
	}
	if q.Hybrid == nil || *q.Hybrid {
		t.Errorf("Hybrid = %v, want false", q.Hybrid)
	}
	if q.VectorWeight == nil || *q.VectorWeight != 0.25 {
		t.Errorf("VectorWeight = %v, want 0.25", q.VectorWeight)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
storage:
  location: "./store"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
	if filepath.Base(cfg.Storage.Location) != "store" || !filepath.IsAbs(cfg.Storage.Location) {
		t.Errorf("location should be expanded relative to config dir, got %s", cfg.Storage.Location)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
retrieval:
  top_k: 8
  hybrid: false
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if d := cfg.RankingDefaults(); d.TopK != 8 || d.Hybrid {
		t.Errorf("unexpected ranking defaults: %+v", d)
	}
}

func TestLoadConfig_missingExplicitPathFails(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadConfig_appliesEnv(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("storage:\n  collection: notes\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvCollection, "journal")
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Collection != "journal" {
		t.Errorf("collection = %q, want env override", cfg.Storage.Collection)
	}
}
