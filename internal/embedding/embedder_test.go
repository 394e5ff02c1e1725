package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hyperjump/notesearch/internal/config"
	"github.com/hyperjump/notesearch/pkg/utils"
)

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(64)
	ctx := context.Background()
	a, err := e.Embed(ctx, "machine learning notes")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(ctx, "machine learning notes")
	if len(a) != 64 {
		t.Fatalf("len = %d, want 64", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding differs at %d", i)
		}
	}
	if n := norm(a); math.Abs(n-1) > 1e-5 {
		t.Errorf("norm = %v, want 1", n)
	}
}

func TestMockEmbedder_SharedWordsAreCloser(t *testing.T) {
	e := NewMockEmbedder(256)
	ctx := context.Background()
	q, _ := e.Embed(ctx, "machine learning")
	related, _ := e.Embed(ctx, "notes about machine learning models")
	unrelated, _ := e.Embed(ctx, "grocery list apples bread")
	if utils.CosineSimilarity(q, related) <= utils.CosineSimilarity(q, unrelated) {
		t.Errorf("related %v should exceed unrelated %v",
			utils.CosineSimilarity(q, related), utils.CosineSimilarity(q, unrelated))
	}
}

func TestMockEmbedder_EmptyText(t *testing.T) {
	e := NewMockEmbedder(16)
	v, err := e.Embed(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if n := norm(v); math.Abs(n-1) > 1e-5 {
		t.Errorf("norm = %v, want 1", n)
	}
}

func TestMockEmbedder_DefaultDimensions(t *testing.T) {
	if d := NewMockEmbedder(0).Dimensions(); d != 384 {
		t.Errorf("Dimensions() = %d, want 384", d)
	}
}

func TestMockEmbedder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMockEmbedder(8).Embed(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestMockEmbedder_EmbedBatch(t *testing.T) {
	e := NewMockEmbedder(32)
	out, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	single, _ := e.Embed(context.Background(), "b")
	for i := range single {
		if single[i] != out[1][i] {
			t.Fatal("batch result differs from single embed")
		}
	}
}

type countingEmbedder struct {
	*MockEmbedder
	calls atomic.Int32
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	return c.MockEmbedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, c.Embed)
}

func TestCachedEmbedder(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(16)}
	c := NewCachedEmbedder(inner, 2)
	ctx := context.Background()

	a1, err := c.Embed(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	a1[0] = 42 // callers may mutate their copy
	a2, _ := c.Embed(ctx, "a")
	if a2[0] == 42 {
		t.Error("cached vector was mutated through a returned slice")
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("inner calls = %d, want 1", got)
	}

	_, _ = c.Embed(ctx, "b")
	_, _ = c.Embed(ctx, "c") // evicts a
	_, _ = c.Embed(ctx, "a")
	if got := inner.calls.Load(); got != 4 {
		t.Errorf("inner calls = %d, want 4", got)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCachedEmbedder_EmbedBatchOnlyMisses(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(16)}
	c := NewCachedEmbedder(inner, 10)
	ctx := context.Background()
	_, _ = c.Embed(ctx, "a")

	out, err := c.EmbedBatch(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 || out[0] == nil || out[1] == nil || out[2] == nil {
		t.Fatalf("unexpected batch output: %v", out)
	}
	if got := inner.calls.Load(); got != 3 {
		t.Errorf("inner calls = %d, want 3", got)
	}
	if c.Dimensions() != 16 {
		t.Errorf("Dimensions() = %d", c.Dimensions())
	}
}

func TestNewEmbedder(t *testing.T) {
	t.Run("mock", func(t *testing.T) {
		e, err := NewEmbedder(config.EmbeddingConfig{Provider: ProviderMock, Dimensions: 32}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := e.(*MockEmbedder); !ok {
			t.Errorf("got %T, want *MockEmbedder", e)
		}
	})
	t.Run("cached", func(t *testing.T) {
		e, err := NewEmbedder(config.EmbeddingConfig{Provider: ProviderMock, Dimensions: 32, CacheSize: 10}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := e.(*CachedEmbedder); !ok {
			t.Errorf("got %T, want *CachedEmbedder", e)
		}
	})
	t.Run("onnx falls back to mock", func(t *testing.T) {
		e, err := NewEmbedder(config.EmbeddingConfig{
			Provider:   ProviderONNX,
			ModelPath:  "/nonexistent/model.onnx",
			Dimensions: 48,
		}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := e.(*MockEmbedder); !ok {
			t.Errorf("got %T, want *MockEmbedder", e)
		}
		if e.Dimensions() != 48 {
			t.Errorf("Dimensions() = %d, want 48", e.Dimensions())
		}
	})
	t.Run("unknown", func(t *testing.T) {
		_, err := NewEmbedder(config.EmbeddingConfig{Provider: "word2vec"}, nil)
		if !errors.Is(err, ErrUnknownProvider) {
			t.Errorf("err = %v, want ErrUnknownProvider", err)
		}
	})
}

func TestOpenAIEmbedder(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			http.NotFound(w, r)
			return
		}
		requests.Add(1)
		var body struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, len(body.Input))
		for i := range body.Input {
			data[i] = item{Object: "embedding", Embedding: []float32{3, 4, 0}, Index: i}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  body.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	defer srv.Close()

	e, err := NewOpenAIEmbedder(OpenAIConfig{Host: srv.URL, Model: "bge-m3", Dimensions: 3}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	v, err := e.Embed(context.Background(), "hello\nworld")
	if err != nil {
		t.Fatal(err)
	}
	if len(v) != 3 || math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("Embed() = %v, want normalized [0.6 0.8 0]", v)
	}
	if requests.Load() == 0 {
		t.Error("expected a request to the embeddings endpoint")
	}
}

func TestOpenAIEmbedder_DimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","embedding":[1,0],"index":0}],"model":"m"}`))
	}))
	defer srv.Close()

	e, err := NewOpenAIEmbedder(OpenAIConfig{Host: srv.URL, Model: "m", Dimensions: 3}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Embed(context.Background(), "x"); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestNewOpenAIEmbedder_RequiresModel(t *testing.T) {
	if _, err := NewOpenAIEmbedder(OpenAIConfig{Host: "http://localhost"}, nil); err == nil {
		t.Error("expected error without model")
	}
}
