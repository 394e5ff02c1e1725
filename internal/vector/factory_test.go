package vector

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestOpen_Memory(t *testing.T) {
	idx, err := Open(context.Background(), OpenOptions{IndexType: "memory", Dimensions: 3})
	if err != nil {
		t.Fatalf("Open(memory): %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.Add(ctx, []Record{{ID: "a", Document: "x", Embedding: []float32{1, 0, 0}}}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if n, _ := idx.Count(ctx); n != 1 {
		t.Errorf("Count=%d, want 1", n)
	}
}

func TestOpen_DefaultIsSQLite(t *testing.T) {
	_, err := Open(context.Background(), OpenOptions{Location: filepath.Join(t.TempDir(), "missing"), Collection: "notes"})
	if !errors.Is(err, ErrStoreNotFound) {
		t.Errorf("err = %v, want ErrStoreNotFound", err)
	}
}

func TestCreateThenOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	opts := OpenOptions{IndexType: "sqlite", Location: t.TempDir(), Collection: "notes", Dimensions: 2}
	created, err := Create(ctx, opts)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_ = created.Close()

	opened, err := Open(ctx, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer opened.Close()
	if _, ok := opened.(*SQLiteIndex); !ok {
		t.Errorf("got %T, want *SQLiteIndex", opened)
	}
}

func TestOpen_Unknown(t *testing.T) {
	if _, err := Open(context.Background(), OpenOptions{IndexType: "faiss"}); err == nil {
		t.Error("expected error for unknown index type")
	}
	if _, err := Create(context.Background(), OpenOptions{IndexType: "faiss"}); err == nil {
		t.Error("expected error for unknown index type")
	}
}

func TestOpen_MemoryInvalidDimension(t *testing.T) {
	if _, err := Open(context.Background(), OpenOptions{IndexType: "memory"}); err == nil {
		t.Error("expected error for zero dimension")
	}
}

func TestOpen_PGVectorEmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), OpenOptions{IndexType: "pgvector", Collection: "notes"})
	if !errors.Is(err, ErrStoreNotFound) {
		t.Errorf("err = %v, want ErrStoreNotFound", err)
	}
}
