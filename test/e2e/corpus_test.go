package e2e

import (
	"context"
	"testing"

	"github.com/hyperjump/notesearch/internal/embedding"
	"github.com/hyperjump/notesearch/internal/keyword"
	"github.com/hyperjump/notesearch/internal/models"
)

func TestBuildCorpus_TwoChunksPerNote(t *testing.T) {
	c := BuildCorpus()
	if len(c.Chunks) != 2*len(topics) {
		t.Errorf("got %d chunks, want %d", len(c.Chunks), 2*len(topics))
	}
	if len(c.TestCases) != len(topics) {
		t.Errorf("got %d test cases, want %d", len(c.TestCases), len(topics))
	}
	seen := make(map[string]bool)
	for _, ch := range c.Chunks {
		if seen[ch.ID] {
			t.Errorf("duplicate chunk id %s", ch.ID)
		}
		seen[ch.ID] = true
	}
}

func TestBuildCorpus_ExpectedChunkContainsQueryTokens(t *testing.T) {
	c := BuildCorpus()
	byID := make(map[string]NoteChunk)
	for _, ch := range c.Chunks {
		byID[ch.ID] = ch
	}
	for _, tc := range c.TestCases {
		ch, ok := byID[tc.ExpectedChunkID]
		if !ok {
			t.Errorf("test case %q references unknown chunk %s", tc.Query, tc.ExpectedChunkID)
			continue
		}
		have := make(map[string]bool)
		for _, tok := range keyword.Tokenize(ch.Content) {
			have[tok] = true
		}
		for _, tok := range keyword.Tokenize(tc.Query) {
			if !have[tok] {
				t.Errorf("chunk %s does not contain query token %q", ch.ID, tok)
			}
		}
	}
}

func TestCorpus_Records(t *testing.T) {
	c := BuildCorpus()
	records, err := c.Records(context.Background(), embedding.NewMockEmbedder(16))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != len(c.Chunks) {
		t.Fatalf("got %d records, want %d", len(records), len(c.Chunks))
	}
	r := records[0]
	if r.Metadata[models.MetaChunkID] != r.ID || r.Metadata[models.MetaFilename] != "sourdough.md" {
		t.Errorf("unexpected metadata: %+v", r.Metadata)
	}
	if len(r.Embedding) != 16 {
		t.Errorf("embedding dims = %d, want 16", len(r.Embedding))
	}
}
