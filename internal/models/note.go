// Package models defines core data structures for note chunks, ranking options, and query results.
package models

// Metadata keys carried through from the vector index. Values are opaque strings.
const (
	MetaFilepath  = "filepath"
	MetaFilename  = "filename"
	MetaDate      = "date"
	MetaChunkID   = "chunk_id"
	MetaChunkType = "chunk_type"
)

// Candidate is a note chunk retrieved from the vector index for one query.
// BM25Score and HybridScore are nil until hybrid fusion has run.
type Candidate struct {
	Content     string            `json:"content"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	VectorScore float64           `json:"vector_score"`
	BM25Score   *float64          `json:"bm25_score,omitempty"`
	HybridScore *float64          `json:"hybrid_score,omitempty"`
}

// Meta returns the metadata value for key, or "" when absent.
func (c *Candidate) Meta(key string) string {
	if c.Metadata == nil {
		return ""
	}
	return c.Metadata[key]
}

// Clone returns a shallow copy of c. Metadata is shared; score pointers are copied by value.
func (c *Candidate) Clone() *Candidate {
	out := &Candidate{
		Content:     c.Content,
		Metadata:    c.Metadata,
		VectorScore: c.VectorScore,
	}
	if c.BM25Score != nil {
		v := *c.BM25Score
		out.BM25Score = &v
	}
	if c.HybridScore != nil {
		v := *c.HybridScore
		out.HybridScore = &v
	}
	return out
}

// Record flattens the candidate into the result record returned to callers.
func (c *Candidate) Record() NoteResult {
	r := NoteResult{
		Content:     c.Content,
		Filepath:    c.Meta(MetaFilepath),
		Filename:    c.Meta(MetaFilename),
		Date:        c.Meta(MetaDate),
		ChunkID:     c.Meta(MetaChunkID),
		ChunkType:   c.Meta(MetaChunkType),
		VectorScore: c.VectorScore,
	}
	if c.BM25Score != nil {
		v := *c.BM25Score
		r.BM25Score = &v
	}
	if c.HybridScore != nil {
		v := *c.HybridScore
		r.HybridScore = &v
	}
	return r
}

// Records flattens a ranked candidate list, preserving order.
func Records(candidates []*Candidate) []NoteResult {
	out := make([]NoteResult, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Record())
	}
	return out
}
