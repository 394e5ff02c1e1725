package models

// NoteResult is the flattened result record for one note chunk.
// BM25Score and HybridScore are present only when hybrid fusion was enabled.
type NoteResult struct {
	Content     string   `json:"content"`
	Filepath    string   `json:"filepath"`
	Filename    string   `json:"filename"`
	Date        string   `json:"date"`
	ChunkID     string   `json:"chunk_id"`
	ChunkType   string   `json:"chunk_type"`
	VectorScore float64  `json:"vector_score"`
	BM25Score   *float64 `json:"bm25_score,omitempty"`
	HybridScore *float64 `json:"hybrid_score,omitempty"`
}

// Score returns the score the result was ordered by: the fused score when present,
// otherwise the vector score.
func (r NoteResult) Score() float64 {
	if r.HybridScore != nil {
		return *r.HybridScore
	}
	return r.VectorScore
}

// QueryResponse is the response for a note query.
type QueryResponse struct {
	Results   []NoteResult `json:"results"`
	Total     int          `json:"total"`
	QueryTime int64        `json:"query_time_ms"`
	Query     string       `json:"query"`
	Hybrid    bool         `json:"hybrid"`
}
