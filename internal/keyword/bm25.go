// Package keyword provides tokenization and BM25-style term-frequency scoring for re-ranking.
package keyword

// BM25Params are the saturation (K1) and length-normalization (B) constants.
type BM25Params struct {
	K1 float64
	B  float64
}

const (
	// DefaultK1 is the term-frequency saturation constant.
	DefaultK1 = 1.5
	// DefaultB is the document-length normalization constant.
	DefaultB = 0.75
)

// DefaultBM25Params returns k1 = 1.5, b = 0.75.
func DefaultBM25Params() BM25Params {
	return BM25Params{K1: DefaultK1, B: DefaultB}
}

// TermFrequencies counts occurrences of each token.
func TermFrequencies(tokens []string) map[string]int {
	freqs := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freqs[t]++
	}
	return freqs
}

// Score computes the term-frequency relevance of docTokens for queryTokens with the default
// constants. See ScoreWithParams.
func Score(queryTokens, docTokens []string, avgDocLen float64) float64 {
	return ScoreWithParams(queryTokens, docTokens, avgDocLen, DefaultBM25Params())
}

// ScoreWithParams sums freq*(k1+1) / (freq + k1*(1-b+b*docLen/avgDocLen)) over every query
// token occurrence found in the document. There is no IDF factor. Repeated query tokens contribute
// once per occurrence.
// A non-positive avgDocLen is treated as a length ratio of 1.
func ScoreWithParams(queryTokens, docTokens []string, avgDocLen float64, p BM25Params) float64 {
	if len(queryTokens) == 0 || len(docTokens) == 0 {
		return 0
	}
	docLen := float64(len(docTokens))
	lengthRatio := 1.0
	if avgDocLen > 0 {
		lengthRatio = docLen / avgDocLen
	}
	norm := p.K1 * (1 - p.B + p.B*lengthRatio)

	freqs := TermFrequencies(docTokens)
	var score float64
	for _, token := range queryTokens {
		freq, ok := freqs[token]
		if !ok {
			continue
		}
		f := float64(freq)
		score += f * (p.K1 + 1) / (f + norm)
	}
	return score
}

// AverageLength returns the mean token count over docs, or 0 for no docs.
func AverageLength(docs [][]string) float64 {
	if len(docs) == 0 {
		return 0
	}
	total := 0
	for _, d := range docs {
		total += len(d)
	}
	return float64(total) / float64(len(docs))
}
