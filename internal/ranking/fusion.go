package ranking

// NormalizeScores divides every score by the maximum score so the largest becomes 1.
// When the maximum is not positive the divisor is 1, leaving all-zero pools at zero.
// The scale is local to the given slice: normalized values are not comparable across calls.
func NormalizeScores(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore <= 0 {
		maxScore = 1
	}
	for i, s := range scores {
		out[i] = s / maxScore
	}
	return out
}

// Fuse linearly combines a vector similarity and a normalized lexical score.
// The lexical weight is 1 - vectorWeight.
func Fuse(vectorScore, lexicalScore, vectorWeight float64) float64 {
	return vectorWeight*vectorScore + (1-vectorWeight)*lexicalScore
}
