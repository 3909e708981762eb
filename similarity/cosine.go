package similarity

import "math"

// CosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 when either vector has zero norm, or when lengths differ.
// Accumulation runs in index order so results are reproducible and
// CosineSimilarity(a, b) == CosineSimilarity(b, a) bit for bit.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denom := math.Sqrt(normA * normB)
	if denom == 0 {
		return 0
	}

	// Clamp rounding drift so identical rows never exceed 1.
	return math.Max(-1, math.Min(1, dot/denom))
}
