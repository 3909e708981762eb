package similarity

import "math"

// ToPercentage linearly rescales a similarity in [-1, 1] to [0, 100].
// It is not a probability.
func ToPercentage(sim float64) float64 {
	return 100 - (1-sim)/2*100
}

// RoundPercentage rounds a percentage to two decimals for display.
func RoundPercentage(pct float64) float64 {
	return math.Round(pct*100) / 100
}

// ByName returns the similarity function registered under name.
func ByName(name string) (SimilarityFunc, bool) {
	switch name {
	case "", "cosine":
		return CosineSimilarity, true
	case "pearson":
		return PearsonCorrelationSimilarity, true
	default:
		return nil, false
	}
}
