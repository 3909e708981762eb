// Package similarity provides similarity metrics for comparing embedding vectors.
package similarity

// SimilarityFunc represents a function that computes similarity between two embedding vectors.
// It should return a value in [-1, 1] where higher values indicate greater similarity.
type SimilarityFunc func(a, b []float64) float64
