// Package ranking ranks every embedding row against a query row.
package ranking

import (
	"errors"
	"math"
	"sort"

	"github.com/botirk38/playersim/embeddings"
	"github.com/botirk38/playersim/similarity"
	"github.com/botirk38/playersim/types"
)

// Engine is a pure ranking primitive: it compares the query row against
// every row by brute force, including the query itself.
type Engine struct {
	store      *embeddings.Store
	comparator similarity.SimilarityFunc
}

// NewEngine creates an engine over store using comparator.
func NewEngine(store *embeddings.Store, comparator similarity.SimilarityFunc) (*Engine, error) {
	if store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if comparator == nil {
		return nil, errors.New("comparator cannot be nil")
	}
	return &Engine{store: store, comparator: comparator}, nil
}

// Rank returns every label ordered by score descending, ties broken by
// ascending label. A NaN similarity ranks as -1. It fails with
// *types.UnknownPlayerError when queryLabel has no row.
func (e *Engine) Rank(queryLabel int) ([]types.ScoredLabel, error) {
	query, ok := e.store.Row(queryLabel)
	if !ok {
		return nil, &types.UnknownPlayerError{Label: queryLabel}
	}

	ranking := make([]types.ScoredLabel, e.store.Rows())
	for label := range ranking {
		row, _ := e.store.Row(label)
		sim := e.comparator(query, row)
		if math.IsNaN(sim) {
			sim = -1
		}
		ranking[label] = types.ScoredLabel{
			Label:      label,
			Similarity: sim,
			Score:      similarity.ToPercentage(sim),
		}
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Score != ranking[j].Score {
			return ranking[i].Score > ranking[j].Score
		}
		return ranking[i].Label < ranking[j].Label
	})

	return ranking, nil
}
