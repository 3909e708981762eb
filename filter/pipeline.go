// Package filter walks a similarity ranking and keeps the candidates that
// pass position, competition and match-count filters.
package filter

import (
	"slices"

	"github.com/botirk38/playersim/similarity"
	"github.com/botirk38/playersim/types"
)

// PlayerLookup resolves a ranking label to its indexed player.
type PlayerLookup interface {
	ByLabel(label int) (types.Player, bool)
}

// Criteria is a FilterConfig compiled into set lookups.
type Criteria struct {
	excludedPositions   map[string]struct{}
	allowedCompetitions map[string]struct{}
	minMatches          int
	resultCount         int
}

// Compile prepares cfg for repeated use.
func Compile(cfg types.FilterConfig) Criteria {
	return Criteria{
		excludedPositions:   toSet(cfg.ExcludedPositions),
		allowedCompetitions: toSet(cfg.AllowedCompetitions),
		minMatches:          cfg.MinMatches,
		resultCount:         cfg.ResultCount,
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Accept reports whether p survives every filter.
func (c Criteria) Accept(p types.Player) bool {
	// One excluded position drops the player entirely.
	for _, pos := range p.Positions {
		if _, ok := c.excludedPositions[pos]; ok {
			return false
		}
	}

	if len(c.allowedCompetitions) > 0 {
		overlap := false
		for _, comp := range p.Competitions {
			if _, ok := c.allowedCompetitions[comp]; ok {
				overlap = true
				break
			}
		}
		if !overlap {
			return false
		}
	}

	return p.MatchCount >= c.minMatches
}

// Apply walks ranking in order, skipping queryLabel, and returns at most
// cfg.ResultCount survivors in ranking order. Fewer survivors than requested
// is not an error. A ranked label unknown to players yields a
// *types.DataIntegrityError. Results never share memory with players.
func Apply(ranking []types.ScoredLabel, players PlayerLookup, queryLabel int, cfg types.FilterConfig) ([]types.PlayerResult, error) {
	criteria := Compile(cfg)
	results := make([]types.PlayerResult, 0, max(criteria.resultCount, 0))

	for _, entry := range ranking {
		if len(results) >= criteria.resultCount {
			break
		}
		if entry.Label == queryLabel {
			continue
		}

		p, ok := players.ByLabel(entry.Label)
		if !ok {
			return nil, &types.DataIntegrityError{Label: entry.Label, Reason: "ranked label missing from player index"}
		}
		if !criteria.Accept(p) {
			continue
		}

		results = append(results, types.PlayerResult{
			Name:       p.Name,
			Clubs:      slices.Clone(p.Clubs),
			Positions:  slices.Clone(p.Positions),
			MatchCount: p.MatchCount,
			Similarity: similarity.RoundPercentage(entry.Score),
		})
	}

	return results, nil
}
