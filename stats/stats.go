// Package stats computes dataset statistics for the dashboard.
//
// Unlike types.Player.MatchCount, which counts raw records, every match
// total here is deduplicated by match_id.
package stats

import (
	"sort"

	"github.com/botirk38/playersim/types"
)

// Count is one bucket of a breakdown.
type Count struct {
	Name    string `json:"name"`
	Matches int    `json:"matches"`
}

// Global summarises the whole dataset.
type Global struct {
	UniqueMatches        int     `json:"unique_matches"`
	Teams                int     `json:"teams"`
	Players              int     `json:"players"`
	MatchesByCompetition []Count `json:"matches_by_competition"`
	MatchesBySeason      []Count `json:"matches_by_season"`
}

// Player summarises one player's appearances.
type Player struct {
	Name                 string  `json:"name"`
	UniqueMatches        int     `json:"unique_matches"`
	MatchesByTeam        []Count `json:"matches_by_team"`
	MatchesByCompetition []Count `json:"matches_by_competition"`
	MatchesBySeason      []Count `json:"matches_by_season"`
}

// Team summarises one team's matches.
type Team struct {
	Name                 string  `json:"name"`
	UniqueMatches        int     `json:"unique_matches"`
	MatchesByCompetition []Count `json:"matches_by_competition"`
	MatchesBySeason      []Count `json:"matches_by_season"`
	// AppearancesByPlayer counts raw records per player, not deduplicated.
	AppearancesByPlayer []Count `json:"appearances_by_player"`
}

// Compute returns global statistics over records.
func Compute(records []types.PlayerRecord) Global {
	unique := dedupByMatch(records)
	teams := make(map[string]struct{})
	players := make(map[string]struct{})
	for _, r := range records {
		teams[r.TeamName] = struct{}{}
		players[r.PlayerName] = struct{}{}
	}

	return Global{
		UniqueMatches:        len(unique),
		Teams:                len(teams),
		Players:              len(players),
		MatchesByCompetition: countBy(unique, func(r types.PlayerRecord) string { return r.CompetitionName }),
		MatchesBySeason:      countBy(unique, func(r types.PlayerRecord) string { return r.SeasonName }),
	}
}

// ForPlayer returns statistics for one player. It fails with
// *types.UnknownPlayerError when the player has no records.
func ForPlayer(records []types.PlayerRecord, name string) (Player, error) {
	own := selectRecords(records, func(r types.PlayerRecord) bool { return r.PlayerName == name })
	if len(own) == 0 {
		return Player{}, &types.UnknownPlayerError{Name: name, Label: -1}
	}

	unique := dedupByMatch(own)
	return Player{
		Name:                 name,
		UniqueMatches:        len(unique),
		MatchesByTeam:        countBy(unique, func(r types.PlayerRecord) string { return r.TeamName }),
		MatchesByCompetition: countBy(unique, func(r types.PlayerRecord) string { return r.CompetitionName }),
		MatchesBySeason:      countBy(unique, func(r types.PlayerRecord) string { return r.SeasonName }),
	}, nil
}

// ForTeam returns statistics for one team. The boolean is false when the
// team has no records.
func ForTeam(records []types.PlayerRecord, team string) (Team, bool) {
	own := selectRecords(records, func(r types.PlayerRecord) bool { return r.TeamName == team })
	if len(own) == 0 {
		return Team{}, false
	}

	unique := dedupByMatch(own)
	return Team{
		Name:                 team,
		UniqueMatches:        len(unique),
		MatchesByCompetition: countBy(unique, func(r types.PlayerRecord) string { return r.CompetitionName }),
		MatchesBySeason:      countBy(unique, func(r types.PlayerRecord) string { return r.SeasonName }),
		AppearancesByPlayer:  countBy(own, func(r types.PlayerRecord) string { return r.PlayerName }),
	}, true
}

func selectRecords(records []types.PlayerRecord, keep func(types.PlayerRecord) bool) []types.PlayerRecord {
	var out []types.PlayerRecord
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// dedupByMatch keeps the first record of every match_id.
func dedupByMatch(records []types.PlayerRecord) []types.PlayerRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]types.PlayerRecord, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.MatchID]; ok {
			continue
		}
		seen[r.MatchID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// countBy buckets records by key, sorted by count desc then name asc.
func countBy(records []types.PlayerRecord, key func(types.PlayerRecord) string) []Count {
	counts := make(map[string]int)
	for _, r := range records {
		counts[key(r)]++
	}

	out := make([]Count, 0, len(counts))
	for name, n := range counts {
		out = append(out, Count{Name: name, Matches: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Matches != out[j].Matches {
			return out[i].Matches > out[j].Matches
		}
		return out[i].Name < out[j].Name
	})
	return out
}
