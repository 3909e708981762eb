// Package index builds the read-only Player Index from raw match records.
//
// The index maps each distinct player name to its integer label and to the
// aggregates derived from its records: clubs, positions (without the
// position_pad sentinel), competitions and the raw record count.
package index

import (
	"fmt"
	"sort"

	"github.com/botirk38/playersim/types"
)

// Index is immutable after Build and safe for concurrent readers.
// Slices inside returned Players are shared and must not be modified.
type Index struct {
	players      []types.Player // position == label
	byName       map[string]int
	positions    []string
	competitions []string
}

// playerBuilder accumulates one player's aggregates in first-seen order.
type playerBuilder struct {
	clubs, positions, competitions orderedSet
	matches                        int
}

type orderedSet struct {
	seen   map[string]struct{}
	values []string
}

func (s *orderedSet) add(v string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.values = append(s.values, v)
}

func (s *orderedSet) slice() []string {
	if s.values == nil {
		return []string{}
	}
	return s.values
}

// Build constructs the index. labels must be a bijection between the
// player names found in records and the integers 0..len(labels)-1.
// Any disagreement between the two inputs yields a *types.DataIntegrityError.
func Build(records []types.PlayerRecord, labels map[string]int) (*Index, error) {
	n := len(labels)
	if n == 0 {
		return nil, &types.DataIntegrityError{Label: -1, Reason: "label assignment is empty"}
	}

	names := make([]string, n)
	assigned := make([]bool, n)
	for name, label := range labels {
		if label < 0 || label >= n {
			return nil, &types.DataIntegrityError{Name: name, Label: label, Reason: fmt.Sprintf("label outside [0, %d)", n)}
		}
		if assigned[label] {
			return nil, &types.DataIntegrityError{Name: name, Label: label, Reason: fmt.Sprintf("label already assigned to %q", names[label])}
		}
		assigned[label] = true
		names[label] = name
	}

	builders := make([]playerBuilder, n)
	allPositions := orderedSet{}
	allCompetitions := orderedSet{}

	for _, rec := range records {
		label, ok := labels[rec.PlayerName]
		if !ok {
			return nil, &types.DataIntegrityError{Name: rec.PlayerName, Label: -1, Reason: "no label assigned"}
		}

		b := &builders[label]
		b.matches++
		b.clubs.add(rec.TeamName)
		b.competitions.add(rec.CompetitionName)
		allCompetitions.add(rec.CompetitionName)
		if rec.PositionName != types.PositionPad {
			b.positions.add(rec.PositionName)
			allPositions.add(rec.PositionName)
		}
	}

	players := make([]types.Player, n)
	byName := make(map[string]int, n)
	for label, name := range names {
		b := &builders[label]
		if b.matches == 0 {
			return nil, &types.DataIntegrityError{Name: name, Label: label, Reason: "label assigned but no records found"}
		}
		players[label] = types.Player{
			Label:        label,
			Name:         name,
			Clubs:        b.clubs.slice(),
			Positions:    b.positions.slice(),
			Competitions: b.competitions.slice(),
			MatchCount:   b.matches,
		}
		byName[name] = label
	}

	return &Index{
		players:      players,
		byName:       byName,
		positions:    sortedCopy(allPositions.values),
		competitions: sortedCopy(allCompetitions.values),
	}, nil
}

func sortedCopy(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}

// Len returns the number of players.
func (idx *Index) Len() int { return len(idx.players) }

// ByLabel returns the player addressed by label. Its slices are shared
// with the index and must not be modified.
func (idx *Index) ByLabel(label int) (types.Player, bool) {
	if label < 0 || label >= len(idx.players) {
		return types.Player{}, false
	}
	return idx.players[label], true
}

// ByName returns the player with the given name.
func (idx *Index) ByName(name string) (types.Player, bool) {
	label, ok := idx.byName[name]
	if !ok {
		return types.Player{}, false
	}
	return idx.players[label], true
}

// Label resolves a player name to its label.
func (idx *Index) Label(name string) (int, bool) {
	label, ok := idx.byName[name]
	return label, ok
}

// Names returns all player names in label order.
func (idx *Index) Names() []string {
	names := make([]string, len(idx.players))
	for i, p := range idx.players {
		names[i] = p.Name
	}
	return names
}

// Positions returns every recorded position, sorted, without position_pad.
func (idx *Index) Positions() []string {
	return sortedCopy(idx.positions)
}

// Competitions returns every competition, sorted.
func (idx *Index) Competitions() []string {
	return sortedCopy(idx.competitions)
}
