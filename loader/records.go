// Package loader reads the precomputed dataset artifacts: match records,
// the player label assignment and the embedding matrix.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/botirk38/playersim/types"
)

var requiredColumns = []string{
	"match_id",
	"player_name",
	"team_name",
	"position_name",
	"competition_name",
	"season_name",
}

// LoadRecords reads match records from a CSV file with a header row.
func LoadRecords(path string) ([]types.PlayerRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records: %w", err)
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ReadRecords decodes CSV records. Columns are located by header name, so
// their order is free and extra columns are ignored.
func ReadRecords(r io.Reader) ([]types.PlayerRecord, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("records file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	cols := make([]int, len(requiredColumns))
	for i, name := range requiredColumns {
		c, ok := pos[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		cols[i] = c
	}

	var records []types.PlayerRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(records)+2, err)
		}
		records = append(records, types.PlayerRecord{
			MatchID:         row[cols[0]],
			PlayerName:      row[cols[1]],
			TeamName:        row[cols[2]],
			PositionName:    row[cols[3]],
			CompetitionName: row[cols[4]],
			SeasonName:      row[cols[5]],
		})
	}
	return records, nil
}
