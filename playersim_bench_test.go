package playersim

import (
	"context"
	"strconv"
	"testing"

	"github.com/botirk38/playersim/embeddings"
	"github.com/botirk38/playersim/index"
	"github.com/botirk38/playersim/options"
	"github.com/botirk38/playersim/types"
)

const (
	benchPlayers = 5000
	benchDim     = 128
)

var benchPositions = []string{"Goalkeeper", "Center Back", "Center Midfield", "Left Wing", "Center Forward"}

// benchFixture builds a deterministic dataset of benchPlayers players.
func benchFixture(b *testing.B) (*index.Index, *embeddings.Store) {
	b.Helper()
	records := make([]types.PlayerRecord, 0, benchPlayers*2)
	labels := make(map[string]int, benchPlayers)
	rows := make([][]float64, benchPlayers)

	for i := 0; i < benchPlayers; i++ {
		name := "player" + strconv.Itoa(i)
		labels[name] = i
		for m := 0; m <= i%3; m++ {
			records = append(records, types.PlayerRecord{
				MatchID:         strconv.Itoa(i*3 + m),
				PlayerName:      name,
				TeamName:        "team" + strconv.Itoa(i%40),
				PositionName:    benchPositions[i%len(benchPositions)],
				CompetitionName: "comp" + strconv.Itoa(i%6),
				SeasonName:      "2020/2021",
			})
		}

		row := make([]float64, benchDim)
		for d := range row {
			row[d] = float64((i*31+d*17)%1000)/500.0 - 1
		}
		rows[i] = row
	}

	idx, err := index.Build(records, labels)
	if err != nil {
		b.Fatalf("Failed to build index: %v", err)
	}
	store, err := embeddings.NewStore(rows)
	if err != nil {
		b.Fatalf("Failed to build store: %v", err)
	}
	return idx, store
}

func BenchmarkRetrieve(b *testing.B) {
	idx, store := benchFixture(b)
	cfg := types.FilterConfig{ExcludedPositions: []string{"Goalkeeper"}, MinMatches: 1, ResultCount: 5}

	cases := []struct {
		name string
		opts []options.Option
	}{
		{"uncached", nil},
		{"lru", []options.Option{options.WithLRUCache(benchPlayers, 0)}},
		{"fifo", []options.Option{options.WithFIFOCache(benchPlayers)}},
		{"lfu", []options.Option{options.WithLFUCache(benchPlayers)}},
	}

	for _, tc := range cases {
		b.Run(tc.name, func(b *testing.B) {
			r, err := New(idx, store, tc.opts...)
			if err != nil {
				b.Fatalf("Failed to create retriever: %v", err)
			}
			defer r.Close()
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				// Cycle through 100 players so cached runs mostly hit.
				if _, err := r.RetrieveByLabel(ctx, i%100, cfg); err != nil {
					b.Fatalf("Retrieve failed: %v", err)
				}
			}
		})
	}
}

func BenchmarkRetrieveParallel(b *testing.B) {
	idx, store := benchFixture(b)
	cfg := types.FilterConfig{MinMatches: 2, ResultCount: 10}

	r, err := New(idx, store, options.WithLRUCache(1000, 0))
	if err != nil {
		b.Fatalf("Failed to create retriever: %v", err)
	}
	defer r.Close()

	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		i := 0
		for pb.Next() {
			if _, err := r.RetrieveByLabel(ctx, i%benchPlayers, cfg); err != nil {
				b.Errorf("Retrieve failed: %v", err)
				return
			}
			i++
		}
	})
}
