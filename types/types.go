package types

import (
	"context"
	"time"
)

// PositionPad marks a record with no recorded position. It is never a real position.
const PositionPad = "position_pad"

// PlayerRecord is one row of raw match participation data.
// Several records share a MatchID (one per participating player) and a
// PlayerName (one per appearance).
type PlayerRecord struct {
	MatchID         string `json:"match_id"`
	PlayerName      string `json:"player_name"`
	TeamName        string `json:"team_name"`
	PositionName    string `json:"position_name"`
	CompetitionName string `json:"competition_name"`
	SeasonName      string `json:"season_name"`
}

// Player holds the aggregates derived for one distinct player name.
// Clubs, Positions and Competitions keep the order of first appearance.
type Player struct {
	Label        int      `json:"label"`
	Name         string   `json:"name"`
	Clubs        []string `json:"clubs"`
	Positions    []string `json:"positions"`
	Competitions []string `json:"competitions"`

	// MatchCount is the raw record count for the player. It is not
	// deduplicated by match_id, so it can differ from the counts in stats.
	MatchCount int `json:"match_count"`
}

// ScoredLabel is one entry of a similarity ranking.
type ScoredLabel struct {
	Label int `json:"label"`
	// Similarity is the raw metric value in [-1, 1].
	Similarity float64 `json:"similarity"`
	// Score is Similarity rescaled to a percentage (1 -> 100, -1 -> 0).
	Score float64 `json:"score"`
}

// PlayerResult carries everything needed to render a retrieved player.
type PlayerResult struct {
	Name       string   `json:"name"`
	Clubs      []string `json:"clubs"`
	Positions  []string `json:"positions"`
	MatchCount int      `json:"match_count"`
	Similarity float64  `json:"similarity_percentage"`
}

// PlayerProfile is the display view of the queried player.
type PlayerProfile struct {
	Name         string   `json:"name"`
	Clubs        []string `json:"clubs"`
	Positions    []string `json:"positions"`
	Competitions []string `json:"competitions"`
	MatchCount   int      `json:"match_count"`
}

// FilterConfig selects which ranked candidates survive.
// An empty AllowedCompetitions applies no competition restriction.
type FilterConfig struct {
	ExcludedPositions   []string `json:"excluded_positions"`
	MinMatches          int      `json:"min_matches" validate:"gte=0"`
	AllowedCompetitions []string `json:"allowed_competitions"`
	ResultCount         int      `json:"result_count" validate:"gte=0"`
}

// CacheBackend defines the interface for result cache storage backends.
// This allows for pluggable storage systems including in-memory and Redis.
type CacheBackend[K comparable, V any] interface {
	// Set stores a value in the cache
	Set(ctx context.Context, key K, value V) error

	// Get retrieves a value by key
	Get(ctx context.Context, key K) (V, bool, error)

	// Delete removes an entry by key
	Delete(ctx context.Context, key K) error

	// Contains checks if a key exists without retrieving the value
	Contains(ctx context.Context, key K) (bool, error)

	// Flush clears all entries from the cache
	Flush(ctx context.Context) error

	// Len returns the number of entries in the cache
	Len(ctx context.Context) (int, error)

	// Keys returns all keys in the cache
	Keys(ctx context.Context) ([]K, error)

	// Close closes the backend and releases resources
	Close() error
}

// BackendConfig provides configuration options for backends
type BackendConfig struct {
	// For in-memory caches
	Capacity int
	TTL      time.Duration

	// For Redis
	ConnectionString string
	Username         string
	Password         string
	Database         int

	// Additional options
	Options map[string]any
}

// BackendType represents the type of cache backend
type BackendType string

const (
	BackendLRU   BackendType = "lru"
	BackendFIFO  BackendType = "fifo"
	BackendLFU   BackendType = "lfu"
	BackendRedis BackendType = "redis"
	BackendNone  BackendType = "none"
)
