// Package options provides functional options for configuring Retriever instances.
package options

import (
	"errors"
	"fmt"
	"time"

	"github.com/botirk38/playersim/backends"
	"github.com/botirk38/playersim/similarity"
	"github.com/botirk38/playersim/types"
	"github.com/rs/zerolog"
)

// ResultCache is the cache shape used by a Retriever: canonical request
// key to filtered results.
type ResultCache = types.CacheBackend[string, []types.PlayerResult]

// Option represents a configuration option for a Retriever
type Option func(*Config) error

// Config holds the configuration for building a Retriever
type Config struct {
	// Cache is optional; nil disables result caching.
	Cache      ResultCache
	Comparator similarity.SimilarityFunc
	Logger     zerolog.Logger
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Comparator: similarity.CosineSimilarity,
		Logger:     zerolog.Nop(),
	}
}

// Apply applies all the given options to the config
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Comparator == nil {
		return errors.New("comparator is required - use WithSimilarityComparator or WithMetric")
	}
	return nil
}

// WithBackend sets up a result cache of the given backend type.
func WithBackend(backendType types.BackendType, config types.BackendConfig) Option {
	return func(cfg *Config) error {
		factory := &backends.BackendFactory[string, []types.PlayerResult]{}
		cache, err := factory.NewBackend(backendType, config)
		if err != nil {
			return fmt.Errorf("failed to create %s cache: %w", backendType, err)
		}
		cfg.Cache = cache
		return nil
	}
}

// WithLRUCache sets up an LRU in-memory result cache. A positive ttl
// expires entries.
func WithLRUCache(capacity int, ttl time.Duration) Option {
	return WithBackend(types.BackendLRU, types.BackendConfig{Capacity: capacity, TTL: ttl})
}

// WithFIFOCache sets up a FIFO in-memory result cache
func WithFIFOCache(capacity int) Option {
	return WithBackend(types.BackendFIFO, types.BackendConfig{Capacity: capacity})
}

// WithLFUCache sets up an LFU in-memory result cache
func WithLFUCache(capacity int) Option {
	return WithBackend(types.BackendLFU, types.BackendConfig{Capacity: capacity})
}

// WithRedisCache sets up a Redis result cache. addr may be host:port or a
// redis:// URL.
func WithRedisCache(addr, prefix string, ttl time.Duration) Option {
	return WithBackend(types.BackendRedis, types.BackendConfig{
		ConnectionString: addr,
		TTL:              ttl,
		Options:          map[string]any{"prefix": prefix},
	})
}

// WithCustomCache allows using a pre-configured cache backend
func WithCustomCache(cache ResultCache) Option {
	return func(cfg *Config) error {
		if cache == nil {
			return errors.New("cache cannot be nil")
		}
		cfg.Cache = cache
		return nil
	}
}

// WithSimilarityComparator sets a custom similarity function
func WithSimilarityComparator(comparator similarity.SimilarityFunc) Option {
	return func(cfg *Config) error {
		if comparator == nil {
			return errors.New("comparator cannot be nil")
		}
		cfg.Comparator = comparator
		return nil
	}
}

// WithMetric selects a registered similarity metric by name
func WithMetric(name string) Option {
	return func(cfg *Config) error {
		comparator, ok := similarity.ByName(name)
		if !ok {
			return fmt.Errorf("unknown similarity metric %q", name)
		}
		cfg.Comparator = comparator
		return nil
	}
}

// WithLogger sets the logger used for cache and retrieval events
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *Config) error {
		cfg.Logger = logger
		return nil
	}
}
