package inmemory

import (
	"context"

	"github.com/botirk38/playersim/types"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// lruStore is the method set shared by lru.Cache and expirable.LRU.
type lruStore[K comparable, V any] interface {
	Add(key K, value V) bool
	Get(key K) (V, bool)
	Contains(key K) bool
	Remove(key K) bool
	Purge()
	Len() int
	Keys() []K
}

// LRUBackend implements CacheBackend using LRU eviction policy.
// Entries expire after config.TTL when it is positive.
type LRUBackend[K comparable, V any] struct {
	cache lruStore[K, V]
}

// NewLRUBackend creates a new LRU backend
func NewLRUBackend[K comparable, V any](config types.BackendConfig) (*LRUBackend[K, V], error) {
	if config.TTL > 0 {
		return &LRUBackend[K, V]{
			cache: expirable.NewLRU[K, V](config.Capacity, nil, config.TTL),
		}, nil
	}

	lruCache, err := lru.New[K, V](config.Capacity)
	if err != nil {
		return nil, err
	}
	return &LRUBackend[K, V]{cache: lruCache}, nil
}

// Set stores a value in the LRU cache
func (b *LRUBackend[K, V]) Set(ctx context.Context, key K, value V) error {
	b.cache.Add(key, value)
	return nil
}

// Get retrieves a value from the LRU cache
func (b *LRUBackend[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	value, ok := b.cache.Get(key)
	return value, ok, nil
}

// Delete removes an entry from the LRU cache
func (b *LRUBackend[K, V]) Delete(ctx context.Context, key K) error {
	b.cache.Remove(key)
	return nil
}

// Contains checks if a key exists in the LRU cache without updating recency
func (b *LRUBackend[K, V]) Contains(ctx context.Context, key K) (bool, error) {
	return b.cache.Contains(key), nil
}

// Flush clears all entries from the LRU cache
func (b *LRUBackend[K, V]) Flush(ctx context.Context) error {
	b.cache.Purge()
	return nil
}

// Len returns the number of entries in the LRU cache
func (b *LRUBackend[K, V]) Len(ctx context.Context) (int, error) {
	return b.cache.Len(), nil
}

// Keys returns all keys from oldest to newest
func (b *LRUBackend[K, V]) Keys(ctx context.Context) ([]K, error) {
	return b.cache.Keys(), nil
}

// Close closes the LRU backend (no-op for in-memory)
func (b *LRUBackend[K, V]) Close() error {
	return nil
}
