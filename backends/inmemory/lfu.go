package inmemory

import (
	"context"
	"sync"

	"github.com/botirk38/playersim/types"
)

// LFUEntry wraps a value with frequency tracking
type LFUEntry[V any] struct {
	Value     V
	Frequency int
	// seq breaks frequency ties in favour of evicting the oldest entry
	seq uint64
}

// LFUBackend implements CacheBackend using LFU (Least Frequently Used) eviction policy
type LFUBackend[K comparable, V any] struct {
	mu       *sync.RWMutex
	entries  map[K]*LFUEntry[V]
	capacity int
	nextSeq  uint64
}

// NewLFUBackend creates a new LFU backend
func NewLFUBackend[K comparable, V any](config types.BackendConfig) (*LFUBackend[K, V], error) {
	return &LFUBackend[K, V]{
		mu:       &sync.RWMutex{},
		entries:  make(map[K]*LFUEntry[V]),
		capacity: config.Capacity,
	}, nil
}

// Set stores a value in the LFU cache
func (b *LFUBackend[K, V]) Set(ctx context.Context, key K, value V) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If key already exists, update it and increment frequency
	if existing, exists := b.entries[key]; exists {
		existing.Value = value
		existing.Frequency++
		return nil
	}

	// If at capacity, evict the least frequently used entry
	if len(b.entries) >= b.capacity && b.capacity > 0 {
		b.evictLFU()
	}

	b.nextSeq++
	b.entries[key] = &LFUEntry[V]{
		Value:     value,
		Frequency: 1,
		seq:       b.nextSeq,
	}
	return nil
}

// evictLFU removes the least frequently used entry, oldest first on ties
func (b *LFUBackend[K, V]) evictLFU() {
	var (
		lfuKey K
		victim *LFUEntry[V]
	)
	for key, entry := range b.entries {
		if victim == nil || entry.Frequency < victim.Frequency ||
			(entry.Frequency == victim.Frequency && entry.seq < victim.seq) {
			lfuKey = key
			victim = entry
		}
	}
	if victim != nil {
		delete(b.entries, lfuKey)
	}
}

// Get retrieves a value from the LFU cache and increments its frequency
func (b *LFUBackend[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if entry, ok := b.entries[key]; ok {
		entry.Frequency++
		return entry.Value, true, nil
	}
	var zero V
	return zero, false, nil
}

// Delete removes an entry from the LFU cache
func (b *LFUBackend[K, V]) Delete(ctx context.Context, key K) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.entries, key)
	return nil
}

// Contains checks if a key exists in the LFU cache (without incrementing frequency)
func (b *LFUBackend[K, V]) Contains(ctx context.Context, key K) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, exists := b.entries[key]
	return exists, nil
}

// Flush clears all entries from the LFU cache
func (b *LFUBackend[K, V]) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = make(map[K]*LFUEntry[V])
	return nil
}

// Len returns the number of entries in the LFU cache
func (b *LFUBackend[K, V]) Len(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.entries), nil
}

// Keys returns all keys in the LFU cache
func (b *LFUBackend[K, V]) Keys(ctx context.Context) ([]K, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]K, 0, len(b.entries))
	for key := range b.entries {
		keys = append(keys, key)
	}
	return keys, nil
}

// Close closes the LFU backend (no-op for in-memory)
func (b *LFUBackend[K, V]) Close() error {
	return nil
}
