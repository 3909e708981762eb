package inmemory

import (
	"context"
	"reflect"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/botirk38/playersim/types"
)

func newBackends(t *testing.T, capacity int) map[string]types.CacheBackend[string, []types.PlayerResult] {
	t.Helper()
	config := types.BackendConfig{Capacity: capacity}

	lru, err := NewLRUBackend[string, []types.PlayerResult](config)
	if err != nil {
		t.Fatalf("Failed to create LRU backend: %v", err)
	}
	fifo, _ := NewFIFOBackend[string, []types.PlayerResult](config)
	lfu, _ := NewLFUBackend[string, []types.PlayerResult](config)

	return map[string]types.CacheBackend[string, []types.PlayerResult]{
		"LRU":  lru,
		"FIFO": fifo,
		"LFU":  lfu,
	}
}

func TestInMemoryBackends(t *testing.T) {
	for name, backend := range newBackends(t, 3) {
		t.Run(name, func(t *testing.T) {
			defer func() { _ = backend.Close() }()
			testBasicOperations(t, backend)
			testCapacityLimits(t, backend, 3)
		})
	}
}

func testBasicOperations(t *testing.T, backend types.CacheBackend[string, []types.PlayerResult]) {
	ctx := context.Background()

	if n, _ := backend.Len(ctx); n != 0 {
		t.Errorf("Expected empty backend, got length %d", n)
	}

	value := []types.PlayerResult{{Name: "Pirlo", Similarity: 88.4}}
	if err := backend.Set(ctx, "key1", value); err != nil {
		t.Fatalf("Failed to set entry: %v", err)
	}

	retrieved, found, err := backend.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if !found {
		t.Error("Expected to find key1")
	}
	if !reflect.DeepEqual(retrieved, value) {
		t.Errorf("Expected %v, got %v", value, retrieved)
	}

	exists, err := backend.Contains(ctx, "key1")
	if err != nil {
		t.Fatalf("Failed to check contains: %v", err)
	}
	if !exists {
		t.Error("Expected key1 to exist")
	}

	keys, err := backend.Keys(ctx)
	if err != nil {
		t.Fatalf("Failed to get keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "key1" {
		t.Errorf("Expected [key1], got %v", keys)
	}

	if err := backend.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Failed to delete entry: %v", err)
	}
	if exists, _ := backend.Contains(ctx, "key1"); exists {
		t.Error("Expected key1 to be deleted")
	}
	if _, found, _ := backend.Get(ctx, "key1"); found {
		t.Error("Expected miss after delete")
	}

	_ = backend.Set(ctx, "key2", value)
	if err := backend.Flush(ctx); err != nil {
		t.Fatalf("Failed to flush: %v", err)
	}
	if n, _ := backend.Len(ctx); n != 0 {
		t.Errorf("Expected empty backend after flush, got length %d", n)
	}
}

func testCapacityLimits(t *testing.T, backend types.CacheBackend[string, []types.PlayerResult], capacity int) {
	ctx := context.Background()

	for i := 0; i < capacity+2; i++ {
		key := "key" + strconv.Itoa(i)
		if err := backend.Set(ctx, key, nil); err != nil {
			t.Fatalf("Failed to set entry %s: %v", key, err)
		}
	}

	length, err := backend.Len(ctx)
	if err != nil {
		t.Fatalf("Failed to get length: %v", err)
	}
	if length != capacity {
		t.Errorf("Expected length %d, got %d", capacity, length)
	}
}

func TestEvictionPolicies(t *testing.T) {
	ctx := context.Background()

	t.Run("LRU", func(t *testing.T) {
		b, _ := NewLRUBackend[string, int](types.BackendConfig{Capacity: 2})
		_ = b.Set(ctx, "a", 1)
		_ = b.Set(ctx, "b", 2)
		_, _, _ = b.Get(ctx, "a") // a becomes most recent
		_ = b.Set(ctx, "c", 3)

		if ok, _ := b.Contains(ctx, "b"); ok {
			t.Error("Expected b to be evicted")
		}
		if ok, _ := b.Contains(ctx, "a"); !ok {
			t.Error("Expected a to survive")
		}
	})

	t.Run("FIFO", func(t *testing.T) {
		b, _ := NewFIFOBackend[string, int](types.BackendConfig{Capacity: 2})
		_ = b.Set(ctx, "a", 1)
		_ = b.Set(ctx, "b", 2)
		_, _, _ = b.Get(ctx, "a")
		_ = b.Set(ctx, "c", 3)

		keys, _ := b.Keys(ctx)
		if !reflect.DeepEqual(keys, []string{"b", "c"}) {
			t.Errorf("Expected [b c], got %v", keys)
		}
	})

	t.Run("LFU", func(t *testing.T) {
		b, _ := NewLFUBackend[string, int](types.BackendConfig{Capacity: 2})
		_ = b.Set(ctx, "a", 1)
		_ = b.Set(ctx, "b", 2)
		_, _, _ = b.Get(ctx, "b")
		_, _, _ = b.Get(ctx, "b")
		_, _, _ = b.Get(ctx, "a")
		_ = b.Set(ctx, "c", 3)

		keys, _ := b.Keys(ctx)
		sort.Strings(keys)
		if !reflect.DeepEqual(keys, []string{"b", "c"}) {
			t.Errorf("Expected [b c], got %v", keys)
		}
	})

	t.Run("LFUTieEvictsOldest", func(t *testing.T) {
		b, _ := NewLFUBackend[string, int](types.BackendConfig{Capacity: 2})
		_ = b.Set(ctx, "a", 1)
		_ = b.Set(ctx, "b", 2)
		_ = b.Set(ctx, "c", 3)

		if ok, _ := b.Contains(ctx, "a"); ok {
			t.Error("Expected oldest entry a to be evicted on a frequency tie")
		}
	})
}

func TestLRUExpiry(t *testing.T) {
	ctx := context.Background()
	b, err := NewLRUBackend[string, int](types.BackendConfig{Capacity: 10, TTL: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	_ = b.Set(ctx, "a", 1)
	if _, found, _ := b.Get(ctx, "a"); !found {
		t.Fatal("Expected fresh entry to be found")
	}

	time.Sleep(60 * time.Millisecond)
	if _, found, _ := b.Get(ctx, "a"); found {
		t.Error("Expected entry to expire")
	}
}

func TestLRUInvalidCapacity(t *testing.T) {
	if _, err := NewLRUBackend[string, int](types.BackendConfig{Capacity: 0}); err == nil {
		t.Error("Expected error for zero capacity without TTL")
	}
}

func TestConcurrentAccess(t *testing.T) {
	for name, backend := range newBackends(t, 10) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			done := make(chan bool, 20)

			for i := 0; i < 10; i++ {
				go func(id int) {
					_ = backend.Set(ctx, "key"+strconv.Itoa(id), nil)
					done <- true
				}(i)
			}
			for i := 0; i < 10; i++ {
				go func(id int) {
					key := "key" + strconv.Itoa(id)
					_, _, _ = backend.Get(ctx, key)
					_, _ = backend.Contains(ctx, key)
					done <- true
				}(i)
			}
			for i := 0; i < 20; i++ {
				<-done
			}

			length, err := backend.Len(ctx)
			if err != nil {
				t.Fatalf("Failed to get final length: %v", err)
			}
			if length < 0 || length > 10 {
				t.Errorf("Expected length between 0-10, got %d", length)
			}
		})
	}
}
