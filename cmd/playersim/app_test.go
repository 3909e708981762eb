package main

import (
	"testing"

	"github.com/botirk38/playersim/internal/config"
	"github.com/botirk38/playersim/options"
)

func TestCacheOption(t *testing.T) {
	tests := []struct {
		name      string
		cache     config.CacheConfig
		wantCache bool
		wantErr   bool
	}{
		{"None", config.CacheConfig{Backend: "none", Capacity: 8}, false, false},
		{"Empty", config.CacheConfig{}, false, false},
		{"LRU", config.CacheConfig{Backend: "lru", Capacity: 8}, true, false},
		{"LRUWithTTL", config.CacheConfig{Backend: "lru", Capacity: 8, TTL: 60}, true, false},
		{"FIFO", config.CacheConfig{Backend: "fifo", Capacity: 8}, true, false},
		{"LFU", config.CacheConfig{Backend: "lfu", Capacity: 8}, true, false},
		{"Unknown", config.CacheConfig{Backend: "arc", Capacity: 8}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := cacheOption(tt.cache)
			if !tt.wantCache && !tt.wantErr {
				if opt != nil {
					t.Error("Expected no cache option")
				}
				return
			}

			cfg := options.NewConfig()
			err := cfg.Apply(opt)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if cfg.Cache == nil {
				t.Fatal("Expected cache to be set")
			}
			_ = cfg.Cache.Close()
		})
	}
}
