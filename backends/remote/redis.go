package remote

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/botirk38/playersim/types"
	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

const (
	defaultPrefix           = "playersim:"
	defaultFailureThreshold = 5
	defaultBreakerTimeout   = 30 * time.Second
)

// ErrBreakerOpen is returned while the circuit breaker rejects calls.
var ErrBreakerOpen = errors.New("redis circuit breaker open")

// RedisBackend implements CacheBackend on plain Redis string keys holding
// JSON values. Calls go through a circuit breaker so an unavailable Redis
// fails fast instead of stalling every retrieval.
type RedisBackend[K comparable, V any] struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[any]
}

// parseRedisURL parses a Redis URL and returns redis.Options
func parseRedisURL(connectionString string) (*redis.Options, error) {
	// Handle redis:// or rediss:// URLs
	if strings.HasPrefix(connectionString, "redis://") || strings.HasPrefix(connectionString, "rediss://") {
		parsedURL, err := url.Parse(connectionString)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis URL: %w", err)
		}

		opts := &redis.Options{
			Addr: parsedURL.Host,
		}

		if parsedURL.Scheme == "rediss" {
			opts.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}

		if parsedURL.User != nil {
			opts.Username = parsedURL.User.Username()
			if password, ok := parsedURL.User.Password(); ok {
				opts.Password = password
			}
		}

		// Database number from path
		if parsedURL.Path != "" && parsedURL.Path != "/" {
			dbStr := strings.TrimPrefix(parsedURL.Path, "/")
			if db, err := strconv.Atoi(dbStr); err == nil {
				opts.DB = db
			}
		}

		return opts, nil
	}

	if connectionString == "" {
		return nil, errors.New("redis connection string is required")
	}

	// For simple address format (host:port), return minimal options
	return &redis.Options{
		Addr: connectionString,
	}, nil
}

// NewRedisBackend creates a new Redis backend and verifies the connection.
func NewRedisBackend[K comparable, V any](config types.BackendConfig) (*RedisBackend[K, V], error) {
	opts, err := parseRedisURL(config.ConnectionString)
	if err != nil {
		return nil, err
	}

	// Override with explicit config values if provided
	if config.Username != "" {
		opts.Username = config.Username
	}
	if config.Password != "" {
		opts.Password = config.Password
	}
	if config.Database != 0 {
		opts.DB = config.Database
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := defaultPrefix
	if p, ok := config.Options["prefix"].(string); ok && p != "" {
		prefix = p
	}

	threshold := uint32(defaultFailureThreshold)
	if n, ok := config.Options["failure_threshold"].(int); ok && n > 0 {
		threshold = uint32(n)
	}

	breakerTimeout := defaultBreakerTimeout
	if d, ok := config.Options["breaker_timeout"].(time.Duration); ok && d > 0 {
		breakerTimeout = d
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "redis-result-cache",
		MaxRequests: 1,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})

	return &RedisBackend[K, V]{
		client:  client,
		prefix:  prefix,
		ttl:     config.TTL,
		breaker: breaker,
	}, nil
}

// keyString converts a key to a Redis key string
func (b *RedisBackend[K, V]) keyString(key K) string {
	return fmt.Sprintf("%s%v", b.prefix, key)
}

// execute runs fn through the circuit breaker.
func (b *RedisBackend[K, V]) execute(fn func() (any, error)) (any, error) {
	res, err := b.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrBreakerOpen, err)
	}
	return res, err
}

// Set stores a JSON-encoded value, expiring after the configured TTL.
func (b *RedisBackend[K, V]) Set(ctx context.Context, key K, value V) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	_, err = b.execute(func() (any, error) {
		return nil, b.client.Set(ctx, b.keyString(key), payload, b.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to set entry in Redis: %w", err)
	}
	return nil
}

// Get retrieves and decodes a value.
func (b *RedisBackend[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V

	res, err := b.execute(func() (any, error) {
		data, err := b.client.Get(ctx, b.keyString(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			// A miss is not a failure.
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		return zero, false, fmt.Errorf("failed to get entry from Redis: %w", err)
	}

	data, _ := res.([]byte)
	if data == nil {
		return zero, false, nil
	}

	var value V
	if err := json.Unmarshal(data, &value); err != nil {
		return zero, false, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return value, true, nil
}

// Delete removes an entry from Redis
func (b *RedisBackend[K, V]) Delete(ctx context.Context, key K) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.client.Del(ctx, b.keyString(key)).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to delete entry from Redis: %w", err)
	}
	return nil
}

// Contains checks if a key exists in Redis
func (b *RedisBackend[K, V]) Contains(ctx context.Context, key K) (bool, error) {
	res, err := b.execute(func() (any, error) {
		return b.client.Exists(ctx, b.keyString(key)).Result()
	})
	if err != nil {
		return false, fmt.Errorf("failed to check key existence in Redis: %w", err)
	}
	n, _ := res.(int64)
	return n > 0, nil
}

// scanKeys collects every Redis key under the prefix.
func (b *RedisBackend[K, V]) scanKeys(ctx context.Context) ([]string, error) {
	pattern := b.prefix + "*"
	var keys []string
	var cursor uint64

	for {
		result, nextCursor, err := b.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}

		keys = append(keys, result...)
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

// Flush clears all entries with the configured prefix from Redis
func (b *RedisBackend[K, V]) Flush(ctx context.Context) error {
	_, err := b.execute(func() (any, error) {
		keys, err := b.scanKeys(ctx)
		if err != nil || len(keys) == 0 {
			return nil, err
		}
		return nil, b.client.Del(ctx, keys...).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to flush Redis: %w", err)
	}
	return nil
}

// Len returns the number of entries in Redis with our prefix
func (b *RedisBackend[K, V]) Len(ctx context.Context) (int, error) {
	res, err := b.execute(func() (any, error) {
		return b.scanKeys(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count keys in Redis: %w", err)
	}
	keys, _ := res.([]string)
	return len(keys), nil
}

// Keys returns all keys in Redis with our prefix
func (b *RedisBackend[K, V]) Keys(ctx context.Context) ([]K, error) {
	res, err := b.execute(func() (any, error) {
		return b.scanKeys(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get keys from Redis: %w", err)
	}

	redisKeys, _ := res.([]string)
	keys := make([]K, 0, len(redisKeys))
	for _, redisKey := range redisKeys {
		keyStr := strings.TrimPrefix(redisKey, b.prefix)
		var key K
		// Convert the string back to the key type
		if err := json.Unmarshal(strconv.AppendQuote(nil, keyStr), &key); err == nil {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Close closes the Redis connection
func (b *RedisBackend[K, V]) Close() error {
	return b.client.Close()
}
