package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/botirk38/playersim/internal/validation"
	"github.com/botirk38/playersim/types"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Data       DataConfig       `mapstructure:"data"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Server     ServerConfig     `mapstructure:"server"`
	Defaults   DefaultsConfig   `mapstructure:"defaults"`
	Similarity SimilarityConfig `mapstructure:"similarity"`
	Log        LogConfig        `mapstructure:"log"`
}

type DataConfig struct {
	RecordsPath    string `mapstructure:"records_path" validate:"required"`
	LabelsPath     string `mapstructure:"labels_path" validate:"required"`
	EmbeddingsPath string `mapstructure:"embeddings_path" validate:"required"`
}

type CacheConfig struct {
	Backend  string        `mapstructure:"backend" validate:"oneof=lru fifo lfu redis none"`
	Capacity int           `mapstructure:"capacity" validate:"gte=0"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gte=0"`
	RedisURL string        `mapstructure:"redis_url" validate:"required_if=Backend redis"`
	Prefix   string        `mapstructure:"prefix"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int `mapstructure:"rate_limit" validate:"gte=0"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DefaultsConfig holds the filter used when a request leaves a field unset.
type DefaultsConfig struct {
	ResultCount       int      `mapstructure:"result_count" validate:"gte=0"`
	MinMatches        int      `mapstructure:"min_matches" validate:"gte=0"`
	ExcludedPositions []string `mapstructure:"excluded_positions"`
}

// Filter returns the defaults as a FilterConfig.
func (d DefaultsConfig) Filter() types.FilterConfig {
	return types.FilterConfig{
		ExcludedPositions: append([]string(nil), d.ExcludedPositions...),
		MinMatches:        d.MinMatches,
		ResultCount:       d.ResultCount,
	}
}

type SimilarityConfig struct {
	Metric string `mapstructure:"metric" validate:"oneof=cosine pearson"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.records_path", "app_data/records.csv")
	v.SetDefault("data.labels_path", "app_data/labels.json")
	v.SetDefault("data.embeddings_path", "app_data/embeddings.npy")

	v.SetDefault("cache.backend", string(types.BackendLRU))
	v.SetDefault("cache.capacity", 1024)
	v.SetDefault("cache.ttl", time.Duration(0))
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.prefix", "playersim:")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 120)

	v.SetDefault("defaults.result_count", 5)
	v.SetDefault("defaults.min_matches", 1)
	v.SetDefault("defaults.excluded_positions", []string{"Goalkeeper"})

	v.SetDefault("similarity.metric", "cosine")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Cache.Backend != string(types.BackendNone) && c.Cache.Backend != string(types.BackendRedis) && c.Cache.Capacity == 0 {
		return errors.New("invalid config: cache.capacity must be positive for in-memory backends")
	}
	return nil
}

// Load reads configuration from defaults, an optional file and PLAYERSIM_
// environment variables, in increasing precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PLAYERSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.Cache.Backend = strings.ToLower(cfg.Cache.Backend)
	cfg.Similarity.Metric = strings.ToLower(cfg.Similarity.Metric)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
