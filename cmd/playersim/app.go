package main

import (
	"context"
	"fmt"
	"time"

	"github.com/botirk38/playersim"
	"github.com/botirk38/playersim/index"
	"github.com/botirk38/playersim/internal/config"
	"github.com/botirk38/playersim/internal/logging"
	"github.com/botirk38/playersim/internal/metrics"
	"github.com/botirk38/playersim/loader"
	"github.com/botirk38/playersim/options"
	"github.com/botirk38/playersim/types"
)

// app is a loaded dataset and the Retriever serving it.
type app struct {
	cfg       *config.Config
	records   []types.PlayerRecord
	retriever *playersim.Retriever
}

// loadApp reads config, initialises logging, loads the dataset and builds
// the index. Integrity failures are fatal here.
func loadApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	start := time.Now()
	ds, err := loader.Load(ctx, loader.Paths{
		Records:    cfg.Data.RecordsPath,
		Labels:     cfg.Data.LabelsPath,
		Embeddings: cfg.Data.EmbeddingsPath,
	})
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}

	idx, err := index.Build(ds.Records, ds.Labels)
	if err != nil {
		logging.Error().Err(err).Msg("dataset failed integrity check")
		return nil, err
	}

	opts := []options.Option{
		options.WithMetric(cfg.Similarity.Metric),
		options.WithLogger(logging.With().Str("component", "retriever").Logger()),
	}
	if cacheOpt := cacheOption(cfg.Cache); cacheOpt != nil {
		opts = append(opts, cacheOpt)
	}

	retriever, err := playersim.New(idx, ds.Store, opts...)
	if err != nil {
		return nil, err
	}

	metrics.DatasetPlayers.Set(float64(idx.Len()))
	logging.Info().
		Int("records", len(ds.Records)).
		Int("players", idx.Len()).
		Int("dimensions", ds.Store.Dim()).
		Str("cache", cfg.Cache.Backend).
		Dur("took", time.Since(start)).
		Msg("dataset loaded")

	return &app{cfg: cfg, records: ds.Records, retriever: retriever}, nil
}

// cacheOption maps the cache section to a Retriever option; nil means no cache.
func cacheOption(c config.CacheConfig) options.Option {
	backend := types.BackendType(c.Backend)
	if backend == "" || backend == types.BackendNone {
		return nil
	}
	return options.WithBackend(backend, types.BackendConfig{
		Capacity:         c.Capacity,
		TTL:              c.TTL,
		ConnectionString: c.RedisURL,
		Options:          map[string]any{"prefix": c.Prefix},
	})
}

func (a *app) Close() error {
	return a.retriever.Close()
}
