package loader

import (
	"context"
	"errors"

	"github.com/botirk38/playersim/embeddings"
	"github.com/botirk38/playersim/types"
	"golang.org/x/sync/errgroup"
)

// Paths locates the three dataset artifacts.
type Paths struct {
	Records    string
	Labels     string
	Embeddings string
}

// Dataset is the loaded, not yet cross-checked, dataset.
type Dataset struct {
	Records []types.PlayerRecord
	Labels  map[string]int
	Store   *embeddings.Store
}

// Load reads all three artifacts concurrently. The first failure cancels
// the rest.
func Load(ctx context.Context, paths Paths) (*Dataset, error) {
	if paths.Records == "" || paths.Labels == "" || paths.Embeddings == "" {
		return nil, errors.New("records, labels and embeddings paths are required")
	}

	var ds Dataset
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		records, err := LoadRecords(paths.Records)
		ds.Records = records
		return err
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		labels, err := LoadLabels(paths.Labels)
		ds.Labels = labels
		return err
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		store, err := LoadEmbeddings(paths.Embeddings)
		ds.Store = store
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ds, nil
}
