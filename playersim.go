// Package playersim retrieves the players whose embeddings are most similar
// to a queried player, filtered by position, competition and match count.
package playersim

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/botirk38/playersim/embeddings"
	"github.com/botirk38/playersim/filter"
	"github.com/botirk38/playersim/index"
	"github.com/botirk38/playersim/internal/metrics"
	"github.com/botirk38/playersim/internal/validation"
	"github.com/botirk38/playersim/options"
	"github.com/botirk38/playersim/ranking"
	"github.com/botirk38/playersim/types"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/botirk38/playersim"

// Response is the outcome of one retrieval.
type Response struct {
	Query   types.PlayerProfile  `json:"query"`
	Results []types.PlayerResult `json:"results"`
	// Cached is true when Results came from the result cache.
	Cached bool `json:"cached"`
}

// Retriever ties the index, embedding store, ranking engine and result
// cache together. It is immutable after New and safe for concurrent use.
type Retriever struct {
	index  *index.Index
	engine *ranking.Engine
	cache  options.ResultCache
	logger zerolog.Logger
}

// New creates a Retriever with functional options. The store must hold one
// row per indexed player.
func New(idx *index.Index, store *embeddings.Store, opts ...options.Option) (*Retriever, error) {
	if idx == nil {
		return nil, errors.New("index cannot be nil")
	}
	if store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if store.Rows() != idx.Len() {
		return nil, &types.DataIntegrityError{
			Label:  -1,
			Reason: fmt.Sprintf("embedding table has %d rows but index has %d players", store.Rows(), idx.Len()),
		}
	}

	cfg := options.NewConfig()
	if err := cfg.Apply(opts...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine, err := ranking.NewEngine(store, cfg.Comparator)
	if err != nil {
		return nil, err
	}

	return &Retriever{
		index:  idx,
		engine: engine,
		cache:  cfg.Cache,
		logger: cfg.Logger,
	}, nil
}

// Retrieve ranks every player against name and returns the survivors of cfg.
func (r *Retriever) Retrieve(ctx context.Context, name string, cfg types.FilterConfig) (*Response, error) {
	label, ok := r.index.Label(name)
	if !ok {
		r.logger.Warn().Str("player", name).Msg("unknown player")
		metrics.RecordRetrieval(metrics.OutcomeUnknown, 0)
		return nil, &types.UnknownPlayerError{Name: name, Label: -1}
	}
	return r.RetrieveByLabel(ctx, label, cfg)
}

// RetrieveByLabel is Retrieve for a player already resolved to its label.
func (r *Retriever) RetrieveByLabel(ctx context.Context, label int, cfg types.FilterConfig) (*Response, error) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "playersim.retrieve",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("playersim.label", label),
			attribute.Int("playersim.result_count", cfg.ResultCount),
			attribute.Int("playersim.min_matches", cfg.MinMatches),
		),
	)
	defer span.End()

	resp, err := r.retrieve(ctx, label, cfg)
	metrics.RecordRetrieval(outcomeOf(err), time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("playersim.cached", resp.Cached),
		attribute.Int("playersim.results", len(resp.Results)),
	)
	return resp, nil
}

func (r *Retriever) retrieve(ctx context.Context, label int, cfg types.FilterConfig) (*Response, error) {
	player, ok := r.index.ByLabel(label)
	if !ok {
		r.logger.Warn().Int("label", label).Msg("unknown player label")
		return nil, &types.UnknownPlayerError{Label: label}
	}
	if err := validation.ValidateStruct(&cfg); err != nil {
		return nil, err
	}

	resp := &Response{Query: profileOf(player)}

	key, err := cacheKey(label, cfg)
	if err != nil {
		return nil, err
	}
	if results, hit := r.cached(ctx, key); hit {
		resp.Results = results
		resp.Cached = true
		return resp, nil
	}

	ranked, err := r.engine.Rank(label)
	if err != nil {
		return nil, err
	}
	results, err := filter.Apply(ranked, r.index, label, cfg)
	if err != nil {
		r.logger.Error().Err(err).Int("label", label).Msg("ranking references a label missing from the index")
		return nil, err
	}

	r.store(ctx, key, results)
	resp.Results = results
	r.logger.Debug().
		Str("player", player.Name).
		Int("results", len(results)).
		Msg("retrieved similar players")
	return resp, nil
}

// cached looks key up. Cache failures count as misses.
func (r *Retriever) cached(ctx context.Context, key string) ([]types.PlayerResult, bool) {
	if r.cache == nil {
		return nil, false
	}
	results, found, err := r.cache.Get(ctx, key)
	if err != nil {
		metrics.RecordCacheError("get")
		r.logger.Warn().Err(err).Msg("result cache get failed")
		return nil, false
	}
	metrics.RecordCacheLookup(found)
	if !found {
		return nil, false
	}
	return cloneResults(results), true
}

func (r *Retriever) store(ctx context.Context, key string, results []types.PlayerResult) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, key, cloneResults(results)); err != nil {
		metrics.RecordCacheError("set")
		r.logger.Warn().Err(err).Msg("result cache set failed")
	}
}

// canonicalRequest is the cache identity of a retrieval. Set-valued fields
// are sorted and deduplicated so equivalent filters share an entry.
type canonicalRequest struct {
	Label               int      `json:"l"`
	ExcludedPositions   []string `json:"x"`
	MinMatches          int      `json:"m"`
	AllowedCompetitions []string `json:"c"`
	ResultCount         int      `json:"n"`
}

func cacheKey(label int, cfg types.FilterConfig) (string, error) {
	data, err := json.Marshal(canonicalRequest{
		Label:               label,
		ExcludedPositions:   canonicalSet(cfg.ExcludedPositions),
		MinMatches:          cfg.MinMatches,
		AllowedCompetitions: canonicalSet(cfg.AllowedCompetitions),
		ResultCount:         cfg.ResultCount,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build cache key: %w", err)
	}
	return string(data), nil
}

func canonicalSet(values []string) []string {
	out := slices.Clone(values)
	if out == nil {
		out = []string{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func outcomeOf(err error) string {
	var verr *validation.RequestValidationError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, types.ErrUnknownPlayer):
		return metrics.OutcomeUnknown
	case errors.Is(err, types.ErrDataIntegrity):
		return metrics.OutcomeIntegrity
	case errors.As(err, &verr):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeInternalError
	}
}

// profileOf copies p so callers cannot reach the index's slices.
func profileOf(p types.Player) types.PlayerProfile {
	return types.PlayerProfile{
		Name:         p.Name,
		Clubs:        slices.Clone(p.Clubs),
		Positions:    slices.Clone(p.Positions),
		Competitions: slices.Clone(p.Competitions),
		MatchCount:   p.MatchCount,
	}
}

// cloneResults deep-copies results. In-memory caches hold values by
// reference, so entries are copied on the way in and on the way out.
func cloneResults(results []types.PlayerResult) []types.PlayerResult {
	out := make([]types.PlayerResult, len(results))
	for i, res := range results {
		res.Clubs = slices.Clone(res.Clubs)
		res.Positions = slices.Clone(res.Positions)
		out[i] = res
	}
	return out
}

// Profile returns the display view of name.
func (r *Retriever) Profile(name string) (types.PlayerProfile, error) {
	p, ok := r.index.ByName(name)
	if !ok {
		return types.PlayerProfile{}, &types.UnknownPlayerError{Name: name, Label: -1}
	}
	return profileOf(p), nil
}

// Names returns every player name in label order.
func (r *Retriever) Names() []string {
	return r.index.Names()
}

// Positions returns the sorted distinct positions across the dataset.
func (r *Retriever) Positions() []string {
	return r.index.Positions()
}

// Competitions returns the sorted distinct competitions across the dataset.
func (r *Retriever) Competitions() []string {
	return r.index.Competitions()
}

// Len returns the number of indexed players.
func (r *Retriever) Len() int {
	return r.index.Len()
}

// Close releases the result cache, if any.
func (r *Retriever) Close() error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Close()
}
