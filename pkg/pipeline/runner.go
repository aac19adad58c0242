package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cladeview/pkg/cache"
	"github.com/matzehuels/cladeview/pkg/clade"
	cverrors "github.com/matzehuels/cladeview/pkg/errors"
	"github.com/matzehuels/cladeview/pkg/layout"
	"github.com/matzehuels/cladeview/pkg/observability"
	"github.com/matzehuels/cladeview/pkg/sector"
)

// Cache key families reported to the cache hooks.
const (
	kindLayout   = "layout"
	kindArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. It doesn't
// store pipeline results, so multiple goroutines can safely share one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-family cache TTLs when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache("no cache configured")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// Layout parses newick, names unlabeled nodes and lays the tree out,
// reusing a cached layout when one exists for the same text and options.
func (r *Runner) Layout(ctx context.Context, newick string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stage 1: Parse
	parseStart := time.Now()
	t, err := Parse(newick)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	res := &Result{
		Tree:     t,
		TreeHash: cache.TreeHash(t),
	}
	res.Stats.ParseTime = time.Since(parseStart)
	res.Stats.NodeCount = t.Len()
	res.Stats.TipCount = len(t.Leaves())

	r.Logger.Debug("parsed tree",
		"nodes", res.Stats.NodeCount,
		"tips", res.Stats.TipCount,
		"duration", res.Stats.ParseTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	cacheKey := r.Keyer.LayoutKey(res.TreeHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if cached, ok := r.cachedLayout(ctx, cacheKey); ok {
			if err := cached.Apply(t); err == nil {
				observability.Cache().OnCacheHit(ctx, kindLayout)
				res.Layout = cached
				res.CacheInfo.LayoutHit = true
				res.Stats.LayoutTime = time.Since(layoutStart)
				r.Logger.Debug("layout from cache", "key", cacheKey)
				return res, nil
			}
			// Stale entry for a tree with different names: recompute.
		}
	}
	observability.Cache().OnCacheMiss(ctx, kindLayout)

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, res.Stats.NodeCount)
	l, err := GenerateLayout(t, opts)
	res.Stats.LayoutTime = time.Since(layoutStart)
	hooks.OnLayoutComplete(ctx, res.Stats.NodeCount, res.Stats.LayoutTime, err)
	if err != nil {
		return nil, err
	}
	res.Layout = l

	r.Logger.Info("computed layout",
		"nodes", res.Stats.NodeCount,
		"scale", l.Scale,
		"duration", res.Stats.LayoutTime)

	if data, err := json.Marshal(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLLayout)); err != nil {
			r.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, kindLayout, len(data))
		}
	}
	return res, nil
}

func (r *Runner) cachedLayout(ctx context.Context, key string) (layout.Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "error", err)
		return layout.Result{}, false
	}
	if !hit {
		return layout.Result{}, false
	}
	var l layout.Result
	if err := json.Unmarshal(data, &l); err != nil {
		return layout.Result{}, false
	}
	return l, true
}

// Render produces one artifact with caching and reports whether it came
// from the cache. Artifacts that depend on highlights or sectors are never
// cached.
func (r *Runner) Render(ctx context.Context, res *Result, format string, opts RenderOptions) ([]byte, bool, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, false, err
	}
	if !opts.cacheable() {
		data, err := Render(ctx, res, format, opts)
		return data, false, err
	}

	layoutData, err := json.Marshal(res.Layout)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	cacheKey := r.Keyer.ArtifactKey(cache.Hash(layoutData), opts.artifactKeyOpts(format))

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, kindArtifact)
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, kindArtifact)

	data, err := Render(ctx, res, format, opts)
	if err != nil {
		return nil, false, fmt.Errorf("render %s: %w", format, err)
	}
	if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLArtifact)); err == nil {
		observability.Cache().OnCacheSet(ctx, kindArtifact, len(data))
	}
	return data, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// Collapse builds the sector buffer that covers the clade rooted at the
// node called name.
func Collapse(res *Result, name, hex string) (sector.Buffer, error) {
	n := res.Tree.Find(name)
	if n == nil {
		return nil, cverrors.New(cverrors.ErrCodeNotFound, "no node %q", name)
	}
	return clade.Collapse(n, hex)
}
