package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/floorcad/pkg/cache"
	"github.com/matzehuels/floorcad/pkg/compiler"
	"github.com/matzehuels/floorcad/pkg/drawing"
	"github.com/matzehuels/floorcad/pkg/errors"
	"github.com/matzehuels/floorcad/pkg/floorplan"
	"github.com/matzehuels/floorcad/pkg/observability"
	"github.com/matzehuels/floorcad/pkg/storage"
)

// Runner executes the pipeline with caching and optional persistence.
//
// A Runner holds no per-run state, so one Runner may serve concurrent runs
// with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  storage.Store // nil disables the store stage
	Logger *log.Logger
}

// NewRunner returns a runner. A nil cache disables caching, a nil keyer
// uses the default keyer and a nil logger discards output.
func NewRunner(c cache.Cache, keyer cache.Keyer, store storage.Store, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{Cache: c, Keyer: keyer, Store: store, Logger: logger}
}

// Execute validates, compiles, renders and stores plan.
func (r *Runner) Execute(ctx context.Context, plan floorplan.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if r.Store != nil && opts.DrawingID == "" {
		opts.DrawingID = uuid.NewString()
	}

	result := &Result{DrawingID: opts.DrawingID}
	result.Stats.Rooms, result.Stats.Doors, result.Stats.Windows = plan.Counts()

	compileStart := time.Now()
	doc, hit, err := r.CompileWithCacheInfo(ctx, plan, opts)
	if err != nil {
		return nil, err
	}
	result.Drawing = doc
	result.Stats.CompileTime = time.Since(compileStart)
	result.Stats.Entities = doc.Len()
	result.Stats.Dropped = len(doc.Meta().Dropped)
	result.CacheInfo.CompileHit = hit
	result.PlanHash, _ = PlanHash(plan)

	for _, d := range doc.Meta().Dropped {
		opts.Logger.Warn("skipped opening on unknown wall side",
			"room", d.Room, "layer", d.Layer, "index", d.Index, "side", d.Side)
	}
	opts.Logger.Info("compiled floor plan",
		"rooms", result.Stats.Rooms,
		"entities", result.Stats.Entities,
		"duration", result.Stats.CompileTime)

	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	opts.Logger.Info("rendered drawing",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	if r.Store != nil {
		storeStart := time.Now()
		if err := r.Persist(ctx, opts.DrawingID, artifacts, opts.Formats); err != nil {
			return nil, err
		}
		result.Stats.StoreTime = time.Since(storeStart)
		opts.Logger.Info("stored drawing",
			"id", opts.DrawingID,
			"formats", opts.Formats,
			"duration", result.Stats.StoreTime)
	}

	return result, nil
}

// PlanHash returns the content hash of plan's canonical JSON encoding.
func PlanHash(plan floorplan.Document) (string, error) {
	data, err := json.Marshal(plan)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// CompileWithCacheInfo compiles plan, serving the drawing from cache when
// possible. The bool reports a cache hit.
func (r *Runner) CompileWithCacheInfo(ctx context.Context, plan floorplan.Document, opts Options) (*drawing.Document, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hooks := observability.Pipeline()

	// Validation runs first so that bad geometry never reaches the hash.
	if err := plan.Validate(); err != nil {
		hooks.OnCompileComplete(ctx, observability.CompileStats{Rooms: len(plan.Rooms)}, 0, err)
		return nil, false, err
	}

	planHash, err := PlanHash(plan)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash floor plan")
	}
	key := r.Keyer.DrawingKey(planHash, opts.DrawingKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if doc, err := drawing.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "drawing")
				opts.Logger.Debug("drawing served from cache", "key", key)
				return doc, true, nil
			}
		} else if err != nil {
			opts.Logger.Debug("cache read failed", "key", key, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "drawing")
	}

	hooks.OnCompileStart(ctx, len(plan.Rooms))
	start := time.Now()
	doc, err := compiler.Compile(plan, opts.CompilerOptions()...)
	stats := observability.CompileStats{Rooms: len(plan.Rooms)}
	if doc != nil {
		stats.Entities = doc.Len()
		stats.Dropped = len(doc.Meta().Dropped)
	}
	hooks.OnCompileComplete(ctx, stats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := drawing.Marshal(doc); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.DrawingTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "drawing", len(data))
		}
	}
	return doc, false, nil
}

// Compile is CompileWithCacheInfo without the cache hit flag.
func (r *Runner) Compile(ctx context.Context, plan floorplan.Document, opts Options) (*drawing.Document, error) {
	doc, _, err := r.CompileWithCacheInfo(ctx, plan, opts)
	return doc, err
}

// RenderWithCacheInfo renders doc in every requested format. The bool
// reports that all formats came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc *drawing.Document, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hooks := observability.Pipeline()

	docData, err := drawing.Marshal(doc)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "encode drawing for cache key")
	}
	docHash := cache.Hash(docData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		allHit = false

		hooks.OnRenderStart(ctx, format)
		start := time.Now()
		data, err := RenderFormat(doc, format, opts)
		hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, allHit, nil
}

// Persist writes the artifacts of formats to the store under id. Transient
// backend errors are retried. Any failure is reported as SINK_FAILURE
// unless the id itself is invalid, and removes every artifact stored under
// id so that no partial drawing stays visible.
func (r *Runner) Persist(ctx context.Context, id string, artifacts map[string][]byte, formats []string) error {
	if r.Store == nil {
		return errors.New(errors.ErrCodeSinkFailure, "no artifact store configured")
	}
	if err := errors.ValidateDrawingID(id); err != nil {
		return err
	}
	hooks := observability.Pipeline()
	now := time.Now().UTC()

	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		a := &storage.Artifact{ID: id, Format: format, Data: data, CreatedAt: now}

		hooks.OnStoreStart(ctx, id, format)
		start := time.Now()
		err := cache.RetryWithBackoff(ctx, func() error {
			return r.Store.Put(ctx, a)
		})
		hooks.OnStoreComplete(ctx, id, format, time.Since(start), err)
		if err != nil {
			r.discard(ctx, id)
			if errors.GetCode(err) == errors.ErrCodeSinkFailure {
				return err
			}
			return errors.Wrap(errors.ErrCodeSinkFailure, err, "store %s artifact for drawing %q", format, id)
		}
	}
	return nil
}

// discard deletes everything stored under id after a failed Persist. It
// runs even when ctx is already cancelled.
func (r *Runner) discard(ctx context.Context, id string) {
	ctx = context.WithoutCancel(ctx)
	if err := r.Store.Delete(ctx, id); err != nil && r.Logger != nil {
		r.Logger.Warn("could not remove partial drawing", "id", id, "err", err)
	}
}

// Close releases the cache and the store.
func (r *Runner) Close() error {
	var first error
	if r.Cache != nil {
		first = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
