// Package observability lets an application observe floorcad without the
// libraries depending on a metrics or tracing backend.
//
// Libraries emit events through package-level hook registries; the
// application installs implementations at startup. Every registry defaults to
// a no-op, so instrumentation costs nothing until a hook is set.
//
//	func main() {
//	    observability.SetPipelineHooks(&promPipelineHooks{})
//	    observability.SetHTTPHooks(&promHTTPHooks{})
//	    // ... run
//	}
//
// Emitting an event:
//
//	observability.Pipeline().OnCompileStart(ctx, len(plan.Rooms))
//	d, err := compiler.Compile(plan)
//	observability.Pipeline().OnCompileComplete(ctx, stats, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// CompileStats summarises one compilation for hooks.
type CompileStats struct {
	Rooms    int
	Entities int
	Dropped  int
}

// PipelineHooks receives compile, render and store events.
type PipelineHooks interface {
	OnCompileStart(ctx context.Context, rooms int)
	OnCompileComplete(ctx context.Context, stats CompileStats, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)

	OnStoreStart(ctx context.Context, id, format string)
	OnStoreComplete(ctx context.Context, id, format string, duration time.Duration, err error)
}

// CacheHooks receives cache events. keyType is "drawing" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP server. route is the matched
// route pattern, not the raw path, to keep label cardinality bounded.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
	OnPanic(ctx context.Context, method, route string, recovered any)
}

// NoopPipelineHooks ignores every event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnCompileStart(context.Context, int) {}
func (NoopPipelineHooks) OnCompileComplete(context.Context, CompileStats, time.Duration, error) {
}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                                 {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, int, time.Duration, error)   {}
func (NoopPipelineHooks) OnStoreStart(context.Context, string, string)                          {}
func (NoopPipelineHooks) OnStoreComplete(context.Context, string, string, time.Duration, error) {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnPanic(context.Context, string, string, any)                   {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks installs h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks installs h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the installed cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op hooks. Tests use it to undo SetXHooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
