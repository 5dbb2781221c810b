// Package observability lets a host watch sheetcalc at work.
//
// The libraries report cell mutations, recalculation passes, cache traffic
// and served HTTP requests to process-wide hook sets. Each set is an
// interface with a no-op default, so instrumentation costs nothing until a
// host installs an implementation.
//
// Hooks are registered by main, not by libraries, so the core packages never
// import an observability backend. The Prometheus backend lives in
// subpackage prom.
//
// # Usage
//
// Register hooks at application startup, either one set at a time or all
// of a backend at once:
//
//	observability.SetSheetHooks(myHooks)
//
//	m := prom.New(prometheus.NewRegistry())
//	m.Register()
//	defer observability.Reset()
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	// ... apply content ...
//	observability.Sheet().OnContentSet("A1", "formula", len(affected), time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Sheet Hooks
// =============================================================================

// SheetHooks receives events from the cell store. The store is synchronous
// and in-memory, so these hooks carry no context.
type SheetHooks interface {
	// OnContentSet records a committed mutation: the cell, its new content
	// kind ("number", "text", "formula", "empty") and the length of the
	// returned recalculation list.
	OnContentSet(cell, kind string, affected int, duration time.Duration)

	// OnCycleRejected records a mutation rolled back because it would have
	// introduced a circular dependency.
	OnCycleRejected(cell string)
}

// =============================================================================
// Eval Hooks
// =============================================================================

// EvalHooks receives events from recalculation.
type EvalHooks interface {
	// OnRecalculate records one recalculation pass over n cells.
	OnRecalculate(cells int, duration time.Duration)

	// OnFormulaError records a formula that evaluated to an error value.
	// code is the spreadsheet error code, such as "#DIV/0!".
	OnFormulaError(cell, code string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request before it is routed.
	OnRequest(ctx context.Context, method string)

	// OnResponse records the response written for a request. route is the
	// matched route pattern, not the raw path.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSheetHooks is a no-op implementation of SheetHooks.
type NoopSheetHooks struct{}

func (NoopSheetHooks) OnContentSet(string, string, int, time.Duration) {}
func (NoopSheetHooks) OnCycleRejected(string)                          {}

// NoopEvalHooks is a no-op implementation of EvalHooks.
type NoopEvalHooks struct{}

func (NoopEvalHooks) OnRecalculate(int, time.Duration) {}
func (NoopEvalHooks) OnFormulaError(string, string)    {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string)                              {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	sheetHooks SheetHooks = NoopSheetHooks{}
	evalHooks  EvalHooks  = NoopEvalHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetSheetHooks registers custom cell store hooks.
// This should be called once at application startup before any store is used.
func SetSheetHooks(h SheetHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sheetHooks = h
	}
}

// SetEvalHooks registers custom recalculation hooks.
func SetEvalHooks(h EvalHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		evalHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Sheet returns the registered cell store hooks.
func Sheet() SheetHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sheetHooks
}

// Eval returns the registered recalculation hooks.
func Eval() EvalHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return evalHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	sheetHooks = NoopSheetHooks{}
	evalHooks = NoopEvalHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
