// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register
// hooks at startup to receive events about chart assembly and cache
// operations.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetChartHooks(&myChartHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Chart().OnAssembleStart(ctx, kind, rows)
//	// ... assemble chart ...
//	observability.Chart().OnAssembleComplete(ctx, kind, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// ChartHooks receives events from the chart assembly pipeline.
type ChartHooks interface {
	// OnAssembleStart records the beginning of chart assembly.
	OnAssembleStart(ctx context.Context, kind string, rows int)

	// OnAssembleComplete records the end of chart assembly.
	OnAssembleComplete(ctx context.Context, kind string, duration time.Duration, err error)

	// OnRenderStart records the beginning of artifact rendering.
	OnRenderStart(ctx context.Context, format string)

	// OnRenderComplete records the end of artifact rendering.
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopChartHooks is a no-op implementation of ChartHooks.
type NoopChartHooks struct{}

func (NoopChartHooks) OnAssembleStart(context.Context, string, int)                      {}
func (NoopChartHooks) OnAssembleComplete(context.Context, string, time.Duration, error)  {}
func (NoopChartHooks) OnRenderStart(context.Context, string)                             {}
func (NoopChartHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	chartHooks ChartHooks = NoopChartHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetChartHooks registers custom chart hooks.
// Call once at application startup before any chart operations.
func SetChartHooks(h ChartHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		chartHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// Call once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Chart returns the registered chart hooks.
func Chart() ChartHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return chartHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// Primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	chartHooks = NoopChartHooks{}
	cacheHooks = NoopCacheHooks{}
}
