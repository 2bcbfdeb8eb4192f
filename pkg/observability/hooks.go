// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about scans, rendering and cache operations.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetScanHooks(&myScanHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Scan().OnScanStart(ctx, solution)
//	// ... scan projects ...
//	observability.Scan().OnScanComplete(ctx, solution, records, failures, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Scan Hooks
// =============================================================================

// ScanHooks receives events from the solution scanner.
type ScanHooks interface {
	OnScanStart(ctx context.Context, solution string)
	// OnProjectScanned is called once per genuine project; err is non-nil
	// when the project failed to load.
	OnProjectScanned(ctx context.Context, project string, duration time.Duration, err error)
	OnScanComplete(ctx context.Context, solution string, records, failures int, duration time.Duration)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from graph rendering and output writing.
type RenderHooks interface {
	OnRenderStart(ctx context.Context, formats []string, vertices, edges int)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
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
// No-op Implementations
// =============================================================================

// NoopScanHooks is a no-op implementation of ScanHooks.
type NoopScanHooks struct{}

func (NoopScanHooks) OnScanStart(context.Context, string)                             {}
func (NoopScanHooks) OnProjectScanned(context.Context, string, time.Duration, error)  {}
func (NoopScanHooks) OnScanComplete(context.Context, string, int, int, time.Duration) {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, []string, int, int)                {}
func (NoopRenderHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	scanHooks   ScanHooks   = NoopScanHooks{}
	renderHooks RenderHooks = NoopRenderHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetScanHooks registers custom scan hooks.
// This should be called once at application startup before any scan.
func SetScanHooks(h ScanHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		scanHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
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

// Scan returns the registered scan hooks.
func Scan() ScanHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return scanHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	scanHooks = NoopScanHooks{}
	renderHooks = NoopRenderHooks{}
	cacheHooks = NoopCacheHooks{}
}
