// Package observability provides hooks for metrics and tracing.
//
// Libraries in this module report events through small hook interfaces
// instead of importing a metrics backend. The defaults do nothing; main
// (or the API server) registers real implementations at startup, such as
// the Prometheus collectors in the prom subpackage.
//
// # Usage
//
// Register hooks at application startup:
//
//	m := prom.New(prometheus.NewRegistry())
//	observability.SetPipelineHooks(m)
//	observability.SetCacheHooks(m)
//	observability.SetHTTPHooks(m)
//	observability.SetGalleryHooks(m)
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnLayoutStart(ctx, "bestfit", len(tiles))
//	// ... compute ...
//	observability.Pipeline().OnLayoutComplete(ctx, "bestfit", columns, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from layout passes and rendering.
type PipelineHooks interface {
	// Layout events
	OnLayoutStart(ctx context.Context, policy string, tileCount int)
	OnLayoutComplete(ctx context.Context, policy string, columns int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations. keyType is "layout" or
// "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the API server. route is the matched
// route pattern (e.g. "/v1/galleries/{id}"), never the raw path.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, route string, err error)
}

// =============================================================================
// Gallery Hooks
// =============================================================================

// GalleryHooks receives gallery lifecycle events.
type GalleryHooks interface {
	OnGalleryOpen(ctx context.Context, id int)
	OnGalleryClose(ctx context.Context, id int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int) {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// NoopGalleryHooks is a no-op implementation of GalleryHooks.
type NoopGalleryHooks struct{}

func (NoopGalleryHooks) OnGalleryOpen(context.Context, int)  {}
func (NoopGalleryHooks) OnGalleryClose(context.Context, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	galleryHooks  GalleryHooks  = NoopGalleryHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers pipeline hooks. Call it once at startup.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. Call it once at startup.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP server hooks. Call it once at startup.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// SetGalleryHooks registers gallery hooks. Call it once at startup.
func SetGalleryHooks(h GalleryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		galleryHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
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

// Gallery returns the registered gallery hooks.
func Gallery() GalleryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return galleryHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
	galleryHooks = NoopGalleryHooks{}
}
