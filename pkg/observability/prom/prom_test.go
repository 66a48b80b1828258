package prom

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/masonry/pkg/observability"
)

func TestLayoutMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnLayoutComplete(ctx, "bestfit", 4, time.Millisecond, nil)
	m.OnLayoutComplete(ctx, "bestfit", 0, time.Millisecond, errors.New("outer width"))
	m.OnLayoutComplete(ctx, "sequential", 2, time.Millisecond, nil)

	if got := testutil.ToFloat64(m.layoutsTotal.WithLabelValues("bestfit", "ok")); got != 1 {
		t.Errorf("bestfit ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.layoutsTotal.WithLabelValues("bestfit", "error")); got != 1 {
		t.Errorf("bestfit error = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.layoutColumns); got != 1 {
		t.Errorf("columns histogram series = %d, want 1", got)
	}
}

func TestCacheAndGalleryMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnCacheMiss(ctx, "layout")
	m.OnCacheSet(ctx, "layout", 512)
	m.OnCacheHit(ctx, "layout")
	m.OnCacheHit(ctx, "layout")

	if got := testutil.ToFloat64(m.cacheOps.WithLabelValues("layout", "hit")); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cacheBytes.WithLabelValues("layout")); got != 512 {
		t.Errorf("bytes = %v, want 512", got)
	}

	m.OnGalleryOpen(ctx, 1)
	m.OnGalleryOpen(ctx, 2)
	m.OnGalleryClose(ctx, 1)
	if got := testutil.ToFloat64(m.galleries); got != 1 {
		t.Errorf("open galleries = %v, want 1", got)
	}
}

func TestHTTPMetricsExposed(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	ctx := context.Background()

	m.OnRequest(ctx, http.MethodPost, "/v1/layout")
	m.OnResponse(ctx, http.MethodPost, "/v1/layout", 200, 3*time.Millisecond)

	if got := testutil.ToFloat64(m.httpInflight.WithLabelValues("/v1/layout")); got != 0 {
		t.Errorf("inflight = %v, want 0", got)
	}

	rr := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, `masonry_http_requests_total{method="POST",route="/v1/layout",status="200"} 1`) {
		t.Errorf("request counter missing from scrape:\n%s", body)
	}
}

func TestInstall(t *testing.T) {
	defer observability.Reset()
	m := New(prometheus.NewRegistry())
	m.Install()

	if observability.Pipeline() != observability.PipelineHooks(m) {
		t.Error("Install did not register pipeline hooks")
	}
	if observability.Gallery() != observability.GalleryHooks(m) {
		t.Error("Install did not register gallery hooks")
	}
}

func TestDoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	defer func() {
		if recover() == nil {
			t.Error("registering the collectors twice should panic")
		}
	}()
	New(reg)
}
