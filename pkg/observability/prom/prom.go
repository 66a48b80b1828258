// Package prom implements the observability hooks with Prometheus
// collectors.
//
// Collectors are registered on the Registerer passed to [New], so tests and
// embedded servers can use a private registry:
//
//	reg := prometheus.NewRegistry()
//	m := prom.New(reg)
//	observability.SetPipelineHooks(m)
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/masonry/pkg/observability"
)

const namespace = "masonry"

// Metrics holds the collectors. It implements every hook interface in
// package observability.
type Metrics struct {
	layoutsTotal   *prometheus.CounterVec
	layoutDuration *prometheus.HistogramVec
	layoutColumns  prometheus.Histogram
	renderDuration *prometheus.HistogramVec

	cacheOps   *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInflight *prometheus.GaugeVec
	httpErrors   *prometheus.CounterVec

	galleries prometheus.Gauge
}

// New creates the collectors and registers them on reg. It panics if any
// collector is already registered, like prometheus.MustRegister.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		layoutsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "passes_total",
			Help:      "Layout passes by policy and outcome.",
		}, []string{"policy", "result"}),
		layoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "duration_seconds",
			Help:      "Duration of layout passes in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"policy"}),
		layoutColumns: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "columns",
			Help:      "Column count of successful layout passes.",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16},
		}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Duration of artifact rendering in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache lookups and writes by key type.",
		}, []string{"key_type", "op"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		httpInflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "In-flight HTTP requests.",
		}, []string{"route"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Requests that ended in an error response.",
		}, []string{"route", "method"}),
		galleries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gallery",
			Name:      "open",
			Help:      "Galleries currently registered.",
		}),
	}

	reg.MustRegister(
		m.layoutsTotal, m.layoutDuration, m.layoutColumns, m.renderDuration,
		m.cacheOps, m.cacheBytes,
		m.httpRequests, m.httpDuration, m.httpInflight, m.httpErrors,
		m.galleries,
	)
	return m
}

// Install registers m as every global hook.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
	observability.SetGalleryHooks(m)
}

func (m *Metrics) OnLayoutStart(context.Context, string, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, policy string, columns int, d time.Duration, err error) {
	m.layoutsTotal.WithLabelValues(policy, outcome(err)).Inc()
	m.layoutDuration.WithLabelValues(policy).Observe(d.Seconds())
	if err == nil {
		m.layoutColumns.Observe(float64(columns))
	}
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.renderDuration.WithLabelValues(outcome(err)).Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(_ context.Context, _, route string) {
	m.httpInflight.WithLabelValues(route).Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	m.httpInflight.WithLabelValues(route).Dec()
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpDuration.WithLabelValues(route, method, code).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, route string, _ error) {
	m.httpErrors.WithLabelValues(route, method).Inc()
}

func (m *Metrics) OnGalleryOpen(context.Context, int)  { m.galleries.Inc() }
func (m *Metrics) OnGalleryClose(context.Context, int) { m.galleries.Dec() }

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
	_ observability.GalleryHooks  = (*Metrics)(nil)
)
