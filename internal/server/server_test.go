package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/config"
	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/observability"
	"github.com/matzehuels/masonry/pkg/observability/prom"
	"github.com/matzehuels/masonry/pkg/pipeline"
)

const tilesJSON = `[
	{"id": "a", "width": 100, "height": 100},
	{"id": "b", "width": 100, "height": 50},
	{"id": "c", "width": 100, "height": 70}
]`

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	quiet := log.New(io.Discard)
	runner := pipeline.NewRunner(fc, nil, quiet)
	t.Cleanup(func() { _ = runner.Close() })

	opts = append([]Option{
		WithLogger(quiet),
		WithGalleryDelays(time.Millisecond, 50*time.Millisecond),
	}, opts...)
	s := New(runner, opts...)
	t.Cleanup(s.CloseGalleries)
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s.Handler(), http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if got := w.Header().Get("Server"); !strings.HasPrefix(got, "masonry/") {
		t.Errorf("Server header = %q", got)
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Error("missing request id")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Errorf("request id = %q", got)
	}
}

func TestLayout(t *testing.T) {
	s := newTestServer(t)
	body := `{"tiles": ` + tilesJSON + `, "column_width": 100, "available_width": 250}`

	w := do(t, s.Handler(), http.MethodPost, "/v1/layout", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body)
	}
	if w.Header().Get("X-Cache") != "miss" {
		t.Errorf("first request X-Cache = %q", w.Header().Get("X-Cache"))
	}
	resp := decodeBody[layoutResponse](t, w)
	if resp.Columns != 2 || resp.Height != 120 || resp.Width != 200 {
		t.Errorf("layout = %d columns, %vx%v", resp.Columns, resp.Width, resp.Height)
	}
	if p := resp.Placements[2]; p.Column != 1 || p.Top != 50 {
		t.Errorf("placement c = %+v", p)
	}

	w = do(t, s.Handler(), http.MethodPost, "/v1/layout", body)
	if w.Header().Get("X-Cache") != "hit" || !decodeBody[layoutResponse](t, w).Cached {
		t.Errorf("second request should hit the cache")
	}
}

func TestLayoutErrors(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"bad json", `{"tiles": [`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", `{"columns": 3}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"negative tile", `{"tiles": [{"width": -1, "height": 1}]}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown policy", `{"policy": "shortest"}`, http.StatusBadRequest, errors.ErrCodeInvalidPolicy},
		{"zero outer width", `{"column_width": -20, "box": {"padding": 5}}`, http.StatusBadRequest, errors.ErrCodeInvalidConfiguration},
		{"negative available width", `{"available_width": -1}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s.Handler(), http.MethodPost, "/v1/layout", tt.body)
			if w.Code != tt.status {
				t.Fatalf("status=%d body=%s", w.Code, w.Body)
			}
			if resp := decodeBody[errorResponse](t, w); resp.Code != tt.code {
				t.Errorf("code = %s, want %s", resp.Code, tt.code)
			}
		})
	}
}

func TestLayoutContentType(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/layout", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status=%d", w.Code)
	}
}

func TestRender(t *testing.T) {
	s := newTestServer(t)
	body := `{"tiles": ` + tilesJSON + `, "column_width": 100, "available_width": 250, "labels": true}`

	tests := []struct {
		format string
		ctype  string
		marker string
	}{
		{"svg", "image/svg+xml", "<svg"},
		{"png", "image/png", "\x89PNG"},
		{"json", "application/json", "{"},
		{"txt", "text/plain; charset=utf-8", "┌"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			w := do(t, s.Handler(), http.MethodPost, "/v1/render/"+tt.format, body)
			if w.Code != http.StatusOK {
				t.Fatalf("status=%d body=%s", w.Code, w.Body)
			}
			if got := w.Header().Get("Content-Type"); got != tt.ctype {
				t.Errorf("Content-Type = %q", got)
			}
			if !bytes.Contains(w.Body.Bytes()[:min(64, w.Body.Len())], []byte(tt.marker)) {
				t.Errorf("body starts with %q", w.Body.Bytes()[:min(8, w.Body.Len())])
			}
		})
	}

	w := do(t, s.Handler(), http.MethodPost, "/v1/render/pdf", body)
	if w.Code != http.StatusBadRequest || decodeBody[errorResponse](t, w).Code != errors.ErrCodeInvalidFormat {
		t.Errorf("pdf: status=%d body=%s", w.Code, w.Body)
	}
}

func createGallery(t *testing.T, h http.Handler, body string) galleryResponse {
	t.Helper()
	w := do(t, h, http.MethodPost, "/v1/galleries", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status=%d body=%s", w.Code, w.Body)
	}
	return decodeBody[galleryResponse](t, w)
}

func TestGalleryLifecycle(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	created := createGallery(t, h, `{"tiles": `+tilesJSON+`, "available_width": 250, "column_width": 100}`)
	if created.ID != 1 || created.Layout == nil || created.Layout.Columns != 2 {
		t.Fatalf("created = %+v", created)
	}
	if !created.Options.BestFit || created.Options.ColumnWidth != 100 {
		t.Errorf("options = %+v", created.Options)
	}

	w := do(t, h, http.MethodGet, "/v1/galleries", "")
	if ids := decodeBody[map[string][]int](t, w)["galleries"]; len(ids) != 1 || ids[0] != 1 {
		t.Errorf("ids = %v", ids)
	}

	// switch to sequential and drop a tile
	w = do(t, h, http.MethodPatch, "/v1/galleries/1", `{"best_fit": false, "tiles": [{"width": 100, "height": 10}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch: status=%d body=%s", w.Code, w.Body)
	}
	updated := decodeBody[galleryResponse](t, w)
	if updated.Options.BestFit || len(updated.Layout.Placements) != 1 || updated.Options.ColumnWidth != 100 {
		t.Errorf("updated = %+v", updated)
	}

	w = do(t, h, http.MethodDelete, "/v1/galleries/1", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: status=%d", w.Code)
	}
	w = do(t, h, http.MethodGet, "/v1/galleries/1", "")
	if w.Code != http.StatusNotFound || decodeBody[errorResponse](t, w).Code != errors.ErrCodeGalleryNotFound {
		t.Errorf("get after delete: status=%d body=%s", w.Code, w.Body)
	}

	// ids are not reused
	if next := createGallery(t, h, `{}`); next.ID != 2 {
		t.Errorf("next id = %d, want 2", next.ID)
	}
}

func TestGalleryExplicitID(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	if g := createGallery(t, h, `{"id": 7}`); g.ID != 7 {
		t.Fatalf("id = %d", g.ID)
	}
	w := do(t, h, http.MethodPost, "/v1/galleries", `{"id": 7}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate id: status=%d", w.Code)
	}
	if g := createGallery(t, h, `{}`); g.ID != 8 {
		t.Errorf("assigned id = %d, want 8", g.ID)
	}
}

func TestGalleryInvalidConfiguration(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s.Handler(), http.MethodPost, "/v1/galleries", `{"column_width": -20, "box": {"padding": 5}}`)
	if w.Code != http.StatusBadRequest || decodeBody[errorResponse](t, w).Code != errors.ErrCodeInvalidConfiguration {
		t.Fatalf("status=%d body=%s", w.Code, w.Body)
	}
	if ids := s.registry.IDs(); len(ids) != 0 {
		t.Errorf("failed gallery left registered: %v", ids)
	}
}

func TestGalleryResize(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	createGallery(t, h, `{"tiles": `+tilesJSON+`, "available_width": 250, "column_width": 100, "animate": false}`)

	// several resizes collapse into one pass at the last width
	for _, width := range []string{"300", "350", "450"} {
		w := do(t, h, http.MethodPost, "/v1/galleries/1/resize", `{"available_width": `+width+`}`)
		if w.Code != http.StatusAccepted {
			t.Fatalf("resize: status=%d body=%s", w.Code, w.Body)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		g := decodeBody[galleryResponse](t, do(t, h, http.MethodGet, "/v1/galleries/1", ""))
		if !g.ResizePending && g.Layout.Columns == 4 {
			if g.AvailableWidth != 450 || g.Animated {
				t.Errorf("gallery = %+v", g)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("resize never applied: %+v", g)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if n := s.hosted[1].out.Applied(); n != 2 {
		t.Errorf("applied %d passes, want init + one resize", n)
	}

	w := do(t, h, http.MethodPost, "/v1/galleries/1/resize", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("resize without width: status=%d", w.Code)
	}
}

func TestLayoutHugeAvailableWidth(t *testing.T) {
	s := newTestServer(t)
	body := `{"tiles": ` + tilesJSON + `, "column_width": 100, "available_width": 1e300}`
	w := do(t, s.Handler(), http.MethodPost, "/v1/layout", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body)
	}
	resp := decodeBody[layoutResponse](t, w)
	if len(resp.Placements) != 3 || resp.Height != 100 {
		t.Errorf("layout = %d placements, height %v", len(resp.Placements), resp.Height)
	}
	for k, p := range resp.Placements {
		if p.Column != k || p.Top != 0 {
			t.Errorf("placement %d = %+v", k, p)
		}
	}
}

func TestGalleryUpdateFailureKeepsState(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	createGallery(t, h, `{"tiles": `+tilesJSON+`, "available_width": 250, "column_width": 100}`)

	w := do(t, h, http.MethodPatch, "/v1/galleries/1",
		`{"column_width": 0, "available_width": 999, "tiles": [{"width": 10, "height": 10}]}`)
	if w.Code != http.StatusBadRequest || decodeBody[errorResponse](t, w).Code != errors.ErrCodeInvalidConfiguration {
		t.Fatalf("patch: status=%d body=%s", w.Code, w.Body)
	}

	g := decodeBody[galleryResponse](t, do(t, h, http.MethodGet, "/v1/galleries/1", ""))
	if g.AvailableWidth != 250 || g.Options.ColumnWidth != 100 {
		t.Errorf("gallery after failed patch = %+v", g)
	}
	if g.Layout == nil || len(g.Layout.Placements) != 3 {
		t.Errorf("layout after failed patch = %+v", g.Layout)
	}

	// later passes still use the kept options and host values
	w = do(t, h, http.MethodPatch, "/v1/galleries/1", `{"best_fit": false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch: status=%d body=%s", w.Code, w.Body)
	}
	if g := decodeBody[galleryResponse](t, w); g.Layout.Columns != 2 || len(g.Layout.Placements) != 3 {
		t.Errorf("gallery = %+v", g)
	}
}

func TestGalleryResizeRejectsBadWidth(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	createGallery(t, h, `{"tiles": `+tilesJSON+`, "available_width": 250, "column_width": 100}`)

	w := do(t, h, http.MethodPost, "/v1/galleries/1/resize", `{"available_width": -5}`)
	if w.Code != http.StatusBadRequest || decodeBody[errorResponse](t, w).Code != errors.ErrCodeInvalidInput {
		t.Fatalf("status=%d body=%s", w.Code, w.Body)
	}
	if g := decodeBody[galleryResponse](t, do(t, h, http.MethodGet, "/v1/galleries/1", "")); g.AvailableWidth != 250 || g.ResizePending {
		t.Errorf("gallery = %+v", g)
	}
}

func TestGalleryBadID(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/v1/galleries/abc", "/v1/galleries/0"} {
		if w := do(t, s.Handler(), http.MethodGet, path, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status=%d", path, w.Code)
		}
	}
	if w := do(t, s.Handler(), http.MethodDelete, "/v1/galleries/99", ""); w.Code != http.StatusNotFound {
		t.Errorf("delete unknown: status=%d", w.Code)
	}
}

func TestMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)
	reg := prometheus.NewRegistry()
	prom.New(reg).Install()

	s := newTestServer(t, WithGatherer(reg))
	h := s.Handler()
	do(t, h, http.MethodPost, "/v1/layout", `{"tiles": `+tilesJSON+`}`)
	createGallery(t, h, `{}`)
	do(t, h, http.MethodGet, "/v1/galleries/42", "")

	w := do(t, h, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`masonry_http_requests_total{method="POST",route="/v1/layout",status="200"} 1`,
		`masonry_http_requests_total{method="GET",route="/v1/galleries/{id}",status="404"} 1`,
		`masonry_gallery_open 1`,
		`masonry_layout_passes_total{policy="bestfit",result="ok"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestRunShutdown(t *testing.T) {
	cfg := config.Default().Server
	cfg.Addr = "127.0.0.1:0"
	s := newTestServer(t, WithConfig(cfg))
	createGallery(t, s.Handler(), `{}`)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if ids := s.registry.IDs(); len(ids) != 0 {
		t.Errorf("galleries left open: %v", ids)
	}
}
