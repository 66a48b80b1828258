package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/masonry/pkg/buildinfo"
	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/pipeline"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatText: "text/plain; charset=utf-8",
}

type layoutResponse struct {
	layout.Result
	TilesHash string `json:"tiles_hash"`
	Cached    bool   `json:"cached"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	n := len(s.hosted)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   buildinfo.Version,
		"galleries": n,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := decode(w, r, s.cfg.MaxBodyBytes, &opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheHeader(hit))
	writeJSON(w, http.StatusOK, layoutResponse{
		Result:    res,
		TilesHash: pipeline.HashTiles(opts.Tiles),
		Cached:    hit,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	var opts pipeline.Options
	if err := decode(w, r, s.cfg.MaxBodyBytes, &opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data := result.Artifacts[format]
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Cache", cacheHeader(result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func cacheHeader(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
