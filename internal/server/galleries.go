package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/gallery"
	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/observability"
	"github.com/matzehuels/masonry/pkg/pipeline"
)

// galleryRequest creates or updates a hosted gallery. On update, nil fields
// keep their current value.
type galleryRequest struct {
	ID             int              `json:"id,omitempty"`
	AvailableWidth *float64         `json:"available_width,omitempty"`
	Box            *layout.BoxModel `json:"box,omitempty"`
	Tiles          []layout.Tile    `json:"tiles,omitempty"`
	gallery.Overrides
}

func (req galleryRequest) validate() error {
	if req.ID < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "gallery id must be positive (got %d)", req.ID)
	}
	for i, t := range req.Tiles {
		if err := errors.ValidateTileSize(i, t.Width, t.Height); err != nil {
			return err
		}
		if err := errors.ValidateTileID(t.ID); err != nil {
			return err
		}
	}
	if req.AvailableWidth != nil {
		if err := errors.ValidateDimension("available_width", *req.AvailableWidth); err != nil {
			return err
		}
	}
	if req.ColumnWidth != nil {
		if err := errors.ValidateLayoutWidths(*req.ColumnWidth, 0); err != nil {
			return err
		}
	}
	if req.Box != nil {
		return errors.ValidateBoxModel(req.Box.Padding, req.Box.Border, req.Box.Margin)
	}
	return nil
}

type galleryResponse struct {
	ID             int             `json:"id"`
	Options        gallery.Options `json:"options"`
	AvailableWidth float64         `json:"available_width"`
	Layout         *layout.Result  `json:"layout,omitempty"`
	Animated       bool            `json:"animated"`
	ResizePending  bool            `json:"resize_pending"`
}

func (s *Server) describe(r *http.Request, h *hostedGallery) galleryResponse {
	avail, _ := h.host.AvailableWidth(r.Context())
	resp := galleryResponse{
		ID:             h.g.ID(),
		Options:        h.g.Options(),
		AvailableWidth: avail,
		Animated:       h.out.Animated(),
		ResizePending:  h.g.ResizePending(),
	}
	if res, ok := h.out.Last(); ok {
		resp.Layout = &res
	}
	return resp
}

func (s *Server) lookup(r *http.Request) (*hostedGallery, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid gallery id %q", raw)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hosted[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeGalleryNotFound, "gallery %d not found", id)
	}
	return h, nil
}

func (s *Server) handleListGalleries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]int{"galleries": s.registry.IDs()})
}

func (s *Server) handleCreateGallery(w http.ResponseWriter, r *http.Request) {
	var req galleryRequest
	if err := decode(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	avail := pipeline.DefaultAvailableWidth
	if req.AvailableWidth != nil {
		avail = *req.AvailableWidth
	}
	var box layout.BoxModel
	if req.Box != nil {
		box = *req.Box
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if req.ID > 0 {
		if _, ok := s.registry.Lookup(req.ID); ok {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "gallery %d already exists", req.ID))
			return
		}
	}

	h := &hostedGallery{
		host: gallery.NewStatic(avail, box, req.Tiles),
		out:  &gallery.Recorder{},
	}
	g, err := gallery.New(s.registry, h.host, h.out,
		gallery.WithID(req.ID),
		gallery.WithOptions(s.defaults),
		gallery.WithLogger(s.logger),
		gallery.WithDelays(s.delays[0], s.delays[1]))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	h.g = g
	if _, err := g.Init(s.baseCtx, req.Overrides); err != nil {
		_ = g.Close()
		s.writeError(w, r, err)
		return
	}
	s.hosted[g.ID()] = h
	observability.Gallery().OnGalleryOpen(r.Context(), g.ID())
	s.logger.Info("gallery created", "gallery", g.ID(), "tiles", len(req.Tiles))

	writeJSON(w, http.StatusCreated, s.describe(r, h))
}

func (s *Server) handleGetGallery(w http.ResponseWriter, r *http.Request) {
	h, err := s.lookup(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.describe(r, h))
}

func (s *Server) handleUpdateGallery(w http.ResponseWriter, r *http.Request) {
	h, err := s.lookup(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req galleryRequest
	if err := decode(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ID != 0 && req.ID != h.g.ID() {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "gallery id cannot be changed"))
		return
	}

	stage := func() func() {
		prev := h.host.Snapshot()
		if req.AvailableWidth != nil {
			h.host.SetAvailableWidth(*req.AvailableWidth)
		}
		if req.Box != nil {
			h.host.SetBoxModel(*req.Box)
		}
		if req.Tiles != nil {
			h.host.SetTiles(req.Tiles)
		}
		return func() { h.host.Restore(prev) }
	}
	if _, err := h.g.Update(s.baseCtx, req.Overrides, stage); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.describe(r, h))
}

type resizeRequest struct {
	AvailableWidth *float64 `json:"available_width"`
}

func (s *Server) handleResizeGallery(w http.ResponseWriter, r *http.Request) {
	h, err := s.lookup(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req resizeRequest
	if err := decode(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.AvailableWidth == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "available_width is required"))
		return
	}
	if err := errors.ValidateDimension("available_width", *req.AvailableWidth); err != nil {
		s.writeError(w, r, err)
		return
	}
	h.host.SetAvailableWidth(*req.AvailableWidth)
	h.g.NotifyResize()
	writeJSON(w, http.StatusAccepted, s.describe(r, h))
}

func (s *Server) handleDeleteGallery(w http.ResponseWriter, r *http.Request) {
	h, err := s.lookup(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := h.g.ID()
	s.mu.Lock()
	delete(s.hosted, id)
	s.mu.Unlock()

	_ = h.g.Close()
	observability.Gallery().OnGalleryClose(r.Context(), id)
	s.logger.Info("gallery closed", "gallery", id)
	w.WriteHeader(http.StatusNoContent)
}
