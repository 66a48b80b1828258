package gallery

import (
	"context"
	"sync"

	"github.com/matzehuels/masonry/pkg/layout"
)

// Measurer supplies live measurements from the host. How they are obtained
// (a DOM, a terminal, a request body) is up to the implementation.
type Measurer interface {
	// AvailableWidth returns the current width of the container's parent.
	AvailableWidth(ctx context.Context) (float64, error)

	// BoxModel returns the padding, border and margin applied to each tile.
	BoxModel(ctx context.Context) (layout.BoxModel, error)

	// Tiles returns the current outer size of every tile, in order.
	Tiles(ctx context.Context) ([]layout.Tile, error)
}

// Renderer applies layout results to the host's visual tiles.
type Renderer interface {
	// Apply positions the tiles and sizes the container.
	Apply(ctx context.Context, r layout.Result) error

	// EnableAnimation turns on transitions for subsequent position changes.
	EnableAnimation(ctx context.Context) error
}

// Static is a Measurer backed by values held in memory. It is safe for
// concurrent use; setters take effect on the next pass.
type Static struct {
	mu    sync.RWMutex
	width float64
	box   layout.BoxModel
	tiles []layout.Tile
}

// NewStatic creates a Static measurer.
func NewStatic(width float64, box layout.BoxModel, tiles []layout.Tile) *Static {
	return &Static{width: width, box: box, tiles: append([]layout.Tile(nil), tiles...)}
}

func (s *Static) AvailableWidth(context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, nil
}

func (s *Static) BoxModel(context.Context) (layout.BoxModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.box, nil
}

// Tiles returns a copy of the current tiles.
func (s *Static) Tiles(context.Context) ([]layout.Tile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]layout.Tile(nil), s.tiles...), nil
}

// SetAvailableWidth updates the measured container width.
func (s *Static) SetAvailableWidth(w float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = w
}

// SetBoxModel updates the tile box model.
func (s *Static) SetBoxModel(b layout.BoxModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.box = b
}

// SetTiles replaces the tiles.
func (s *Static) SetTiles(tiles []layout.Tile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiles = append([]layout.Tile(nil), tiles...)
}

// StaticState is a copy of the values held by a Static.
type StaticState struct {
	AvailableWidth float64
	Box            layout.BoxModel
	Tiles          []layout.Tile
}

// Snapshot returns the current values.
func (s *Static) Snapshot() StaticState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StaticState{AvailableWidth: s.width, Box: s.box, Tiles: append([]layout.Tile(nil), s.tiles...)}
}

// Restore replaces every value with st.
func (s *Static) Restore(st StaticState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.box, s.tiles = st.AvailableWidth, st.Box, append([]layout.Tile(nil), st.Tiles...)
}

// Recorder is a Renderer that remembers what it was asked to do. The HTTP
// API serves galleries from it.
type Recorder struct {
	mu       sync.RWMutex
	last     layout.Result
	applied  int
	animated bool
}

func (r *Recorder) Apply(_ context.Context, res layout.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = res
	r.applied++
	return nil
}

func (r *Recorder) EnableAnimation(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.animated = true
	return nil
}

// Last returns the most recently applied result. ok is false before the
// first Apply.
func (r *Recorder) Last() (res layout.Result, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.applied > 0
}

// Applied returns the number of results applied so far.
func (r *Recorder) Applied() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.applied
}

// Animated reports whether EnableAnimation has been called.
func (r *Recorder) Animated() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.animated
}

var (
	_ Measurer = (*Static)(nil)
	_ Renderer = (*Recorder)(nil)
)
