// Package gallery is the host-side lifecycle around the layout engine.
//
// A [Gallery] owns one container: it reads measurements through a
// [Measurer], runs a layout pass, hands the result to a [Renderer] and
// keeps its options. Resize notifications are debounced so a burst of them
// produces a single pass, and animation is only enabled once the initial
// placement has been applied.
//
// Galleries are looked up by numeric id through an injected [Registry]:
//
//	reg := gallery.NewMemoryRegistry()
//	g, err := gallery.New(reg, measurer, renderer)
//	if err != nil { ... }
//	res, err := g.Init(ctx, gallery.Overrides{BestFit: gallery.Bool(false)})
package gallery

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/debounce"
	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/layout"
)

// Gallery is one managed container. All methods are safe for concurrent
// use; layout passes on the same gallery are serialised.
type Gallery struct {
	id       int
	registry Registry
	measurer Measurer
	renderer Renderer
	logger   *log.Logger

	animationDelay time.Duration
	resizeDelay    time.Duration

	mu          sync.Mutex
	opts        Options
	last        layout.Result
	hasLast     bool
	initialized bool
	closed      bool
	ctx         context.Context

	resize    debounce.Timer
	animation debounce.Timer
}

// Option configures a Gallery at construction.
type Option func(*Gallery)

// WithID registers the gallery under an explicit id instead of the next
// free one.
func WithID(id int) Option {
	return func(g *Gallery) { g.id = id }
}

// WithOptions replaces the default options. Overrides passed to Init are
// merged on top.
func WithOptions(o Options) Option {
	return func(g *Gallery) { g.opts = o }
}

// WithLogger sets the logger used for pass failures and lifecycle events.
func WithLogger(l *log.Logger) Option {
	return func(g *Gallery) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithDelays overrides AnimationDelay and ResizeDelay. Zero keeps the
// default.
func WithDelays(animation, resize time.Duration) Option {
	return func(g *Gallery) {
		if animation > 0 {
			g.animationDelay = animation
		}
		if resize > 0 {
			g.resizeDelay = resize
		}
	}
}

// New creates a gallery and registers it. A nil registry gets a private
// MemoryRegistry. The gallery does nothing until Init is called.
func New(reg Registry, m Measurer, r Renderer, opts ...Option) (*Gallery, error) {
	if m == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "gallery: measurer is required")
	}
	if r == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "gallery: renderer is required")
	}
	if reg == nil {
		reg = NewMemoryRegistry()
	}

	g := &Gallery{
		registry:       reg,
		measurer:       m,
		renderer:       r,
		logger:         log.New(io.Discard),
		animationDelay: AnimationDelay,
		resizeDelay:    ResizeDelay,
		opts:           DefaultOptions(),
		ctx:            context.Background(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.id = reg.Register(g, g.id)
	g.logger = g.logger.With("gallery", g.id)
	return g, nil
}

// ID returns the id the gallery is registered under.
func (g *Gallery) ID() int { return g.id }

// Options returns the current options.
func (g *Gallery) Options() Options {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.opts
}

// Last returns the result of the most recent successful pass.
func (g *Gallery) Last() (layout.Result, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last, g.hasLast
}

// Init merges ov into the gallery's options and runs the first pass. When
// animation is enabled it is switched on AnimationDelay after that pass.
// Calling Init on an initialized gallery behaves like Reinit.
//
// ctx bounds the pass and any later debounced passes triggered by
// NotifyResize; once it is done, pending passes are skipped.
func (g *Gallery) Init(ctx context.Context, ov Overrides) (layout.Result, error) {
	return g.Update(ctx, ov, nil)
}

// Reinit merges ov into the current options and runs a pass.
func (g *Gallery) Reinit(ctx context.Context, ov Overrides) (layout.Result, error) {
	return g.Update(ctx, ov, nil)
}

// Update is Reinit with a host change made in the same step. stage runs
// first, with no other pass able to interleave, and returns a function that
// undoes its change. If the pass fails, undo runs and the merged options are
// discarded, so a failed Update leaves the gallery as it was. stage may be
// nil, and so may the undo it returns.
func (g *Gallery) Update(ctx context.Context, ov Overrides, stage func() (undo func())) (layout.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return layout.Result{}, errors.New(errors.ErrCodeGalleryNotFound, "gallery %d is closed", g.id)
	}

	var undo func()
	if stage != nil {
		undo = stage()
	}
	opts := g.opts.Merge(ov)
	res, err := g.relayoutLocked(ctx, opts)
	if err != nil {
		if undo != nil {
			undo()
		}
		return layout.Result{}, err
	}
	g.ctx = ctx
	g.opts = opts

	if !g.initialized {
		g.initialized = true
		g.logger.Debug("initialized", "columns", res.Columns, "policy", res.Policy)
		if opts.Animate {
			g.animation.Start(func() { g.enableAnimation(ctx) }, g.animationDelay)
		}
	}
	return res, nil
}

// Relayout re-measures and runs a pass immediately with the current
// options.
func (g *Gallery) Relayout(ctx context.Context) (layout.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return layout.Result{}, errors.New(errors.ErrCodeGalleryNotFound, "gallery %d is closed", g.id)
	}
	return g.relayoutLocked(ctx, g.opts)
}

// NotifyResize schedules a pass ResizeDelay from now, cancelling any pass
// already scheduled. Failures of the deferred pass are logged.
func (g *Gallery) NotifyResize() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	ctx := g.ctx

	// started under mu so Close cannot slip in before the timer exists
	g.resize.Start(func() {
		if _, err := g.Relayout(ctx); err != nil && !errors.Is(err, errors.ErrCodeGalleryNotFound) {
			g.logger.Warn("resize pass failed", "error", err)
		}
	}, g.resizeDelay)
}

// ResizePending reports whether a debounced pass is waiting to run.
func (g *Gallery) ResizePending() bool {
	return g.resize.Busy()
}

// Close cancels pending timers and removes the gallery from its registry.
// Close is idempotent.
func (g *Gallery) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	g.resize.Stop()
	g.animation.Stop()
	g.registry.Remove(g.id)
	g.logger.Debug("closed")
	return nil
}

func (g *Gallery) relayoutLocked(ctx context.Context, opts Options) (layout.Result, error) {
	if err := ctx.Err(); err != nil {
		return layout.Result{}, err
	}

	avail, err := g.measurer.AvailableWidth(ctx)
	if err != nil {
		return layout.Result{}, errors.Wrap(errors.ErrCodeInternal, err, "measure available width")
	}
	box, err := g.measurer.BoxModel(ctx)
	if err != nil {
		return layout.Result{}, errors.Wrap(errors.ErrCodeInternal, err, "measure box model")
	}
	tiles, err := g.measurer.Tiles(ctx)
	if err != nil {
		return layout.Result{}, errors.Wrap(errors.ErrCodeInternal, err, "measure tiles")
	}

	cfg := layout.Config{ColumnWidth: opts.ColumnWidth, BoxModel: box}
	res, err := layout.Compute(cfg, avail, tiles, opts.Policy())
	if err != nil {
		g.logger.Warn("layout pass rejected", "error", err)
		return layout.Result{}, err
	}

	if err := g.renderer.Apply(ctx, res); err != nil {
		return layout.Result{}, errors.Wrap(errors.ErrCodeInternal, err, "apply layout")
	}
	g.last = res
	g.hasLast = true
	g.logger.Debug("layout applied", "tiles", len(tiles), "columns", res.Columns, "height", res.Height)
	return res, nil
}

func (g *Gallery) enableAnimation(ctx context.Context) {
	g.mu.Lock()
	closed := g.closed
	g.mu.Unlock()
	if closed || ctx.Err() != nil {
		return
	}
	if err := g.renderer.EnableAnimation(ctx); err != nil {
		g.logger.Warn("enable animation failed", "error", err)
	}
}
