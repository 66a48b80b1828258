package gallery

import (
	"time"

	"github.com/matzehuels/masonry/pkg/layout"
)

// Defaults for a new gallery.
const (
	DefaultColumnWidth = 240.0
	DefaultBestFit     = true
	DefaultAnimate     = true
)

// Host timing. The engine never waits; these only drive a gallery's timers.
const (
	// AnimationDelay is how long after the first pass animation is enabled,
	// so the initial placement itself is not animated.
	AnimationDelay = 10 * time.Millisecond

	// ResizeDelay is the quiet period after the last resize notification
	// before a new pass runs.
	ResizeDelay = 200 * time.Millisecond
)

// Options is the documented configuration contract of a gallery.
type Options struct {
	// ColumnWidth is the content width of a column, excluding padding,
	// border and margin.
	ColumnWidth float64 `json:"column_width" yaml:"column_width" toml:"column_width"`

	// BestFit balances column heights at the cost of visual order.
	BestFit bool `json:"best_fit" yaml:"best_fit" toml:"best_fit"`

	// Animate asks the renderer to animate position changes. It has no
	// effect on the layout itself.
	Animate bool `json:"animate" yaml:"animate" toml:"animate"`
}

// DefaultOptions returns {ColumnWidth: 240, BestFit: true, Animate: true}.
func DefaultOptions() Options {
	return Options{
		ColumnWidth: DefaultColumnWidth,
		BestFit:     DefaultBestFit,
		Animate:     DefaultAnimate,
	}
}

// Policy returns the placement policy selected by BestFit.
func (o Options) Policy() layout.Policy {
	return layout.PolicyFor(o.BestFit)
}

// Overrides is a partial Options. Nil fields leave the current value alone.
type Overrides struct {
	ColumnWidth *float64 `json:"column_width,omitempty" yaml:"column_width,omitempty"`
	BestFit     *bool    `json:"best_fit,omitempty" yaml:"best_fit,omitempty"`
	Animate     *bool    `json:"animate,omitempty" yaml:"animate,omitempty"`
}

// Empty reports whether no field is set.
func (ov Overrides) Empty() bool {
	return ov.ColumnWidth == nil && ov.BestFit == nil && ov.Animate == nil
}

// Merge returns o with every field set in ov replaced.
func (o Options) Merge(ov Overrides) Options {
	if ov.ColumnWidth != nil {
		o.ColumnWidth = *ov.ColumnWidth
	}
	if ov.BestFit != nil {
		o.BestFit = *ov.BestFit
	}
	if ov.Animate != nil {
		o.Animate = *ov.Animate
	}
	return o
}

// Float returns a pointer to v, for building Overrides.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v, for building Overrides.
func Bool(v bool) *bool { return &v }
