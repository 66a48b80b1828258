// Package pipeline provides the layout → render pipeline shared by the CLI
// and the API server.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Layout: resolve the container geometry and place every tile
//  2. Render: turn the result into SVG, PNG, JSON or text artifacts
//
// Each stage can be run on its own or through [Runner.Execute]. A [Runner]
// caches both stages; keys are content hashes of the tiles and every option
// that affects the output, so repeating a pass with the same inputs is a
// cache hit.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Tiles:          tiles,
//	    ColumnWidth:    240,
//	    AvailableWidth: 1024,
//	    Formats:        []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/gallery"
	pkgio "github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultColumnWidth matches a new gallery's column width.
	DefaultColumnWidth = gallery.DefaultColumnWidth

	// DefaultAvailableWidth is used when no container width is given.
	DefaultAvailableWidth = 1024.0

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// DefaultTextColumns is the width of text artifacts in terminal cells.
	DefaultTextColumns = 80
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatText = "txt"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
	FormatText: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Tiles          []layout.Tile   `json:"tiles"`
	Box            layout.BoxModel `json:"box"`
	ColumnWidth    float64         `json:"column_width,omitempty"`
	AvailableWidth float64         `json:"available_width,omitempty"`
	Policy         string          `json:"policy,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Animate bool     `json:"animate,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Refresh bypasses cache lookups; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// policy is the parsed Policy, set by ValidateForLayout.
	policy layout.Policy
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the computed placement of every tile.
	Layout layout.Result

	// TilesHash is the content hash of the input tiles.
	TilesHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TileCount  int
	Columns    int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Constructors
// =============================================================================

// FromManifest builds Options from a decoded manifest. Manifest options
// that are not set keep the zero value, so defaults (or flags applied
// afterwards) fill them in.
func FromManifest(m *pkgio.Manifest) Options {
	opts := Options{
		Tiles:  m.Tiles,
		Box:    m.Box,
		Policy: m.Policy,
	}
	if m.ColumnWidth != nil {
		opts.ColumnWidth = *m.ColumnWidth
	}
	if m.AvailableWidth != nil {
		opts.AvailableWidth = *m.AvailableWidth
	}
	if m.Animate != nil {
		opts.Animate = *m.Animate
	}
	return opts
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, json, txt)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.ColumnWidth == 0 {
		o.ColumnWidth = DefaultColumnWidth
	}
	if o.AvailableWidth == 0 {
		o.AvailableWidth = DefaultAvailableWidth
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout applies layout defaults and checks widths, tiles, box
// model and policy. Geometry errors (a non-positive outer width) are left to
// the layout engine.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errors.ValidateLayoutWidths(o.ColumnWidth, o.AvailableWidth); err != nil {
		return err
	}
	for i, t := range o.Tiles {
		if err := errors.ValidateTileSize(i, t.Width, t.Height); err != nil {
			return err
		}
	}
	if err := errors.ValidateBoxModel(o.Box.Padding, o.Box.Border, o.Box.Margin); err != nil {
		return err
	}
	p, err := layout.ParsePolicy(o.Policy)
	if err != nil {
		return err
	}
	o.policy = p
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults validates both stages. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// LayoutConfig returns the engine configuration.
func (o *Options) LayoutConfig() layout.Config {
	return layout.Config{ColumnWidth: o.ColumnWidth, BoxModel: o.Box}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		ColumnWidth:    o.ColumnWidth,
		Padding:        o.Box.Padding,
		Border:         o.Box.Border,
		Margin:         o.Box.Margin,
		AvailableWidth: o.AvailableWidth,
		Policy:         o.policy.String(),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:  format,
		Labels:  o.Labels,
		Animate: o.Animate,
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
