package layout

import (
	"math"

	"github.com/matzehuels/masonry/pkg/errors"
)

// BoxModel is the per-tile spacing supplied by the host. Only the left values
// are measured; the right side is assumed to be equal.
type BoxModel struct {
	Padding float64 `json:"padding" yaml:"padding" toml:"padding"`
	Border  float64 `json:"border" yaml:"border" toml:"border"`
	Margin  float64 `json:"margin" yaml:"margin" toml:"margin"`
}

// Spacing returns padding + border + margin for one side of a tile.
func (b BoxModel) Spacing() float64 { return b.Padding + b.Border + b.Margin }

// Config is the layout configuration: the nominal content width of a column
// and the box model of the tiles placed in it.
type Config struct {
	ColumnWidth float64 `json:"column_width" yaml:"column_width" toml:"column_width"`
	BoxModel
}

// Geometry is the resolved container geometry for one layout pass.
type Geometry struct {
	Config
	AvailableWidth float64 `json:"available_width"`
	OuterWidth     float64 `json:"outer_width"`
	Columns        int     `json:"columns"`
}

// Outer returns the outer column width: columnWidth + 2*(padding + border + margin).
func (c Config) Outer() float64 {
	return c.ColumnWidth + 2*c.Spacing()
}

// Resolve derives the column count and outer column width for a container
// whose parent is availableWidth wide.
//
// Resolve fails with INVALID_CONFIGURATION when the outer width is not
// positive (including NaN). Any availableWidth is accepted: widths smaller
// than one column and NaN resolve to a single column, and the column count
// saturates at math.MaxInt for huge or infinite widths.
func Resolve(cfg Config, availableWidth float64) (Geometry, error) {
	outer := cfg.Outer()
	if !(outer > 0) {
		return Geometry{}, errors.New(errors.ErrCodeInvalidConfiguration,
			"outer column width must be positive (column width %v, padding %v, border %v, margin %v)",
			cfg.ColumnWidth, cfg.Padding, cfg.Border, cfg.Margin)
	}

	columns := 1
	switch n := math.Floor((availableWidth - 2*cfg.Margin) / outer); {
	case n >= math.MaxInt:
		columns = math.MaxInt
	case n > 1:
		columns = int(n)
	}

	return Geometry{
		Config:         cfg,
		AvailableWidth: availableWidth,
		OuterWidth:     outer,
		Columns:        columns,
	}, nil
}

// ContainerWidth returns the width of a container that exactly bounds the
// columns: columns*outer + 2*margin.
func (g Geometry) ContainerWidth() float64 {
	return float64(g.Columns)*g.OuterWidth + 2*g.Margin
}
