package sink

import (
	"encoding/json"

	"github.com/matzehuels/masonry/pkg/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	animate bool
	compact bool
}

// WithJSONAnimate records that the host animates position changes.
func WithJSONAnimate(on bool) JSONOption { return func(r *jsonRenderer) { r.animate = on } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	Columns     int           `json:"columns"`
	ColumnWidth float64       `json:"column_width"`
	Margin      float64       `json:"margin"`
	Policy      layout.Policy `json:"policy"`
	Animate     bool          `json:"animate,omitempty"`
	Tiles       []jsonTile    `json:"tiles"`
}

type jsonTile struct {
	ID     string  `json:"id"`
	Index  int     `json:"index"`
	Column int     `json:"column"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RenderJSON exports the positioned tiles and container size, in input
// order. It is what a browser host needs to apply a layout without running
// the engine itself.
func RenderJSON(r layout.Result, tiles []layout.Tile, opts ...JSONOption) ([]byte, error) {
	jr := jsonRenderer{}
	for _, opt := range opts {
		opt(&jr)
	}

	out := jsonOutput{
		Width:       r.Width,
		Height:      r.Height,
		Columns:     r.Columns,
		ColumnWidth: r.ColumnWidth,
		Margin:      r.Margin,
		Policy:      r.Policy,
		Animate:     jr.animate,
		Tiles:       []jsonTile{},
	}
	for _, b := range Blocks(r, tiles) {
		out.Tiles = append(out.Tiles, jsonTile{
			ID:     b.ID,
			Index:  b.Index,
			Column: b.Column,
			X:      b.X,
			Y:      b.Y,
			Width:  b.W,
			Height: b.H,
		})
	}

	if jr.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}
