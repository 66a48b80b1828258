package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/masonry/pkg/layout"
)

const tileCSS = `
    .container { fill: %s; }
    .tile { fill: %s; stroke: %s; stroke-width: 1; }
    .tile-label { font-family: monospace; font-size: 12px; fill: %s; text-anchor: middle; dominant-baseline: middle; }`

const animateCSS = `
    .tile, .tile-label { transition: x 0.3s ease, y 0.3s ease; }`

// Palette is the set of colors used by the SVG and PNG sinks.
type Palette struct {
	Background string
	Fill       string
	Stroke     string
	Text       string
}

// DefaultPalette is a light grey container with white tiles.
var DefaultPalette = Palette{
	Background: "#f4f4f5",
	Fill:       "#ffffff",
	Stroke:     "#52525b",
	Text:       "#18181b",
}

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	labels  bool
	animate bool
	palette Palette
}

func WithLabels() SVGOption           { return func(r *svgRenderer) { r.labels = true } }
func WithAnimation() SVGOption        { return func(r *svgRenderer) { r.animate = true } }
func WithPalette(p Palette) SVGOption { return func(r *svgRenderer) { r.palette = p } }

// RenderSVG draws the container and one rect per tile. Tiles keep their
// input order so ids stay stable between passes.
func RenderSVG(r layout.Result, tiles []layout.Tile, opts ...SVGOption) []byte {
	sr := svgRenderer{palette: DefaultPalette}
	for _, opt := range opts {
		opt(&sr)
	}
	p := sr.palette

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.Width, r.Height, r.Width, r.Height)

	buf.WriteString("  <style>")
	fmt.Fprintf(&buf, tileCSS, p.Background, p.Fill, p.Stroke, p.Text)
	if sr.animate {
		buf.WriteString(animateCSS)
	}
	buf.WriteString("\n  </style>\n")

	fmt.Fprintf(&buf, `  <rect class="container" x="0" y="0" width="%.1f" height="%.1f"/>`+"\n", r.Width, r.Height)

	blocks := Blocks(r, tiles)
	for _, b := range blocks {
		fmt.Fprintf(&buf, `  <rect id="tile-%s" class="tile" data-column="%d" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
			html.EscapeString(b.ID), b.Column, b.X, b.Y, b.W, b.H)
	}
	if sr.labels {
		for _, b := range blocks {
			fmt.Fprintf(&buf, `  <text class="tile-label" x="%.1f" y="%.1f">%s</text>`+"\n",
				b.CX(), b.CY(), html.EscapeString(b.Label()))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
