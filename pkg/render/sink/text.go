package sink

import (
	"math"
	"strings"

	"github.com/matzehuels/masonry/pkg/layout"
)

const maxTextRows = 1 << 16

// TextOption configures RenderText.
type TextOption func(*textRenderer)

type textRenderer struct {
	cellWidth float64 // layout units per column; 0 scales the container to cols
	aspect    float64 // cell height / cell width
	labels    bool
}

// WithCellWidth maps cellWidth layout units to one terminal column instead
// of stretching the container to the full width.
func WithCellWidth(w float64) TextOption {
	return func(r *textRenderer) { r.cellWidth = w }
}

// WithCellAspect sets the height-to-width ratio of a terminal cell
// (default 2).
func WithCellAspect(a float64) TextOption {
	return func(r *textRenderer) { r.aspect = a }
}

// WithTextLabels writes tile ids inside the boxes.
func WithTextLabels() TextOption {
	return func(r *textRenderer) { r.labels = true }
}

// RenderText draws the layout on a character grid at most cols wide, one
// box-drawing rectangle per tile. Lines are newline-separated without a
// trailing newline. A layout that would need more than 65536 rows renders
// as the empty string.
func RenderText(r layout.Result, tiles []layout.Tile, cols int, opts ...TextOption) string {
	tr := textRenderer{aspect: 2}
	for _, opt := range opts {
		opt(&tr)
	}
	if cols <= 0 || !(r.Width > 0) || !(r.Height > 0) || !(tr.aspect > 0) {
		return ""
	}

	sx := float64(cols) / r.Width
	if tr.cellWidth > 0 {
		sx = 1 / tr.cellWidth
	}
	sy := sx / tr.aspect

	// clamp in float space; huge containers overflow int
	fw, fh := math.Ceil(r.Width*sx), math.Ceil(r.Height*sy)
	if !(fw >= 1) || !(fh >= 1) || fh > maxTextRows {
		return ""
	}
	width, height := cols, int(fh)
	if fw < float64(cols) {
		width = int(fw)
	}

	grid := make([][]rune, height)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", width))
	}
	set := func(x, y int, ch rune) {
		if y >= 0 && y < height && x >= 0 && x < width {
			grid[y][x] = ch
		}
	}

	for _, b := range Blocks(r, tiles) {
		if b.X*sx >= float64(width) {
			continue
		}
		x0, y0 := int(math.Round(b.X*sx)), int(math.Round(b.Y*sy))
		x1, y1 := int(math.Round(min((b.X+b.W)*sx, float64(width)+1)))-1, int(math.Round((b.Y+b.H)*sy))-1
		x1, y1 = max(x1, x0), max(y1, y0)

		if x1 == x0 || y1 == y0 {
			for y := y0; y <= y1; y++ {
				for x := x0; x <= x1; x++ {
					set(x, y, '█')
				}
			}
			continue
		}

		for x := x0 + 1; x < x1; x++ {
			set(x, y0, '─')
			set(x, y1, '─')
		}
		for y := y0 + 1; y < y1; y++ {
			set(x0, y, '│')
			set(x1, y, '│')
		}
		set(x0, y0, '┌')
		set(x1, y0, '┐')
		set(x0, y1, '└')
		set(x1, y1, '┘')

		if tr.labels && y1-y0 >= 2 && x1-x0 >= 2 {
			label := []rune(b.Label())
			if room := x1 - x0 - 1; len(label) > room {
				label = label[:room]
			}
			x := x0 + 1 + (x1-x0-1-len(label))/2
			y := (y0 + y1) / 2
			for i, ch := range label {
				set(x+i, y, ch)
			}
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		lines[y] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}
