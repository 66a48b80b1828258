package layout

import "math"

// Tile is the outer size of one tile, including its own padding, border and
// margin. ID is carried through to renderers and never affects placement.
type Tile struct {
	ID     string  `json:"id,omitempty" yaml:"id,omitempty"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Placement is the position assigned to the tile at Index.
type Placement struct {
	Index  int     `json:"index" yaml:"index"`
	Column int     `json:"column" yaml:"column"`
	Left   float64 `json:"left" yaml:"left"`
	Top    float64 `json:"top" yaml:"top"`
}

// Result is the outcome of one layout pass.
type Result struct {
	Placements  []Placement `json:"placements" yaml:"placements"`
	Policy      Policy      `json:"policy" yaml:"policy"`
	Columns     int         `json:"columns" yaml:"columns"`
	ColumnWidth float64     `json:"column_width" yaml:"column_width"` // outer width of one column slot
	Margin      float64     `json:"margin" yaml:"margin"`
	Width       float64     `json:"width" yaml:"width"`   // container width
	Height      float64     `json:"height" yaml:"height"` // container height
}

// Place assigns every tile to a column and computes its position.
//
// Tiles are processed in input order. Under [Sequential] tile k lands in
// column k mod g.Columns; under [BestFit] it lands in the first column whose
// running top is minimal. Within a column, tops grow in
// assignment order by the heights of the tiles above and never overlap.
//
// Place never fails for a Geometry produced by [Resolve]. With no tiles the
// container is g.Margin tall.
func Place(tiles []Tile, g Geometry, p Policy) Result {
	columns := g.Columns
	if columns < 1 {
		columns = 1
	}

	// columns past the tile count never receive a tile and stay at margin
	tops := make([]float64, min(columns, max(len(tiles), 1)))
	for i := range tops {
		tops[i] = g.Margin
	}

	placements := make([]Placement, len(tiles))
	for k, t := range tiles {
		col := k % columns
		if p == BestFit {
			col = shortest(tops)
		}

		placements[k] = Placement{
			Index:  k,
			Column: col,
			Left:   float64(col)*g.OuterWidth + math.Floor((g.OuterWidth-t.Width)/2),
			Top:    tops[col],
		}
		tops[col] += t.Height
	}

	height := tallest(tops)
	if len(tops) < columns {
		height = max(height, g.Margin)
	}

	return Result{
		Placements:  placements,
		Policy:      p,
		Columns:     columns,
		ColumnWidth: g.OuterWidth,
		Margin:      g.Margin,
		Width:       float64(columns)*g.OuterWidth + 2*g.Margin,
		Height:      height + g.Margin,
	}
}

// shortest returns the index of the first minimal value.
func shortest(tops []float64) int {
	idx := 0
	for i, top := range tops {
		if top < tops[idx] {
			idx = i
		}
	}
	return idx
}

func tallest(tops []float64) float64 {
	h := tops[0]
	for _, top := range tops[1:] {
		if top > h {
			h = top
		}
	}
	return h
}

// Compute runs one full layout pass: [Resolve] followed by [Place]. On error
// no partial result is returned.
func Compute(cfg Config, availableWidth float64, tiles []Tile, p Policy) (Result, error) {
	g, err := Resolve(cfg, availableWidth)
	if err != nil {
		return Result{}, err
	}
	return Place(tiles, g, p), nil
}

// Column returns the placements assigned to column col, in assignment order.
func (r Result) Column(col int) []Placement {
	var out []Placement
	for _, pl := range r.Placements {
		if pl.Column == col {
			out = append(out, pl)
		}
	}
	return out
}

// Tops returns the running top of every column that can hold a tile, i.e.
// where the next tile in that column would go. There is one entry per column
// up to the tile count (at least one); columns past that are always empty
// and sit at Margin. tiles must be the slice the result was computed from.
func (r Result) Tops(tiles []Tile) []float64 {
	tops := make([]float64, min(max(r.Columns, 1), max(len(tiles), 1)))
	for i := range tops {
		tops[i] = r.Margin
	}
	for _, pl := range r.Placements {
		if end := pl.Top + tiles[pl.Index].Height; end > tops[pl.Column] {
			tops[pl.Column] = end
		}
	}
	return tops
}
