package sink

import (
	"strconv"

	"github.com/matzehuels/masonry/pkg/layout"
)

// Block is one positioned tile as every sink draws it.
type Block struct {
	ID         string  // tile id, or its index when the tile has none
	Index      int     // position in the input slice
	Column     int     // assigned column
	X, Y, W, H float64 // position and outer size
}

// Label returns the text drawn on the block.
func (b Block) Label() string { return b.ID }

// CX returns the horizontal center of the block.
func (b Block) CX() float64 { return b.X + b.W/2 }

// CY returns the vertical center of the block.
func (b Block) CY() float64 { return b.Y + b.H/2 }

// Blocks pairs the placements of r with the tiles they were computed from.
// Placements whose index is out of range are skipped.
func Blocks(r layout.Result, tiles []layout.Tile) []Block {
	blocks := make([]Block, 0, len(r.Placements))
	for _, pl := range r.Placements {
		if pl.Index < 0 || pl.Index >= len(tiles) {
			continue
		}
		t := tiles[pl.Index]
		id := t.ID
		if id == "" {
			id = strconv.Itoa(pl.Index)
		}
		blocks = append(blocks, Block{
			ID:     id,
			Index:  pl.Index,
			Column: pl.Column,
			X:      pl.Left,
			Y:      pl.Top,
			W:      t.Width,
			H:      t.Height,
		})
	}
	return blocks
}
