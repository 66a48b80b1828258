package layout_test

import (
	"fmt"

	"github.com/matzehuels/masonry/pkg/layout"
)

func ExampleResolve() {
	g, err := layout.Resolve(layout.Config{
		ColumnWidth: 240,
		BoxModel:    layout.BoxModel{Padding: 5, Border: 1, Margin: 3},
	}, 750)
	if err != nil {
		panic(err)
	}

	fmt.Println("Outer width:", g.OuterWidth)
	fmt.Println("Columns:", g.Columns)
	// Output:
	// Outer width: 258
	// Columns: 2
}

func ExampleCompute() {
	tiles := []layout.Tile{
		{Width: 258, Height: 100},
		{Width: 258, Height: 50},
		{Width: 258, Height: 80},
		{Width: 258, Height: 30},
	}
	cfg := layout.Config{
		ColumnWidth: 240,
		BoxModel:    layout.BoxModel{Padding: 5, Border: 1, Margin: 3},
	}

	r, err := layout.Compute(cfg, 750, tiles, layout.BestFit)
	if err != nil {
		panic(err)
	}

	for _, p := range r.Placements {
		fmt.Printf("tile %d: column %d at (%v, %v)\n", p.Index, p.Column, p.Left, p.Top)
	}
	fmt.Println("Container:", r.Width, "x", r.Height)
	// Output:
	// tile 0: column 0 at (0, 3)
	// tile 1: column 1 at (258, 3)
	// tile 2: column 1 at (258, 53)
	// tile 3: column 0 at (0, 103)
	// Container: 522 x 136
}

func ExampleCompute_sequential() {
	tiles := []layout.Tile{
		{Width: 100, Height: 100},
		{Width: 100, Height: 50},
		{Width: 100, Height: 80},
		{Width: 100, Height: 30},
	}

	r, err := layout.Compute(layout.Config{ColumnWidth: 100}, 200, tiles, layout.Sequential)
	if err != nil {
		panic(err)
	}

	for _, p := range r.Placements {
		fmt.Printf("tile %d: column %d\n", p.Index, p.Column)
	}
	// Output:
	// tile 0: column 0
	// tile 1: column 1
	// tile 2: column 0
	// tile 3: column 1
}
