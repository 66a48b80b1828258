// Package sink turns a computed [layout.Result] into output formats.
//
// # Overview
//
// A "sink" is a host renderer: it takes the placements of one layout pass
// together with the tiles they were computed from and draws them. This
// package provides:
//
//   - JSON: positioned tiles and container size for browser hosts
//   - SVG: a container rect and one rect per tile
//   - PNG: a raster preview, drawn directly with image/draw
//   - Text: a box-drawing canvas for terminal previews
//
// Every sink draws tiles in input order at (Left, Top) with the tile's own
// outer size; none of them changes the layout.
//
// # SVG Output
//
//	svg := sink.RenderSVG(res, tiles, sink.WithLabels(), sink.WithAnimation())
//
// [WithAnimation] adds a CSS transition so hosts that update x/y in place
// animate moves, mirroring a gallery with Animate enabled.
//
// # PNG Output
//
//	png, err := sink.RenderPNG(res, tiles, sink.WithScale(2), sink.WithPNGLabels())
//
// Labels use the 7x13 bitmap face from golang.org/x/image/font/basicfont and
// are truncated to fit their tile.
//
// # Text Output
//
//	out := sink.RenderText(res, tiles, 80, sink.WithCellWidth(8), sink.WithTextLabels())
//
// # Thread Safety
//
// All render functions are safe to call concurrently; they never modify
// their inputs.
//
// [layout.Result]: github.com/matzehuels/masonry/pkg/layout.Result
package sink
