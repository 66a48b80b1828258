// Package layout computes masonry tile layouts.
//
// # Overview
//
// A layout pass arranges fixed-width, variable-height tiles into columns and
// sizes the container to exactly bound them. It runs in two steps:
//
//  1. [Resolve] derives the column count and the outer column width from the
//     configured column width, the per-tile [BoxModel] and the width the host
//     measured for the container's parent.
//  2. [Place] assigns every tile to a column under a [Policy] and computes
//     its absolute position plus the final container size.
//
// [Compute] runs both steps as one pass.
//
// # Geometry
//
// The outer width of a column is the content width plus padding, border and
// margin on both sides:
//
//	outer   = columnWidth + 2*(padding + border + margin)
//	columns = max(1, floor((availableWidth - 2*margin) / outer))
//
// A container narrower than one tile still gets a single column. A
// configuration whose outer width is not positive fails with
// INVALID_CONFIGURATION.
//
// # Placement Policies
//
//   - [BestFit] (default): each tile goes to the currently shortest column,
//     ties broken by the lowest column index. Columns stay balanced, but the
//     visual order is no longer the input order.
//   - [Sequential]: tile k goes to column k mod columns, preserving strict
//     left-to-right, top-to-bottom reading order.
//
// Tiles are centered horizontally in their column slot. A tile wider than the
// slot gets a negative offset; overflow is the renderer's problem.
//
// # Concurrency
//
// Every function in this package is pure. Column state lives only for the
// duration of one [Place] call, so concurrent passes over different (or the
// same) inputs are safe, and identical inputs always produce identical
// results. The package has no timers: when to run a pass is up to the host.
package layout
