// Package io reads tile manifests and reads and writes layout results.
//
// # Manifest Format
//
// A manifest describes one gallery: the outer size of every tile, the box
// model applied to each tile and, optionally, the layout options. It can be
// written as JSON or YAML:
//
//	{
//	  "tiles": [
//	    {"id": "sunset", "width": 240, "height": 320},
//	    {"id": "harbor", "width": 240, "height": 180}
//	  ],
//	  "box": {"padding": 4, "border": 1, "margin": 5},
//	  "column_width": 240,
//	  "available_width": 1024,
//	  "policy": "bestfit"
//	}
//
// Only tiles is required. Missing options are filled in by the caller
// (flags, config file or [gallery.DefaultOptions]).
//
// # Validation
//
// Manifests are validated when read: tile sizes must be finite and
// non-negative, tile ids must be plain text, the box model must be
// non-negative and the policy must be one [layout.ParsePolicy] accepts.
// Failures carry INVALID_INPUT, INVALID_CONFIGURATION, INVALID_POLICY or
// INVALID_MANIFEST from pkg/errors, wrapped with the offending tile.
//
// # Results
//
// [WriteResult] and [ReadResult] encode a [layout.Result] in the same
// format, so results can be cached, diffed and re-rendered later.
//
// [gallery.DefaultOptions]: github.com/matzehuels/masonry/pkg/gallery.DefaultOptions
package io
