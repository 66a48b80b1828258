// Package pkg provides the core libraries for Masonry column layouts.
//
// # Overview
//
// Masonry places variable-height tiles into equal-width columns. The pkg
// directory is organized into three areas:
//
//  1. Domain logic: [layout] (geometry and placement) and [gallery]
//     (stateful galleries with debounced relayout)
//  2. Outputs: [render/sink] (SVG, PNG, JSON, text) and [io] (manifests and
//     serialized results)
//  3. Infrastructure: [pipeline], [cache], [config], [observability],
//     [debounce], [errors] and [buildinfo]
//
// # Data Flow
//
//	manifest.json / manifest.yaml
//	       ↓
//	    [io] ReadManifest
//	       ↓
//	    [layout] Resolve (column count, outer width, left offsets)
//	       ↓
//	    [layout] Place (best fit or sequential)
//	       ↓
//	    [render/sink] SVG, PNG, JSON, text
//
// The [pipeline] package runs both stages behind a [cache] and is shared by
// the CLI and the HTTP API.
//
// # Quick Start
//
//	cfg := layout.Config{ColumnWidth: 240, BoxModel: layout.BoxModel{Padding: 8}}
//	res, err := layout.Compute(cfg, 1024, tiles, layout.BestFit)
//	if err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(res, tiles, sink.WithLabels())
//
// A gallery keeps its options between passes and relayouts when its host
// reports a resize:
//
//	g, _ := gallery.New(nil, host, renderer)
//	g.Init(ctx, gallery.Overrides{BestFit: gallery.Bool(false)})
//	host.SetAvailableWidth(800)
//	g.NotifyResize()
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/layout/...   # Specific package
//	go test -run Example       # Examples only
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/layout
// [gallery]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/gallery
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/render/sink
// [io]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/observability
// [debounce]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/debounce
// [errors]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/buildinfo
package pkg
