package pipeline

import (
	"fmt"

	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/render/sink"
)

// Render generates output artifacts in the requested formats. Options must
// have been validated with ValidateForRender.
func Render(r layout.Result, tiles []layout.Tile, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(r, tiles, buildSVGOptions(opts)...)
		case FormatPNG:
			data, err = sink.RenderPNG(r, tiles, buildPNGOptions(opts)...)
		case FormatJSON:
			data, err = sink.RenderJSON(r, tiles, sink.WithJSONAnimate(opts.Animate))
		case FormatText:
			var textOpts []sink.TextOption
			if opts.Labels {
				textOpts = append(textOpts, sink.WithTextLabels())
			}
			data = []byte(sink.RenderText(r, tiles, DefaultTextColumns, textOpts...) + "\n")
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.Labels {
		out = append(out, sink.WithLabels())
	}
	if opts.Animate {
		out = append(out, sink.WithAnimation())
	}
	return out
}

func buildPNGOptions(opts Options) []sink.PNGOption {
	out := []sink.PNGOption{sink.WithScale(opts.Scale)}
	if opts.Labels {
		out = append(out, sink.WithPNGLabels())
	}
	return out
}
