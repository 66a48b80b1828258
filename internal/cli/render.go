package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/pipeline"
)

// renderCommand creates the render command for generating output artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags       layoutFlags
		output      string
		formatsStr  string
		inputFormat string
	)
	opts := pipeline.Options{Scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [manifest.json|-]",
		Short: "Lay out a manifest and render it to SVG, PNG, JSON or text",
		Long: `Lay out a manifest and render it.

Formats are given as a comma-separated list (-f svg,png). A single format is
written to --output as given; several formats share the output path as a base
name and get one file per format extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			built, err := c.buildOptions(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			built.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(built.Formats); err != nil {
				return err
			}
			built.Labels = opts.Labels
			built.Scale = opts.Scale
			if cmd.Flags().Changed("animate") {
				built.Animate = opts.Animate
			}
			return c.runRender(cmd.Context(), args[0], built, output, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json, txt (comma-separated)")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "format of a manifest read from stdin: json (default), yaml")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "draw tile ids")
	cmd.Flags().BoolVar(&opts.Animate, "animate", false, "add position transitions (svg) or the animate flag (json)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG pixels per layout unit")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths := outputPaths(input, output, opts.Formats)
	formats := make([]string, 0, len(paths))
	for f := range paths {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	printSuccess("Rendered %d tiles", result.Stats.TileCount)
	for _, format := range formats {
		path := paths[format]
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats.TileCount, result.Layout, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	c.Logger.Debug("render timings", "layout", result.Stats.LayoutTime, "render", result.Stats.RenderTime)
	return nil
}

// outputPaths maps each format to its output file. A single format with an
// explicit output uses it as is; otherwise output (or the input name) is a
// base path with any known format extension stripped.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path from the output and input file paths.
func basePath(output, input string) string {
	if output == "" {
		return defaultOutputBase(input)
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
