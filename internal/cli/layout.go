package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/errors"
	pkgio "github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/pipeline"
)

// layoutFlags are the flags shared by layout, render and preview. Only
// flags the user set override the manifest and the config file.
type layoutFlags struct {
	columnWidth    float64
	availableWidth float64
	policy         string
	padding        float64
	border         float64
	margin         float64
	noCache        bool
	refresh        bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.columnWidth, "column-width", 0, "content width of one column (default from config, 240)")
	fs.Float64Var(&f.availableWidth, "width", 0, "available container width (default 1024)")
	fs.StringVar(&f.policy, "policy", "", "placement policy: bestfit (default), sequential")
	fs.Float64Var(&f.padding, "padding", 0, "per-tile padding")
	fs.Float64Var(&f.border, "border", 0, "per-tile border width")
	fs.Float64Var(&f.margin, "margin", 0, "per-tile margin")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&f.refresh, "refresh", false, "recompute even when a cached result exists")
}

// buildOptions loads the manifest and layers config, manifest and flags.
func (c *CLI) buildOptions(cmd *cobra.Command, input string, f *layoutFlags) (pipeline.Options, error) {
	m, err := readManifest(cmd, input)
	if err != nil {
		return pipeline.Options{}, err
	}

	opts := pipeline.FromManifest(m)
	if m.ColumnWidth == nil {
		opts.ColumnWidth = c.Config.Gallery.ColumnWidth
	}
	if opts.Policy == "" {
		opts.Policy = c.Config.Gallery.Policy().String()
	}
	if m.Box == (layout.BoxModel{}) {
		opts.Box = c.Config.Box
	}
	if m.Animate == nil {
		opts.Animate = c.Config.Gallery.Animate
	}

	fs := cmd.Flags()
	if fs.Changed("column-width") {
		opts.ColumnWidth = f.columnWidth
	}
	if fs.Changed("width") {
		opts.AvailableWidth = f.availableWidth
	}
	if fs.Changed("policy") {
		opts.Policy = f.policy
	}
	if fs.Changed("padding") {
		opts.Box.Padding = f.padding
	}
	if fs.Changed("border") {
		opts.Box.Border = f.border
	}
	if fs.Changed("margin") {
		opts.Box.Margin = f.margin
	}
	opts.Refresh = f.refresh
	opts.Logger = c.Logger
	return opts, nil
}

// readManifest reads input, or stdin when input is "-". Stdin is decoded
// as JSON unless --input-format says otherwise.
func readManifest(cmd *cobra.Command, input string) (*pkgio.Manifest, error) {
	if input != "-" {
		return pkgio.ImportManifest(input)
	}
	format := pkgio.FormatJSON
	if fl := cmd.Flags().Lookup("input-format"); fl != nil && fl.Value.String() != "" {
		var err error
		if format, err = pkgio.ParseFormat(fl.Value.String()); err != nil {
			return nil, err
		}
	}
	return pkgio.ReadManifest(cmd.InOrStdin(), format)
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags       layoutFlags
		output      string
		inputFormat string
	)

	cmd := &cobra.Command{
		Use:   "layout [manifest.json|-]",
		Short: "Compute a tile layout from a manifest",
		Long: `Compute a tile layout from a manifest.

The manifest lists the tiles (outer width and height) and optionally the box
model, column width, available width and placement policy. The result lists
the column and position of every tile plus the container size, and is written
as JSON or YAML depending on the output extension.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.buildOptions(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, .json or .yaml (default: <input>.layout.json, - for stdout)")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "format of a manifest read from stdin: json (default), yaml")

	return cmd
}

// runLayout computes the layout and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, cacheHit, err := runner.LayoutWithCacheInfo(ctx, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	prog.done(fmt.Sprintf("Placed %d tiles in %d columns", len(opts.Tiles), res.Columns))

	if output == "-" {
		return pkgio.WriteResult(res, os.Stdout, pkgio.FormatJSON)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = defaultOutputBase(input) + ".layout.json"
	}
	if err := pkgio.WriteResultFile(res, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(opts.Tiles), res, cacheHit)
	printNextStep("Render", fmt.Sprintf("%s render %s", appName, input))
	return nil
}

// defaultOutputBase strips the extension from input. Stdin input writes
// to "masonry" in the working directory.
func defaultOutputBase(input string) string {
	if input == "-" {
		return appName
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

// ExitCode maps an error to a process exit code: 2 for invalid input,
// configuration or missing files, 1 otherwise.
func ExitCode(err error) int {
	if errors.IsInvalid(err) || errors.IsNotFound(err) {
		return 2
	}
	return 1
}
