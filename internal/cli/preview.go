package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/gallery"
	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/render/sink"
)

const (
	defaultCellWidth = 10.0 // layout units per terminal cell
	previewChrome    = 3    // header, status and help lines
	columnWidthStep  = 1.25
)

var (
	previewHelpStyle  = lipgloss.NewStyle().Foreground(colorDim)
	previewFrameStyle = lipgloss.NewStyle().Foreground(colorWhite)
)

// =============================================================================
// Terminal renderer
// =============================================================================

type layoutMsg layout.Result

type animationMsg struct{}

// termRenderer hands layout passes to the bubbletea program. Only the
// newest pass is kept; the gallery serializes calls to Apply.
type termRenderer struct {
	results  chan layout.Result
	animated chan struct{}
}

func newTermRenderer() *termRenderer {
	return &termRenderer{
		results:  make(chan layout.Result, 1),
		animated: make(chan struct{}, 1),
	}
}

func (r *termRenderer) Apply(_ context.Context, res layout.Result) error {
	select {
	case <-r.results:
	default:
	}
	r.results <- res
	return nil
}

func (r *termRenderer) EnableAnimation(context.Context) error {
	select {
	case r.animated <- struct{}{}:
	default:
	}
	return nil
}

func (r *termRenderer) waitForLayout() tea.Cmd {
	return func() tea.Msg { return layoutMsg(<-r.results) }
}

func (r *termRenderer) waitForAnimation() tea.Cmd {
	return func() tea.Msg {
		<-r.animated
		return animationMsg{}
	}
}

// =============================================================================
// PreviewModel
// =============================================================================

// previewModel shows a gallery in the terminal. Terminal resizes become
// debounced gallery resizes.
type previewModel struct {
	ctx       context.Context
	g         *gallery.Gallery
	host      *gallery.Static
	r         *termRenderer
	tiles     []layout.Tile
	cellWidth float64
	labels    bool

	width, height int
	res           layout.Result
	hasRes        bool
	animated      bool
	err           error
}

func newPreviewModel(ctx context.Context, g *gallery.Gallery, host *gallery.Static, r *termRenderer, tiles []layout.Tile, cellWidth float64, labels bool) previewModel {
	return previewModel{
		ctx:       ctx,
		g:         g,
		host:      host,
		r:         r,
		tiles:     tiles,
		cellWidth: cellWidth,
		labels:    labels,
		width:     80,
		height:    24,
	}
}

func (m previewModel) Init() tea.Cmd {
	return tea.Batch(m.r.waitForLayout(), m.r.waitForAnimation())
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "p":
			m.reinit(gallery.Overrides{BestFit: gallery.Bool(!m.g.Options().BestFit)})
		case "l":
			m.labels = !m.labels
		case "+", "=":
			m.reinit(gallery.Overrides{ColumnWidth: gallery.Float(m.g.Options().ColumnWidth * columnWidthStep)})
		case "-":
			m.reinit(gallery.Overrides{ColumnWidth: gallery.Float(m.g.Options().ColumnWidth / columnWidthStep)})
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.host.SetAvailableWidth(float64(m.width) * m.cellWidth)
		m.g.NotifyResize()
	case layoutMsg:
		m.res = layout.Result(msg)
		m.hasRes = true
		return m, m.r.waitForLayout()
	case animationMsg:
		m.animated = true
	}
	return m, nil
}

func (m *previewModel) reinit(ov gallery.Overrides) {
	_, m.err = m.g.Reinit(m.ctx, ov)
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("masonry preview"))
	if m.hasRes {
		b.WriteString(StyleDim.Render(fmt.Sprintf("  %d tiles · %d columns · %s · %.0f×%.0f",
			len(m.res.Placements), m.res.Columns, m.res.Policy, m.res.Width, m.res.Height)))
	}
	if m.g.ResizePending() {
		b.WriteString(StyleDim.Render(" · resizing"))
	}
	if m.animated {
		b.WriteString(StyleDim.Render(" · animated"))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error())
	} else if m.hasRes {
		var opts []sink.TextOption
		opts = append(opts, sink.WithCellWidth(m.cellWidth))
		if m.labels {
			opts = append(opts, sink.WithTextLabels())
		}
		frame := sink.RenderText(m.res, m.tiles, m.width, opts...)
		lines := strings.Split(frame, "\n")
		if limit := m.height - previewChrome; limit > 0 && len(lines) > limit {
			lines = lines[:limit]
		}
		b.WriteString(previewFrameStyle.Render(strings.Join(lines, "\n")))
	}
	b.WriteString("\n")
	b.WriteString(previewHelpStyle.Render("p policy  l labels  +/- column width  q quit"))
	return b.String()
}

// =============================================================================
// Command
// =============================================================================

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		flags       layoutFlags
		cellWidth   float64
		labels      bool
		inputFormat string
	)

	cmd := &cobra.Command{
		Use:   "preview [manifest.json|-]",
		Short: "Show a live layout in the terminal",
		Long: `Show a live layout in the terminal.

Each terminal cell stands for --cell-width layout units, so resizing the
terminal changes the available width and triggers a debounced relayout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.buildOptions(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			if err := opts.ValidateForLayout(); err != nil {
				return err
			}
			if cellWidth <= 0 {
				cellWidth = defaultCellWidth
			}
			policy, err := layout.ParsePolicy(opts.Policy)
			if err != nil {
				return err
			}
			return c.runPreview(cmd.Context(), opts.Tiles, opts.Box, gallery.Options{
				ColumnWidth: opts.ColumnWidth,
				BestFit:     policy == layout.BestFit,
				Animate:     opts.Animate,
			}, cellWidth, labels)
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&cellWidth, "cell-width", defaultCellWidth, "layout units per terminal cell")
	cmd.Flags().BoolVar(&labels, "labels", true, "draw tile ids")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "format of a manifest read from stdin: json (default), yaml")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, tiles []layout.Tile, box layout.BoxModel, opts gallery.Options, cellWidth float64, labels bool) error {
	host := gallery.NewStatic(80*cellWidth, box, tiles)
	r := newTermRenderer()
	// log lines would corrupt the alternate screen
	g, err := gallery.New(nil, host, r,
		gallery.WithOptions(opts),
		gallery.WithLogger(log.New(io.Discard)))
	if err != nil {
		return err
	}
	defer g.Close()

	if _, err := g.Init(ctx, gallery.Overrides{}); err != nil {
		return err
	}

	p := tea.NewProgram(newPreviewModel(ctx, g, host, r, tiles, cellWidth, labels),
		tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}
