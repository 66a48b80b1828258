package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/masonry/pkg/layout"
)

// uiOut receives all human-facing status lines. Logs go to the logger's
// writer instead.
var uiOut io.Writer = os.Stdout

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleTitle is used for headings such as the preview title bar.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight marks addresses and other values worth spotting.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	StyleDim   = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
	separator   = " · "
)

// =============================================================================
// Status lines
// =============================================================================

func status(icon string, style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(uiOut, style.Render(icon)+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { status(iconSuccess, styleIconSuccess, format, args...) }
func printError(format string, args ...any)   { status(iconError, styleIconError, format, args...) }
func printInfo(format string, args ...any)    { status(iconInfo, styleIconInfo, format, args...) }

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// statsLine summarizes a layout: tile count, columns, policy, container
// size and whether it came from the cache.
func statsLine(tileCount int, res layout.Result, cached bool) string {
	parts := []string{
		fmt.Sprintf("%d tiles", tileCount),
		fmt.Sprintf("%d columns", res.Columns),
		res.Policy.String(),
		fmt.Sprintf("%.0f×%.0f", res.Width, res.Height),
	}
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}

	origin := styleIconInfo.Render("fresh")
	if cached {
		origin = styleIconSuccess.Render("cached")
	}
	return "  " + strings.Join(append(parts, origin), StyleDim.Render(separator))
}

func printStats(tileCount int, res layout.Result, cached bool) {
	fmt.Fprintln(uiOut, statsLine(tileCount, res, cached))
}

// printNextStep suggests a follow-up command, preceded by a blank line.
func printNextStep(description, cmd string) {
	fmt.Fprintln(uiOut)
	fmt.Fprintln(uiOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
