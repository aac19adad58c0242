package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cladeview/pkg/clade"
	"github.com/matzehuels/cladeview/pkg/pipeline"
	"github.com/matzehuels/cladeview/pkg/sector"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// File Output
// =============================================================================

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Stats Display
// =============================================================================

// printStatLine prints dim parts joined by a middle dot on one indented line.
func printStatLine(parts []string) {
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// layoutStats describes a laid out tree: size, scale and cache status.
func layoutStats(res *pipeline.Result) []string {
	var parts []string
	if n := res.Stats.NodeCount; n > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d nodes", n)))
	}
	if n := res.Stats.TipCount; n > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d tips", n)))
	}
	if res.Layout.Scale > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("scale %.4g", res.Layout.Scale)))
	}
	if res.CacheInfo.LayoutHit {
		parts = append(parts, styleCached.Render(iconCached))
	} else {
		parts = append(parts, styleComputed.Render(iconFresh))
	}
	return parts
}

// bufferStats describes a vertex buffer. The color is read from the first
// vertex; buffers holding several colors say "mixed".
func bufferStats(buf sector.Buffer) []string {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d sector(s)", buf.Sectors())),
		StyleDim.Render(fmt.Sprintf("%d vertices", buf.Vertices())),
	}
	if buf.Vertices() == 0 {
		return parts
	}
	c := buf.Vertex(0).Color
	for i := 1; i < buf.Vertices(); i++ {
		if buf.Vertex(i).Color != c {
			return append(parts, StyleDim.Render("mixed colors"))
		}
	}
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color("#" + c.Hex()))
	return append(parts, swatch.Render("■")+" "+StyleDim.Render(c.Hex()))
}

// cladeStats describes a clade's wedge.
func cladeStats(s clade.Shape) []string {
	return []string{
		StyleDim.Render(fmt.Sprintf("%d tips", s.Tips)),
		StyleDim.Render("sweep " + formatDegrees(s.Sweep)),
		StyleDim.Render(fmt.Sprintf("radius %.2f", s.Radius)),
	}
}

// formatDegrees renders an angle in radians as degrees.
func formatDegrees(rad float64) string {
	return fmt.Sprintf("%.1f°", rad*180/math.Pi)
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Utilities
// =============================================================================

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}
