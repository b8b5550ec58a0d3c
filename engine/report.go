package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/spaghettifunk/extruder/engine/core"
)

// Shown diagnostics are capped; the count line still reports all of them.
const maxReportedDiagnostics = 8

var (
	accentFg  = lipgloss.Color("#7C3AED")
	warnFg    = lipgloss.Color("#FFA500")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	borderCol = lipgloss.Color("#243141")

	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(baseDimFg).Width(12)
	warnStyle  = lipgloss.NewStyle().Foreground(warnFg)
)

// RenderPassReport draws the summary printed after every pass.
func RenderPassReport(name string, stats core.PassStats, diags *core.Diagnostics, output string) string {
	row := func(label string, value interface{}) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), fmt.Sprint(value))
	}

	lines := []string{
		titleStyle.Render(name),
		row("features", stats.Features),
		row("parts", stats.Parts),
		row("triangles", stats.Triangles),
		row("drawables", stats.Drawables),
		row("elapsed", stats.Elapsed.Round(time.Microsecond)),
	}
	if output != "" {
		lines = append(lines, row("output", output))
	}

	if diags != nil && diags.Count() > 0 {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("%d diagnostics", diags.Count())))
		entries := diags.Entries()
		if len(entries) > maxReportedDiagnostics {
			entries = entries[len(entries)-maxReportedDiagnostics:]
		}
		var b strings.Builder
		for i, d := range entries {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("  " + d.String())
		}
		lines = append(lines, b.String())
	}

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
