// Package report renders a session report for terminals and markdown files.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"modgraph/internal/core/app"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().Bold(true)

	cycleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// Text renders r for a terminal. Styling degrades to plain text when the
// output has no colour support.
func Text(r app.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("modgraph: %s", r.Project)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d modules, %d edges, entry %s", r.Modules, r.Edges, r.Entry)))
	b.WriteString("\n\n")

	if r.CompileError != nil {
		b.WriteString(cycleStyle.Render("Compilation failed"))
		b.WriteString("\n")
		b.WriteString(indent(r.CompileError.Error()))
		b.WriteString("\n\n")
	}

	if len(r.Order) > 0 {
		b.WriteString(sectionStyle.Render("Compilation order"))
		b.WriteString("\n")
		for i, name := range r.Order {
			fmt.Fprintf(&b, "  %2d. %s\n", i+1, name)
		}
		b.WriteString("\n")
	}

	if len(r.CircularGroups) > 0 {
		b.WriteString(cycleStyle.Render(fmt.Sprintf("Circular groups (%d)", len(r.CircularGroups))))
		b.WriteString("\n")
		for _, group := range r.CircularGroups {
			fmt.Fprintf(&b, "  - %s\n", strings.Join(group, ", "))
		}
		b.WriteString("\n")
	}

	if len(r.Violations) > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("Visibility violations (%d)", len(r.Violations))))
		b.WriteString("\n")
		for _, v := range r.Violations {
			fmt.Fprintf(&b, "  - %s\n", v)
		}
		b.WriteString("\n")
	}

	if len(r.Errors) > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("Import errors (%d)", len(r.Errors))))
		b.WriteString("\n")
		for _, err := range r.Errors {
			fmt.Fprintf(&b, "  - %v\n", err)
		}
		b.WriteString("\n")
	}

	if len(r.Hotspots) > 0 {
		b.WriteString(sectionStyle.Render("Hotspots"))
		b.WriteString("\n")
		for _, h := range r.Hotspots {
			fmt.Fprintf(&b, "  %-32s score %5.1f  in %d  out %d  depth %d  exports %d\n",
				h.Path, h.Metrics.ImportanceScore, h.Metrics.FanIn, h.Metrics.FanOut, h.Metrics.Depth, h.Metrics.Exports)
		}
		b.WriteString("\n")
	}

	if r.RunID != "" {
		b.WriteString(dimStyle.Render("export run " + r.RunID))
		b.WriteString("\n")
	}

	if r.OK() {
		b.WriteString(successStyle.Render("✔ no problems found"))
	} else {
		b.WriteString(cycleStyle.Render("✘ problems found"))
	}
	b.WriteString("\n")
	return b.String()
}

func indent(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
