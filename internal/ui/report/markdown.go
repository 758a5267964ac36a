package report

import (
	"fmt"
	"strings"

	"modgraph/internal/core/app"
)

// Markdown renders r as a markdown document with the DOT graph embedded
// when dot is not empty.
func Markdown(r app.Report, dot string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# modgraph report: %s\n\n", r.Project)
	fmt.Fprintf(&b, "| Modules | Edges | Circular groups | Violations | Import errors |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d |\n\n",
		r.Modules, r.Edges, len(r.CircularGroups), len(r.Violations), len(r.Errors))

	if r.CompileError != nil {
		fmt.Fprintf(&b, "## Compilation failed\n\n```\n%s\n```\n\n", r.CompileError)
	}
	if len(r.Order) > 0 {
		b.WriteString("## Compilation order\n\n")
		for i, name := range r.Order {
			fmt.Fprintf(&b, "%d. `%s`\n", i+1, name)
		}
		b.WriteString("\n")
	}
	if len(r.CircularGroups) > 0 {
		b.WriteString("## Circular groups\n\n")
		for _, group := range r.CircularGroups {
			fmt.Fprintf(&b, "- %s\n", strings.Join(group, " ↔ "))
		}
		b.WriteString("\n")
	}
	if len(r.Violations) > 0 {
		b.WriteString("## Visibility violations\n\n")
		b.WriteString("| Symbol | Location | Declared | Required |\n|---|---|---|---|\n")
		for _, v := range r.Violations {
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", v.Symbol, v.Location, v.Actual, v.Required)
		}
		b.WriteString("\n")
	}
	if len(r.Errors) > 0 {
		b.WriteString("## Import errors\n\n")
		for _, err := range r.Errors {
			fmt.Fprintf(&b, "- %v\n", err)
		}
		b.WriteString("\n")
	}
	if dot != "" {
		fmt.Fprintf(&b, "## Graph\n\n```dot\n%s\n```\n", strings.TrimRight(dot, "\n"))
	}
	return b.String()
}
