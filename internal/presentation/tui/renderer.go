package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/cback/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// NewRenderer returns a function that renders markdown using glamour.
// Colour is dropped when NO_COLOR is set or the terminal cannot show it.
func NewRenderer() func(string) (string, error) {
	style := glamour.WithAutoStyle() // Automatically detect light/dark background
	if os.Getenv("NO_COLOR") != "" || termenv.EnvColorProfile() == termenv.Ascii {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// PlanMarkdown describes a plan as a markdown table.
func PlanMarkdown(plan domain.Plan) string {
	var sb strings.Builder
	sb.WriteString("# Execution plan\n\n")
	if len(plan) == 0 {
		sb.WriteString("_Nothing to execute._\n")
		return sb.String()
	}

	sb.WriteString("| # | Action | Rank | Kind | Hooks | Peers |\n")
	sb.WriteString("|---|--------|------|------|-------|-------|\n")
	for i, b := range plan {
		peers := "-"
		if len(b.Targets) > 0 {
			names := make([]string, len(b.Targets))
			for j, t := range b.Targets {
				names[j] = t.Name
			}
			peers = strings.Join(names, ", ")
		}
		hooks := "-"
		if n := len(b.PreHooks) + len(b.PostHooks); n > 0 {
			hooks = fmt.Sprintf("%d before, %d after", len(b.PreHooks), len(b.PostHooks))
		}
		fmt.Fprintf(&sb, "| %d | %s | %d | %s | %s | %s |\n", i+1, b.Name, b.Rank, b.Kind, hooks, peers)
	}
	return sb.String()
}

// PlanText describes a plan one binding per line, for pipes and logs.
func PlanText(plan domain.Plan) string {
	var sb strings.Builder
	for _, b := range plan {
		fmt.Fprintf(&sb, "%d\t%s\t%s\n", b.Rank, b.Kind, b.String())
	}
	return sb.String()
}
