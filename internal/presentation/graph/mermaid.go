package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/cback/internal/dag"
	"github.com/aretw0/cback/pkg/domain"
)

// GraphOverlay marks which actions a run would execute.
type GraphOverlay struct {
	Planned []string
	Managed []string
}

// GenerateMermaid produces a Mermaid flowchart of an action order graph.
// It applies semantic styling:
// - Standalone actions (rebuild, validate, initialize): ((Circle))
// - Extended actions: [[Subroutine]]
// - Pipeline actions: [Rectangle]
// Vertices and edges are written in insertion order so output is stable.
func GenerateMermaid(g *dag.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	edges := g.Edges()
	for _, v := range g.Vertices() {
		safeID := sanitizeMermaidID(v)

		opener, closer := "[[", "]]"
		switch {
		case isStandalone(v):
			opener, closer = "((", "))"
		case domain.IsBuiltin(v):
			opener, closer = "[", "]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, v, closer))

		for _, e := range edges {
			if e.From == v {
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeMermaidID(e.To)))
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef planned fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef managed fill:#fff3e0,stroke:#e65100,stroke-width:2px,stroke-dasharray:4,color:#000;\n")
		writeClass(&sb, g, overlay.Planned, "planned")
		writeClass(&sb, g, overlay.Managed, "managed")
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, g *dag.Graph, ids []string, class string) {
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] || !g.HasVertex(id) {
			continue
		}
		seen[id] = true
		sb.WriteString(fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(id), class))
	}
}

func isStandalone(name string) bool {
	for _, n := range domain.NonCombinableActions() {
		if n == name {
			return true
		}
	}
	return false
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
