// Package dag implements a small directed graph over named vertices with a
// deterministic topological sort.
//
// The sort is Kahn's algorithm with the ready set scanned in vertex insertion
// order, so among vertices with no ordering constraint between them the one
// created first comes first.
package dag

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateVertex is returned when a vertex name is created twice.
	ErrDuplicateVertex = errors.New("vertex already exists")
	// ErrUnknownVertex is returned when an edge references a vertex that does not exist.
	ErrUnknownVertex = errors.New("unknown vertex")
	// ErrCycle is returned by TopologicalSort when the graph is not acyclic.
	ErrCycle = errors.New("graph contains a cycle")
)

// Edge means From must be ordered before To.
type Edge struct {
	From string
	To   string
}

// Graph is a directed graph. It is not safe for concurrent mutation.
type Graph struct {
	name     string
	vertices []string
	known    map[string]struct{}
	edges    []Edge
	edgeSet  map[Edge]struct{}
}

// New creates an empty graph. The name only appears in error messages.
func New(name string) *Graph {
	return &Graph{
		name:    name,
		known:   make(map[string]struct{}),
		edgeSet: make(map[Edge]struct{}),
	}
}

// Name returns the graph name.
func (g *Graph) Name() string {
	return g.name
}

// CreateVertex adds a vertex.
func (g *Graph) CreateVertex(name string) error {
	if _, ok := g.known[name]; ok {
		return fmt.Errorf("%s: %w: %s", g.name, ErrDuplicateVertex, name)
	}
	g.known[name] = struct{}{}
	g.vertices = append(g.vertices, name)
	return nil
}

// CreateEdge adds the edge from -> to. Adding an existing edge again is a no-op.
func (g *Graph) CreateEdge(from, to string) error {
	if _, ok := g.known[from]; !ok {
		return fmt.Errorf("%s: %w: %s", g.name, ErrUnknownVertex, from)
	}
	if _, ok := g.known[to]; !ok {
		return fmt.Errorf("%s: %w: %s", g.name, ErrUnknownVertex, to)
	}
	e := Edge{From: from, To: to}
	if _, ok := g.edgeSet[e]; ok {
		return nil
	}
	g.edgeSet[e] = struct{}{}
	g.edges = append(g.edges, e)
	return nil
}

// HasVertex reports whether name is a vertex of the graph.
func (g *Graph) HasVertex(name string) bool {
	_, ok := g.known[name]
	return ok
}

// Vertices returns the vertices in insertion order.
func (g *Graph) Vertices() []string {
	out := make([]string, len(g.vertices))
	copy(out, g.vertices)
	return out
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// TopologicalSort returns a linear ordering consistent with every edge.
// The graph itself is not modified, so a failed sort can be retried after fixing edges.
func (g *Graph) TopologicalSort() ([]string, error) {
	indegree := make(map[string]int, len(g.vertices))
	successors := make(map[string][]string, len(g.vertices))
	for _, e := range g.edges {
		indegree[e.To]++
		successors[e.From] = append(successors[e.From], e.To)
	}

	done := make(map[string]bool, len(g.vertices))
	order := make([]string, 0, len(g.vertices))
	for len(order) < len(g.vertices) {
		next := ""
		found := false
		for _, v := range g.vertices {
			if !done[v] && indegree[v] == 0 {
				next, found = v, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%s: %w among %v", g.name, ErrCycle, g.unresolved(done))
		}
		done[next] = true
		order = append(order, next)
		for _, s := range successors[next] {
			indegree[s]--
		}
	}
	return order, nil
}

func (g *Graph) unresolved(done map[string]bool) []string {
	var out []string
	for _, v := range g.vertices {
		if !done[v] {
			out = append(out, v)
		}
	}
	return out
}
