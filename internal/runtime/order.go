package runtime

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/cback/internal/dag"
	"github.com/aretw0/cback/pkg/domain"
)

// ResolveOrder maps every built-in action and extension to its execution rank.
// Index mode and dependency mode are never mixed within one run.
func ResolveOrder(snap domain.Snapshot, logger *slog.Logger) (map[string]int, error) {
	if err := checkExtensionNames(snap.Extensions); err != nil {
		logger.Error("Extended action name is not usable.", "err", err)
		return nil, err
	}
	if snap.Mode() == domain.OrderModeDependency {
		logger.Info("Action ordering will use 'dependency' order mode.")
		return dependencyOrder(snap.Extensions, logger)
	}
	logger.Info("Action ordering will use 'index' order mode.")
	ranks := domain.BuiltinIndices()
	for _, ext := range snap.Extensions {
		ranks[ext.Name] = ext.Index
	}
	logger.Info("Action order resolved.", "mode", domain.OrderModeIndex, "order", sortedByRank(ranks))
	return ranks, nil
}

// checkExtensionNames rejects extensions that reuse a built-in name, "all",
// or the name of an earlier extension. Both order modes share one namespace.
func checkExtensionNames(exts []domain.ExtensionDeclaration) error {
	seen := make(map[string]bool, len(exts))
	for _, ext := range exts {
		switch {
		case domain.IsBuiltin(ext.Name):
			return &domain.OrderResolutionError{Extension: ext.Name, Err: fmt.Errorf("%w: name is reserved for a built-in action", dag.ErrDuplicateVertex)}
		case seen[ext.Name]:
			return &domain.OrderResolutionError{Extension: ext.Name, Err: fmt.Errorf("%w: declared more than once", dag.ErrDuplicateVertex)}
		}
		seen[ext.Name] = true
	}
	return nil
}

// DependencyGraph builds the ordering graph: one vertex per built-in and
// extension, the fixed pipeline edges, then each extension's before/after edges.
func DependencyGraph(exts []domain.ExtensionDeclaration) (*dag.Graph, error) {
	g := dag.New("dependencies")
	vertices := []string{
		domain.ActionRebuild, domain.ActionValidate, domain.ActionInitialize,
		domain.ActionCollect, domain.ActionStage, domain.ActionStore, domain.ActionPurge,
	}
	for _, ext := range exts {
		vertices = append(vertices, ext.Name)
	}
	for _, v := range vertices {
		if err := g.CreateVertex(v); err != nil {
			return nil, &domain.OrderResolutionError{Extension: v, Err: err}
		}
	}

	pipeline := []dag.Edge{
		{From: domain.ActionCollect, To: domain.ActionStage},
		{From: domain.ActionCollect, To: domain.ActionStore},
		{From: domain.ActionCollect, To: domain.ActionPurge},
		{From: domain.ActionStage, To: domain.ActionStore},
		{From: domain.ActionStage, To: domain.ActionPurge},
		{From: domain.ActionStore, To: domain.ActionPurge},
	}
	for _, e := range pipeline {
		if err := g.CreateEdge(e.From, e.To); err != nil {
			return nil, &domain.OrderResolutionError{Err: err}
		}
	}

	for _, ext := range exts {
		for _, before := range ext.Before {
			if err := g.CreateEdge(ext.Name, before); err != nil {
				return nil, &domain.OrderResolutionError{Extension: ext.Name, Err: fmt.Errorf("dependency [%s]: %w", before, err)}
			}
		}
		for _, after := range ext.After {
			if err := g.CreateEdge(after, ext.Name); err != nil {
				return nil, &domain.OrderResolutionError{Extension: ext.Name, Err: fmt.Errorf("dependency [%s]: %w", after, err)}
			}
		}
	}
	return g, nil
}

func dependencyOrder(exts []domain.ExtensionDeclaration, logger *slog.Logger) (map[string]int, error) {
	g, err := DependencyGraph(exts)
	if err != nil {
		logger.Error("Extension dependency is unknown.", "err", err)
		return nil, err
	}
	ordering, err := g.TopologicalSort()
	if err != nil {
		if errors.Is(err, dag.ErrCycle) {
			logger.Error("Unable to determine proper action order due to dependency recursion; check extensions for loops.", "err", err)
		}
		return nil, &domain.OrderResolutionError{Err: err}
	}
	ranks := make(map[string]int, len(ordering))
	for i, name := range ordering {
		ranks[name] = i + 1
	}
	logger.Info("Action order resolved.", "mode", domain.OrderModeDependency, "order", ordering)
	return ranks, nil
}

// OrderGraph returns a graph describing the effective order, for display.
// In index mode, each group of equal rank points at the next group.
func OrderGraph(snap domain.Snapshot) (*dag.Graph, error) {
	if err := checkExtensionNames(snap.Extensions); err != nil {
		return nil, err
	}
	if snap.Mode() == domain.OrderModeDependency {
		return DependencyGraph(snap.Extensions)
	}
	ranks := domain.BuiltinIndices()
	for _, ext := range snap.Extensions {
		ranks[ext.Name] = ext.Index
	}
	names := sortedByRank(ranks)
	g := dag.New("index")
	for _, n := range names {
		if err := g.CreateVertex(n); err != nil {
			return nil, err
		}
	}
	var prev []string
	for i := 0; i < len(names); {
		j := i
		for j < len(names) && ranks[names[j]] == ranks[names[i]] {
			j++
		}
		group := names[i:j]
		for _, p := range prev {
			for _, n := range group {
				if err := g.CreateEdge(p, n); err != nil {
					return nil, err
				}
			}
		}
		prev = group
		i = j
	}
	return g, nil
}

// sortedByRank lists names by rank, breaking ties by name.
func sortedByRank(ranks map[string]int) []string {
	names := make([]string, 0, len(ranks))
	for n := range ranks {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if ranks[names[i]] != ranks[names[j]] {
			return ranks[names[i]] < ranks[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
