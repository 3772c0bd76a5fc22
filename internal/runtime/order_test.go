package runtime_test

import (
	"testing"

	"github.com/aretw0/cback/internal/logging"
	"github.com/aretw0/cback/internal/runtime"
	"github.com/aretw0/cback/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOrder_IndexMode(t *testing.T) {
	snap := domain.Snapshot{
		Extensions: []domain.ExtensionDeclaration{
			{Name: "encrypt", Module: "exec", Function: "/usr/bin/encrypt", Index: 299},
			{Name: "report", Module: "exec", Function: "/usr/bin/report", Index: 500},
		},
	}

	ranks, err := runtime.ResolveOrder(snap, logging.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 0, ranks["rebuild"])
	assert.Equal(t, 0, ranks["validate"])
	assert.Equal(t, 0, ranks["initialize"])
	assert.Equal(t, 100, ranks["collect"])
	assert.Equal(t, 200, ranks["stage"])
	assert.Equal(t, 300, ranks["store"])
	assert.Equal(t, 400, ranks["purge"])
	assert.Equal(t, 299, ranks["encrypt"])
	assert.Equal(t, 500, ranks["report"])
}

func TestResolveOrder_NoExtensionsIgnoresDependencyMode(t *testing.T) {
	ranks, err := runtime.ResolveOrder(domain.Snapshot{OrderMode: domain.OrderModeDependency}, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, domain.BuiltinIndices(), ranks)
}

func TestResolveOrder_DependencyMode(t *testing.T) {
	snap := domain.Snapshot{
		OrderMode: domain.OrderModeDependency,
		Extensions: []domain.ExtensionDeclaration{
			{Name: "encrypt", Module: "exec", Function: "/usr/bin/encrypt", After: []string{"stage"}, Before: []string{"store"}},
			{Name: "report", Module: "exec", Function: "/usr/bin/report"},
		},
	}

	ranks, err := runtime.ResolveOrder(snap, logging.NewNop())
	require.NoError(t, err)

	expected := map[string]int{
		"rebuild": 1, "validate": 2, "initialize": 3,
		"collect": 4, "stage": 5, "encrypt": 6, "store": 7, "purge": 8,
		"report": 9,
	}
	assert.Equal(t, expected, ranks)
}

func TestResolveOrder_DependencyPipelineHolds(t *testing.T) {
	// Extensions pulling built-ins around never reorder the pipeline itself.
	snap := domain.Snapshot{
		OrderMode: domain.OrderModeDependency,
		Extensions: []domain.ExtensionDeclaration{
			{Name: "first", Before: []string{"collect"}},
			{Name: "last", After: []string{"purge"}},
			{Name: "middle", After: []string{"collect"}, Before: []string{"purge"}},
		},
	}

	ranks, err := runtime.ResolveOrder(snap, logging.NewNop())
	require.NoError(t, err)

	pipeline := domain.PipelineActions()
	for i := 1; i < len(pipeline); i++ {
		assert.Less(t, ranks[pipeline[i-1]], ranks[pipeline[i]])
	}
	assert.Less(t, ranks["first"], ranks["collect"])
	assert.Greater(t, ranks["last"], ranks["purge"])
	assert.Greater(t, ranks["middle"], ranks["collect"])
	assert.Less(t, ranks["middle"], ranks["purge"])
}

func TestResolveOrder_DependencyCycle(t *testing.T) {
	snap := domain.Snapshot{
		OrderMode: domain.OrderModeDependency,
		Extensions: []domain.ExtensionDeclaration{
			{Name: "a", Before: []string{"b"}},
			{Name: "b", Before: []string{"a"}},
		},
	}

	_, err := runtime.ResolveOrder(snap, logging.NewNop())
	assert.ErrorIs(t, err, domain.ErrOrderResolution)
}

func TestResolveOrder_CycleThroughPipeline(t *testing.T) {
	snap := domain.Snapshot{
		OrderMode: domain.OrderModeDependency,
		Extensions: []domain.ExtensionDeclaration{
			{Name: "bad", After: []string{"purge"}, Before: []string{"collect"}},
		},
	}

	_, err := runtime.ResolveOrder(snap, logging.NewNop())
	assert.ErrorIs(t, err, domain.ErrOrderResolution)
}

func TestResolveOrder_UnknownDependency(t *testing.T) {
	snap := domain.Snapshot{
		OrderMode: domain.OrderModeDependency,
		Extensions: []domain.ExtensionDeclaration{
			{Name: "encrypt", After: []string{"nosuch"}},
		},
	}

	_, err := runtime.ResolveOrder(snap, logging.NewNop())
	require.ErrorIs(t, err, domain.ErrOrderResolution)

	var oerr *domain.OrderResolutionError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, "encrypt", oerr.Extension)
}

func TestResolveOrder_ExtensionNameClashes(t *testing.T) {
	tests := []struct {
		name string
		exts []domain.ExtensionDeclaration
		bad  string
	}{
		{"builtin name", []domain.ExtensionDeclaration{{Name: "collect", Module: "m", Function: "f", Index: 500}}, "collect"},
		{"all", []domain.ExtensionDeclaration{{Name: "all", Module: "m", Function: "f", Index: 1}}, "all"},
		{"duplicate", []domain.ExtensionDeclaration{
			{Name: "encrypt", Module: "m", Function: "a", Index: 250},
			{Name: "encrypt", Module: "m", Function: "b", Index: 350},
		}, "encrypt"},
	}
	for _, tt := range tests {
		for _, mode := range []domain.OrderMode{domain.OrderModeIndex, domain.OrderModeDependency} {
			t.Run(tt.name+"/"+string(mode), func(t *testing.T) {
				snap := domain.Snapshot{OrderMode: mode, Extensions: tt.exts}

				_, err := runtime.ResolveOrder(snap, logging.NewNop())
				require.ErrorIs(t, err, domain.ErrOrderResolution)
				var oerr *domain.OrderResolutionError
				require.ErrorAs(t, err, &oerr)
				assert.Equal(t, tt.bad, oerr.Extension)

				_, err = runtime.OrderGraph(snap)
				assert.ErrorIs(t, err, domain.ErrOrderResolution)
			})
		}
	}
}

func TestOrderGraph_IndexGroups(t *testing.T) {
	g, err := runtime.OrderGraph(domain.Snapshot{})
	require.NoError(t, err)

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Equal(t, []string{"initialize", "rebuild", "validate", "collect", "stage", "store", "purge"}, order)
	// Three zero-rank actions each point at collect, then one edge per step of the pipeline.
	assert.Len(t, g.Edges(), 6)
}

func TestBuildHookMaps(t *testing.T) {
	hooks := []domain.Hook{
		{Action: "collect", Command: []string{"echo", "1"}, Timing: domain.TimingBefore},
		{Action: "collect", Command: []string{"echo", "2"}, Timing: domain.TimingAfter},
		{Action: "collect", Command: []string{"echo", "3"}, Timing: domain.TimingBefore},
		{Action: "store", Command: []string{"echo", "4"}, Timing: domain.TimingAfter},
	}

	pre, post := runtime.BuildHookMaps(hooks)

	require.Len(t, pre.For("collect"), 2)
	assert.Equal(t, []string{"echo", "1"}, pre.For("collect")[0].Command)
	assert.Equal(t, []string{"echo", "3"}, pre.For("collect")[1].Command)
	assert.Len(t, post.For("collect"), 1)
	assert.Len(t, post.For("store"), 1)

	assert.NotNil(t, pre.For("purge"))
	assert.Empty(t, pre.For("purge"))
}
