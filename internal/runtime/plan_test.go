package runtime_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/cback/internal/logging"
	"github.com/aretw0/cback/internal/runtime"
	"github.com/aretw0/cback/internal/testutils"
	"github.com/aretw0/cback/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var peerA = domain.PeerTarget{Name: "alpha"}
var peerB = domain.PeerTarget{Name: "beta"}

func catalogFor(t *testing.T, snap domain.Snapshot, local, managed bool) runtime.Catalog {
	t.Helper()
	ranks, err := runtime.ResolveOrder(snap, logging.NewNop())
	require.NoError(t, err)
	pre, post := runtime.BuildHookMaps(snap.Hooks)

	actions := testutils.Actions{}
	for _, ext := range snap.Extensions {
		actions[ext.Module+"."+ext.Function] = func(context.Context, domain.Invocation) error { return nil }
	}
	catalog, err := runtime.BuildCatalog(runtime.CatalogInput{
		Local:      local,
		Managed:    managed,
		Extensions: snap.Extensions,
		Resolver:   actions,
		Ranks:      ranks,
		PreHooks:   pre,
		PostHooks:  post,
		Targets:    snap.ManagedTargets,
	})
	require.NoError(t, err)
	return catalog
}

func TestValidate(t *testing.T) {
	exts := []string{"encrypt"}

	tests := []struct {
		name      string
		requested []string
		wantErr   error
	}{
		{"empty", nil, domain.ErrNoActionsSpecified},
		{"unknown", []string{"collect", "bogus"}, domain.ErrUnknownAction},
		{"extension", []string{"encrypt", "collect"}, nil},
		{"all", []string{"all"}, nil},
		{"all with builtin", []string{"all", "store"}, domain.ErrNonCombinableAction},
		{"rebuild alone", []string{"rebuild"}, nil},
		{"validate alone", []string{"validate"}, nil},
		{"initialize alone", []string{"initialize"}, nil},
		{"rebuild combined", []string{"rebuild", "collect"}, domain.ErrNonCombinableAction},
		{"validate combined", []string{"collect", "validate"}, domain.ErrNonCombinableAction},
		{"initialize combined", []string{"initialize", "encrypt"}, domain.ErrNonCombinableAction},
		{"two standalone", []string{"rebuild", "validate"}, domain.ErrNonCombinableAction},
		{"standalone repeated", []string{"validate", "validate"}, domain.ErrNonCombinableAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runtime.Validate(tt.requested, exts)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_UnknownNamesAction(t *testing.T) {
	err := runtime.Validate([]string{"bogus"}, nil)

	var uerr *domain.UnknownActionError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "bogus", uerr.Action)
}

func TestBuildPlan_PipelinePermutations(t *testing.T) {
	catalog := catalogFor(t, domain.Snapshot{}, true, false)
	want := []string{"collect", "stage", "store", "purge"}

	perms := [][]string{
		{"collect", "stage", "store", "purge"},
		{"purge", "store", "stage", "collect"},
		{"stage", "purge", "collect", "store"},
		{"store", "collect", "purge", "stage"},
		{"all"},
		// BuildPlan on its own: a binding reached twice is scheduled once.
		{"purge", "all"},
		{"all", "all"},
	}
	for _, p := range perms {
		t.Run(fmt.Sprint(p), func(t *testing.T) {
			plan, err := runtime.BuildPlan(p, catalog)
			require.NoError(t, err)
			assert.Equal(t, want, plan.Names())
		})
	}
}

func TestBuildPlan_Deterministic(t *testing.T) {
	snap := domain.Snapshot{
		Extensions: []domain.ExtensionDeclaration{
			{Name: "a", Module: "m", Function: "a", Index: 150},
			{Name: "b", Module: "m", Function: "b", Index: 150},
		},
	}
	catalog := catalogFor(t, snap, true, false)

	first, err := runtime.BuildPlan([]string{"b", "a", "collect"}, catalog)
	require.NoError(t, err)
	for range 10 {
		again, err := runtime.BuildPlan([]string{"b", "a", "collect"}, catalog)
		require.NoError(t, err)
		assert.Equal(t, first.Names(), again.Names())
	}
	// Equal ranks keep request order.
	assert.Equal(t, []string{"collect", "b", "a"}, first.Names())
}

func TestBuildPlan_RanksMonotonic(t *testing.T) {
	snap := domain.Snapshot{
		Extensions: []domain.ExtensionDeclaration{
			{Name: "encrypt", Module: "m", Function: "encrypt", Index: 250},
			{Name: "notify", Module: "m", Function: "notify", Index: 50},
		},
		ManagedTargets: map[string][]domain.PeerTarget{
			"collect": {peerA},
			"encrypt": {peerA, peerB},
		},
	}
	catalog := catalogFor(t, snap, true, true)

	plan, err := runtime.BuildPlan([]string{"encrypt", "all", "notify"}, catalog)
	require.NoError(t, err)

	for i := 1; i < len(plan); i++ {
		prev, cur := plan[i-1], plan[i]
		require.LessOrEqual(t, prev.Rank, cur.Rank)
		if prev.Rank == cur.Rank {
			assert.LessOrEqual(t, int(prev.Kind), int(cur.Kind), "local must precede managed")
		}
	}
	assert.Equal(t, []string{
		"notify",
		"collect", "collect@[alpha]",
		"stage",
		"encrypt", "encrypt@[alpha,beta]",
		"store", "purge",
	}, plan.Names())
}

func TestBuildPlan_Repeated(t *testing.T) {
	catalog := catalogFor(t, domain.Snapshot{}, true, false)

	plan, err := runtime.BuildPlan([]string{"store", "collect", "store"}, catalog)
	require.NoError(t, err)
	assert.Equal(t, []string{"collect", "store"}, plan.Names())
}

func TestBuildPlan_Unknown(t *testing.T) {
	catalog := catalogFor(t, domain.Snapshot{}, true, false)

	_, err := runtime.BuildPlan([]string{"bogus"}, catalog)
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
}

func TestBuildCatalog_ManagedOnly(t *testing.T) {
	snap := domain.Snapshot{
		ManagedTargets: map[string][]domain.PeerTarget{
			"collect": {peerA},
			"purge":   {peerA, peerB},
		},
	}
	catalog := catalogFor(t, snap, false, true)

	assert.Empty(t, catalog["stage"])
	require.Len(t, catalog["collect"], 1)
	assert.Equal(t, domain.KindManaged, catalog["collect"][0].Kind)
	assert.Nil(t, catalog["collect"][0].PreHooks)
	assert.Equal(t, []string{"collect@[alpha]", "purge@[alpha,beta]"}, domain.Plan(catalog["all"]).Names())
}

func TestBuildCatalog_LocalBindingsCarryHooks(t *testing.T) {
	snap := domain.Snapshot{
		Hooks: []domain.Hook{
			{Action: "store", Command: []string{"mount", "/media"}, Timing: domain.TimingBefore},
			{Action: "store", Command: []string{"umount", "/media"}, Timing: domain.TimingAfter},
		},
		ManagedTargets: map[string][]domain.PeerTarget{"store": {peerA}},
	}
	catalog := catalogFor(t, snap, true, true)

	require.Len(t, catalog["store"], 2)
	local, managed := catalog["store"][0], catalog["store"][1]
	assert.Equal(t, domain.KindLocal, local.Kind)
	assert.Len(t, local.PreHooks, 1)
	assert.Len(t, local.PostHooks, 1)
	assert.Equal(t, domain.KindManaged, managed.Kind)
	assert.Empty(t, managed.PreHooks)
	assert.Empty(t, managed.PostHooks)
}

func TestBuildCatalog_UnresolvableExtension(t *testing.T) {
	_, err := runtime.BuildCatalog(runtime.CatalogInput{
		Local:      true,
		Extensions: []domain.ExtensionDeclaration{{Name: "encrypt", Module: "nosuch", Function: "fn", Index: 1}},
		Resolver:   testutils.Actions{},
		Ranks:      map[string]int{"encrypt": 1},
	})

	require.ErrorIs(t, err, domain.ErrImplementationResolution)
	var rerr *domain.ImplementationResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "encrypt", rerr.Action)
	assert.Equal(t, "nosuch", rerr.Module)
}

func TestBuildCatalog_MissingBuiltinIsUnavailable(t *testing.T) {
	catalog := catalogFor(t, domain.Snapshot{}, true, false)

	err := catalog["collect"][0].Implementation(context.Background(), domain.Invocation{})
	assert.ErrorIs(t, err, domain.ErrActionUnavailable)
}
