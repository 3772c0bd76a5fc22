package domain

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareBindings(t *testing.T) {
	collect := NewLocalBinding(ActionCollect, 1, nil, nil, nil)
	collectPeers := NewManagedBinding(ActionCollect, 1, []PeerTarget{{Name: "db1"}})
	stage := NewLocalBinding(ActionStage, 2, nil, nil, nil)

	assert.Negative(t, CompareBindings(collect, stage))
	assert.Positive(t, CompareBindings(stage, collectPeers))
	assert.Negative(t, CompareBindings(collect, collectPeers), "local runs before managed at equal rank")
	assert.Zero(t, CompareBindings(collect, collect))

	plan := Plan{stage, collectPeers, collect}
	slices.SortStableFunc(plan, CompareBindings)
	assert.Equal(t, []string{"collect", "collect@[db1]", "stage"}, plan.Names())
}

func TestBindingString(t *testing.T) {
	b := NewManagedBinding(ActionPurge, 4, []PeerTarget{{Name: "db1"}, {Name: "web1"}})
	assert.Equal(t, "purge@[db1,web1]", b.String())
	assert.Equal(t, KindManaged, b.Kind)
	assert.Nil(t, b.Implementation)

	assert.Equal(t, "purge", NewLocalBinding(ActionPurge, 4, nil, nil, nil).String())
	assert.Equal(t, "kind(7)", Kind(7).String())
}

func TestHookString(t *testing.T) {
	h := Hook{Action: ActionStore, Command: []string{"mount", "/media/backup"}, Timing: TimingBefore}
	assert.Equal(t, "mount /media/backup", h.String())
	assert.Equal(t, "post-action", TimingAfter.String())
}

func TestBuiltinTables(t *testing.T) {
	indices := BuiltinIndices()
	indices[ActionCollect] = 999
	assert.Equal(t, CollectIndex, BuiltinIndices()[ActionCollect], "BuiltinIndices returns a copy")

	assert.True(t, IsBuiltin(ActionAll))
	assert.True(t, IsBuiltin(ActionInitialize))
	assert.False(t, IsBuiltin("encrypt"))
	assert.Len(t, BuiltinActions(), 7)
	assert.Equal(t, []string{"collect", "stage", "store", "purge"}, PipelineActions())
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name          string
		opts          Options
		local, remote bool
	}{
		{"Default is local only", Options{}, true, false},
		{"Managed adds peers", Options{Managed: true}, true, true},
		{"Managed only", Options{ManagedOnly: true}, false, true},
		{"Managed only wins", Options{Managed: true, ManagedOnly: true}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.local, tt.opts.IncludeLocal())
			assert.Equal(t, tt.remote, tt.opts.IncludeManaged())
		})
	}
}

func TestSnapshotMode(t *testing.T) {
	assert.Equal(t, OrderModeIndex, Snapshot{}.Mode())
	assert.Equal(t, OrderModeIndex, Snapshot{OrderMode: OrderModeDependency}.Mode(), "no extensions means index mode")

	s := Snapshot{
		OrderMode:  OrderModeDependency,
		Extensions: []ExtensionDeclaration{{Name: "encrypt"}, {Name: "report"}},
	}
	assert.Equal(t, OrderModeDependency, s.Mode())
	assert.Equal(t, []string{"encrypt", "report"}, s.ExtensionNames())
}

func TestErrors(t *testing.T) {
	cause := errors.New("exit status 1")

	tests := []struct {
		name     string
		err      error
		sentinel error
		contains string
	}{
		{"unknown", &UnknownActionError{Action: "bogus"}, ErrUnknownAction, "bogus"},
		{"non-combinable", &NonCombinableActionError{Action: "rebuild"}, ErrNonCombinableAction, "rebuild"},
		{"order", &OrderResolutionError{Extension: "encrypt", Err: cause}, ErrOrderResolution, "extension [encrypt]"},
		{"resolution", &ImplementationResolutionError{Action: "encrypt", Module: "exec", Function: "x", Err: cause}, ErrImplementationResolution, "[exec.x]"},
		{"hook", &HookExecutionError{Action: "store", Timing: TimingBefore, Command: []string{"mount"}, Err: cause}, ErrHookExecution, "pre-action hook"},
		{"action", &ActionExecutionError{Action: "store", Err: cause}, ErrActionExecution, "store"},
		{"peer", &PeerError{Action: "collect", Peer: "db1", Err: cause}, ErrPeerExecution, "db1"},
		{"interrupted", &InterruptedError{Action: "stage", Err: context.Canceled}, ErrInterrupted, "stage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Contains(t, tt.err.Error(), tt.contains)
			if u, ok := tt.err.(interface{ Unwrap() error }); ok && u.Unwrap() != nil {
				assert.True(t, errors.Is(tt.err, u.Unwrap()))
			}
		})
	}

	var peerErr *PeerError
	wrapped := errors.Join(errors.New("other"), &PeerError{Action: "collect", Peer: "web1", Err: cause})
	assert.ErrorAs(t, wrapped, &peerErr)
	assert.Equal(t, "web1", peerErr.Peer)

	assert.ErrorIs(t, &InterruptedError{Err: context.Canceled}, context.Canceled)
	assert.Equal(t, ErrInterrupted.Error(), (&InterruptedError{}).Error())
}

func TestRunReport(t *testing.T) {
	var r *RunReport
	assert.False(t, r.Succeeded())
	assert.True(t, (&RunReport{Status: StatusCompleted}).Succeeded())
	assert.False(t, (&RunReport{Status: StatusInterrupted}).Succeeded())
}
