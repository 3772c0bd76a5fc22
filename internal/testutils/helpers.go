package testutils

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/cback/pkg/domain"
	"github.com/aretw0/cback/pkg/ports"
)

// Journal records the order in which fakes were called, across all of them.
type Journal struct {
	mu      sync.Mutex
	entries []string
}

// Add appends one entry.
func (j *Journal) Add(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

// Entries returns a copy of what was recorded.
func (j *Journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.entries)
}

// RecordingAction returns an action that writes "action:<name>" to the journal and returns err.
func RecordingAction(j *Journal, name string, err error) domain.ActionFunc {
	return func(ctx context.Context, inv domain.Invocation) error {
		j.Add("action:" + name)
		return err
	}
}

// Actions is a map-backed ports.ActionLookup and ports.ImplementationResolver.
// Extensions are keyed by "module.function".
type Actions map[string]domain.ActionFunc

func (a Actions) Lookup(name string) (domain.ActionFunc, bool) {
	fn, ok := a[name]
	return fn, ok
}

func (a Actions) Resolve(module, function string) (domain.ActionFunc, error) {
	fn, ok := a[module+"."+function]
	if !ok {
		return nil, domain.ErrActionUnavailable
	}
	return fn, nil
}

// FakeRunner is a ports.CommandRunner that records commands instead of running them.
// Commands found in ExitCodes return that exit code; commands in Errors fail to start.
type FakeRunner struct {
	Journal   *Journal
	ExitCodes map[string]int
	Errors    map[string]error
	Output    []string
	// OnRun, if set, is called before the result is returned.
	OnRun func(argv []string)

	mu    sync.Mutex
	calls [][]string
}

var _ ports.CommandRunner = (*FakeRunner)(nil)

func (r *FakeRunner) Run(ctx context.Context, argv []string) (int, []string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, slices.Clone(argv))
	r.mu.Unlock()

	line := strings.Join(argv, " ")
	if r.Journal != nil {
		r.Journal.Add("hook:" + line)
	}
	if r.OnRun != nil {
		r.OnRun(argv)
	}
	if err, ok := r.Errors[line]; ok {
		return -1, nil, err
	}
	return r.ExitCodes[line], r.Output, nil
}

// Calls returns the argv of every call, in order.
func (r *FakeRunner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// FakePeers builds fake peers that write "peer:<name>:<action>" to the journal.
// Peers listed in Failures return that error.
type FakePeers struct {
	Journal  *Journal
	Failures map[string]error
	// OnExecute, if set, is called before the result is returned.
	OnExecute func(peer, action string)

	mu   sync.Mutex
	full []bool
}

// Factory satisfies ports.PeerFactory.
func (f *FakePeers) Factory(target domain.PeerTarget) ports.Peer {
	return &fakePeer{owner: f, name: target.Name}
}

// FullFlags returns the full flag passed on every call, in order.
func (f *FakePeers) FullFlags() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.full)
}

type fakePeer struct {
	owner *FakePeers
	name  string
}

func (p *fakePeer) Name() string { return p.name }

func (p *fakePeer) ExecuteManagedAction(ctx context.Context, action string, full bool) error {
	p.owner.mu.Lock()
	p.owner.full = append(p.owner.full, full)
	p.owner.mu.Unlock()

	if p.owner.Journal != nil {
		p.owner.Journal.Add("peer:" + p.name + ":" + action)
	}
	if p.owner.OnExecute != nil {
		p.owner.OnExecute(p.name, action)
	}
	return p.owner.Failures[p.name]
}
