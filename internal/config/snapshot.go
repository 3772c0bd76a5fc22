package config

import (
	"slices"
	"strings"

	"github.com/aretw0/cback/pkg/adapters/process"
	"github.com/aretw0/cback/pkg/domain"
)

// Snapshot returns the immutable view the scheduler runs on.
// Peer settings left empty fall back to the global options.
func (c *Config) Snapshot() (domain.Snapshot, error) {
	snap := domain.Snapshot{
		OrderMode:      domain.OrderMode(c.Extensions.OrderMode),
		ManagedTargets: make(map[string][]domain.PeerTarget),
	}

	for _, ext := range c.Extensions.Actions {
		snap.Extensions = append(snap.Extensions, domain.ExtensionDeclaration{
			Name:     ext.Name,
			Module:   ext.Module,
			Function: ext.Function,
			Index:    ext.Index,
			Before:   trimAll(ext.Depends.Before),
			After:    trimAll(ext.Depends.After),
		})
	}

	for _, h := range c.Options.Hooks {
		timing, line := domain.TimingBefore, h.Before
		if h.After != "" {
			timing, line = domain.TimingAfter, h.After
		}
		argv, err := process.SplitCommand(line)
		if err != nil {
			return domain.Snapshot{}, err
		}
		snap.Hooks = append(snap.Hooks, domain.Hook{Action: h.Action, Command: argv, Timing: timing})
	}

	for _, p := range c.Peers {
		if !p.Managed {
			continue
		}
		target, err := c.target(p)
		if err != nil {
			return domain.Snapshot{}, err
		}
		actions := trimAll(p.ManagedActions)
		if len(actions) == 0 {
			actions = trimAll(c.Options.ManagedActions)
		}
		for _, action := range actions {
			existing := snap.ManagedTargets[action]
			if slices.ContainsFunc(existing, func(t domain.PeerTarget) bool { return t.Name == target.Name }) {
				continue
			}
			snap.ManagedTargets[action] = append(existing, target)
		}
	}
	return snap, nil
}

func (c *Config) target(p Peer) (domain.PeerTarget, error) {
	t := domain.PeerTarget{Name: p.Name, RemoteUser: firstNonEmpty(p.RemoteUser, c.Options.BackupUser)}
	var err error
	if line := firstNonEmpty(p.RshCommand, c.Options.RshCommand); line != "" {
		if t.RshCommand, err = process.SplitCommand(line); err != nil {
			return t, err
		}
	}
	if line := firstNonEmpty(p.CbackCommand, c.Options.CbackCommand); line != "" {
		if t.CbackCommand, err = process.SplitCommand(line); err != nil {
			return t, err
		}
	}
	return t, nil
}

// ActionCommands returns the argv bound to each built-in action by options.action_commands.
func (c *Config) ActionCommands() (map[string]process.CommandConfig, error) {
	out := make(map[string]process.CommandConfig, len(c.Options.ActionCommands))
	for name, cmd := range c.Options.ActionCommands {
		if _, err := cmd.Argv(); err != nil {
			return nil, err
		}
		out[name] = cmd
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
