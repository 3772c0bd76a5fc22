/*
Package cback schedules and runs backup actions.

A run takes a list of requested action names (collect, stage, store, purge,
the standalone rebuild, validate and initialize, or configured extensions),
resolves them into a single ordered plan and executes it. Each action may run
locally, wrapped by its pre- and post-action hook commands, and on the
managed peers configured for it.

# Ordering

Actions are ranked either by index (built-in indices plus one per extension)
or by dependency, where extensions declare which actions they run before or
after and the ranks come from a topological sort. Local execution of an
action always precedes its managed execution.

# Failures

A failing hook or local action stops the run. A managed action failing on one
peer is logged and recorded in the RunReport; the run carries on with the next
peer. Cancelling the context stops the run between steps and surfaces as
domain.ErrInterrupted.

# Usage

Any value with a Snapshot method can drive a run; the cback command uses its
YAML configuration file.

	eng := cback.New(cback.WithLogger(logger))
	err := eng.RunActions(ctx, "/etc/cback.yaml", domain.Options{Actions: []string{"all"}}, cfg)
*/
package cback
