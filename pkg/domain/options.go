package domain

// Options are the per-run switches chosen by the caller.
type Options struct {
	// Actions are the requested action names, in the order given.
	Actions []string
	// Full asks managed peers for a full backup.
	Full bool
	// Managed adds managed-peer execution on top of local execution.
	Managed bool
	// ManagedOnly runs managed-peer execution only.
	ManagedOnly bool
}

// IncludeLocal reports whether local bindings should be built.
func (o Options) IncludeLocal() bool {
	return !o.ManagedOnly
}

// IncludeManaged reports whether managed bindings should be built.
func (o Options) IncludeManaged() bool {
	return o.Managed || o.ManagedOnly
}
