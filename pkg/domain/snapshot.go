package domain

// OrderMode selects how action ranks are computed.
type OrderMode string

const (
	OrderModeIndex      OrderMode = "index"
	OrderModeDependency OrderMode = "dependency"
)

// ExtensionDeclaration is a configured extended action.
// Index is used in index mode; Before and After in dependency mode.
type ExtensionDeclaration struct {
	Name     string   `json:"name"`
	Module   string   `json:"module"`
	Function string   `json:"function"`
	Index    int      `json:"index"`
	Before   []string `json:"before,omitempty"`
	After    []string `json:"after,omitempty"`
}

// Snapshot is the immutable slice of configuration the scheduler needs.
type Snapshot struct {
	OrderMode  OrderMode
	Extensions []ExtensionDeclaration
	Hooks      []Hook
	// ManagedTargets maps an action name to the peers it must run on, in configuration order.
	ManagedTargets map[string][]PeerTarget
}

// ExtensionNames returns the declared extension names in declaration order.
func (s Snapshot) ExtensionNames() []string {
	names := make([]string, 0, len(s.Extensions))
	for _, ext := range s.Extensions {
		names = append(names, ext.Name)
	}
	return names
}

// Mode returns the effective order mode. Without extensions, index mode is always used.
func (s Snapshot) Mode() OrderMode {
	if len(s.Extensions) == 0 || s.OrderMode == "" {
		return OrderModeIndex
	}
	return s.OrderMode
}
