package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/cback/pkg/domain"
	"github.com/aretw0/cback/pkg/ports"
)

var (
	// ErrModuleNotFound is returned when no function or resolver is registered for a module.
	ErrModuleNotFound = errors.New("module not found")
	// ErrFunctionNotFound is returned when the module exists but does not export the function.
	ErrFunctionNotFound = errors.New("function not found")
)

// Registry holds action implementations: built-ins by action name, and
// extensions by module and function.
type Registry struct {
	mu         sync.RWMutex
	actions    map[string]domain.ActionFunc
	extensions map[string]map[string]domain.ActionFunc
	modules    map[string]ports.ImplementationResolver
}

var (
	_ ports.ActionLookup           = (*Registry)(nil)
	_ ports.ImplementationResolver = (*Registry)(nil)
)

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actions:    make(map[string]domain.ActionFunc),
		extensions: make(map[string]map[string]domain.ActionFunc),
		modules:    make(map[string]ports.ImplementationResolver),
	}
}

// Register binds a built-in action name to its implementation.
// If the name is already bound, it is overwritten.
func (r *Registry) Register(name string, fn domain.ActionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = fn
}

// RegisterExtension exposes fn as module.function for extension declarations.
func (r *Registry) RegisterExtension(module, function string, fn domain.ActionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.extensions[module] == nil {
		r.extensions[module] = make(map[string]domain.ActionFunc)
	}
	r.extensions[module][function] = fn
}

// RegisterModule delegates every function of module to resolver.
// Functions registered with RegisterExtension take precedence.
func (r *Registry) RegisterModule(module string, resolver ports.ImplementationResolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[module] = resolver
}

// Lookup returns the built-in implementation bound to name.
func (r *Registry) Lookup(name string) (domain.ActionFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.actions[name]
	return fn, ok
}

// Resolve turns a module/function reference into an implementation.
func (r *Registry) Resolve(module, function string) (domain.ActionFunc, error) {
	r.mu.RLock()
	fn, ok := r.extensions[module][function]
	_, hasStatic := r.extensions[module]
	resolver := r.modules[module]
	r.mu.RUnlock()

	if ok {
		return fn, nil
	}
	if resolver != nil {
		return resolver.Resolve(module, function)
	}
	if hasStatic {
		return nil, fmt.Errorf("%w: %s.%s", ErrFunctionNotFound, module, function)
	}
	return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, module)
}

// Actions lists the bound built-in names, sorted.
func (r *Registry) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
