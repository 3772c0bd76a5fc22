package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/cback/pkg/domain"
	"github.com/aretw0/cback/pkg/ports"
)

var errNoResolver = errors.New("no implementation resolver configured")

// Catalog maps an action name to its bindings. "all" maps to the pipeline bindings.
type Catalog map[string][]domain.Binding

// CatalogInput carries everything BuildCatalog needs.
type CatalogInput struct {
	Local   bool
	Managed bool

	Extensions []domain.ExtensionDeclaration
	Builtins   ports.ActionLookup
	Resolver   ports.ImplementationResolver
	Ranks      map[string]int

	PreHooks  HookMap
	PostHooks HookMap
	Targets   map[string][]domain.PeerTarget
}

// BuildCatalog creates the bindings for every extension and built-in action.
// Every extension reference is resolved, even for actions that are not requested.
func BuildCatalog(in CatalogInput) (Catalog, error) {
	impls := make(map[string]domain.ActionFunc, len(in.Extensions)+len(domain.BuiltinActions()))
	names := make([]string, 0, len(in.Extensions)+len(domain.BuiltinActions()))

	for _, ext := range in.Extensions {
		if in.Resolver == nil {
			return nil, &domain.ImplementationResolutionError{Action: ext.Name, Module: ext.Module, Function: ext.Function, Err: errNoResolver}
		}
		fn, err := in.Resolver.Resolve(ext.Module, ext.Function)
		if err != nil {
			return nil, &domain.ImplementationResolutionError{Action: ext.Name, Module: ext.Module, Function: ext.Function, Err: err}
		}
		impls[ext.Name] = fn
		names = append(names, ext.Name)
	}
	for _, name := range domain.BuiltinActions() {
		fn, ok := lookup(in.Builtins, name)
		if !ok {
			fn = Unavailable(name)
		}
		impls[name] = fn
		names = append(names, name)
	}

	catalog := make(Catalog, len(names)+1)
	for _, name := range names {
		rank, ok := in.Ranks[name]
		if !ok {
			return nil, fmt.Errorf("no execution rank for %w", &domain.UnknownActionError{Action: name})
		}
		bindings := []domain.Binding{}
		if in.Local {
			bindings = append(bindings, domain.NewLocalBinding(name, rank, impls[name], in.PreHooks.For(name), in.PostHooks.For(name)))
		}
		if in.Managed {
			if targets := in.Targets[name]; len(targets) > 0 {
				bindings = append(bindings, domain.NewManagedBinding(name, rank, targets))
			}
		}
		catalog[name] = bindings
	}

	var all []domain.Binding
	for _, name := range domain.PipelineActions() {
		all = append(all, catalog[name]...)
	}
	catalog[domain.ActionAll] = all
	return catalog, nil
}

func lookup(l ports.ActionLookup, name string) (domain.ActionFunc, bool) {
	if l == nil {
		return nil, false
	}
	fn, ok := l.Lookup(name)
	return fn, ok && fn != nil
}

// Unavailable returns an implementation that always fails with ErrActionUnavailable.
func Unavailable(name string) domain.ActionFunc {
	return func(context.Context, domain.Invocation) error {
		return fmt.Errorf("%w: %s", domain.ErrActionUnavailable, name)
	}
}
