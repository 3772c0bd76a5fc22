package runtime

import (
	"slices"

	"github.com/aretw0/cback/pkg/domain"
)

// Validate checks the requested action names before anything else is built.
func Validate(requested []string, extensionNames []string) error {
	if len(requested) == 0 {
		return domain.ErrNoActionsSpecified
	}
	for _, name := range requested {
		if !domain.IsBuiltin(name) && !slices.Contains(extensionNames, name) {
			return &domain.UnknownActionError{Action: name}
		}
	}
	for _, name := range domain.NonCombinableActions() {
		if slices.Contains(requested, name) && len(requested) != 1 {
			return &domain.NonCombinableActionError{Action: name}
		}
	}
	return nil
}

// BuildPlan flattens the requested names into one ordered plan.
// A binding reached through more than one name is scheduled once; the final
// stable sort orders bindings by rank with local before managed, whatever
// order the names were given in.
func BuildPlan(requested []string, catalog Catalog) (domain.Plan, error) {
	type key struct {
		name string
		kind domain.Kind
	}
	seen := make(map[key]bool, len(requested))
	var plan domain.Plan
	for _, name := range requested {
		bindings, ok := catalog[name]
		if !ok {
			return nil, &domain.UnknownActionError{Action: name}
		}
		for _, b := range bindings {
			k := key{b.Name, b.Kind}
			if seen[k] {
				continue
			}
			seen[k] = true
			plan = append(plan, b)
		}
	}
	slices.SortStableFunc(plan, domain.CompareBindings)
	return plan, nil
}
