package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/aretw0/cback/pkg/adapters/process"
	"github.com/aretw0/cback/pkg/domain"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the configuration as a whole. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		for _, fe := range verrs {
			errs = append(errs, fmt.Errorf("%s: failed %q check", fieldPath(fe.Namespace()), fe.Tag()))
		}
	}

	known := slices.Clone(domain.BuiltinActions())
	for _, ext := range c.Extensions.Actions {
		switch {
		case ext.Name == "":
		case domain.IsBuiltin(ext.Name):
			errs = append(errs, fmt.Errorf("extended action [%s] shadows a built-in action", ext.Name))
		case slices.Contains(known, ext.Name):
			errs = append(errs, fmt.Errorf("extended action [%s] is declared more than once", ext.Name))
		default:
			known = append(known, ext.Name)
		}
	}

	if c.Extensions.OrderMode == string(domain.OrderModeDependency) {
		for _, ext := range c.Extensions.Actions {
			for _, dep := range append(slices.Clone(ext.Depends.Before), ext.Depends.After...) {
				if !slices.Contains(known, dep) {
					errs = append(errs, fmt.Errorf("extended action [%s] depends on unknown action [%s]", ext.Name, dep))
				}
			}
		}
	}

	for i, h := range c.Options.Hooks {
		if (h.Before == "") == (h.After == "") {
			errs = append(errs, fmt.Errorf("options.hooks[%d]: exactly one of before and after must be set", i))
			continue
		}
		if h.Action != "" && !slices.Contains(known, h.Action) {
			errs = append(errs, fmt.Errorf("options.hooks[%d]: unknown action [%s]", i, h.Action))
		}
		if _, err := process.SplitCommand(h.Before + h.After); err != nil {
			errs = append(errs, fmt.Errorf("options.hooks[%d]: %w", i, err))
		}
	}

	for name, cmd := range c.Options.ActionCommands {
		if !slices.Contains(domain.BuiltinActions(), name) {
			errs = append(errs, fmt.Errorf("options.action_commands: [%s] is not a built-in action", name))
			continue
		}
		if _, err := cmd.Argv(); err != nil {
			errs = append(errs, fmt.Errorf("options.action_commands.%s: %w", name, err))
		}
	}

	for _, line := range []string{c.Options.RshCommand, c.Options.CbackCommand} {
		if line == "" {
			continue
		}
		if _, err := process.SplitCommand(line); err != nil {
			errs = append(errs, fmt.Errorf("options: %w", err))
		}
	}
	errs = append(errs, checkManaged("options.managed_actions", c.Options.ManagedActions, known)...)

	seen := make(map[string]bool, len(c.Peers))
	for _, p := range c.Peers {
		if p.Name == "" {
			continue
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("peer [%s] is declared more than once", p.Name))
		}
		seen[p.Name] = true
		errs = append(errs, checkManaged("peer ["+p.Name+"] managed_actions", p.ManagedActions, known)...)
		for _, line := range []string{p.RshCommand, p.CbackCommand} {
			if line == "" {
				continue
			}
			if _, err := process.SplitCommand(line); err != nil {
				errs = append(errs, fmt.Errorf("peer [%s]: %w", p.Name, err))
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

func checkManaged(where string, actions []string, known []string) []error {
	var errs []error
	for _, a := range actions {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if !slices.Contains(known, a) {
			errs = append(errs, fmt.Errorf("%s: unknown action [%s]", where, a))
		}
	}
	return errs
}

// fieldPath turns "Config.options.hooks[0].action" into "options.hooks[0].action".
func fieldPath(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return rest
}
