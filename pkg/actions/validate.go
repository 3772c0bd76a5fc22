// Package actions holds the built-in action bodies cback implements itself.
package actions

import (
	"context"
	"fmt"

	"github.com/aretw0/cback/pkg/domain"
	"github.com/aretw0/cback/pkg/registry"
)

// Validator is implemented by configurations that can check themselves.
type Validator interface {
	Validate() error
}

// Validate is the built-in validate action. It checks the invocation's configuration.
func Validate(_ context.Context, inv domain.Invocation) error {
	v, ok := inv.Config.(Validator)
	if !ok {
		return fmt.Errorf("%w: configuration of type %T cannot be validated", domain.ErrActionUnavailable, inv.Config)
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("configuration %s is not valid: %w", inv.ConfigPath, err)
	}
	return nil
}

// Register binds the built-in actions implemented in this package.
func Register(r *registry.Registry) {
	r.Register(domain.ActionValidate, Validate)
}
