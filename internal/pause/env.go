package pause

import (
	"context"
	"fmt"
)

// EnvFlag holds a value captured from the environment at startup. This is
// the shape used when an external scheduler injects the flag into the
// process, e.g. a CI variable.
type EnvFlag struct {
	name  string
	value string
}

// NewEnvFlag creates an EnvFlag for variable name with its current value.
func NewEnvFlag(name, value string) *EnvFlag {
	return &EnvFlag{name: name, value: value}
}

// Backend implements Flag.
func (e *EnvFlag) Backend() string { return "env" }

// Paused implements Flag.
func (e *EnvFlag) Paused(_ context.Context) (bool, error) {
	return ParseValue(e.value), nil
}

// SetPaused always fails.
func (e *EnvFlag) SetPaused(_ context.Context, _ bool) error {
	return fmt.Errorf("setting %s: %w", e.name, ErrReadOnly)
}
