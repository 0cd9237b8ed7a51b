package physics

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration  = errors.New("physics: configuration error")
	ErrUnsupported    = errors.New("physics: parameter not supported by constraint kind")
	ErrUnknownWorld   = errors.New("physics: unknown world")
	ErrNotInitialized = errors.New("physics: system not initialized")
	ErrDestroyed      = errors.New("physics: object destroyed")
)

// ConfigError describes a descriptor or parameter the solver layer refuses to accept.
// It matches ErrConfiguration through errors.Is.
type ConfigError struct {
	Op     string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("physics: %s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("physics: %s: %s: %s", e.Op, e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErr(op, field, reason string) error {
	return &ConfigError{Op: op, Field: field, Reason: reason}
}

// SolverFatalError is raised as a panic when the wrapped solver refuses an operation.
// The simulation state is undefined afterwards.
type SolverFatalError struct {
	Op    string
	Cause any
}

func (e *SolverFatalError) Error() string {
	return fmt.Sprintf("physics: solver fatal during %s: %v", e.Op, e.Cause)
}

// guardSolver must be deferred directly so recover sees the solver panic.
func guardSolver(op string) {
	if r := recover(); r != nil {
		if fatal, ok := r.(*SolverFatalError); ok {
			panic(fatal)
		}
		panic(&SolverFatalError{Op: op, Cause: r})
	}
}
