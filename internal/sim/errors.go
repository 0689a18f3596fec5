package sim

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig is matched by every ConfigurationError.
	ErrInvalidConfig = errors.New("sim: invalid configuration")

	// ErrBatchInProgress indicates a drop or reconfigure while a batch is
	// still playing back. Controls stay locked until it completes.
	ErrBatchInProgress = errors.New("sim: batch in progress")

	// ErrDestroyed indicates use of a simulation after Destroy.
	ErrDestroyed = errors.New("sim: simulation destroyed")
)

// ConfigurationError reports a parameter rejected before any board state
// is built.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("sim: invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfig
}
