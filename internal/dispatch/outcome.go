package dispatch

import (
	"fmt"
	"time"

	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

// Outcome is the result of running one request. It is created once by the
// dispatcher and not modified afterwards.
type Outcome struct {
	Name       string
	Kind       product.Kind
	Action     product.Action
	Success    bool
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the request ran.
func (o Outcome) Duration() time.Duration {
	return o.FinishedAt.Sub(o.StartedAt)
}

// ActionError is a failure of a single request. It never aborts the batch.
type ActionError struct {
	Name   string
	Kind   product.Kind
	Action product.Action
	// ExitCode is the worker exit status for process execution, 0 otherwise.
	ExitCode int
	Err      error
}

func (e *ActionError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("failed to %s %s %s (exit code %d): %v", e.Action, e.Kind, e.Name, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("failed to %s %s %s: %v", e.Action, e.Kind, e.Name, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// SchedulingFault is a dispatcher-internal failure, such as a worker that
// could not be started. It aborts all work that has not started yet.
type SchedulingFault struct {
	Name string
	Err  error
}

func (e *SchedulingFault) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("scheduling fault: %v", e.Err)
	}
	return fmt.Sprintf("scheduling fault for %s: %v", e.Name, e.Err)
}

func (e *SchedulingFault) Unwrap() error {
	return e.Err
}
