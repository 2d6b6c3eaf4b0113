package engine

import (
	"errors"
	"fmt"
)

// Fatal run conditions. Component errors from dynamics and rigid pass
// through Run wrapped in [*StepError] as well.
var (
	// ErrTimeStepUnderflow indicates the adaptive step collapsed below
	// the configured minimum, which means the state is effectively
	// stuck.
	ErrTimeStepUnderflow = errors.New("engine: time step underflow")

	// ErrContactOverflow indicates too many particles fed non-finite
	// state into contact sums in a single sub-step.
	ErrContactOverflow = errors.New("engine: invalid contact inputs above threshold")
)

// StepError wraps a sub-step failure with the loop position it
// happened at. Component names the stage: contact, coupling, stress or
// timestep.
type StepError struct {
	Step      int
	Time      float64
	Component string
	Wrapped   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
