package simulation

import (
	"errors"
	"fmt"
)

var ErrInvalidState = errors.New("invalid environment state")

// FatalError wraps a failure that aborted the run: a balance invariant
// violation, a strategy error or a recovered panic. A report is still
// produced up to the failing tick.
type FatalError struct {
	Tick   int
	Origin string
	Err    error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("simulation failed at tick %d in %s: %v", e.Tick, e.Origin, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
