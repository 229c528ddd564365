package balance

import (
	"errors"
	"fmt"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
)

// ErrInsufficientBalance is a routine rejection, never a fault. Callers check
// for it and carry on.
var ErrInsufficientBalance = errors.New("insufficient balance")

// InvariantError reports a violated balance invariant. It is fatal: the run
// that produced it cannot be trusted and must terminate.
type InvariantError struct {
	Asset   string
	Op      string
	Detail  string
	Balance common.Balance
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("balance invariant violated for %s during %s: %s (available=%s locked=%s)",
		e.Asset, e.Op, e.Detail, e.Balance.Available, e.Balance.Locked)
}
