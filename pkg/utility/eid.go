package utility

import (
	"sync"

	"github.com/google/uuid"
)

// ExecutionID identifies one sandbox process run. Every event produced during
// a run carries the same id, so runs can be told apart in aggregated logs.
type ExecutionID = uuid.UUID

var (
	executionID     ExecutionID
	executionIDOnce sync.Once
	executionIDMu   sync.RWMutex
)

func GetExecutionID() ExecutionID {
	executionIDOnce.Do(func() {
		executionID = uuid.Must(uuid.NewV7())
	})

	executionIDMu.RLock()
	defer executionIDMu.RUnlock()
	return executionID
}

// ResetExecutionID rotates the id, used when several simulations run in one
// process back to back.
func ResetExecutionID() ExecutionID {
	executionIDMu.Lock()
	defer executionIDMu.Unlock()

	executionID = uuid.Must(uuid.NewV7())
	return executionID
}
