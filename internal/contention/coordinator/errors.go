package coordinator

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/kolkov/contention/internal/contention/counter"
)

// ErrInvalidConfig is returned for a worker count or target below 1.
var ErrInvalidConfig = errors.New("coordinator: invalid config")

// ErrBusy is returned when Run is called while another Run on the same
// Coordinator is in progress.
var ErrBusy = errors.New("coordinator: run already in progress")

// SpawnError reports that not every worker could be started.
//
// The workers in Spawned ran to a terminal state and were joined; the run's
// report is still returned next to this error.
type SpawnError struct {
	// Failed is the worker whose spawn failed.
	Failed counter.WorkerID

	// Skipped are the workers after Failed that were never attempted.
	Skipped []counter.WorkerID

	// Spawned are the workers that were started.
	Spawned []counter.WorkerID

	// Cause is the error returned by the thread provider.
	Cause error
}

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("coordinator: spawning worker %d failed (%d spawned, %d skipped): %v",
		e.Failed, len(e.Spawned), len(e.Skipped), e.Cause)
}

// Unwrap returns the provider's error.
func (e *SpawnError) Unwrap() error {
	return e.Cause
}

// IsSpawnError reports whether err, or any error it wraps, is a *SpawnError.
func IsSpawnError(err error) bool {
	var target *SpawnError
	return errors.As(err, &target)
}
