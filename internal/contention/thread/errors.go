package thread

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrAlreadyJoined is returned when a handle is joined more than once.
var ErrAlreadyJoined = errors.New("thread: handle already joined")

// ErrNilHandle is returned when Join is called with a nil handle.
var ErrNilHandle = errors.New("thread: nil handle")

// ErrNilFunc is returned when Spawn is called with a nil start routine.
var ErrNilFunc = errors.New("thread: nil start routine")

// SpawnError reports that a new thread could not be created because the
// spawner is at capacity.
type SpawnError struct {
	Live  int // Threads running at the time of the attempt
	Limit int // Configured capacity
}

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("thread: cannot spawn: %d of %d threads live", e.Live, e.Limit)
}

// IsSpawnError reports whether err, or any error it wraps, is a *SpawnError.
func IsSpawnError(err error) bool {
	var target *SpawnError
	return errors.As(err, &target)
}
