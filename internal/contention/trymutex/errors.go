package trymutex

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/kolkov/contention/internal/contention/thread"
)

// StateErrorKind classifies an invalid release.
type StateErrorKind int

const (
	// NotLocked means Release was called on an unlocked mutex.
	NotLocked StateErrorKind = iota + 1
	// NotOwner means Release was called by a thread that does not hold the mutex.
	NotOwner
	// Injected means a FaultyMutex forced the failure.
	Injected
)

// String returns the string representation of a StateErrorKind.
func (k StateErrorKind) String() string {
	switch k {
	case NotLocked:
		return "not locked"
	case NotOwner:
		return "not owner"
	case Injected:
		return "injected"
	default:
		return "unknown"
	}
}

// LockStateError reports a release that violates the ownership rules.
//
// It is a programmer error: the thread that receives it must stop using the
// lock.
type LockStateError struct {
	Kind   StateErrorKind
	Owner  thread.ID // Holder at the time of the call, thread.NoID if unlocked
	Caller thread.ID // Thread that attempted the release
}

// Error implements the error interface.
func (e *LockStateError) Error() string {
	switch e.Kind {
	case NotLocked:
		return fmt.Sprintf("trymutex: thread %d released an unlocked mutex", e.Caller)
	case Injected:
		return fmt.Sprintf("trymutex: injected release failure for thread %d", e.Caller)
	}
	return fmt.Sprintf("trymutex: thread %d released a mutex held by thread %d", e.Caller, e.Owner)
}

// newLockStateError returns a *LockStateError with a captured stack.
func newLockStateError(kind StateErrorKind, owner, caller thread.ID) error {
	return errors.WithStack(&LockStateError{Kind: kind, Owner: owner, Caller: caller})
}

// IsLockStateError reports whether err, or any error it wraps, is a
// *LockStateError.
func IsLockStateError(err error) bool {
	var target *LockStateError
	return errors.As(err, &target)
}
