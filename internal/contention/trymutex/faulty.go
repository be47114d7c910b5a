package trymutex

import (
	"sync/atomic"

	"github.com/kolkov/contention/internal/contention/thread"
)

// FaultyMutex is a Mutex whose FailAt-th Release (1-based, counted across all
// owners) reports a *LockStateError of kind Injected.
//
// The underlying lock is still released when the fault fires, so other users
// keep making progress. FailAt <= 0 never fires.
type FaultyMutex struct {
	*Mutex

	FailAt int64

	releases atomic.Int64
	victim   atomic.Int64
}

var _ Instrumented = (*FaultyMutex)(nil)

// NewFaulty returns a FaultyMutex over a fresh Mutex.
func NewFaulty(failAt int64) *FaultyMutex {
	return &FaultyMutex{Mutex: New(), FailAt: failAt}
}

// Release releases the lock and injects a failure on the FailAt-th call.
func (f *FaultyMutex) Release(owner thread.ID) error {
	n := f.releases.Add(1)
	if err := f.Mutex.Release(owner); err != nil {
		return err
	}
	if n != f.FailAt {
		return nil
	}
	f.victim.Store(int64(owner))
	return newLockStateError(Injected, thread.NoID, owner)
}

// Victim returns the thread that received the injected failure, or
// thread.NoID if it has not fired.
func (f *FaultyMutex) Victim() thread.ID {
	return thread.ID(f.victim.Load())
}
