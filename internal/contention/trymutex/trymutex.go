// Package trymutex implements a non-blocking mutual-exclusion lock with
// explicit ownership.
//
// The lock exposes only a non-blocking acquire attempt. A caller that fails
// to acquire gets false back immediately; there is no queue and no fairness.
// Which of several spinning callers wins next is left to the scheduler, the
// same as pthread_mutex_trylock.
//
// Ownership is explicit: the caller passes its thread.ID on every call, and
// Release by anyone other than the current owner is reported as a
// *LockStateError instead of silently unlocking.
//
// Instrumentation:
//
// Every attempt is counted. The lock also tracks how many callers believe they
// hold it at any instant (incremented after a successful acquire, decremented
// before release) and remembers the maximum. For a correct lock MaxHolders is
// never above 1.
//
// Example:
//
//	var mu trymutex.Mutex
//	self := thread.CurrentID()
//	if mu.TryAcquire(self) {
//		// critical section
//		if err := mu.Release(self); err != nil {
//			return err
//		}
//	}
package trymutex

import (
	"sync/atomic"

	"github.com/kolkov/contention/internal/contention/thread"
)

// Locker is a non-blocking lock with explicit ownership.
//
// Workers depend on Locker rather than *Mutex so tests can wrap the real lock
// and inject faults.
type Locker interface {
	// TryAcquire returns true and takes the lock for owner iff the lock is free.
	// It never blocks.
	TryAcquire(owner thread.ID) bool

	// Release gives up the lock. It fails with *LockStateError if owner does
	// not hold it.
	Release(owner thread.ID) error
}

// Instrumented is a Locker that exposes its counters.
type Instrumented interface {
	Locker
	Stats() Stats
}

// Stats is a snapshot of a Mutex's instrumentation counters.
type Stats struct {
	// Attempts is the number of TryAcquire calls.
	Attempts int64

	// Acquisitions is the number of TryAcquire calls that returned true.
	Acquisitions int64

	// Failures is the number of TryAcquire calls that returned false.
	Failures int64

	// MaxHolders is the largest number of simultaneous holders observed.
	MaxHolders int32
}

// Mutex is a trylock-only mutual-exclusion lock.
//
// The zero value is an unlocked mutex. A Mutex must not be copied after
// first use.
type Mutex struct {
	// owner is the ID of the holder, or thread.NoID when unlocked.
	owner atomic.Int64

	holders    atomic.Int32
	maxHolders atomic.Int32

	attempts     atomic.Int64
	acquisitions atomic.Int64
	failures     atomic.Int64
}

var _ Instrumented = (*Mutex)(nil)

// New returns an unlocked Mutex.
func New() *Mutex {
	return &Mutex{}
}

// TryAcquire attempts to take the lock for owner without blocking.
//
// Returns true iff the lock was unlocked and is now held by owner. The
// transition is a single compare-and-swap, so two concurrent callers can
// never both see true.
//
// Panics if owner is thread.NoID, which cannot be distinguished from the
// unlocked state.
func (m *Mutex) TryAcquire(owner thread.ID) bool {
	if owner == thread.NoID {
		panic("trymutex: TryAcquire with zero owner")
	}

	m.attempts.Add(1)
	if !m.owner.CompareAndSwap(int64(thread.NoID), int64(owner)) {
		m.failures.Add(1)
		return false
	}

	m.acquisitions.Add(1)
	h := m.holders.Add(1)
	for {
		seen := m.maxHolders.Load()
		if h <= seen || m.maxHolders.CompareAndSwap(seen, h) {
			break
		}
	}
	return true
}

// Release gives up the lock held by owner.
//
// Returns *LockStateError with kind NotLocked if the lock is free, or
// NotOwner if another thread holds it. The lock state is unchanged on error.
func (m *Mutex) Release(owner thread.ID) error {
	cur := thread.ID(m.owner.Load())
	switch {
	case cur == thread.NoID:
		return newLockStateError(NotLocked, cur, owner)
	case cur != owner:
		return newLockStateError(NotOwner, cur, owner)
	}

	m.holders.Add(-1)
	if !m.owner.CompareAndSwap(int64(owner), int64(thread.NoID)) {
		// Only the owner can clear the owner field, so this means the
		// lock was corrupted underneath us.
		m.holders.Add(1)
		return newLockStateError(NotOwner, thread.ID(m.owner.Load()), owner)
	}
	return nil
}

// Owner returns the current holder, or thread.NoID if unlocked.
func (m *Mutex) Owner() thread.ID {
	return thread.ID(m.owner.Load())
}

// Locked reports whether the mutex is currently held.
func (m *Mutex) Locked() bool {
	return m.Owner() != thread.NoID
}

// Stats returns a snapshot of the instrumentation counters.
//
// The fields are read independently; while other goroutines are using the
// lock they may be mutually inconsistent. After all users have been joined
// Attempts == Acquisitions + Failures.
func (m *Mutex) Stats() Stats {
	return Stats{
		Attempts:     m.attempts.Load(),
		Acquisitions: m.acquisitions.Load(),
		Failures:     m.failures.Load(),
		MaxHolders:   m.maxHolders.Load(),
	}
}
