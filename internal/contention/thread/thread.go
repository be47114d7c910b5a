package thread

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// ExitValue is the value a thread hands back to whoever joins it.
type ExitValue = any

// Func is a thread start routine. Its return value becomes the exit value
// unless the thread calls Exit first.
type Func func(arg any) ExitValue

// Provider creates threads. *Spawner is the production implementation;
// tests substitute their own to inject spawn failures.
type Provider interface {
	Spawn(fn Func, arg any) (*Handle, error)
}

// Handle refers to a spawned thread.
//
// A Handle is returned only after the thread is running, so ID is valid
// immediately after Spawn returns.
type Handle struct {
	id     ID
	done   chan struct{}
	value  ExitValue
	joined atomic.Bool
}

// ID returns the identity of the thread the handle refers to.
func (h *Handle) ID() ID {
	return h.id
}

// Done returns a channel that is closed when the thread terminates.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Join blocks until the thread terminates and returns its exit value.
//
// A handle can be joined once; later calls return ErrAlreadyJoined without
// blocking.
func (h *Handle) Join() (ExitValue, error) {
	if h == nil {
		return nil, ErrNilHandle
	}
	if !h.joined.CompareAndSwap(false, true) {
		return nil, ErrAlreadyJoined
	}
	<-h.done
	return h.value, nil
}

// Spawner starts threads, optionally bounded by Limit.
//
// The zero value is ready to use and has no limit.
type Spawner struct {
	// Limit is the maximum number of live threads. 0 means unlimited.
	Limit int

	live atomic.Int64
}

// Live returns the number of threads started by s that have not terminated.
func (s *Spawner) Live() int {
	return int(s.live.Load())
}

// Spawn starts fn(arg) on a new thread.
//
// Returns *SpawnError if s is at its Limit.
func (s *Spawner) Spawn(fn Func, arg any) (*Handle, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}

	live := s.live.Add(1)
	if s.Limit > 0 && live > int64(s.Limit) {
		s.live.Add(-1)
		return nil, errors.WithStack(&SpawnError{Live: int(live - 1), Limit: s.Limit})
	}

	h := &Handle{done: make(chan struct{})}
	started := make(chan struct{})

	go func() {
		h.id = CurrentID()
		registry.Store(h.id, h)
		close(started)

		// Runs on normal return and on Exit (runtime.Goexit), which has
		// already stored the exit value.
		defer func() {
			registry.Delete(h.id)
			s.live.Add(-1)
			close(h.done)
		}()

		h.value = fn(arg)
	}()

	<-started
	return h, nil
}

// registry maps running thread IDs to their handles so Exit can find the
// handle of the caller.
// Key: ID, Value: *Handle.
var registry sync.Map

// defaultSpawner backs the package-level Spawn.
var defaultSpawner Spawner

// Spawn starts fn(arg) on a new thread using an unbounded spawner.
func Spawn(fn Func, arg any) (*Handle, error) {
	return defaultSpawner.Spawn(fn, arg)
}

// Join blocks until the thread behind h terminates and returns its exit value.
func Join(h *Handle) (ExitValue, error) {
	return h.Join()
}

// Exit terminates the calling thread with exit value v.
//
// Deferred calls of the thread run as usual. Calling Exit from a goroutine
// that was not started by Spawn behaves like runtime.Goexit and v is dropped.
func Exit(v ExitValue) {
	if h, ok := registry.Load(CurrentID()); ok {
		h.(*Handle).value = v
	}
	runtime.Goexit()
}
