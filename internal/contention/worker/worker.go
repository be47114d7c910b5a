// Package worker implements the busy-spinning worker that advances the shared
// counter to a target under a non-blocking lock.
//
// Loop:
//
//	local := 0
//	for local != target {
//		if !mu.TryAcquire(self) {
//			counter.RecordContention(id) // and spin again, no backoff
//			continue
//		}
//		v := counter.Read()
//		if v < target {
//			v++
//			counter.Write(v)
//		}
//		local = v
//		mu.Release(self) // failure aborts the worker
//	}
//
// A worker only learns that the target was reached inside its own critical
// section. A worker that keeps losing the lock keeps spinning; there is no
// timeout and no shared stop flag.
package worker

import (
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/kolkov/contention/internal/contention/counter"
	"github.com/kolkov/contention/internal/contention/thread"
	"github.com/kolkov/contention/internal/contention/trymutex"
)

// State is the lifecycle state of a worker.
type State int32

const (
	// Created means the worker exists but has not started its loop.
	Created State = iota
	// Running means the worker is inside its loop.
	Running
	// Completed means the worker observed the target and stopped.
	Completed
	// Aborted means a release failed and the worker stopped early.
	Aborted
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case Created:
		return "Created"
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	case Aborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// Terminal reports whether s is Completed or Aborted.
func (s State) Terminal() bool {
	return s == Completed || s == Aborted
}

// ErrInvalidConfig is returned by New for an unusable Config.
var ErrInvalidConfig = errors.New("worker: invalid config")

// Config is everything a worker needs, handed over at spawn time.
type Config struct {
	// ID selects the worker's tally slot. Must be unique within the run.
	ID counter.WorkerID

	// Target is the value the shared counter is driven to. Must be >= 1.
	Target int64

	// Counter is the shared state.
	Counter *counter.Counter

	// Mutex guards Counter's value.
	Mutex trymutex.Locker
}

// Result is what a worker reports when it stops.
type Result struct {
	ID    counter.WorkerID
	State State

	// LocalCopy is the last value the worker wrote or observed.
	LocalCopy int64

	// Observed is the shared value seen in the worker's last critical section.
	Observed int64

	// Acquisitions is the number of critical sections the worker entered.
	Acquisitions int64

	// Increments is the number of critical sections that advanced the counter.
	Increments int64

	// Err is the release error for an Aborted worker, nil otherwise.
	Err error
}

// Worker advances a shared counter to a target.
type Worker struct {
	cfg   Config
	state atomic.Int32
}

// New validates cfg and returns a worker in state Created.
func New(cfg Config) (*Worker, error) {
	switch {
	case cfg.Counter == nil:
		return nil, errors.Wrap(ErrInvalidConfig, "nil counter")
	case cfg.Mutex == nil:
		return nil, errors.Wrap(ErrInvalidConfig, "nil mutex")
	case cfg.Target < 1:
		return nil, errors.Wrapf(ErrInvalidConfig, "target %d < 1", cfg.Target)
	case cfg.ID < 1 || int(cfg.ID) > cfg.Counter.Workers():
		return nil, errors.Wrapf(ErrInvalidConfig, "worker id %d out of range 1..%d",
			cfg.ID, cfg.Counter.Workers())
	}
	return &Worker{cfg: cfg}, nil
}

// ID returns the worker's id.
func (w *Worker) ID() counter.WorkerID {
	return w.cfg.ID
}

// State returns the worker's current lifecycle state. Safe to call from any
// goroutine.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Run executes the worker loop on the calling goroutine and returns when the
// worker completes or aborts.
func (w *Worker) Run() Result {
	cfg := w.cfg
	self := thread.CurrentID()
	res := Result{ID: cfg.ID}

	w.state.Store(int32(Running))
	glog.V(2).Infof("worker %d started (thread %d, target %d)", cfg.ID, self, cfg.Target)

	// 0 is never a valid target, so the loop always runs at least once.
	var local int64
	for local != cfg.Target {
		if !cfg.Mutex.TryAcquire(self) {
			cfg.Counter.RecordContention(cfg.ID)
			continue
		}
		res.Acquisitions++

		v := cfg.Counter.Read()
		if v < cfg.Target {
			v++
			cfg.Counter.Write(v)
			res.Increments++
		}
		local = v
		res.Observed = v

		if err := cfg.Mutex.Release(self); err != nil {
			glog.Errorf("worker %d can't unlock the mutex: %v", cfg.ID, err)
			res.State = Aborted
			res.LocalCopy = local
			res.Err = errors.Wrapf(err, "worker %d", cfg.ID)
			w.state.Store(int32(Aborted))
			return res
		}
	}

	res.State = Completed
	res.LocalCopy = local
	w.state.Store(int32(Completed))
	glog.V(1).Infof("worker %d: local = %d, shared = %d, contention = %d",
		cfg.ID, local, res.Observed, cfg.Counter.Contention(cfg.ID))
	return res
}

// Routine is a thread.Func that runs the *Worker passed as arg.
//
// An aborted worker leaves through thread.Exit, so its exit value is the
// Result either way.
func Routine(arg any) thread.ExitValue {
	w := arg.(*Worker)
	res := w.Run()
	if res.State == Aborted {
		thread.Exit(res)
	}
	return res
}
