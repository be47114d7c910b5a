// Package coordinator runs one contention experiment: it creates the shared
// counter and lock, spawns the workers, joins every one of them and reports
// the final state.
//
// Lifecycle of a Coordinator:
//
//	Idle -> Spawning -> WaitingOnAll -> Done
//
// A Coordinator can be run again once Done. Every run gets a fresh counter and
// a fresh lock, so repeated runs with the same configuration all end at the
// same counter value; only the contention tallies differ.
//
// Example:
//
//	rep, err := coordinator.New().Run(2, 10000)
//	if err != nil {
//		return err
//	}
//	fmt.Println(rep.FinalCounterValue) // 10000
package coordinator

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set"
	farm "github.com/dgryski/go-farm"
	"github.com/go-kratos/kratos/pkg/conf/env"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/kolkov/contention/internal/contention/counter"
	"github.com/kolkov/contention/internal/contention/thread"
	"github.com/kolkov/contention/internal/contention/trymutex"
	"github.com/kolkov/contention/internal/contention/worker"
)

// Reference configuration: two workers racing to 10000.
const (
	DefaultWorkers = 2
	DefaultTarget  = 10000
)

// State is the lifecycle state of a Coordinator.
type State int32

const (
	// Idle means no run has started.
	Idle State = iota
	// Spawning means workers are being started.
	Spawning
	// WaitingOnAll means every spawn was attempted and the coordinator is
	// joining the workers.
	WaitingOnAll
	// Done means the last run returned.
	Done
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Spawning:
		return "Spawning"
	case WaitingOnAll:
		return "WaitingOnAll"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// Config is the input of a run.
type Config struct {
	Workers int
	Target  int64
}

// DefaultConfig returns the reference configuration (2 workers, target 10000).
func DefaultConfig() Config {
	return Config{Workers: DefaultWorkers, Target: DefaultTarget}
}

// Validate checks that the run can terminate.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return errors.Wrapf(ErrInvalidConfig, "worker count %d < 1", c.Workers)
	}
	if c.Target < 1 {
		return errors.Wrapf(ErrInvalidConfig, "target %d < 1", c.Target)
	}
	return nil
}

// RunReport is the outcome of a run.
type RunReport struct {
	Config Config

	// FinalCounterValue is the shared counter after all workers were joined.
	FinalCounterValue int64

	// PerWorkerContention is the failed-acquisition tally of each spawned worker.
	PerWorkerContention map[counter.WorkerID]int64

	// Workers holds the result of each spawned worker, ordered by ID.
	Workers []worker.Result

	// Mutex is the lock's instrumentation at the end of the run.
	Mutex trymutex.Stats

	// Spawned and FailedToSpawn partition the worker IDs 1..Config.Workers.
	Spawned       []counter.WorkerID
	FailedToSpawn []counter.WorkerID

	// Host is the machine the run executed on.
	Host string

	// RunID fingerprints host, configuration and start time.
	RunID uint64

	Started time.Time
	Elapsed time.Duration
}

// Completed reports whether every worker was spawned and reached Completed.
func (r *RunReport) Completed() bool {
	if len(r.FailedToSpawn) > 0 {
		return false
	}
	for _, w := range r.Workers {
		if w.State != worker.Completed {
			return false
		}
	}
	return true
}

// Aborted returns the IDs of workers that stopped on a lock state error.
func (r *RunReport) Aborted() []counter.WorkerID {
	var ids []counter.WorkerID
	for _, w := range r.Workers {
		if w.State == worker.Aborted {
			ids = append(ids, w.ID)
		}
	}
	return ids
}

// TotalContention returns the sum of all per-worker tallies.
func (r *RunReport) TotalContention() int64 {
	var sum int64
	for _, n := range r.PerWorkerContention {
		sum += n
	}
	return sum
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithProvider sets the thread provider used to spawn workers.
func WithProvider(p thread.Provider) Option {
	return func(c *Coordinator) {
		c.provider = p
	}
}

// WithLocker sets the factory for each run's lock.
func WithLocker(newLock func() trymutex.Instrumented) Option {
	return func(c *Coordinator) {
		c.newLock = newLock
	}
}

// WithReleaseFault makes the n-th release of each run fail with an injected
// lock state error. n <= 0 disables the fault.
func WithReleaseFault(n int64) Option {
	return WithLocker(func() trymutex.Instrumented {
		return trymutex.NewFaulty(n)
	})
}

// Coordinator spawns workers and collects their results.
type Coordinator struct {
	provider thread.Provider
	newLock  func() trymutex.Instrumented
	state    atomic.Int32
}

// New returns an Idle Coordinator. By default workers run on an unbounded
// thread.Spawner and share a plain trymutex.Mutex.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		provider: &thread.Spawner{},
		newLock: func() trymutex.Instrumented {
			return trymutex.New()
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the coordinator's lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Run is RunConfig with Config{Workers: workerCount, Target: target}.
func (c *Coordinator) Run(workerCount int, target int64) (*RunReport, error) {
	return c.RunConfig(Config{Workers: workerCount, Target: target})
}

// RunConfig performs one run and blocks until every spawned worker has
// terminated.
//
// If a spawn fails, the remaining workers are not started, the ones already
// running are joined, and the report is returned together with a
// *SpawnError. Workers that abort on a lock state error do not fail the run;
// they show up as Aborted in the report.
//
// RunConfig does not return while a worker is still spinning. See package
// worker for the conditions under which a worker can spin indefinitely.
func (c *Coordinator) RunConfig(cfg Config) (*RunReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !c.state.CompareAndSwap(int32(Idle), int32(Spawning)) &&
		!c.state.CompareAndSwap(int32(Done), int32(Spawning)) {
		return nil, ErrBusy
	}
	defer c.state.Store(int32(Done))

	rep := &RunReport{
		Config:              cfg,
		PerWorkerContention: make(map[counter.WorkerID]int64, cfg.Workers),
		Host:                env.Hostname,
		Started:             time.Now(),
	}
	rep.RunID = farm.Fingerprint64([]byte(fmt.Sprintf("%s/%d/%d/%d",
		rep.Host, cfg.Workers, cfg.Target, rep.Started.UnixNano())))

	shared := counter.New(cfg.Workers)
	mu := c.newLock()

	glog.V(1).Infof("run %016x: spawning %d workers, target %d", rep.RunID, cfg.Workers, cfg.Target)

	handles, spawnErr := c.spawnAll(cfg, shared, mu)

	c.state.Store(int32(WaitingOnAll))
	spawned := mapset.NewSet()
	for id, h := range handles {
		spawned.Add(id)
		v, err := h.Join()
		if err != nil {
			// Each handle is joined exactly once here.
			panic(fmt.Sprintf("coordinator: join worker %d: %v", id, err))
		}
		res := v.(worker.Result)
		rep.Workers = append(rep.Workers, res)
		rep.PerWorkerContention[id] = shared.Contention(id)
		glog.V(2).Infof("run %016x: joined worker %d (%v)", rep.RunID, id, res.State)
	}
	sort.Slice(rep.Workers, func(i, j int) bool {
		return rep.Workers[i].ID < rep.Workers[j].ID
	})

	for id := counter.WorkerID(1); int(id) <= cfg.Workers; id++ {
		if spawned.Contains(id) {
			rep.Spawned = append(rep.Spawned, id)
		} else {
			rep.FailedToSpawn = append(rep.FailedToSpawn, id)
		}
	}

	rep.FinalCounterValue = shared.Value()
	rep.Mutex = mu.Stats()
	rep.Elapsed = time.Since(rep.Started)

	glog.V(1).Infof("run %016x: final value %d, contention %d, %v",
		rep.RunID, rep.FinalCounterValue, rep.TotalContention(), rep.Elapsed)

	if spawnErr != nil {
		spawnErr.Spawned = rep.Spawned
		return rep, spawnErr
	}
	return rep, nil
}

// spawnAll starts workers 1..cfg.Workers in order and stops at the first
// spawn failure.
func (c *Coordinator) spawnAll(cfg Config, shared *counter.Counter, mu trymutex.Locker) (map[counter.WorkerID]*thread.Handle, *SpawnError) {
	handles := make(map[counter.WorkerID]*thread.Handle, cfg.Workers)

	for id := counter.WorkerID(1); int(id) <= cfg.Workers; id++ {
		w, err := worker.New(worker.Config{
			ID:      id,
			Target:  cfg.Target,
			Counter: shared,
			Mutex:   mu,
		})
		if err != nil {
			// cfg was validated and IDs are in range.
			panic(err)
		}

		h, err := c.provider.Spawn(worker.Routine, w)
		if err != nil {
			glog.Errorf("error creating worker %d: %v", id, err)
			se := &SpawnError{Failed: id, Cause: err}
			for rest := id + 1; int(rest) <= cfg.Workers; rest++ {
				se.Skipped = append(se.Skipped, rest)
			}
			return handles, se
		}
		handles[id] = h
	}
	return handles, nil
}
