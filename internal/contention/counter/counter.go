// Package counter holds the state the workers compete over: one shared
// integer and a contention tally per worker.
//
// Synchronization contract:
//   - Read and Write are only valid while the caller holds the run's
//     trymutex. The counter itself does no locking.
//   - RecordContention needs no lock: each worker owns exactly one tally
//     slot and is its only writer.
//   - Tallies and Value are meant to be read after every worker has been
//     joined, which orders them after all writes.
package counter

import "fmt"

// WorkerID identifies a worker within a run. IDs are 1-based and dense.
type WorkerID int

// Counter is the shared value plus per-worker contention tallies.
type Counter struct {
	value int64

	// tallies[i] belongs to WorkerID i+1.
	tallies []int64
}

// New returns a counter at zero with tally slots for workers 1..workers.
func New(workers int) *Counter {
	if workers < 0 {
		workers = 0
	}
	return &Counter{tallies: make([]int64, workers)}
}

// Read returns the shared value. Caller must hold the lock.
func (c *Counter) Read() int64 {
	return c.value
}

// Write stores the shared value. Caller must hold the lock.
func (c *Counter) Write(v int64) {
	c.value = v
}

// Value returns the shared value once all workers are joined.
func (c *Counter) Value() int64 {
	return c.value
}

// Workers returns the number of tally slots.
func (c *Counter) Workers() int {
	return len(c.tallies)
}

// RecordContention adds one failed acquisition to id's tally.
//
// Panics if id has no slot.
func (c *Counter) RecordContention(id WorkerID) {
	c.tallies[c.slot(id)]++
}

// Contention returns id's tally.
func (c *Counter) Contention(id WorkerID) int64 {
	return c.tallies[c.slot(id)]
}

// Tallies returns a copy of every worker's tally keyed by WorkerID.
func (c *Counter) Tallies() map[WorkerID]int64 {
	out := make(map[WorkerID]int64, len(c.tallies))
	for i, n := range c.tallies {
		out[WorkerID(i+1)] = n
	}
	return out
}

// Total returns the sum of all tallies.
func (c *Counter) Total() int64 {
	var sum int64
	for _, n := range c.tallies {
		sum += n
	}
	return sum
}

func (c *Counter) slot(id WorkerID) int {
	i := int(id) - 1
	if i < 0 || i >= len(c.tallies) {
		panic(fmt.Sprintf("counter: worker %d out of range 1..%d", id, len(c.tallies)))
	}
	return i
}
