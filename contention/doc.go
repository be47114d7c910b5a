// Package contention runs a bounded contention experiment: a fixed number of
// workers race to advance one shared counter to a target, each entering the
// critical section only through a non-blocking lock attempt and counting how
// often that attempt fails.
//
// # Quick Start
//
//	rep, err := contention.Run(2, 10000)
//	if err != nil {
//		log.Fatal(err)
//	}
//	contention.Format(os.Stdout, rep)
//
// Or from the command line:
//
//	$ contention run -workers 2 -target 10000
//
// # How It Works
//
// Each worker loops:
//
//	for local != target {
//		if !mu.TryAcquire(self) {
//			tally[id]++      // contention, spin again immediately
//			continue
//		}
//		v := shared          // critical section
//		if v < target {
//			v++
//			shared = v
//		}
//		local = v
//		mu.Release(self)
//	}
//
// Every successful critical section adds exactly one, so the final value is
// the target no matter how the workers interleave. The number of failed
// attempts per worker varies from run to run and measures lock pressure.
//
// # Guarantees
//
//   - The counter never exceeds the target.
//   - At most one worker is inside the critical section at any instant.
//   - Sum of tallies plus successful acquisitions equals total attempts.
//   - A worker whose release fails stops early and is reported as Aborted;
//     the others continue.
//
// A worker only learns the target was reached inside its own critical
// section, and there is no timeout. A worker that never wins the lock again
// spins forever.
package contention
