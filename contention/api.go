// Package contention provides the public API for the non-blocking
// mutual-exclusion counter.
//
// See doc.go for detailed documentation and examples.
package contention

import (
	"io"

	"github.com/kolkov/contention/internal/contention/coordinator"
	"github.com/kolkov/contention/internal/contention/report"
)

// Report is the outcome of a run.
type Report = coordinator.RunReport

// Config is the input of a run.
type Config = coordinator.Config

// DefaultConfig returns the reference configuration: 2 workers, target 10000.
func DefaultConfig() Config {
	return coordinator.DefaultConfig()
}

// Run spawns workerCount workers that race a shared counter to target through
// a trylock, waits for all of them, and returns the report.
//
// Example:
//
//	rep, err := contention.Run(2, 10000)
//	if err != nil {
//		log.Fatal(err)
//	}
//	contention.Format(os.Stdout, rep)
//
// Run returns an error for workerCount < 1 or target < 1, and a spawn error
// (with a non-nil report) if not every worker could be started.
func Run(workerCount int, target int64) (*Report, error) {
	return coordinator.New().Run(workerCount, target)
}

// Format writes the text form of rep to w.
func Format(w io.Writer, rep *Report) {
	report.Format(w, rep)
}

// IsSpawnError reports whether err is the error Run returns when not every
// worker could be started.
func IsSpawnError(err error) bool {
	return coordinator.IsSpawnError(err)
}
