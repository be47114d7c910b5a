// Package report renders a coordinator.RunReport for people and for machines.
//
// Text output follows the layout of the classic pthread trylock demo:
//
//	==================
//	CONTENTION RUN 3f2a9c0d11e84b7a on host-1
//	Task[1] : local = 10000, shared_resource = 10000
//	Task[2] : local = 10000, shared_resource = 10000
//	Main Thread: shared_resource = 10000
//	Thread[1] unsuccessful attempts = 5231
//	Thread[2] unsuccessful attempts = 4877
//	Mutex: 20108 attempts, 10002 acquisitions, max holders 1
//	==================
package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/kolkov/contention/internal/contention/coordinator"
	"github.com/kolkov/contention/internal/contention/worker"
)

// Format writes the text form of rep to w.
func Format(w io.Writer, rep *coordinator.RunReport) {
	fmt.Fprintf(w, "==================\n")
	fmt.Fprintf(w, "CONTENTION RUN %016x on %s\n", rep.RunID, rep.Host)
	fmt.Fprintf(w, "Workers: %d, target: %d\n", rep.Config.Workers, rep.Config.Target)

	for _, res := range rep.Workers {
		switch res.State {
		case worker.Completed:
			fmt.Fprintf(w, "Task[%d] : local = %d, shared_resource = %d\n",
				res.ID, res.LocalCopy, res.Observed)
		case worker.Aborted:
			fmt.Fprintf(w, "Task[%d] : ABORTED at local = %d: %v\n",
				res.ID, res.LocalCopy, res.Err)
		default:
			fmt.Fprintf(w, "Task[%d] : %v\n", res.ID, res.State)
		}
	}
	for _, id := range rep.FailedToSpawn {
		fmt.Fprintf(w, "Task[%d] : not spawned\n", id)
	}

	fmt.Fprintf(w, "Main Thread: shared_resource = %d\n", rep.FinalCounterValue)
	for _, res := range rep.Workers {
		fmt.Fprintf(w, "Thread[%d] unsuccessful attempts = %d\n",
			res.ID, rep.PerWorkerContention[res.ID])
	}

	fmt.Fprintf(w, "Mutex: %d attempts, %d acquisitions, max holders %d\n",
		rep.Mutex.Attempts, rep.Mutex.Acquisitions, rep.Mutex.MaxHolders)
	fmt.Fprintf(w, "Elapsed: %v\n", rep.Elapsed.Round(time.Microsecond))
	fmt.Fprintf(w, "==================\n")
}

// String returns the text form of rep.
func String(rep *coordinator.RunReport) string {
	var buf bytes.Buffer
	Format(&buf, rep)
	return buf.String()
}

// Document is the JSON form of a run.
type Document struct {
	RunID      string           `json:"run_id"`
	Host       string           `json:"host"`
	Workers    int              `json:"workers"`
	Target     int64            `json:"target"`
	FinalValue int64            `json:"final_counter_value"`
	Completed  bool             `json:"completed"`
	Results    []WorkerDocument `json:"per_worker"`
	NotSpawned []int            `json:"not_spawned,omitempty"`
	Attempts   int64            `json:"attempts"`
	Acquired   int64            `json:"acquisitions"`
	MaxHolders int32            `json:"max_holders"`
	ElapsedNS  int64            `json:"elapsed_ns"`
}

// WorkerDocument is one worker's entry in a Document.
type WorkerDocument struct {
	ID         int    `json:"id"`
	State      string `json:"state"`
	LocalCopy  int64  `json:"local_copy"`
	Contention int64  `json:"contention"`
	Increments int64  `json:"increments"`
	Error      string `json:"error,omitempty"`
}

// NewDocument converts rep to its JSON form.
func NewDocument(rep *coordinator.RunReport) Document {
	doc := Document{
		RunID:      fmt.Sprintf("%016x", rep.RunID),
		Host:       rep.Host,
		Workers:    rep.Config.Workers,
		Target:     rep.Config.Target,
		FinalValue: rep.FinalCounterValue,
		Completed:  rep.Completed(),
		Results:    make([]WorkerDocument, 0, len(rep.Workers)),
		Attempts:   rep.Mutex.Attempts,
		Acquired:   rep.Mutex.Acquisitions,
		MaxHolders: rep.Mutex.MaxHolders,
		ElapsedNS:  rep.Elapsed.Nanoseconds(),
	}
	for _, res := range rep.Workers {
		wd := WorkerDocument{
			ID:         int(res.ID),
			State:      res.State.String(),
			LocalCopy:  res.LocalCopy,
			Contention: rep.PerWorkerContention[res.ID],
			Increments: res.Increments,
		}
		if res.Err != nil {
			wd.Error = res.Err.Error()
		}
		doc.Results = append(doc.Results, wd)
	}
	for _, id := range rep.FailedToSpawn {
		doc.NotSpawned = append(doc.NotSpawned, int(id))
	}
	return doc
}
