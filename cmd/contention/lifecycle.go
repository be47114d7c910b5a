// lifecycle.go implements the 'contention lifecycle' and 'contention identity' demos.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/kolkov/contention/internal/contention/thread"
)

// syncWriter serializes writes from several threads.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, args...)
}

// lifecycleCommand shows create, join and exit with exit values.
//
// Thread 0 exits with 0. Thread 1 joins thread 0, reports what it received
// and exits with 1. The main thread joins thread 1 and reports its value.
func lifecycleCommand(w io.Writer) int {
	out := &syncWriter{w: w}

	t0, err := thread.Spawn(func(arg any) thread.ExitValue {
		num := arg.(int)
		out.printf("Hello from thread[%d]!!\n", num)
		out.printf("Thread[%d] exit!!\n\n", num)
		thread.Exit(num)
		return nil
	}, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in creating the thread[0]: %v\n", err)
		return 1
	}

	t1, err := thread.Spawn(func(arg any) thread.ExitValue {
		ret, err := thread.Join(t0)
		if err != nil {
			out.printf("Thread[1] can't join thread[0]: %v\n", err)
			thread.Exit(-1)
		}
		out.printf("Hello from thread[%d]!!\n", arg)
		out.printf("Thread [1] received [%v] from thread[0]\n\n", ret)
		out.printf("Thread[%d] exit!!\n\n", arg)
		thread.Exit(arg)
		return nil
	}, 1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in creating the thread[1]: %v\n", err)
		// Thread 0 is still ours to join.
		_, _ = thread.Join(t0)
		return 1
	}

	out.printf("Hello From main thread!!\n\n")

	ret, err := thread.Join(t1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error joining thread[1]: %v\n", err)
		return 1
	}
	out.printf("Main Thread received [%v] from Thread[1]\n", ret)
	return 0
}

// identityCommand shows self identification and identity comparison.
//
// The spawned thread compares its own identity with the one recorded in its
// handle by the creator.
func identityCommand(w io.Writer) int {
	out := &syncWriter{w: w}
	handle := make(chan *thread.Handle, 1)

	h, err := thread.Spawn(func(arg any) thread.ExitValue {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		out.printf("Hello from thread[%d]!!\n", arg)

		self := thread.CurrentID()
		recorded := (<-handle).ID()
		if !thread.Equal(self, recorded) {
			out.printf("The two IDs differ: self = %d, recorded = %d\n", self, recorded)
			return false
		}
		out.printf("The two IDs are equal!!\n")
		out.printf("Thread ID = %d (OS thread %d)\n", self, thread.OSThreadID())
		return true
	}, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in creating the thread: %v\n", err)
		return 1
	}
	handle <- h

	out.printf("Hello From main thread!!\n\n")

	if thread.Equal(thread.CurrentID(), h.ID()) {
		out.printf("Main thread unexpectedly shares the thread's ID\n")
		return 1
	}

	v, err := h.Join()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error joining thread: %v\n", err)
		return 1
	}
	if equal, _ := v.(bool); !equal {
		return 1
	}
	return 0
}
