//go:build linux

package thread

import "golang.org/x/sys/unix"

// OSThreadID returns the kernel thread id of the OS thread currently running
// the caller. Goroutines migrate between OS threads unless pinned with
// runtime.LockOSThread, so the result is only meaningful while pinned.
func OSThreadID() int {
	return unix.Gettid()
}
