//go:build !linux

package thread

// OSThreadID returns -1 on platforms without a gettid equivalent.
func OSThreadID() int {
	return -1
}
