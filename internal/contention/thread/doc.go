// Package thread provides the thread lifecycle primitives the contention
// counter is built on: spawn, join, exit, self-identification and identity
// comparison.
//
// A "thread" here is a goroutine started through a Spawner. The package keeps
// the POSIX shape of the operations so that programs written against
// pthread_create/pthread_join/pthread_exit/pthread_self/pthread_equal map onto
// it one to one:
//
//	pthread_create  ->  Spawn(fn, arg)       (*Handle, error)
//	pthread_join    ->  Join(h)              (ExitValue, error)
//	pthread_exit    ->  Exit(v)
//	pthread_self    ->  CurrentID()          ID
//	pthread_equal   ->  Equal(a, b)          bool
//
// Identity:
//
// CurrentID returns the goroutine id of the caller, extracted from the header
// line of runtime.Stack ("goroutine 123 [running]:"). The id is stable for the
// lifetime of a goroutine and never reused while the process runs, which is
// all the counter needs to track lock ownership.
//
// Capacity:
//
// A Spawner may carry a Limit on the number of live threads. Spawning past the
// limit fails with *SpawnError, which models EAGAIN from pthread_create and is
// what the coordinator uses to exercise partial-spawn handling.
//
// Example:
//
//	h, err := thread.Spawn(func(arg any) thread.ExitValue {
//		return arg.(int) * 2
//	}, 21)
//	if err != nil {
//		return err
//	}
//	v, err := thread.Join(h) // v == 42
package thread
