// Copyright 2025 The contention Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package thread

import (
	"runtime"
	"sync"
	"testing"
)

// TestCurrentID_Basic tests basic identity extraction.
func TestCurrentID_Basic(t *testing.T) {
	id := CurrentID()
	if id <= NoID {
		t.Errorf("CurrentID() returned non-positive ID: %d", id)
	}

	// Same goroutine, same ID.
	if id2 := CurrentID(); !Equal(id, id2) {
		t.Errorf("CurrentID() not stable: first=%d, second=%d", id, id2)
	}
}

// TestCurrentID_Unique verifies distinct goroutines get distinct IDs.
func TestCurrentID_Unique(t *testing.T) {
	const numGoroutines = 50

	ids := make(chan ID, numGoroutines)
	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- CurrentID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[ID]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("Duplicate ID: %d", id)
		}
		seen[id] = true
	}
}

// TestParseGID tests stack header parsing.
func TestParseGID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int64
	}{
		{"normal", "goroutine 123 [running]:\nmain.main()", 123},
		{"single digit", "goroutine 1 [running]:", 1},
		{"bad prefix", "goroutin 123 [running]:", 0},
		{"too short", "goroutine", 0},
		{"empty", "", 0},
		{"no digits", "goroutine [running]:", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseGID([]byte(tt.in)); got != tt.want {
				t.Errorf("parseGID(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

// TestSpawnJoin_ReturnValue tests that the start routine's result is the exit value.
func TestSpawnJoin_ReturnValue(t *testing.T) {
	h, err := Spawn(func(arg any) ExitValue {
		return arg.(int) * 2
	}, 21)
	if err != nil {
		t.Fatalf("Spawn() error: %v", err)
	}

	v, err := Join(h)
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	if v != 42 {
		t.Errorf("Expected exit value 42, got %v", v)
	}
}

// TestSpawn_HandleIDMatchesSelf tests that the handle names the spawned thread.
func TestSpawn_HandleIDMatchesSelf(t *testing.T) {
	self := make(chan ID, 1)
	h, err := Spawn(func(any) ExitValue {
		self <- CurrentID()
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("Spawn() error: %v", err)
	}
	if _, err := h.Join(); err != nil {
		t.Fatalf("Join() error: %v", err)
	}

	got := <-self
	if !Equal(got, h.ID()) {
		t.Errorf("Handle ID %d does not match thread's own ID %d", h.ID(), got)
	}
	if Equal(h.ID(), CurrentID()) {
		t.Error("Spawned thread has the same ID as the caller")
	}
}

// TestExit_ValueAndDefers tests that Exit stops the thread, runs defers and
// delivers the value to Join.
func TestExit_ValueAndDefers(t *testing.T) {
	var deferred, reachedEnd bool

	h, err := Spawn(func(any) ExitValue {
		defer func() { deferred = true }()
		Exit(7)
		reachedEnd = true
		return 0
	}, nil)
	if err != nil {
		t.Fatalf("Spawn() error: %v", err)
	}

	v, err := h.Join()
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	if v != 7 {
		t.Errorf("Expected exit value 7, got %v", v)
	}
	if !deferred {
		t.Error("Deferred call did not run after Exit")
	}
	if reachedEnd {
		t.Error("Code after Exit was executed")
	}
}

// TestJoin_Twice tests that a handle can only be joined once.
func TestJoin_Twice(t *testing.T) {
	h, err := Spawn(func(any) ExitValue { return nil }, nil)
	if err != nil {
		t.Fatalf("Spawn() error: %v", err)
	}

	if _, err := h.Join(); err != nil {
		t.Fatalf("First Join() error: %v", err)
	}
	if _, err := h.Join(); err != ErrAlreadyJoined {
		t.Errorf("Second Join() error = %v, want ErrAlreadyJoined", err)
	}
}

// TestJoin_Nil tests joining a nil handle.
func TestJoin_Nil(t *testing.T) {
	if _, err := Join(nil); err != ErrNilHandle {
		t.Errorf("Join(nil) error = %v, want ErrNilHandle", err)
	}
}

// TestSpawn_NilFunc tests spawning without a start routine.
func TestSpawn_NilFunc(t *testing.T) {
	if _, err := Spawn(nil, nil); err != ErrNilFunc {
		t.Errorf("Spawn(nil) error = %v, want ErrNilFunc", err)
	}
}

// TestSpawner_Limit tests that a bounded spawner refuses threads past its limit
// and accepts them again once capacity frees up.
func TestSpawner_Limit(t *testing.T) {
	s := &Spawner{Limit: 1}
	release := make(chan struct{})

	h, err := s.Spawn(func(any) ExitValue {
		<-release
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("First Spawn() error: %v", err)
	}

	_, err = s.Spawn(func(any) ExitValue { return nil }, nil)
	if !IsSpawnError(err) {
		t.Fatalf("Expected SpawnError, got %v", err)
	}
	if s.Live() != 1 {
		t.Errorf("Expected 1 live thread after failed spawn, got %d", s.Live())
	}

	close(release)
	if _, err := h.Join(); err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	if s.Live() != 0 {
		t.Errorf("Expected 0 live threads after join, got %d", s.Live())
	}

	h2, err := s.Spawn(func(any) ExitValue { return nil }, nil)
	if err != nil {
		t.Fatalf("Spawn() after capacity freed error: %v", err)
	}
	if _, err := h2.Join(); err != nil {
		t.Fatalf("Join() error: %v", err)
	}
}

// TestOSThreadID tests that a pinned goroutine sees a stable kernel thread id.
func TestOSThreadID(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	first := OSThreadID()
	if runtime.GOOS == "linux" && first <= 0 {
		t.Errorf("OSThreadID() = %d on linux, want positive", first)
	}
	if second := OSThreadID(); second != first {
		t.Errorf("OSThreadID() changed while pinned: %d -> %d", first, second)
	}
}
