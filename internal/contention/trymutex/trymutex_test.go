package trymutex

import (
	"sync"
	"testing"

	"github.com/pkg/errors"

	"github.com/kolkov/contention/internal/contention/thread"
)

const (
	ownerA thread.ID = 101
	ownerB thread.ID = 202
)

// TestTryAcquire_Unlocked verifies the first attempt on a free lock succeeds.
func TestTryAcquire_Unlocked(t *testing.T) {
	m := New()

	if !m.TryAcquire(ownerA) {
		t.Fatal("TryAcquire on unlocked mutex returned false")
	}
	if m.Owner() != ownerA {
		t.Errorf("Expected owner %d, got %d", ownerA, m.Owner())
	}
	if !m.Locked() {
		t.Error("Mutex not reported as locked")
	}
}

// TestTryAcquire_Locked verifies attempts on a held lock fail without blocking.
func TestTryAcquire_Locked(t *testing.T) {
	m := New()
	m.TryAcquire(ownerA)

	if m.TryAcquire(ownerB) {
		t.Error("TryAcquire by another thread succeeded on held mutex")
	}
	// Not reentrant either.
	if m.TryAcquire(ownerA) {
		t.Error("TryAcquire by owner succeeded on held mutex")
	}
	if m.Owner() != ownerA {
		t.Errorf("Failed attempts changed owner to %d", m.Owner())
	}
}

// TestRelease_Owner verifies release by the holder unlocks.
func TestRelease_Owner(t *testing.T) {
	m := New()
	m.TryAcquire(ownerA)

	if err := m.Release(ownerA); err != nil {
		t.Fatalf("Release by owner failed: %v", err)
	}
	if m.Locked() {
		t.Error("Mutex still locked after release")
	}
	if !m.TryAcquire(ownerB) {
		t.Error("TryAcquire after release failed")
	}
}

// TestRelease_NotLocked verifies release of a free lock is a LockStateError.
func TestRelease_NotLocked(t *testing.T) {
	m := New()

	err := m.Release(ownerA)
	if !IsLockStateError(err) {
		t.Fatalf("Expected LockStateError, got %v", err)
	}

	var lse *LockStateError
	if !errors.As(err, &lse) || lse.Kind != NotLocked {
		t.Errorf("Expected kind NotLocked, got %+v", lse)
	}
}

// TestRelease_NotOwner verifies release by a non-holder is a LockStateError
// and leaves the lock held.
func TestRelease_NotOwner(t *testing.T) {
	m := New()
	m.TryAcquire(ownerA)

	err := m.Release(ownerB)
	var lse *LockStateError
	if !errors.As(err, &lse) {
		t.Fatalf("Expected LockStateError, got %v", err)
	}
	if lse.Kind != NotOwner || lse.Owner != ownerA || lse.Caller != ownerB {
		t.Errorf("Unexpected error fields: %+v", lse)
	}
	if m.Owner() != ownerA {
		t.Errorf("Failed release changed owner to %d", m.Owner())
	}
}

// TestTryAcquire_ZeroOwnerPanics verifies the unlocked marker cannot be used as an owner.
func TestTryAcquire_ZeroOwnerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("TryAcquire(NoID) did not panic")
		}
	}()
	New().TryAcquire(thread.NoID)
}

// TestStats_Counts verifies attempt accounting.
func TestStats_Counts(t *testing.T) {
	m := New()
	m.TryAcquire(ownerA) // success
	m.TryAcquire(ownerB) // failure
	m.TryAcquire(ownerB) // failure
	_ = m.Release(ownerA)
	m.TryAcquire(ownerB) // success

	st := m.Stats()
	if st.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", st.Attempts)
	}
	if st.Acquisitions != 2 {
		t.Errorf("Acquisitions = %d, want 2", st.Acquisitions)
	}
	if st.Failures != 2 {
		t.Errorf("Failures = %d, want 2", st.Failures)
	}
	if st.MaxHolders != 1 {
		t.Errorf("MaxHolders = %d, want 1", st.MaxHolders)
	}
}

// TestConcurrent_MutualExclusion hammers the lock from many goroutines and
// checks that no two ever hold it at once.
func TestConcurrent_MutualExclusion(t *testing.T) {
	const (
		numGoroutines = 8
		perGoroutine  = 2000
	)

	m := New()
	var (
		wg      sync.WaitGroup
		inside  int // Protected by m
		counter int // Protected by m
	)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			self := thread.CurrentID()
			for done := 0; done < perGoroutine; {
				if !m.TryAcquire(self) {
					continue
				}
				inside++
				if inside != 1 {
					t.Errorf("Observed %d holders inside critical section", inside)
				}
				counter++
				done++
				inside--
				if err := m.Release(self); err != nil {
					t.Errorf("Release failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if counter != numGoroutines*perGoroutine {
		t.Errorf("Counter = %d, want %d", counter, numGoroutines*perGoroutine)
	}

	st := m.Stats()
	if st.MaxHolders != 1 {
		t.Errorf("MaxHolders = %d, want 1", st.MaxHolders)
	}
	if st.Acquisitions != numGoroutines*perGoroutine {
		t.Errorf("Acquisitions = %d, want %d", st.Acquisitions, numGoroutines*perGoroutine)
	}
	if st.Attempts != st.Acquisitions+st.Failures {
		t.Errorf("Attempts %d != Acquisitions %d + Failures %d",
			st.Attempts, st.Acquisitions, st.Failures)
	}
}

// BenchmarkTryAcquire_Uncontended measures an acquire/release pair on a free lock.
func BenchmarkTryAcquire_Uncontended(b *testing.B) {
	m := New()
	self := thread.CurrentID()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if m.TryAcquire(self) {
			_ = m.Release(self)
		}
	}
}

// BenchmarkTryAcquire_Held measures a failing attempt on a held lock.
func BenchmarkTryAcquire_Held(b *testing.B) {
	m := New()
	m.TryAcquire(ownerA)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.TryAcquire(ownerB)
	}
}
