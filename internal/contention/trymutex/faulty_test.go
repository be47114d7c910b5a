package trymutex

import (
	"testing"

	"github.com/kolkov/contention/internal/contention/thread"
)

func TestFaultyMutex_FiresOnce(t *testing.T) {
	f := NewFaulty(2)

	for i := 1; i <= 3; i++ {
		if !f.TryAcquire(ownerA) {
			t.Fatalf("Round %d: TryAcquire failed", i)
		}
		err := f.Release(ownerA)
		if i == 2 {
			if !IsLockStateError(err) {
				t.Errorf("Round 2: expected injected LockStateError, got %v", err)
			}
		} else if err != nil {
			t.Errorf("Round %d: unexpected error %v", i, err)
		}
		if f.Locked() {
			t.Errorf("Round %d: lock still held after release", i)
		}
	}

	if f.Victim() != ownerA {
		t.Errorf("Victim = %d, want %d", f.Victim(), ownerA)
	}
}

func TestFaultyMutex_Disabled(t *testing.T) {
	f := NewFaulty(0)
	for i := 0; i < 5; i++ {
		f.TryAcquire(ownerB)
		if err := f.Release(ownerB); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if f.Victim() != thread.NoID {
		t.Errorf("Victim = %d, want none", f.Victim())
	}
}

func TestFaultyMutex_RealErrorsPassThrough(t *testing.T) {
	f := NewFaulty(1)
	// Release of an unlocked mutex is a genuine error and does not count
	// as the injected one firing.
	err := f.Release(ownerA)
	if !IsLockStateError(err) {
		t.Fatalf("Expected LockStateError, got %v", err)
	}
	if f.Victim() != thread.NoID {
		t.Error("Injected fault fired on a genuine error")
	}
}
