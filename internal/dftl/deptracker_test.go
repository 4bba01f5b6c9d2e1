package dftl

import (
	"testing"

	"github.com/dftlsim/dftl/internal/dftl/event"
)

func TestDepTracker_BeginAttachComplete(t *testing.T) {
	d := NewDepTracker()
	if d.IsInflight(0) {
		t.Fatal("tpid 0 should not be in flight before Begin")
	}
	d.Begin(0)
	if !d.IsInflight(0) {
		t.Fatal("tpid 0 should be in flight after Begin")
	}

	r1 := event.New(event.Read, 8, 1, 0)
	r2 := event.New(event.Read, 9, 1, 0)
	d.Attach(0, r1)
	d.Attach(0, r2)

	got := d.Complete(0)
	if len(got) != 2 || got[0] != r1 || got[1] != r2 {
		t.Fatalf("Complete(0) returned waiters out of FIFO order: %+v", got)
	}
	if d.IsInflight(0) {
		t.Fatal("tpid 0 should no longer be in flight after Complete")
	}
}

func TestDepTracker_CompleteWithNoWaiters(t *testing.T) {
	d := NewDepTracker()
	d.Begin(1)
	if got := d.Complete(1); got != nil {
		t.Fatalf("Complete(1) = %+v, want nil", got)
	}
}

func TestDepTracker_DoubleBeginPanics(t *testing.T) {
	d := NewDepTracker()
	d.Begin(0)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on double Begin for the same tpid")
		}
	}()
	d.Begin(0)
}

func TestDepTracker_AttachWithoutBeginPanics(t *testing.T) {
	d := NewDepTracker()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on Attach with no in-flight op")
		}
	}()
	d.Attach(0, event.New(event.Read, 8, 1, 0))
}
