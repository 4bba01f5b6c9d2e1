package dftl

import (
	"testing"

	"github.com/dftlsim/dftl/internal/dftl/event"
	"github.com/dftlsim/dftl/internal/dftl/stats"
)

func TestCheckInvariants_CleanCoordinator(t *testing.T) {
	c, _, _ := newTestCoordinator(t, baseConfig())
	w := event.New(event.Write, 5, 1, 0)
	c.Write(w)
	c.RegisterWriteCompletion(w, event.StatusSuccess)

	if err := c.CheckInvariants(); err != nil {
		t.Fatalf("CheckInvariants() = %v, want nil", err)
	}
}

func TestCheckInvariants_CatchesMismatchedCount(t *testing.T) {
	sched := &fakeScheduler{}
	c, err := New(baseConfig(), sched, &fakeDataFTL{}, &fakeBlockManager{}, stats.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.cache.RegisterWriteArrival(1)
	c.cache.dirty.size = 0 // corrupt the bookkeeping directly

	if err := c.CheckInvariants(); err == nil {
		t.Fatal("expected CheckInvariants to report the count mismatch")
	}
}
