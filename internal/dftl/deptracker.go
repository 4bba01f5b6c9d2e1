package dftl

import (
	"github.com/dftlsim/dftl/internal/dftl/dftlerr"
	"github.com/dftlsim/dftl/internal/dftl/event"
)

// DepTracker is the dependency tracker (spec §4.C): the set of in-flight
// translation I/Os and, per TPID, the ordered queue of user events
// blocked on the current in-flight mapping op. Its invariant — the
// in-flight set and the wait-queue map share identical key sets — is
// maintained by construction: Begin creates both entries, Complete
// deletes both.
type DepTracker struct {
	waitQueues map[int64][]*event.Event
}

// NewDepTracker creates an empty tracker.
func NewDepTracker() *DepTracker {
	return &DepTracker{waitQueues: make(map[int64][]*event.Event)}
}

// IsInflight reports whether a mapping op is currently outstanding for tpid.
func (d *DepTracker) IsInflight(tpid int64) bool {
	_, ok := d.waitQueues[tpid]
	return ok
}

// Begin marks tpid as having an in-flight mapping op and opens its wait
// queue. Panics with a StructuralViolation if tpid is already in flight —
// at most one mapping op per TPID may be outstanding at a time.
func (d *DepTracker) Begin(tpid int64) {
	dftlerr.Assert(!d.IsInflight(tpid), "tpid %d already has an in-flight mapping op", tpid)
	d.waitQueues[tpid] = nil
}

// Attach appends e to tpid's wait queue. Panics if tpid has no in-flight
// op — attaching without a prior Begin is a structural violation.
func (d *DepTracker) Attach(tpid int64, e *event.Event) {
	dftlerr.Assert(d.IsInflight(tpid), "attach to tpid %d with no in-flight mapping op", tpid)
	d.waitQueues[tpid] = append(d.waitQueues[tpid], e)
}

// Complete clears tpid's in-flight flag and returns its wait queue in
// FIFO arrival order.
func (d *DepTracker) Complete(tpid int64) []*event.Event {
	events := d.waitQueues[tpid]
	delete(d.waitQueues, tpid)
	return events
}
