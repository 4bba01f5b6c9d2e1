package dftl

import "github.com/dftlsim/dftl/internal/dftl/event"

// Scheduler is the simulator's event scheduler (spec §4.E, §1 out of
// scope): it inserts an event into simulated time. The coordinator never
// blocks on it — scheduling is fire-and-forget from the coordinator's
// point of view.
type Scheduler interface {
	Schedule(e *event.Event)
}

// DataFTL is the page-level data FTL the coordinator defers to for any
// event that is not a mapping op (spec §4.E).
type DataFTL interface {
	RegisterReadCompletion(e *event.Event, status event.Status)
	RegisterWriteCompletion(e *event.Event, status event.Status)
	RegisterTrimCompletion(e *event.Event)
	GetPhysicalAddress(la int64) event.PhysicalAddress
	GetLogicalAddress(pa event.PhysicalAddress) (int64, bool)
	SetReadAddress(e *event.Event)
	SetReplaceAddress(e *event.Event)
}

// BlockManager consumes the tag the coordinator attaches to write events
// (spec §4.D.7) to steer allocation into disjoint block pools. The
// coordinator never calls into it directly beyond tagging; this interface
// exists so a concrete block manager can be swapped in by a caller that
// also wants to drive garbage collection against the same events.
type BlockManager interface {
	ConsumeTag(e *event.Event)
}

// StatsSink is the subset of stats.Sink the coordinator depends on (spec
// §4.E, §6): cache size, the dirty-entries-cleaned-per-mapping-write
// histogram, and per-TPID hit counts.
type StatsSink interface {
	RecordUserWrite()
	RecordHit(tpid int64)
	RecordMappingWrite(cacheSize, cacheThreshold, dirtyEntriesCleaned int)
}
