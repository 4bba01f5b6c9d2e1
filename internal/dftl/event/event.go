// Package event defines the boundary record the DFTL coordinator reads and
// writes. It is the only vocabulary shared between the coordinator and its
// collaborators (scheduler, data FTL, block manager, stats sink).
package event

import "github.com/google/uuid"

// Kind identifies the operation an Event carries.
type Kind int

const (
	Read Kind = iota
	Write
	Trim
)

func (k Kind) String() string {
	switch k {
	case Read:
		return "read"
	case Write:
		return "write"
	case Trim:
		return "trim"
	default:
		return "unknown"
	}
}

// Status is the completion outcome reported by a collaborator.
type Status int

const (
	StatusUnknown Status = iota
	StatusSuccess
	StatusFailure
)

// PhysicalAddress is an opaque flash location with a validity flag. An
// invalid PhysicalAddress means "unmapped" — no translation page, or no
// data page, has been written there yet.
type PhysicalAddress struct {
	Value uint64
	Valid bool
}

// Unmapped is the zero-value, always-invalid physical address.
var Unmapped = PhysicalAddress{}

// Event is the single record type that carries both user I/O and mapping
// I/O through the simulated event path. LA is always in [0, N) for user
// I/O; for mapping I/O it is MetaLA(N, tpid) = N - tpid (see
// TPIDFromMetaLA), so tpid 0 is carried at LA N itself.
type Event struct {
	ID uuid.UUID

	kind Kind // set via New/NewMapping; read with EventKind

	LA   int64 // logical address
	Size int   // always 1 for mapping ops

	StartTime   float64
	CurrentTime float64

	IsMappingOp             bool
	IsGarbageCollectionOp   bool
	Noop                    bool
	IsOriginalApplicationIO bool

	Address        PhysicalAddress
	ReplaceAddress PhysicalAddress
	Tag            int

	Status Status
}

// New creates an Event of the given kind for logical address la.
func New(kind Kind, la int64, size int, startTime float64) *Event {
	return &Event{
		ID:                      uuid.New(),
		kind:                    kind,
		LA:                      la,
		Size:                    size,
		StartTime:               startTime,
		CurrentTime:             startTime,
		IsOriginalApplicationIO: true,
	}
}

// NewMapping creates a mapping-op Event (read or write) targeting the
// reserved meta logical address of a translation page.
func NewMapping(kind Kind, metaLA int64, startTime float64) *Event {
	e := New(kind, metaLA, 1, startTime)
	e.IsOriginalApplicationIO = false
	e.IsMappingOp = true
	return e
}

// EventKind returns the event's kind.
func (e *Event) EventKind() Kind { return e.kind }

// TPIDFromLA computes the translation-page id owning a user logical
// address, given E entries per translation page.
func TPIDFromLA(la, entriesPerPage int64) int64 {
	return la / entriesPerPage
}

// MetaLA computes the reserved logical address used to carry mapping I/O
// for a translation page, given N addressable pages.
func MetaLA(n, tpid int64) int64 {
	return n - tpid
}

// TPIDFromMetaLA recovers a translation-page id from a mapping event's LA.
func TPIDFromMetaLA(n, la int64) int64 {
	return n - la
}

// ReservedRangeStart returns the first logical address reserved for
// mapping I/O: N - ceil(N/E) - 1.
func ReservedRangeStart(n, entriesPerPage int64) int64 {
	gtdSize := (n + entriesPerPage - 1) / entriesPerPage
	return n - gtdSize - 1
}
