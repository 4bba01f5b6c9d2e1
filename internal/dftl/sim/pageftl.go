// Package sim provides reference implementations of the dftl package's
// collaborator interfaces — a data FTL, a scheduler, and a block manager —
// so the coordinator can be driven end to end without a real flash device.
package sim

import (
	"fmt"

	"github.com/dftlsim/dftl/internal/dftl/event"
)

// PageFTL is a reference DataFTL: a flat physical page store with an
// append-only allocator and a reverse PA->LA index, the shape of the
// teacher's page buffer pool minus the WAL and dirty-bit bookkeeping a real
// on-flash data FTL would need.
type PageFTL struct {
	forward map[int64]event.PhysicalAddress
	reverse map[uint64]int64 // PA.Value -> LA, supplemental to the distilled spec (see DESIGN.md)
	next    uint64
}

// NewPageFTL creates an empty data FTL.
func NewPageFTL() *PageFTL {
	return &PageFTL{
		forward: make(map[int64]event.PhysicalAddress),
		reverse: make(map[uint64]int64),
	}
}

func (p *PageFTL) allocate() event.PhysicalAddress {
	pa := event.PhysicalAddress{Value: p.next, Valid: true}
	p.next++
	return pa
}

// Allocate hands out a fresh physical address without touching the
// forward/reverse index. Used by callers that need a flash location for
// something the data FTL doesn't itself track, such as a translation page.
func (p *PageFTL) Allocate() event.PhysicalAddress {
	return p.allocate()
}

// GetPhysicalAddress implements dftl.DataFTL.
func (p *PageFTL) GetPhysicalAddress(la int64) event.PhysicalAddress {
	pa, ok := p.forward[la]
	if !ok {
		return event.Unmapped
	}
	return pa
}

// GetLogicalAddress implements dftl.DataFTL's reverse lookup (SPEC_FULL §4.G).
func (p *PageFTL) GetLogicalAddress(pa event.PhysicalAddress) (int64, bool) {
	la, ok := p.reverse[pa.Value]
	return la, ok
}

// SetReadAddress implements dftl.DataFTL: fill in the address of the
// current mapping for a plain data read.
func (p *PageFTL) SetReadAddress(e *event.Event) {
	e.Address = p.GetPhysicalAddress(e.LA)
}

// SetReplaceAddress implements dftl.DataFTL: allocate a fresh physical page
// for a data write, recording both the forward and reverse mapping
// immediately so a GC pass issued before the write completes still sees a
// consistent reverse index.
func (p *PageFTL) SetReplaceAddress(e *event.Event) {
	old := p.forward[e.LA]
	if old.Valid {
		delete(p.reverse, old.Value)
	}
	pa := p.allocate()
	e.ReplaceAddress = pa
	p.forward[e.LA] = pa
	p.reverse[pa.Value] = e.LA
}

// RegisterReadCompletion implements dftl.DataFTL; the reference FTL has no
// further bookkeeping to do once a data read lands.
func (p *PageFTL) RegisterReadCompletion(e *event.Event, status event.Status) {}

// RegisterWriteCompletion implements dftl.DataFTL; the mapping was already
// installed eagerly in SetReplaceAddress.
func (p *PageFTL) RegisterWriteCompletion(e *event.Event, status event.Status) {}

// RegisterTrimCompletion drops the forward and reverse mapping for a
// trimmed logical address.
func (p *PageFTL) RegisterTrimCompletion(e *event.Event) {
	old, ok := p.forward[e.LA]
	if !ok {
		return
	}
	delete(p.forward, e.LA)
	delete(p.reverse, old.Value)
}

// Relocate moves the page currently at from to a newly allocated physical
// address, updating both indices, and returns the new address. It covers
// data pages only; translation pages are relocated by the coordinator
// itself via SetReadAddress/SetReplaceAddress on the reserved range.
// Nothing in this package calls it; a caller driving garbage collection
// does.
func (p *PageFTL) Relocate(from event.PhysicalAddress) (event.PhysicalAddress, error) {
	la, ok := p.reverse[from.Value]
	if !ok {
		return event.Unmapped, fmt.Errorf("sim: no logical address maps to physical address %d", from.Value)
	}
	delete(p.reverse, from.Value)
	to := p.allocate()
	p.forward[la] = to
	p.reverse[to.Value] = la
	return to, nil
}
