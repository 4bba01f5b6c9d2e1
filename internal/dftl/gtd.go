package dftl

import "github.com/dftlsim/dftl/internal/dftl/event"

// GTD is the global translation directory (spec §4.B): a small,
// always-resident array mapping a translation-page id to its current
// physical address on flash, or unmapped if no translation page has ever
// been written for that TPID.
type GTD struct {
	slots []event.PhysicalAddress
}

// NewGTD creates a GTD sized for n addressable pages and e entries per
// translation page: ceil(n/e)+1 slots.
func NewGTD(n, e int64) *GTD {
	size := (n+e-1)/e + 1
	return &GTD{slots: make([]event.PhysicalAddress, size)}
}

// Size returns the number of slots in the directory.
func (g *GTD) Size() int { return len(g.slots) }

// Lookup returns the physical address of a translation page, or
// (Unmapped, false) if it has never been written.
func (g *GTD) Lookup(tpid int64) (event.PhysicalAddress, bool) {
	pa := g.slots[tpid]
	return pa, pa.Valid
}

// Install records the physical address of a translation page. Mutated
// only on completion of a successful mapping write (spec §3).
func (g *GTD) Install(tpid int64, pa event.PhysicalAddress) {
	g.slots[tpid] = pa
}
