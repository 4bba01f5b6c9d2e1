package dftl

// Cache is the cached mapping table (CMT, spec §4.A). It tracks residency
// and dirty/fixed state per logical address; it never stores the physical
// address itself — that lives with the out-of-scope data FTL. An entry's
// hotness counts hits: 0 cold, 1 hot, >1 very hot.
//
// Every resident LA is in exactly one of three states: clean (queued for
// eviction once cache pressure demands it), dirty (queued, FIFO, waiting
// to be flushed), or fixed (dirty and pinned because a mapping writeback
// covering it is in flight). Fixed entries are not linked into either
// queue, matching the single-state invariant of spec §4.A.
type Cache struct {
	entries map[int64]*cmtEntry
	dirty   entryList
	clean   entryList
}

type entryState int

const (
	stateDirty entryState = iota
	stateClean
	stateFixed
)

type cmtEntry struct {
	la      int64
	state   entryState
	hotness int
	linked  bool
	prev    *cmtEntry
	next    *cmtEntry
}

// entryList is an intrusive FIFO doubly-linked list, the same shape as the
// teacher's PageBufferPool head/tail list, minus the LRU reordering on
// access (the CMT's clean/dirty queues are plain FIFOs, not LRU lists).
type entryList struct {
	head, tail *cmtEntry
	size       int
}

func (l *entryList) pushBack(e *cmtEntry) {
	e.prev = l.tail
	e.next = nil
	if l.tail != nil {
		l.tail.next = e
	}
	l.tail = e
	if l.head == nil {
		l.head = e
	}
	l.size++
	e.linked = true
}

// remove is idempotent: a node left over from ChooseDirtyVictim's unlinking
// (state still dirty, not yet fixed or requeued) may be removed again by
// FixTPID without corrupting the list.
func (l *entryList) remove(e *cmtEntry) {
	if !e.linked {
		return
	}
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		l.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		l.tail = e.prev
	}
	e.prev, e.next = nil, nil
	e.linked = false
	l.size--
}

func (l *entryList) popFront() *cmtEntry {
	e := l.head
	if e == nil {
		return nil
	}
	l.remove(e)
	return e
}

// NewCache creates an empty CMT.
func NewCache() *Cache {
	return &Cache{entries: make(map[int64]*cmtEntry)}
}

// Size returns the number of resident entries.
func (c *Cache) Size() int { return len(c.entries) }

// RegisterReadArrival implements CMT.register_read_arrival: true iff la is
// resident, incrementing hotness on a hit.
func (c *Cache) RegisterReadArrival(la int64) bool {
	e, ok := c.entries[la]
	if !ok {
		return false
	}
	e.hotness++
	return true
}

// RegisterWriteArrival implements CMT.register_write_arrival: ensures an
// entry exists for la and marks it dirty, promoting a clean entry back
// into the dirty queue if necessary.
func (c *Cache) RegisterWriteArrival(la int64) {
	e, ok := c.entries[la]
	if !ok {
		e = &cmtEntry{la: la, state: stateDirty}
		c.entries[la] = e
		c.dirty.pushBack(e)
		return
	}
	switch e.state {
	case stateClean:
		c.clean.remove(e)
		e.state = stateDirty
		c.dirty.pushBack(e)
	case stateDirty, stateFixed:
		// Already dirty (or pinned for an in-flight flush covering the
		// old value); either way the entry stays where it is.
	}
}

// RegisterWriteCompletion implements CMT.register_write_completion: a user
// write's completion makes no structural change to the table. The entry
// stays dirty until a mapping-write completion calls MarkClean.
func (c *Cache) RegisterWriteCompletion(la int64) {}

// HandleReadDependency implements CMT.handle_read_dependency: guarantees
// an entry is present for la, creating a clean one if a write has not
// already installed it dirty.
func (c *Cache) HandleReadDependency(la int64) {
	if _, ok := c.entries[la]; ok {
		return
	}
	e := &cmtEntry{la: la, state: stateClean}
	c.entries[la] = e
	c.clean.pushBack(e)
}

// MarkClean implements CMT.mark_clean: if la is resident and dirty (or
// fixed), clears dirty/fixed and moves it to the clean queue, returning
// true. A second call on the same la is a no-op and returns false —
// idempotent clean.
func (c *Cache) MarkClean(la int64) bool {
	e, ok := c.entries[la]
	if !ok {
		return false
	}
	switch e.state {
	case stateDirty:
		c.dirty.remove(e)
	case stateFixed:
		// not linked into any list
	case stateClean:
		return false
	}
	e.state = stateClean
	c.clean.pushBack(e)
	return true
}

// Unfix clears the fixed flag without marking the entry clean, returning
// it to the tail of the dirty queue. Used when a mapping write that would
// have cleaned it instead completes with failure (§7 DownstreamFailure):
// the data was never durably written, so the entries it covers remain
// dirty and eligible for a future flush attempt.
func (c *Cache) Unfix(la int64) {
	e, ok := c.entries[la]
	if !ok || e.state != stateFixed {
		return
	}
	e.state = stateDirty
	c.dirty.pushBack(e)
}

// ClearCleanEntries implements CMT.clear_clean_entries: drains the clean
// queue, deleting entries from the table, until it is empty or the table
// is at or below threshold.
func (c *Cache) ClearCleanEntries(threshold int) {
	for c.clean.size > 0 && len(c.entries) > threshold {
		e := c.clean.popFront()
		delete(c.entries, e.la)
	}
}

// ChooseDirtyVictim implements CMT.choose_dirty_victim: FIFO over the
// dirty queue. Entries found fixed at the front are skipped and
// re-queued at the tail (defensive — fixed entries are normally unlinked
// from this queue entirely by FixTPID, so this loop should not iterate
// more than once in practice). Returns false if the dirty queue is empty.
func (c *Cache) ChooseDirtyVictim() (int64, bool) {
	seen := 0
	for seen < c.dirty.size {
		e := c.dirty.popFront()
		if e == nil {
			return 0, false
		}
		if e.state == stateFixed {
			c.dirty.pushBack(e)
			seen++
			continue
		}
		return e.la, true
	}
	return 0, false
}

// RequeueDirty puts an LA chosen by ChooseDirtyVictim back at the tail of
// the dirty queue, used when its TPID turned out to already have a
// mapping op in flight (spec §4.D.5 step 3).
func (c *Cache) RequeueDirty(la int64) {
	e, ok := c.entries[la]
	if !ok {
		return
	}
	e.state = stateDirty
	c.dirty.pushBack(e)
}

// FixTPID pins every resident, dirty LA belonging to tpid against
// eviction for the duration of an in-flight mapping write (spec §9,
// "Dirty-entry promotion during mapping-write"). Entries are unlinked
// from the dirty queue while fixed.
func (c *Cache) FixTPID(tpid, entriesPerPage int64) {
	first := tpid * entriesPerPage
	for la := first; la < first+entriesPerPage; la++ {
		e, ok := c.entries[la]
		if !ok || e.state != stateDirty {
			continue
		}
		c.dirty.remove(e)
		e.state = stateFixed
	}
}

// AllResident reports whether every one of the E logical addresses
// belonging to tpid is currently present in the cache — the condition
// under which a mapping write may skip its preceding mapping read.
func (c *Cache) AllResident(tpid, entriesPerPage int64) bool {
	first := tpid * entriesPerPage
	for la := first; la < first+entriesPerPage; la++ {
		if _, ok := c.entries[la]; !ok {
			return false
		}
	}
	return true
}

// Invalidate removes la from the table outright, regardless of state.
// Used only by the opt-in trim path (spec §9 Open Question).
func (c *Cache) Invalidate(la int64) {
	e, ok := c.entries[la]
	if !ok {
		return
	}
	switch e.state {
	case stateDirty:
		c.dirty.remove(e)
	case stateClean:
		c.clean.remove(e)
	case stateFixed:
	}
	delete(c.entries, la)
}

// state reports an entry's (dirty, fixed) pair for invariant checks in
// tests; it is not part of the spec's public contract.
func (c *Cache) state(la int64) (dirty, fixed, present bool) {
	e, ok := c.entries[la]
	if !ok {
		return false, false, false
	}
	return e.state != stateClean, e.state == stateFixed, true
}
