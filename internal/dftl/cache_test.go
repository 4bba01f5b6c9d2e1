package dftl

import "testing"

func TestCache_WriteArrivalCreatesDirtyEntry(t *testing.T) {
	c := NewCache()
	c.RegisterWriteArrival(5)

	dirty, fixed, present := c.state(5)
	if !present || !dirty || fixed {
		t.Fatalf("state(5) = present=%v dirty=%v fixed=%v, want present dirty not fixed", present, dirty, fixed)
	}
	if c.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", c.Size())
	}
}

func TestCache_ReadArrivalHitMiss(t *testing.T) {
	c := NewCache()
	if c.RegisterReadArrival(5) {
		t.Fatal("expected miss before any write")
	}
	c.RegisterWriteArrival(5)
	if !c.RegisterReadArrival(5) {
		t.Fatal("expected hit after write")
	}
}

func TestCache_MarkCleanIdempotent(t *testing.T) {
	c := NewCache()
	c.RegisterWriteArrival(5)

	if !c.MarkClean(5) {
		t.Fatal("first MarkClean should flip dirty->clean and return true")
	}
	if c.MarkClean(5) {
		t.Fatal("second MarkClean on an already-clean entry should be a no-op returning false")
	}
	dirty, fixed, present := c.state(5)
	if !present || dirty || fixed {
		t.Fatalf("state(5) = present=%v dirty=%v fixed=%v, want clean", present, dirty, fixed)
	}
}

func TestCache_MarkCleanAbsentLA(t *testing.T) {
	c := NewCache()
	if c.MarkClean(99) {
		t.Fatal("MarkClean on a never-seen LA must return false")
	}
}

func TestCache_ClearCleanEntriesRespectsThreshold(t *testing.T) {
	c := NewCache()
	for _, la := range []int64{1, 2, 3, 4} {
		c.RegisterWriteArrival(la)
		c.MarkClean(la)
	}
	c.ClearCleanEntries(2)
	if c.Size() != 2 {
		t.Fatalf("Size() = %d, want 2 after clearing down to threshold", c.Size())
	}
	// Oldest-inserted clean entries go first.
	if _, ok := c.entries[1]; ok {
		t.Fatal("LA 1 should have been evicted first (FIFO)")
	}
	if _, ok := c.entries[4]; !ok {
		t.Fatal("LA 4 should still be resident")
	}
}

func TestCache_ClearCleanEntriesStopsWhenQueueEmpty(t *testing.T) {
	c := NewCache()
	c.RegisterWriteArrival(1) // dirty, not in the clean queue
	c.ClearCleanEntries(0)
	if c.Size() != 1 {
		t.Fatalf("Size() = %d, want 1: dirty entries are never drained by ClearCleanEntries", c.Size())
	}
}

func TestCache_ChooseDirtyVictimFIFO(t *testing.T) {
	c := NewCache()
	c.RegisterWriteArrival(3)
	c.RegisterWriteArrival(1)
	c.RegisterWriteArrival(2)

	la, ok := c.ChooseDirtyVictim()
	if !ok || la != 3 {
		t.Fatalf("ChooseDirtyVictim() = (%d, %v), want (3, true) for earliest insertion", la, ok)
	}
}

func TestCache_ChooseDirtyVictimEmptyQueue(t *testing.T) {
	c := NewCache()
	la, ok := c.ChooseDirtyVictim()
	if ok {
		t.Fatalf("ChooseDirtyVictim() on empty cache = (%d, true), want false", la)
	}
}

func TestCache_RequeueDirtyGoesToTail(t *testing.T) {
	c := NewCache()
	c.RegisterWriteArrival(1)
	c.RegisterWriteArrival(2)

	la, _ := c.ChooseDirtyVictim() // pops 1
	c.RequeueDirty(la)

	next, _ := c.ChooseDirtyVictim()
	if next != 2 {
		t.Fatalf("after requeueing 1, next victim = %d, want 2", next)
	}
}

func TestCache_FixTPIDUnlinksFromDirtyQueue(t *testing.T) {
	c := NewCache()
	c.RegisterWriteArrival(0)
	c.RegisterWriteArrival(1)
	c.RegisterWriteArrival(2)
	c.RegisterWriteArrival(3)

	c.FixTPID(0, 4)

	if _, ok := c.ChooseDirtyVictim(); ok {
		t.Fatal("all entries of tpid 0 were fixed; dirty queue should be empty")
	}
	for _, la := range []int64{0, 1, 2, 3} {
		dirty, fixed, present := c.state(la)
		if !present || !dirty || !fixed {
			t.Fatalf("la %d: present=%v dirty=%v fixed=%v, want fixed", la, present, dirty, fixed)
		}
	}
}

func TestCache_AllResident(t *testing.T) {
	c := NewCache()
	c.RegisterWriteArrival(0)
	c.RegisterWriteArrival(2)
	if c.AllResident(0, 4) {
		t.Fatal("only 2 of 4 entries resident, AllResident should be false")
	}
	c.RegisterWriteArrival(1)
	c.RegisterWriteArrival(3)
	if !c.AllResident(0, 4) {
		t.Fatal("all 4 entries resident, AllResident should be true")
	}
}

func TestCache_UnfixReturnsToDirtyQueue(t *testing.T) {
	c := NewCache()
	c.RegisterWriteArrival(1)
	c.FixTPID(0, 4)

	if _, ok := c.ChooseDirtyVictim(); ok {
		t.Fatal("entry is fixed; should not be choosable")
	}
	c.Unfix(1)
	la, ok := c.ChooseDirtyVictim()
	if !ok || la != 1 {
		t.Fatalf("after Unfix, ChooseDirtyVictim() = (%d, %v), want (1, true)", la, ok)
	}
}

func TestCache_InvalidateRemovesRegardlessOfState(t *testing.T) {
	c := NewCache()
	c.RegisterWriteArrival(1)
	c.Invalidate(1)
	if c.Size() != 0 {
		t.Fatalf("Size() = %d after Invalidate, want 0", c.Size())
	}
	if c.RegisterReadArrival(1) {
		t.Fatal("invalidated LA should not be a hit")
	}
}
