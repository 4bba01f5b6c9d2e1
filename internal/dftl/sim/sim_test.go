package sim

import (
	"testing"

	"github.com/dftlsim/dftl/internal/dftl/event"
)

func TestTimeWheel_OrdersByTimeThenArrival(t *testing.T) {
	w := NewTimeWheel()
	late := event.New(event.Read, 1, 1, 5)
	early := event.New(event.Read, 2, 1, 1)
	tie1 := event.New(event.Read, 3, 1, 1)

	w.Schedule(late)
	w.Schedule(early)
	w.Schedule(tie1)

	first, ok := w.Pop()
	if !ok || first != early {
		t.Fatalf("Pop() = %+v, want the earliest-time event", first)
	}
	second, ok := w.Pop()
	if !ok || second != tie1 {
		t.Fatalf("Pop() = %+v, want the tiebreak-by-arrival event scheduled second", second)
	}
	third, _ := w.Pop()
	if third != late {
		t.Fatalf("Pop() = %+v, want the latest-time event last", third)
	}
	if _, ok := w.Pop(); ok {
		t.Fatal("wheel should be empty")
	}
	if w.Now() != 5 {
		t.Fatalf("Now() = %v, want 5 after draining through the latest event", w.Now())
	}
}

func TestPageFTL_WriteThenReadRoundTrip(t *testing.T) {
	p := NewPageFTL()
	w := event.New(event.Write, 10, 1, 0)
	p.SetReplaceAddress(w)
	if !w.ReplaceAddress.Valid {
		t.Fatal("SetReplaceAddress must allocate a valid physical address")
	}

	r := event.New(event.Read, 10, 1, 1)
	p.SetReadAddress(r)
	if r.Address != w.ReplaceAddress {
		t.Fatalf("read address %v does not match the address just written %v", r.Address, w.ReplaceAddress)
	}

	la, ok := p.GetLogicalAddress(w.ReplaceAddress)
	if !ok || la != 10 {
		t.Fatalf("GetLogicalAddress(%v) = (%d, %v), want (10, true)", w.ReplaceAddress, la, ok)
	}
}

func TestPageFTL_RewriteInvalidatesOldReverseEntry(t *testing.T) {
	p := NewPageFTL()
	w1 := event.New(event.Write, 10, 1, 0)
	p.SetReplaceAddress(w1)

	w2 := event.New(event.Write, 10, 1, 1)
	p.SetReplaceAddress(w2)

	if _, ok := p.GetLogicalAddress(w1.ReplaceAddress); ok {
		t.Fatal("the old physical address must no longer reverse-map after a rewrite")
	}
	la, ok := p.GetLogicalAddress(w2.ReplaceAddress)
	if !ok || la != 10 {
		t.Fatal("the new physical address should reverse-map to LA 10")
	}
}

func TestPageFTL_Relocate(t *testing.T) {
	p := NewPageFTL()
	w := event.New(event.Write, 10, 1, 0)
	p.SetReplaceAddress(w)

	newPA, err := p.Relocate(w.ReplaceAddress)
	if err != nil {
		t.Fatalf("Relocate() error = %v", err)
	}
	if p.GetPhysicalAddress(10) != newPA {
		t.Fatalf("forward mapping not updated after relocation: got %v, want %v", p.GetPhysicalAddress(10), newPA)
	}
	if _, ok := p.GetLogicalAddress(w.ReplaceAddress); ok {
		t.Fatal("the pre-relocation address should no longer reverse-map")
	}
}

func TestBlockManager_ReportsReadyTagAtBlockSize(t *testing.T) {
	b := NewBlockManager(2)
	e := event.New(event.Write, 0, 1, 0)
	e.Tag = 1

	b.ConsumeTag(e)
	if _, ok := b.NextReadyTag(); ok {
		t.Fatal("block should not be ready after a single page")
	}
	b.ConsumeTag(e)
	tag, ok := b.NextReadyTag()
	if !ok || tag != 1 {
		t.Fatalf("NextReadyTag() = (%d, %v), want (1, true) once the block fills", tag, ok)
	}
	if _, ok := b.NextReadyTag(); ok {
		t.Fatal("the ready tag should only be reported once")
	}
}
