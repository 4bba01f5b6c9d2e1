package sim

import (
	"container/heap"

	"github.com/dftlsim/dftl/internal/dftl/clock"
	"github.com/dftlsim/dftl/internal/dftl/event"
)

// TimeWheel is a reference Scheduler: a min-heap of events ordered by
// CurrentTime, with insertion order as a tiebreaker so same-time events
// (e.g. a mapping write and the user write that triggered it) are drained
// in the order they were scheduled. No library in the example pack offers
// a discrete-event priority queue; container/heap is the stdlib's own
// idiomatic fit for this and is used as-is (see DESIGN.md).
type TimeWheel struct {
	items eventHeap
	seq   int
	clock *clock.Logical
}

// NewTimeWheel creates an empty scheduler with its own logical clock.
func NewTimeWheel() *TimeWheel {
	return &TimeWheel{clock: clock.New()}
}

// Schedule implements dftl.Scheduler.
func (w *TimeWheel) Schedule(e *event.Event) {
	heap.Push(&w.items, heapItem{e: e, seq: w.seq})
	w.seq++
}

// Pop removes and returns the earliest-time event, advancing the wheel's
// clock to that event's time, or (nil, false) if the wheel is empty.
func (w *TimeWheel) Pop() (*event.Event, bool) {
	if w.items.Len() == 0 {
		return nil, false
	}
	item := heap.Pop(&w.items).(heapItem)
	w.clock.Advance(item.e.CurrentTime)
	return item.e, true
}

// Now returns the simulated time of the most recently popped event.
func (w *TimeWheel) Now() float64 { return w.clock.Now() }

// Len reports the number of pending events.
func (w *TimeWheel) Len() int { return w.items.Len() }

type heapItem struct {
	e   *event.Event
	seq int
}

type eventHeap []heapItem

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].e.CurrentTime != h[j].e.CurrentTime {
		return h[i].e.CurrentTime < h[j].e.CurrentTime
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(heapItem))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
