package sim

import (
	"container/heap"
	"slices"
)

// EventHeap is the simulator's priority structure over atomic instances.
// Ordering: next-event time → arena index, so simultaneous events are popped
// in a deterministic order. Every instance stays in the heap for the whole
// run; passive instances sit at the bottom with an Infinity key.
type EventHeap struct {
	entries []*heapEntry
	byIndex map[int]*heapEntry
}

type heapEntry struct {
	index int  // arena index of the atomic instance
	next  Time // scheduled time of its next internal event
	pos   int  // position in entries, maintained by Swap/Push/Pop
}

// NewEventHeap creates an empty event heap.
func NewEventHeap() *EventHeap {
	h := &EventHeap{
		entries: make([]*heapEntry, 0),
		byIndex: make(map[int]*heapEntry),
	}
	heap.Init(h)
	return h
}

// Len implements heap.Interface
func (h *EventHeap) Len() int {
	return len(h.entries)
}

// Less implements heap.Interface with deterministic ordering
func (h *EventHeap) Less(i, j int) bool {
	ei, ej := h.entries[i], h.entries[j]
	if ei.next != ej.next {
		return ei.next < ej.next
	}
	return ei.index < ej.index
}

// Swap implements heap.Interface
func (h *EventHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.entries[i].pos = i
	h.entries[j].pos = j
}

// Push implements heap.Interface
func (h *EventHeap) Push(x any) {
	e := x.(*heapEntry)
	e.pos = len(h.entries)
	h.entries = append(h.entries, e)
}

// Pop implements heap.Interface
func (h *EventHeap) Pop() any {
	old := h.entries
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.entries = old[0 : n-1]
	item.pos = -1
	return item
}

// Schedule inserts an instance or moves it to its new next-event time.
func (h *EventHeap) Schedule(index int, next Time) {
	if e, ok := h.byIndex[index]; ok {
		e.next = next
		heap.Fix(h, e.pos)
		return
	}
	e := &heapEntry{index: index, next: next}
	h.byIndex[index] = e
	heap.Push(h, e)
}

// PeekTime returns the earliest next-event time, or Infinity when empty.
func (h *EventHeap) PeekTime() Time {
	if h.Len() == 0 {
		return Infinity
	}
	return h.entries[0].next
}

// NextOf returns the scheduled time of an instance, or Infinity if unknown.
func (h *EventHeap) NextOf(index int) Time {
	if e, ok := h.byIndex[index]; ok {
		return e.next
	}
	return Infinity
}

// Imminent returns, in index order, every instance scheduled exactly at t.
// The heap is left unchanged; callers reschedule each instance after its
// transition.
func (h *EventHeap) Imminent(t Time) []int {
	if t == Infinity || h.PeekTime() != t {
		return nil
	}
	var out []int
	// walk the heap top-down, pruning subtrees whose root is later than t
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if i >= len(h.entries) || h.entries[i].next != t {
			continue
		}
		out = append(out, h.entries[i].index)
		stack = append(stack, 2*i+1, 2*i+2)
	}
	slices.Sort(out)
	return out
}
