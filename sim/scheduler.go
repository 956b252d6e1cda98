// sim/scheduler.go
package sim

import "container/heap"

// schedEntry pairs an event with the monotonic sequence number stamped at
// schedule time. The sequence breaks timestamp ties so that events popped
// at the same instant come out in FIFO order.
type schedEntry struct {
	time float64
	seq  uint64
	ev   Event
}

// eventHeap implements heap.Interface ordered by (time, seq).
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type eventHeap []schedEntry

func (eh eventHeap) Len() int { return len(eh) }
func (eh eventHeap) Less(i, j int) bool {
	if eh[i].time != eh[j].time {
		return eh[i].time < eh[j].time
	}
	return eh[i].seq < eh[j].seq
}
func (eh eventHeap) Swap(i, j int) { eh[i], eh[j] = eh[j], eh[i] }

func (eh *eventHeap) Push(x any) {
	*eh = append(*eh, x.(schedEntry))
}

func (eh *eventHeap) Pop() any {
	old := *eh
	n := len(old)
	item := old[n-1]
	*eh = old[0 : n-1]
	return item
}

// EventScheduler is the time-ordered queue of pending simulation events.
// Events come back in non-decreasing timestamp order, FIFO among equal
// timestamps. Scheduling into the past (before the last popped timestamp)
// is a programming error and is rejected.
type EventScheduler struct {
	heap       eventHeap
	nextSeq    uint64
	lastPopped float64
}

// NewEventScheduler returns an empty scheduler.
func NewEventScheduler() *EventScheduler {
	return &EventScheduler{heap: make(eventHeap, 0)}
}

// Schedule inserts ev into the queue. Returns ErrInvalidEventTime if the
// event's timestamp precedes the last popped time.
func (s *EventScheduler) Schedule(ev Event) error {
	if ev.Timestamp() < s.lastPopped {
		return errInvalidTimef(ev.Timestamp(), s.lastPopped)
	}
	heap.Push(&s.heap, schedEntry{time: ev.Timestamp(), seq: s.nextSeq, ev: ev})
	s.nextSeq++
	return nil
}

// PopNext removes and returns the earliest pending event.
// The second return is false when the queue is empty.
func (s *EventScheduler) PopNext() (Event, bool) {
	if len(s.heap) == 0 {
		return nil, false
	}
	entry := heap.Pop(&s.heap).(schedEntry)
	s.lastPopped = entry.time
	return entry.ev, true
}

// Len returns the number of pending events.
func (s *EventScheduler) Len() int {
	return len(s.heap)
}
