// Package planqueue implements the engine's time-ordered plan queue: a
// min-heap keyed by (time, phase, insertion order) with lazy
// tombstone-based cancellation.
package planqueue

import (
	"container/heap"

	"github.com/smilemakc/simcore/simerr"
	"github.com/smilemakc/simcore/simtime"
)

// ID identifies a scheduled plan. IDs are assigned in increasing order
// and double as the FIFO tie-breaker within a (time, phase) bucket.
type ID uint64

// Callback is invoked when its plan fires.
type Callback func()

type entry struct {
	time      float64
	phase     simtime.Phase
	id        ID
	callback  Callback
	cancelled bool
	index     int // heap index, maintained by container/heap
}

// heapData is the container/heap backing store, ordered by
// (time, phase rank, id) ascending.
type heapData []*entry

func (h heapData) Len() int { return len(h) }

func (h heapData) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.time != b.time {
		return a.time < b.time
	}
	if a.phase != b.phase {
		return a.phase.Rank() < b.phase.Rank()
	}
	return a.id < b.id
}

func (h heapData) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *heapData) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *heapData) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Queue is a min-heap of Plans with O(1) live-count tracking and
// lazy (tombstone) cancellation: Cancel never re-heapifies, it marks the
// entry dead and PopReady skips dead entries as it encounters them.
type Queue struct {
	data    heapData
	byID    map[ID]*entry
	nextID  ID
	live    int
	currNow float64
}

// New returns an empty plan queue.
func New() *Queue {
	return &Queue{byID: make(map[ID]*entry)}
}

// Add schedules callback to fire at time in the given phase. Returns
// simerr.InvalidTimeError if time is NaN, negative, +Inf, or strictly
// before the current time.
func (q *Queue) Add(time float64, phase simtime.Phase, callback Callback) (ID, error) {
	if !simtime.Valid(time) || time < q.currNow {
		return 0, &simerr.InvalidTimeError{Time: time, Now: q.currNow}
	}
	q.nextID++
	id := q.nextID
	e := &entry{time: time, phase: phase, id: id, callback: callback}
	q.byID[id] = e
	heap.Push(&q.data, e)
	q.live++
	return id, nil
}

// Cancel marks id as dead. Idempotent: cancelling an unknown, already
// fired, or already cancelled id is always a no-op.
func (q *Queue) Cancel(id ID) {
	e, ok := q.byID[id]
	if !ok || e.cancelled {
		return
	}
	e.cancelled = true
	delete(q.byID, id)
	q.live--
}

// PopReady pops and returns the next non-cancelled plan in fire order,
// or (zero value, false) if the queue has no live entries. It advances
// the queue's notion of current time to the popped plan's time.
func (q *Queue) PopReady() (time float64, phase simtime.Phase, callback Callback, ok bool) {
	for q.data.Len() > 0 {
		e := heap.Pop(&q.data).(*entry)
		if e.cancelled {
			continue
		}
		delete(q.byID, e.id)
		q.live--
		q.currNow = e.time
		return e.time, e.phase, e.callback, true
	}
	return 0, 0, nil, false
}

// Len reports the number of live (non-cancelled) entries.
func (q *Queue) Len() int { return q.live }

// Now returns the time of the most recently popped plan.
func (q *Queue) Now() float64 { return q.currNow }
