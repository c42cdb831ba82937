package engine

import "github.com/patternmatch/strusmatch/internal/ir"

// pending is one (event, data) pair awaiting dispatch. The explicit
// queue replaces call recursion, bounding stack depth and keeping
// iteration order deterministic.
type pending struct {
	event ir.EventHandle
	data  ir.EventData
}

// workQueue is a plain FIFO of pending dispatches. It is never shared
// across goroutines — the state machine is single-writer — so no
// locking or signal channel is needed; DoTransition drains it to
// completion on the same call stack that pushed to it.
type workQueue struct {
	items []pending
	head  int
}

// newWorkQueue creates an empty queue with room for a handful of
// cascading firings before it needs to grow.
func newWorkQueue() *workQueue {
	return &workQueue{items: make([]pending, 0, 16)}
}

// push enqueues one pending dispatch.
func (q *workQueue) push(event ir.EventHandle, data ir.EventData) {
	q.items = append(q.items, pending{event: event, data: data})
}

// pop removes and returns the front pending dispatch. Returns
// (pending{}, false) when the queue is empty.
func (q *workQueue) pop() (pending, bool) {
	if q.head >= len(q.items) {
		q.items = q.items[:0]
		q.head = 0
		return pending{}, false
	}
	p := q.items[q.head]
	q.items[q.head] = pending{}
	q.head++

	// Compact once the consumed prefix dominates the backing array, so
	// a long-running document doesn't retain an ever-growing slice.
	if q.head > 64 && q.head*2 > len(q.items) {
		q.items = append(q.items[:0], q.items[q.head:]...)
		q.head = 0
	}
	return p, true
}

// len returns the number of pending dispatches not yet popped.
func (q *workQueue) len() int {
	return len(q.items) - q.head
}
