package kernel

import "container/heap"

// orderedQueue is a binary-heap-backed ordered collection with a
// pluggable ordering, ties broken by insertion order. It is the
// reusable shape behind every waiters list in the kernel: the ready
// set, the sleep set, and every semaphore/lock/condition-variable
// waiters list — generalized from the container/heap-backed weighted
// waiters queue in the Chromium siso build tool's priority semaphore.
type orderedQueue[T any] struct {
	items []*orderedItem[T]
	less  func(a, b T) bool
	seq   uint64
}

type orderedItem[T any] struct {
	value T
	seq   uint64
}

func newOrderedQueue[T any](less func(a, b T) bool) *orderedQueue[T] {
	return &orderedQueue[T]{less: less}
}

func (q *orderedQueue[T]) Len() int { return len(q.items) }

func (q *orderedQueue[T]) Less(i, j int) bool {
	a, b := q.items[i].value, q.items[j].value
	if q.less(a, b) {
		return true
	}
	if q.less(b, a) {
		return false
	}
	return q.items[i].seq < q.items[j].seq
}

func (q *orderedQueue[T]) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *orderedQueue[T]) Push(x any) { q.items = append(q.items, x.(*orderedItem[T])) }

func (q *orderedQueue[T]) Pop() any {
	old := q.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	return it
}

// Enqueue inserts v keeping heap order.
func (q *orderedQueue[T]) Enqueue(v T) {
	q.seq++
	heap.Push(q, &orderedItem[T]{value: v, seq: q.seq})
}

// Dequeue removes and returns the least element under less.
func (q *orderedQueue[T]) Dequeue() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	it := heap.Pop(q).(*orderedItem[T])
	return it.value, true
}

// Peek returns the least element without removing it.
func (q *orderedQueue[T]) Peek() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	return q.items[0].value, true
}

// Resort re-heapifies after the values' own fields (read live by less)
// changed out from under the queue — priority donation being the
// common case.
func (q *orderedQueue[T]) Resort() { heap.Init(q) }

// RemoveMatching deletes every element satisfying pred.
func (q *orderedQueue[T]) RemoveMatching(pred func(T) bool) {
	kept := q.items[:0]
	for _, it := range q.items {
		if pred(it.value) {
			continue
		}
		kept = append(kept, it)
	}
	q.items = kept
	heap.Init(q)
}

// Each visits every element in no particular order.
func (q *orderedQueue[T]) Each(fn func(T)) {
	for _, it := range q.items {
		fn(it.value)
	}
}
