package kernel

import "testing"

func TestOrderedQueueDescendingInt(t *testing.T) {
	q := newOrderedQueue(func(a, b int) bool { return a > b })
	for _, v := range []int{3, 1, 4, 1, 5, 9, 2, 6} {
		q.Enqueue(v)
	}
	want := []int{9, 6, 5, 4, 3, 2, 1, 1}
	for _, w := range want {
		got, ok := q.Dequeue()
		if !ok || got != w {
			t.Fatalf("Dequeue() = %v, %v, want %v", got, ok, w)
		}
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatalf("expected empty queue")
	}
}

func TestOrderedQueueFIFOTiebreak(t *testing.T) {
	type item struct {
		pri int
		seq int
	}
	q := newOrderedQueue(func(a, b item) bool { return a.pri > b.pri })
	q.Enqueue(item{pri: 1, seq: 0})
	q.Enqueue(item{pri: 1, seq: 1})
	q.Enqueue(item{pri: 1, seq: 2})
	for want := 0; want < 3; want++ {
		got, ok := q.Dequeue()
		if !ok || got.seq != want {
			t.Fatalf("Dequeue() = %+v, want seq %d", got, want)
		}
	}
}

func TestOrderedQueueRemoveMatching(t *testing.T) {
	q := newOrderedQueue(func(a, b int) bool { return a > b })
	for _, v := range []int{1, 2, 3, 4, 5} {
		q.Enqueue(v)
	}
	q.RemoveMatching(func(v int) bool { return v%2 == 0 })
	var got []int
	for {
		v, ok := q.Dequeue()
		if !ok {
			break
		}
		got = append(got, v)
	}
	want := []int{5, 3, 1}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestOrderedQueueResortAfterLiveMutation(t *testing.T) {
	type box struct{ v int }
	a, b, c := &box{1}, &box{5}, &box{3}
	q := newOrderedQueue(func(x, y *box) bool { return x.v > y.v })
	q.Enqueue(a)
	q.Enqueue(b)
	q.Enqueue(c)
	a.v = 10 // mutate live after enqueue; heap order now stale
	q.Resort()
	got, _ := q.Dequeue()
	if got != a {
		t.Fatalf("Dequeue() = %+v, want a after resort", got)
	}
}
