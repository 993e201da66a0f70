package kernel

// Cond is a Mesa-style condition variable layered on a Lock and a
// per-waiter single-slot Semaphore envelope: Signal wakes a waiter but
// does not hand it the lock, so every caller of Wait must re-check its
// condition in a loop after Wait returns (spec.md §4.6).
type Cond struct {
	sched   *Scheduler
	waiters *orderedQueue[*condWaiter]
}

type condWaiter struct {
	thread *Thread
	sema   *Semaphore
}

// NewCond creates a condition variable associated with no particular
// lock — callers pass the lock to Wait/Signal/Broadcast, same as
// PintOS.
func NewCond(sched *Scheduler) *Cond {
	return &Cond{
		sched: sched,
		waiters: newOrderedQueue(func(a, b *condWaiter) bool {
			return a.thread.effectivePriority > b.thread.effectivePriority
		}),
	}
}

// Wait atomically releases l and blocks the calling thread until
// signaled, then reacquires l before returning. The caller must hold l
// and must re-check its own condition in a loop after Wait returns —
// a Mesa-style signal is only a hint that the condition may now hold.
func (c *Cond) Wait(l *Lock) {
	assert(l.HeldByCurrentThread(), "Cond.Wait: lock not held")
	w := &condWaiter{thread: c.sched.current, sema: NewSemaphore(c.sched, 0)}

	level := c.sched.gate.Disable()
	c.waiters.Enqueue(w)
	c.sched.gate.Restore(level)

	l.Release()
	w.sema.Down()
	l.Acquire()
}

// Signal wakes the highest-priority waiter, if any. The caller must
// hold l.
func (c *Cond) Signal(l *Lock) {
	assert(l.HeldByCurrentThread(), "Cond.Signal: lock not held")
	level := c.sched.gate.Disable()
	c.waiters.Resort()
	w, ok := c.waiters.Dequeue()
	c.sched.gate.Restore(level)
	if ok {
		w.sema.Up()
	}
}

// Broadcast wakes every waiter. The caller must hold l.
func (c *Cond) Broadcast(l *Lock) {
	for {
		level := c.sched.gate.Disable()
		n := c.waiters.Len()
		c.sched.gate.Restore(level)
		if n == 0 {
			return
		}
		c.Signal(l)
	}
}
