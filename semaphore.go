package kernel

// Semaphore is a counting semaphore: the sole primitive every other
// synchronization type in this kernel (locks, condition variables) is
// built from. Waiters are served in descending effective-priority
// order, ties broken FIFO (I4).
type Semaphore struct {
	sched   *Scheduler
	value   int
	waiters *orderedQueue[*Thread]
}

// NewSemaphore creates a semaphore with the given initial value.
func NewSemaphore(sched *Scheduler, value int) *Semaphore {
	assert(value >= 0, "NewSemaphore: negative initial value")
	return &Semaphore{sched: sched, value: value, waiters: newOrderedQueue(byEffectivePriorityDesc)}
}

// Down blocks until the semaphore's value is positive, then
// decrements it.
func (sem *Semaphore) Down() {
	level := sem.sched.gate.Disable()
	assert(!sem.sched.gate.InInterruptContext(), "Semaphore.Down: called from interrupt context")
	for sem.value == 0 {
		sem.waiters.Enqueue(sem.sched.current)
		sem.sched.Block()
	}
	sem.value--
	sem.sched.gate.Restore(level)
}

// TryDown decrements the semaphore without blocking if its value is
// positive, reporting whether it did.
func (sem *Semaphore) TryDown() bool {
	level := sem.sched.gate.Disable()
	ok := sem.value > 0
	if ok {
		sem.value--
	}
	sem.sched.gate.Restore(level)
	return ok
}

// Up increments the semaphore's value, waking the highest-priority
// waiter if any is present, and yields to it immediately if doing so
// is safe (spec.md §4.4).
func (sem *Semaphore) Up() {
	level := sem.sched.gate.Disable()
	shouldYield := false
	if sem.waiters.Len() > 0 {
		sem.waiters.Resort()
		t, _ := sem.waiters.Dequeue()
		sem.sched.Unblock(t)
		shouldYield = t.effectivePriority > sem.sched.current.effectivePriority
	}
	sem.value++
	if shouldYield && sem.sched.gate.InInterruptContext() {
		sem.sched.gate.RequestYieldOnReturn()
		shouldYield = false
	}
	sem.sched.gate.Restore(level)
	if shouldYield {
		sem.sched.Yield()
	}
}

// Value returns the semaphore's current value, for diagnostics and
// tests only — not part of the synchronization contract.
func (sem *Semaphore) Value() int {
	level := sem.sched.gate.Disable()
	v := sem.value
	sem.sched.gate.Restore(level)
	return v
}
