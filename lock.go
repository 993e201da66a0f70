package kernel

// Lock is a binary semaphore with priority donation: a thread blocked
// trying to acquire a held lock donates its effective priority to the
// holder, transitively, up to a bounded chain depth (I3).
type Lock struct {
	sched  *Scheduler
	sema   *Semaphore
	holder *Thread
}

// NewLock creates an unheld lock.
func NewLock(sched *Scheduler) *Lock {
	return &Lock{sched: sched, sema: NewSemaphore(sched, 1)}
}

// Acquire blocks until the lock is free, donating priority along the
// chain of locks blocking the calling thread while it waits.
func (l *Lock) Acquire() {
	level := l.sched.gate.Disable()
	assert(!l.sched.gate.InInterruptContext(), "Lock.Acquire: called from interrupt context")
	cur := l.sched.current
	assert(l.holder != cur, "Lock.Acquire: already held by caller")
	if !l.sched.mlfqs && l.holder != nil {
		cur.waitOnLock = l
		l.holder.donors.Enqueue(cur)
		l.sched.donatePriority(cur)
	}
	l.sched.gate.Restore(level)

	l.sema.Down()

	level = l.sched.gate.Disable()
	cur.waitOnLock = nil
	l.holder = cur
	l.sched.gate.Restore(level)
}

// TryAcquire acquires the lock without blocking if it is free,
// reporting whether it did. Never triggers priority donation, since
// there is no wait involved.
func (l *Lock) TryAcquire() bool {
	ok := l.sema.TryDown()
	if ok {
		level := l.sched.gate.Disable()
		l.holder = l.sched.current
		l.sched.gate.Restore(level)
	}
	return ok
}

// Release gives up the lock. The caller's effective priority drops
// back to the highest of its base priority and any donations that
// still apply (I3) — every donor waiting specifically on this lock is
// removed from the donor set, not merely the first one found, matching
// spec.md's corrected remove_waiting_lock behavior (see DESIGN.md).
func (l *Lock) Release() {
	level := l.sched.gate.Disable()
	cur := l.sched.current
	assert(l.holder == cur, "Lock.Release: not held by caller")
	if !l.sched.mlfqs {
		cur.donors.RemoveMatching(func(d *Thread) bool { return d.waitOnLock == l })
		cur.recomputeEffective()
	}
	l.holder = nil
	l.sched.gate.Restore(level)

	l.sema.Up()
}

// HeldByCurrentThread reports whether the calling thread holds the
// lock.
func (l *Lock) HeldByCurrentThread() bool {
	level := l.sched.gate.Disable()
	held := l.holder == l.sched.current
	l.sched.gate.Restore(level)
	return held
}

// Holder returns the thread currently holding the lock, or nil.
func (l *Lock) Holder() *Thread {
	level := l.sched.gate.Disable()
	h := l.holder
	l.sched.gate.Restore(level)
	return h
}
