package kernel

import "math"

// sleepManager holds every thread waiting on a deadline tick, ordered
// ascending by wake time, plus a cached earliest deadline so a tick
// that can't possibly wake anyone (I6) skips the waiters set entirely.
type sleepManager struct {
	sched    *Scheduler
	waiters  *orderedQueue[*Thread]
	earliest uint64
}

func newSleepManager(sched *Scheduler) *sleepManager {
	return &sleepManager{
		sched:    sched,
		waiters:  newOrderedQueue(func(a, b *Thread) bool { return a.wakeTick < b.wakeTick }),
		earliest: math.MaxUint64,
	}
}

// Sleep blocks the calling thread until the given number of ticks has
// elapsed. Idle never sleeps — it is the scheduler's fallback, not a
// schedulable participant.
func (sm *sleepManager) Sleep(ticks uint64) {
	level := sm.sched.gate.Disable()
	assert(!sm.sched.gate.InInterruptContext(), "Sleep: called from interrupt context")
	assert(sm.sched.current != sm.sched.idle, "Sleep: called by idle thread")
	cur := sm.sched.current
	deadline := sm.sched.ticks + ticks
	cur.wakeTick = deadline
	sm.waiters.Enqueue(cur)
	if deadline < sm.earliest {
		sm.earliest = deadline
	}
	sm.sched.Block()
	sm.sched.gate.Restore(level)
}

// onTick wakes every thread whose deadline has passed. Called by
// Scheduler.Tick with the gate already held.
func (sm *sleepManager) onTick(now uint64) {
	if now < sm.earliest {
		return
	}
	for {
		t, ok := sm.waiters.Peek()
		if !ok || t.wakeTick > now {
			break
		}
		sm.waiters.Dequeue()
		sm.sched.Unblock(t)
	}
	if t, ok := sm.waiters.Peek(); ok {
		sm.earliest = t.wakeTick
	} else {
		sm.earliest = math.MaxUint64
	}
}

// Sleep is the scheduler-level entry point matching spec.md §4.3.
func (s *Scheduler) Sleep(ticks uint64) { s.sleep.Sleep(ticks) }
