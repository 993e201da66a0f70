package kernel

import (
	"runtime"

	"github.com/pintgo/kernel/internal/fixed"
)

// BootConfig captures the boot-time options spec.md §6 describes as
// "-o mlfqs" and the timer configuration: which scheduling policy runs
// and how finely ticks are divided.
type BootConfig struct {
	MLFQS     bool
	TimerHz   int
	TimeSlice uint64 // ticks per time slice, priority-donation mode only
	MaxPages  int    // 0 means unbounded
}

// DefaultBootConfig returns the boot options a plain `go run ./cmd/kernel`
// uses absent any flags.
func DefaultBootConfig() BootConfig {
	return BootConfig{MLFQS: false, TimerHz: 100, TimeSlice: 4}
}

const maxDonationDepth = 8

// Scheduler owns the thread lifecycle: the ready set, the currently
// running thread, and — in MLFQS mode — the load average and recent-CPU
// recomputation. All of its operations that touch shared state run
// under the gate, matching spec.md §5's single big-lock model.
type Scheduler struct {
	gate *Gate
	cfg  BootConfig

	current *Thread
	idle    *Thread
	ready   *orderedQueue[*Thread]
	all     map[TID]*Thread
	order   *roundRobin
	nextTID TID

	ticks       uint64
	dyingThread *Thread

	sleep *sleepManager
	pages *pageAllocator

	mlfqs   bool
	loadAvg fixed.F
}

// NewScheduler boots the scheduler: the calling goroutine becomes the
// main kernel thread (mirroring PintOS's initial_thread, which is
// whatever executed thread_init), and an idle thread is spawned to
// stand in whenever the ready set is empty.
func NewScheduler(cfg BootConfig) *Scheduler {
	s := &Scheduler{
		gate:  NewGate(),
		cfg:   cfg,
		all:   map[TID]*Thread{},
		order: &roundRobin{},
		mlfqs: cfg.MLFQS,
		pages: newPageAllocator(cfg.MaxPages),
	}
	s.ready = newOrderedQueue[*Thread](byEffectivePriorityDesc)
	s.sleep = newSleepManager(s)

	main := s.newTCB("main", PriDefault)
	main.state = StateRunning
	s.current = main
	s.all[main.id] = main
	s.order.add(main.id)

	idle := s.newTCB("idle", PriMin)
	idle.entry = idleLoop
	idle.aux = s
	s.idle = idle
	s.all[idle.id] = idle
	go s.runThread(idle)

	return s
}

func (s *Scheduler) newTCB(name string, prio Priority) *Thread {
	s.nextTID++
	return &Thread{
		id:                s.nextTID,
		name:              name,
		basePriority:      prio,
		effectivePriority: prio,
		state:             StateBlocked,
		parkCh:            newParkChannel(),
		exited:            make(chan int32, 1),
		donors:            newOrderedQueue[*Thread](byEffectivePriorityDesc),
		fds:               newFDTable(),
		sched:             s,
	}
}

// Create allocates a new thread, places it on the ready set, and
// preempts the calling thread if the new thread now outranks it
// (spec.md §4.2's Create operation).
func (s *Scheduler) Create(name string, prio Priority, entry func(aux any), aux any) (*Thread, error) {
	assert(prio >= PriMin && prio <= PriMax, "Create: priority out of range")
	pg, err := s.pages.alloc()
	if err != nil {
		return nil, err
	}

	level := s.gate.Disable()
	t := s.newTCB(name, prio)
	t.entry = entry
	t.aux = aux
	t.page = pg
	t.state = StateReady
	s.all[t.id] = t
	s.order.add(t.id)
	s.readyPush(t)
	preempt := t.effectivePriority > s.current.effectivePriority
	s.gate.Restore(level)

	go s.runThread(t)
	if preempt {
		s.Yield()
	}
	return t, nil
}

func (s *Scheduler) readyPush(t *Thread) { s.ready.Enqueue(t) }

func (s *Scheduler) pickNext() *Thread {
	if t, ok := s.ready.Dequeue(); ok {
		return t
	}
	return s.idle
}

// runThread is the goroutine body for every thread but main: park until
// first scheduled in, run the entry function, then exit.
func (s *Scheduler) runThread(t *Thread) {
	<-t.parkCh
	s.gate.lockRaw()
	s.reapDying()
	s.gate.unlockRaw()
	t.entry(t.aux)
	s.Exit(0)
}

func idleLoop(aux any) {
	s := aux.(*Scheduler)
	for {
		level := s.gate.Disable()
		s.Block()
		s.gate.Restore(level)
		runtime.Gosched()
	}
}

// switchTo hands the CPU from the current thread to to. When dying is
// true the outgoing thread never resumes — its goroutine is expected
// to return immediately after this call. Must be called with the gate
// held; returns with the gate held again unless dying.
func (s *Scheduler) switchTo(to *Thread, dying bool) {
	from := s.current
	to.state = StateRunning
	s.current = to
	trace("switch %s(%d) -> %s(%d) dying=%v", from.name, from.id, to.name, to.id, dying)
	if from == to {
		if !dying {
			s.reapDying()
		}
		return
	}
	s.gate.unlockRaw()
	to.parkCh <- struct{}{}
	if dying {
		return
	}
	<-from.parkCh
	s.gate.lockRaw()
	s.reapDying()
}

func (s *Scheduler) reapDying() {
	if s.dyingThread == nil {
		return
	}
	d := s.dyingThread
	s.dyingThread = nil
	s.pages.free(d.page)
	s.order.remove(d.id)
	delete(s.all, d.id)
}

// Block transitions the current thread to Blocked and switches away.
// Callers (semaphores, locks, condition variables, the sleep manager)
// must already hold the gate and have recorded current on whatever
// queue it is waiting on.
func (s *Scheduler) Block() {
	cur := s.current
	cur.state = StateBlocked
	trace("block %s(%d)", cur.name, cur.id)
	next := s.pickNext()
	s.switchTo(next, false)
}

// Unblock moves t from Blocked to Ready. Caller must hold the gate.
// Does not itself preempt the running thread.
func (s *Scheduler) Unblock(t *Thread) {
	assert(t.state == StateBlocked, "Unblock: thread not blocked")
	t.state = StateReady
	trace("unblock %s(%d)", t.name, t.id)
	s.readyPush(t)
}

// Yield gives up the CPU voluntarily, re-entering the ready set at the
// calling thread's current effective priority. Must not be called from
// interrupt context — use RequestYieldOnReturn there instead.
func (s *Scheduler) Yield() {
	level := s.gate.Disable()
	assert(!s.gate.InInterruptContext(), "Yield: called from interrupt context")
	s.yieldLocked()
	s.gate.Restore(level)
}

func (s *Scheduler) yieldLocked() {
	cur := s.current
	cur.ticksThisSlice = 0
	if cur != s.idle {
		cur.state = StateReady
		s.readyPush(cur)
	}
	next := s.pickNext()
	s.switchTo(next, false)
}

// Checkpoint is the cooperative preemption point that a CPU-bound
// thread body should call periodically; blocking primitives give up
// the CPU through Block instead and do not call it. A hosted Go program cannot asynchronously stop a
// goroutine's user code the way a real timer interrupt stops a CPU, so
// time-slice preemption is delivered here instead of inside Tick —
// Tick only records that a reschedule is owed.
func (s *Scheduler) Checkpoint() {
	level := s.gate.Disable()
	if s.gate.needResched {
		s.gate.needResched = false
		s.yieldLocked()
	}
	s.gate.Restore(level)
}

// Exit tears down the current thread: publishes its exit status to any
// waiter, picks the next thread to run, and switches away for good.
func (s *Scheduler) Exit(status int32) {
	s.gate.lockRaw()
	cur := s.current
	cur.state = StateDying
	cur.exitCode = status
	select {
	case cur.exited <- status:
	default:
	}
	s.dyingThread = cur
	next := s.pickNext()
	s.switchTo(next, true)
}

// SetPriority updates the calling thread's base priority (spec.md
// §4.2). A no-op in MLFQS mode, where priority is derived, not set.
func (s *Scheduler) SetPriority(p Priority) {
	p = clampPriority(p)
	level := s.gate.Disable()
	if s.mlfqs {
		s.gate.Restore(level)
		return
	}
	cur := s.current
	cur.basePriority = p
	cur.recomputeEffective()
	top, ok := s.ready.Peek()
	shouldYield := ok && top.effectivePriority > cur.effectivePriority
	s.gate.Restore(level)
	if shouldYield {
		s.Yield()
	}
}

// Current returns the thread currently running.
func (s *Scheduler) Current() *Thread {
	level := s.gate.Disable()
	cur := s.current
	s.gate.Restore(level)
	return cur
}

// Tick advances the kernel's notion of time by one timer interrupt:
// sleep-set wake-ups, MLFQS recomputation, and (priority-donation mode)
// time-slice accounting all happen here, under the gate, exactly the
// bookkeeping a real timer ISR performs before returning.
func (s *Scheduler) Tick() {
	level := s.gate.Disable()
	s.gate.interrupting = true
	s.ticks++
	cur := s.current
	if cur != s.idle {
		cur.ticksThisSlice++
	}
	s.sleep.onTick(s.ticks)
	if s.mlfqs {
		s.onMLFQSTick()
	} else if cur != s.idle && cur.ticksThisSlice >= s.cfg.TimeSlice {
		s.gate.RequestYieldOnReturn()
	}
	s.gate.interrupting = false
	s.gate.Restore(level)
}

// Ticks returns the number of timer interrupts delivered since boot.
func (s *Scheduler) Ticks() uint64 {
	level := s.gate.Disable()
	t := s.ticks
	s.gate.Restore(level)
	return t
}

// LoadAvg returns the MLFQS system load average, scaled by 100.
func (s *Scheduler) LoadAvg() int {
	level := s.gate.Disable()
	v := s.loadAvg.MulInt(100).Round()
	s.gate.Restore(level)
	return v
}

// lookupThread returns the live Thread for tid, if it has not yet been
// reaped. Safe to call from any goroutine.
func (s *Scheduler) lookupThread(tid TID) (*Thread, bool) {
	level := s.gate.Disable()
	t, ok := s.all[tid]
	s.gate.Restore(level)
	return t, ok
}

func (s *Scheduler) forEachThread(fn func(*Thread)) {
	s.order.visit(func(id TID) {
		if t, ok := s.all[id]; ok {
			fn(t)
		}
	})
}

func (s *Scheduler) donatePriority(starter *Thread) {
	donorPriority := starter.effectivePriority
	t := starter
	for depth := 0; depth < maxDonationDepth; depth++ {
		lock := t.waitOnLock
		if lock == nil || lock.holder == nil {
			return
		}
		holder := lock.holder
		if donorPriority > holder.effectivePriority {
			holder.effectivePriority = donorPriority
		}
		t = holder
	}
}
