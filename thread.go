package kernel

import "github.com/pintgo/kernel/internal/fixed"

// State is a thread's position in its lifecycle.
type State int

const (
	StateBlocked State = iota
	StateReady
	StateRunning
	StateDying
)

func (s State) String() string {
	switch s {
	case StateBlocked:
		return "blocked"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateDying:
		return "dying"
	default:
		return "unknown"
	}
}

// Priority is a scheduling priority in [PriMin, PriMax].
type Priority int

const (
	PriMin     Priority = 0
	PriDefault Priority = 31
	PriMax     Priority = 63
)

func clampPriority(p Priority) Priority {
	if p < PriMin {
		return PriMin
	}
	if p > PriMax {
		return PriMax
	}
	return p
}

// TID identifies a thread for the lifetime of the kernel.
type TID uint64

// Thread is the kernel's thread control block. In this single-
// address-space teaching kernel it also carries the user-program
// lifecycle state (exit status, file descriptors, fork/wait
// bookkeeping) the way the original PintOS struct thread does before
// any process/thread split — there is no separate Process type.
type Thread struct {
	id    TID
	name  string
	state State

	basePriority      Priority
	effectivePriority Priority

	// waitOnLock and donors track priority donation (I3): waitOnLock is
	// the lock this thread is blocked trying to acquire, donors is the
	// set of threads donating priority to this thread because they are
	// waiting on a lock it holds.
	waitOnLock *Lock
	donors     *orderedQueue[*Thread]

	// wakeTick is this thread's sleep deadline while it sits in the
	// sleep manager's waiters set; meaningless otherwise.
	wakeTick uint64

	// MLFQS bookkeeping (spec.md §4.2); unused when the scheduler runs
	// in priority-donation mode.
	nice           int
	recentCPU      fixed.F
	ticksThisSlice uint64

	entry func(aux any)
	aux   any

	parkCh chan struct{}

	exitCode int32
	exited   chan int32 // buffered 1; Wait receives from here

	parent   TID
	hasParent bool
	children []TID

	fds *fdTable

	page *page

	sched *Scheduler
}

// ID returns the thread's identifier.
func (t *Thread) ID() TID { return t.id }

// Name returns the thread's name.
func (t *Thread) Name() string { return t.name }

// State returns the thread's current lifecycle state.
func (t *Thread) State() State { return t.state }

// EffectivePriority returns the thread's current effective priority —
// its base priority, or the highest priority donated to it (I3).
func (t *Thread) EffectivePriority() Priority { return t.effectivePriority }

// BasePriority returns the thread's own priority, ignoring donation.
func (t *Thread) BasePriority() Priority { return t.basePriority }

// RecentCPU returns the thread's MLFQS recent_cpu estimate scaled by
// 100, matching the original's reporting convention (spec.md's MLFQS
// section only specifies the internal recomputation; this accessor is
// what a fairness check reads back).
func (t *Thread) RecentCPU() int { return t.recentCPU.MulInt(100).Round() }

// Nice returns the thread's MLFQS niceness.
func (t *Thread) Nice() int { return t.nice }

func (t *Thread) recomputeEffective() {
	eff := t.basePriority
	t.donors.Each(func(d *Thread) {
		if d.effectivePriority > eff {
			eff = d.effectivePriority
		}
	})
	t.effectivePriority = eff
}

func byEffectivePriorityDesc(a, b *Thread) bool {
	return a.effectivePriority > b.effectivePriority
}
