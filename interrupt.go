package kernel

import (
	"fmt"
	"os"
	"sync"
)

// Trace gates kernel-internal event tracing: scheduling decisions
// (block/unblock/switch) are reported to stderr when set. Off by
// default — flipping it on is the Go-kernel equivalent of the
// original's printf-based thread.c debugging, not a logging framework.
var Trace bool

func trace(format string, args ...any) {
	if !Trace {
		return
	}
	fmt.Fprintf(os.Stderr, "kernel: "+format+"\n", args...)
}

// Level is the interrupt level a thread observes: on (interruptible) or
// off (a critical section is active). A hosted Go program has no
// hardware interrupt flag to flip, so Level is carried only to keep the
// disable/restore call shape spec.md describes — the real exclusion is
// the Gate's mutex underneath it.
type Level int

const (
	LevelOn Level = iota
	LevelOff
)

// Gate is the kernel's single process-wide critical section. Every
// scheduler-touching operation (thread creation, blocking, priority
// donation, the timed-sleep set) acquires it across its critical
// section, the same way disabling interrupts protects those same
// operations on real single-CPU PintOS. It is not reentrant: callers
// must not call Disable twice on the same call stack without an
// intervening Restore — exactly the discipline the original C source
// follows via its "prior level" pattern.
type Gate struct {
	mu           sync.Mutex
	interrupting bool
	needResched  bool
}

// NewGate returns a gate in the enabled state.
func NewGate() *Gate { return &Gate{} }

// Disable acquires the gate and returns the level that was in effect
// before the call, for a later matching Restore.
func (g *Gate) Disable() Level {
	g.mu.Lock()
	return LevelOn
}

// Restore releases the gate, restoring the level captured by a prior
// Disable.
func (g *Gate) Restore(prior Level) {
	_ = prior
	g.mu.Unlock()
}

// InInterruptContext reports whether the calling goroutine is running
// as the simulated timer interrupt handler. Valid only while the gate
// is held by that handler (Scheduler.Tick sets it for its duration).
func (g *Gate) InInterruptContext() bool { return g.interrupting }

// RequestYieldOnReturn defers a voluntary yield until the interrupt
// handler currently running returns control to the interrupted thread.
// Calling it outside interrupt context is a contract violation — a
// thread can simply call Scheduler.Yield directly instead.
func (g *Gate) RequestYieldOnReturn() {
	assert(g.interrupting, "RequestYieldOnReturn: not in interrupt context")
	g.needResched = true
}

// lockRaw/unlockRaw give the scheduler's own context-switch machinery
// direct access to the underlying mutex, bypassing the Level bookkeeping
// that Disable/Restore expose to the rest of the package.
func (g *Gate) lockRaw()   { g.mu.Lock() }
func (g *Gate) unlockRaw() { g.mu.Unlock() }
