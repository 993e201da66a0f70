package kernel

import "github.com/pintgo/kernel/internal/fixed"

// onMLFQSTick runs the advanced-scheduler recomputation, all under the
// gate already held by Tick: recent_cpu increments every tick, the
// system load average and every thread's recent_cpu recompute once a
// second, and every thread's priority recomputes every fourth tick —
// the same cadence spec.md §4.2 and the original thread.c use.
func (s *Scheduler) onMLFQSTick() {
	cur := s.current
	if cur != s.idle {
		cur.recentCPU = cur.recentCPU.AddInt(1)
	}
	hz := uint64(s.cfg.TimerHz)
	if hz > 0 && s.ticks%hz == 0 {
		s.recalcLoadAvg()
		s.forEachThread(s.recalcRecentCPU)
	}
	if s.ticks%4 == 0 {
		s.forEachThread(s.recalcPriority)
		top, ok := s.ready.Peek()
		if ok && cur != s.idle && top.effectivePriority > cur.effectivePriority {
			s.gate.RequestYieldOnReturn()
		}
	}
}

func (s *Scheduler) recalcLoadAvg() {
	ready := s.ready.Len()
	if s.current != s.idle {
		ready++
	}
	fiftyNine60 := fixed.FromInt(59).DivInt(60)
	one60 := fixed.FromInt(1).DivInt(60)
	s.loadAvg = fiftyNine60.Mul(s.loadAvg).Add(one60.MulInt(ready))
}

func (s *Scheduler) recalcRecentCPU(t *Thread) {
	if t == s.idle {
		return
	}
	twiceLoad := s.loadAvg.MulInt(2)
	coeff := twiceLoad.Div(twiceLoad.AddInt(1))
	t.recentCPU = coeff.Mul(t.recentCPU).AddInt(t.nice)
}

func (s *Scheduler) recalcPriority(t *Thread) {
	if t == s.idle {
		return
	}
	term := t.recentCPU.DivInt(4)
	pri := fixed.FromInt(int(PriMax)).Sub(term).SubInt(2 * t.nice)
	p := clampPriority(Priority(pri.Round()))
	t.basePriority = p
	t.effectivePriority = p
}

// SetNice sets the calling thread's niceness and immediately
// recomputes its priority, yielding if it no longer leads the ready
// set. A no-op outside MLFQS mode.
func (s *Scheduler) SetNice(n int) {
	if n < -20 {
		n = -20
	} else if n > 20 {
		n = 20
	}
	level := s.gate.Disable()
	if !s.mlfqs {
		s.gate.Restore(level)
		return
	}
	cur := s.current
	cur.nice = n
	s.recalcPriority(cur)
	top, ok := s.ready.Peek()
	shouldYield := ok && top.effectivePriority > cur.effectivePriority
	s.gate.Restore(level)
	if shouldYield {
		s.Yield()
	}
}
