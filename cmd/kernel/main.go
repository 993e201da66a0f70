// Command kernel boots the scheduler and runs a short demonstration of
// priority donation, timed sleep, and (with -mlfqs) the advanced
// scheduler, then halts.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pintgo/kernel"
)

func main() {
	mlfqs := flag.Bool("mlfqs", false, "use the multi-level feedback queue scheduler instead of priority donation")
	hz := flag.Int("hz", 100, "timer frequency in Hz")
	flag.Parse()

	cfg := kernel.BootConfig{MLFQS: *mlfqs, TimerHz: *hz, TimeSlice: 4}
	fsRoot, err := os.MkdirTemp("", "kernel-fs-*")
	if err != nil {
		fmt.Fprintln(os.Stderr, "mkdir temp fs root:", err)
		os.Exit(1)
	}
	defer os.RemoveAll(fsRoot)

	k, err := kernel.Boot(cfg, fsRoot)
	if err != nil {
		fmt.Fprintln(os.Stderr, "boot:", err)
		os.Exit(1)
	}

	if *mlfqs {
		runMLFQSDemo(k)
	} else {
		runDonationDemo(k)
	}

	k.Halt()
}

// runDonationDemo reproduces the shape of spec.md's S2/S3 scenarios: a
// low-priority thread holds a lock a high-priority thread needs, and a
// medium-priority thread wakes up every tick — without donation
// the medium thread would run first and the high-priority thread would
// starve behind it.
func runDonationDemo(k *kernel.Kernel) {
	lock := kernel.NewLock(k.Sched)
	done := make(chan struct{})

	lowDone := make(chan struct{})
	_, _ = k.Sched.Create("low", kernel.PriMin+1, func(any) {
		lock.Acquire()
		fmt.Println("low: acquired lock")
		for i := 0; i < 3; i++ {
			k.Sched.Sleep(2)
			k.Sched.Checkpoint()
		}
		lock.Release()
		fmt.Println("low: released lock")
		close(lowDone)
	}, nil)

	_, _ = k.Sched.Create("medium", kernel.PriDefault, func(any) {
		for i := 0; i < 5; i++ {
			k.Sched.Sleep(1)
			k.Sched.Checkpoint()
		}
		fmt.Println("medium: done")
	}, nil)

	_, _ = k.Sched.Create("high", kernel.PriMax, func(any) {
		k.Sched.Sleep(1)
		lock.Acquire()
		fmt.Println("high: acquired lock (donation worked if this precedes medium finishing)")
		lock.Release()
		close(done)
	}, nil)

	<-done
	<-lowDone
}

// runMLFQSDemo runs a handful of differently-niced CPU-bound threads
// and reports their load-average-driven priorities, matching the shape
// of spec.md's S6 fairness scenario.
func runMLFQSDemo(k *kernel.Kernel) {
	const n = 3
	results := make(chan string, n)
	for i := 0; i < n; i++ {
		nice := (i - 1) * 5
		i := i
		_, _ = k.Sched.Create(fmt.Sprintf("worker-%d", i), kernel.PriDefault, func(any) {
			k.Sched.SetNice(nice)
			for iter := 0; iter < 200; iter++ {
				k.Sched.Checkpoint()
			}
			t := k.Sched.Current()
			results <- fmt.Sprintf("worker-%d: nice=%d recent_cpu=%d priority=%d", i, t.Nice(), t.RecentCPU(), t.EffectivePriority())
		}, nil)
	}
	for i := 0; i < n; i++ {
		fmt.Println(<-results)
	}
	time.Sleep(10 * time.Millisecond)
	fmt.Println("load_avg:", k.Sched.LoadAvg())
}
