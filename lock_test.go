package kernel

import (
	"testing"
	"time"
)

// TestNestedDonation mirrors spec.md's S3: two locks chained through
// three threads, where the top thread's priority must propagate all
// the way down to the bottom holder.
func TestNestedDonation(t *testing.T) {
	s := NewScheduler(testConfig())
	lockA := NewLock(s)
	lockB := NewLock(s)

	bottomHasA := make(chan struct{})
	middleHasB := make(chan struct{})
	done := make(chan struct{}, 2)

	_, err := s.Create("bottom", PriMin+1, func(any) {
		lockA.Acquire()
		close(bottomHasA)
		<-middleHasB // keep holding A until middle is also blocked
		lockA.Release()
		done <- struct{}{}
	}, nil)
	if err != nil {
		t.Fatalf("Create bottom: %v", err)
	}
	<-bottomHasA

	_, err = s.Create("middle", PriMin+2, func(any) {
		lockB.Acquire()
		close(middleHasB)
		lockA.Acquire() // blocks on bottom, which should receive top's donation transitively
		lockA.Release()
		lockB.Release()
		done <- struct{}{}
	}, nil)
	if err != nil {
		t.Fatalf("Create middle: %v", err)
	}
	<-middleHasB

	_, err = s.Create("top", PriMax, func(any) {
		lockB.Acquire() // blocks on middle
		lockB.Release()
	}, nil)
	if err != nil {
		t.Fatalf("Create top: %v", err)
	}

	bottom := findThread(s, "bottom")
	deadline := time.Now().Add(time.Second)
	var eff Priority
	for time.Now().Before(deadline) {
		eff = effectivePriorityOf(s, bottom)
		if eff == PriMax {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if eff != PriMax {
		t.Fatalf("bottom effective priority = %d, want %d (transitive donation)", eff, PriMax)
	}

	<-done
	<-done
}

func TestLockReleaseDropsAllMatchingDonors(t *testing.T) {
	s := NewScheduler(testConfig())
	lock := NewLock(s)
	holderAcquired := make(chan struct{})
	releaseNow := make(chan struct{})

	_, err := s.Create("holder", PriMin+1, func(any) {
		lock.Acquire()
		close(holderAcquired)
		<-releaseNow
		lock.Release()
	}, nil)
	if err != nil {
		t.Fatalf("Create holder: %v", err)
	}
	<-holderAcquired

	waiterDone := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		_, err := s.Create("waiter", PriMax, func(any) {
			lock.Acquire()
			lock.Release()
			waiterDone <- struct{}{}
		}, nil)
		if err != nil {
			t.Fatalf("Create waiter: %v", err)
		}
	}

	holder := findThread(s, "holder")
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if effectivePriorityOf(s, holder) == PriMax {
			break
		}
		time.Sleep(time.Millisecond)
	}

	close(releaseNow)
	<-waiterDone
	<-waiterDone

	deadline = time.Now().Add(time.Second)
	var eff Priority
	for time.Now().Before(deadline) {
		eff = effectivePriorityOf(s, holder)
		if eff == holder.BasePriority() {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if eff != holder.BasePriority() {
		t.Fatalf("holder effective priority = %d after both donors released, want base %d", eff, holder.BasePriority())
	}
}
