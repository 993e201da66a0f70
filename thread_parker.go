package kernel

// newParkChannel returns the unbuffered channel a Thread parks on.
// The teacher's own ThreadParker kept exactly one parked goroutine at
// a time and woke it directly rather than through a generic runnable
// queue, to avoid a thundering herd. A kernel thread needs exactly
// that property but never more than one goroutine waiting on it at
// once (a TCB belongs to one goroutine for its whole life), so the
// lock-free multi-waiter queue underneath the teacher's version is
// unnecessary here — an unbuffered channel already gives a single
// switchTo call a rendezvous with the one goroutine that can possibly
// be receiving on it.
func newParkChannel() chan struct{} {
	return make(chan struct{})
}

