package kernel

import "sync"

// pageSize mirrors the original's page granularity; nothing in this
// port actually backs thread stacks with real pages, but Create's
// ResourceExhausted failure mode (spec.md §7) needs a finite resource
// to exhaust, and a TCB's page is the thing the scheduler reclaims "on
// the next scheduling event" after a thread dies (spec.md §4.2).
const pageSize = 4096

type page struct {
	id int
}

type pageAllocator struct {
	mu    sync.Mutex
	limit int
	used  int
	next  int
}

func newPageAllocator(limit int) *pageAllocator {
	return &pageAllocator{limit: limit}
}

func (a *pageAllocator) alloc() (*page, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.limit > 0 && a.used >= a.limit {
		return nil, kerr(ResourceExhausted, "page.alloc", "no pages available")
	}
	a.next++
	a.used++
	return &page{id: a.next}, nil
}

func (a *pageAllocator) free(p *page) {
	if p == nil {
		return
	}
	a.mu.Lock()
	a.used--
	a.mu.Unlock()
}
