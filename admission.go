package docconv

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// AdmissionController is a bounded-concurrency gate: at most maxConcurrent
// requests hold a slot at once, and at most maxQueue requests wait for one.
// Anything beyond that is rejected immediately with ErrCapacityExceeded.
//
// Capacity has a single source of truth, the buffered slots channel; the
// runtime serves goroutines blocked on a full channel in FIFO order, which
// gives waiters first-come-first-served admission without extra bookkeeping.
type AdmissionController struct {
	slots    chan struct{}
	maxQueue int
	waiting  atomic.Int64
}

// NewAdmissionController creates a gate with maxConcurrent active slots and
// a wait queue bounded by maxQueue. Values below the minimum are clamped.
func NewAdmissionController(maxConcurrent, maxQueue int) *AdmissionController {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if maxQueue < 0 {
		maxQueue = 0
	}
	return &AdmissionController{
		slots:    make(chan struct{}, maxConcurrent),
		maxQueue: maxQueue,
	}
}

// Acquire obtains a slot, waiting in FIFO order when all slots are busy.
// It returns a release function that restores exactly one unit of capacity;
// calling it more than once is safe. Acquire fails with ErrCapacityExceeded
// when the wait queue is full, or with the context error when the caller is
// cancelled while queued (the waiter is dequeued cleanly, no slot leaks).
func (a *AdmissionController) Acquire(ctx context.Context) (release func(), err error) {
	select {
	case a.slots <- struct{}{}:
		return a.releaseOnce(), nil
	default:
	}

	if a.waiting.Add(1) > int64(a.maxQueue) {
		a.waiting.Add(-1)
		return nil, fmt.Errorf("%w: %d active, %d queued", ErrCapacityExceeded, cap(a.slots), a.maxQueue)
	}
	defer a.waiting.Add(-1)

	select {
	case a.slots <- struct{}{}:
		return a.releaseOnce(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// releaseOnce wraps slot release so repeated or racing calls from a shared
// cleanup path free exactly one unit of capacity.
func (a *AdmissionController) releaseOnce() func() {
	var once sync.Once
	return func() {
		once.Do(func() { <-a.slots })
	}
}

// Active returns the number of slots currently held.
func (a *AdmissionController) Active() int {
	return len(a.slots)
}

// Waiting returns the number of requests queued for a slot.
func (a *AdmissionController) Waiting() int {
	return int(a.waiting.Load())
}
