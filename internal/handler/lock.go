package handler

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Lock is the mutual-exclusion lock that serialises pipe transactions. One
// Lock is created per pipe pair and shared by every handler using it.
type Lock struct {
	sem *semaphore.Weighted
}

// NewLock returns an unlocked Lock.
func NewLock() *Lock {
	return &Lock{sem: semaphore.NewWeighted(1)}
}

// Acquire blocks until the lock is held or ctx is done.
func (l *Lock) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// TryAcquire takes the lock only if it is free.
func (l *Lock) TryAcquire() bool {
	return l.sem.TryAcquire(1)
}

// Release unlocks. Releasing an unheld Lock panics.
func (l *Lock) Release() {
	l.sem.Release(1)
}
