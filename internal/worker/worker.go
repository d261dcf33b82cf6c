// Package worker provides concurrency primitives for per-trial sample work.
package worker

import (
	"context"
	"runtime"
)

// DefaultPermits returns the concurrency bound for one trial: the configured
// value when positive, otherwise the smaller of the processor count and the
// sample count. External encoders are themselves multi-threaded, so there is
// no benefit in exceeding either.
func DefaultPermits(configured, sampleCount int) int {
	if configured > 0 {
		return configured
	}
	permits := runtime.NumCPU()
	if sampleCount < permits {
		permits = sampleCount
	}
	if permits < 1 {
		permits = 1
	}
	return permits
}

// Semaphore provides a counting semaphore bounding concurrent encode+score
// operations within a trial.
type Semaphore struct {
	permits chan struct{}
}

// NewSemaphore creates a new semaphore with the given number of permits.
func NewSemaphore(count int) *Semaphore {
	if count <= 0 {
		count = 1
	}
	s := &Semaphore{
		permits: make(chan struct{}, count),
	}
	for i := 0; i < count; i++ {
		s.permits <- struct{}{}
	}
	return s
}

// Acquire takes a permit, or returns the context error on cancellation.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case <-s.permits:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a permit to the semaphore.
func (s *Semaphore) Release() {
	select {
	case s.permits <- struct{}{}:
	default:
		// Semaphore is full, this shouldn't happen in normal use
	}
}
