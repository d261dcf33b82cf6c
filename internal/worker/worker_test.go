package worker

import (
	"context"
	"runtime"
	"testing"
	"time"
)

func TestDefaultPermits(t *testing.T) {
	cpus := runtime.NumCPU()

	tests := []struct {
		name        string
		configured  int
		sampleCount int
		expected    int
	}{
		{"configured wins", 3, 100, 3},
		{"bounded by sample count", 0, 1, 1},
		{"zero samples still one", 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultPermits(tt.configured, tt.sampleCount); got != tt.expected {
				t.Errorf("DefaultPermits(%d, %d) = %d, want %d",
					tt.configured, tt.sampleCount, got, tt.expected)
			}
		})
	}

	if got := DefaultPermits(0, cpus+10); got != cpus {
		t.Errorf("DefaultPermits(0, %d) = %d, want NumCPU %d", cpus+10, got, cpus)
	}
}

func TestSemaphoreBlocksWhenEmpty(t *testing.T) {
	s := NewSemaphore(1)

	if err := s.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Acquire(ctx); err == nil {
		t.Fatal("second acquire should block until cancellation")
	}

	s.Release()
	if err := s.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestSemaphoreZeroCountClamped(t *testing.T) {
	s := NewSemaphore(0)
	if err := s.Acquire(context.Background()); err != nil {
		t.Fatalf("semaphore with clamped count should have one permit: %v", err)
	}
}
