package storage

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// WriteGate serializes write sequences process-wide. At most one function
// passed to Do runs at a time; waiters give up when their context ends.
type WriteGate struct {
	sem *semaphore.Weighted
}

// NewWriteGate returns an open gate.
func NewWriteGate() *WriteGate {
	return &WriteGate{sem: semaphore.NewWeighted(1)}
}

// Do waits for the gate, runs fn and releases the gate.
func (g *WriteGate) Do(ctx context.Context, fn func() error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for write gate: %w", err)
	}
	defer g.sem.Release(1)
	return fn()
}
