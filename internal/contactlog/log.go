// Package contactlog tracks how many times each buyer has been messaged
// per calendar day. The guardrail validator reads it for the duplicate
// contact warning and the send gate writes it on every delivery.
package contactlog

import (
	"context"
	"sync"
)

// Log is a keyed counter over (buyer_id, day). Day is formatted as
// 2006-01-02. Increment and Decrement must be atomic under concurrent
// sends to the same buyer.
type Log interface {
	Count(ctx context.Context, buyerID, day string) (int, error)
	Increment(ctx context.Context, buyerID, day string) (int, error)
	Decrement(ctx context.Context, buyerID, day string) error
}

// MemoryLog is a process-local Log for single-instance deployments and
// tests.
type MemoryLog struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMemoryLog creates an empty in-memory contact log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{counts: make(map[string]int)}
}

func memKey(buyerID, day string) string {
	return buyerID + "|" + day
}

// Count returns the number of sends to the buyer on the given day.
func (l *MemoryLog) Count(_ context.Context, buyerID, day string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[memKey(buyerID, day)], nil
}

// Increment bumps the counter and returns the new value.
func (l *MemoryLog) Increment(_ context.Context, buyerID, day string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := memKey(buyerID, day)
	l.counts[k]++
	return l.counts[k], nil
}

// Decrement undoes one increment. The counter never goes below zero, so a
// rollback racing another send cannot corrupt the count.
func (l *MemoryLog) Decrement(_ context.Context, buyerID, day string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := memKey(buyerID, day)
	if l.counts[k] > 0 {
		l.counts[k]--
	}
	if l.counts[k] == 0 {
		delete(l.counts, k)
	}
	return nil
}
