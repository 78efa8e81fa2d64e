package persistence

import (
	"context"
	"sync"

	"github.com/lovemartco/hp-automation/internal/domain/fulfillment"
)

// MemoryLedger is the default, process-lifetime ledger store. Entries are
// lost on restart; that is a documented limitation of the default backing,
// and the sqlite store substitutes behind the same interface when durability
// is required.
type MemoryLedger struct {
	mu      sync.RWMutex
	entries map[int64]*fulfillment.LedgerEntry
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		entries: make(map[int64]*fulfillment.LedgerEntry),
	}
}

// Record inserts a new entry, rejecting duplicates by order id.
func (l *MemoryLedger) Record(ctx context.Context, entry fulfillment.LedgerEntry) error {
	_ = ctx

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.entries[entry.OrderID]; exists {
		return fulfillment.ErrAlreadyRecorded
	}
	stored := entry
	l.entries[entry.OrderID] = &stored
	return nil
}

// Get returns a copy of the entry for the order id.
func (l *MemoryLedger) Get(ctx context.Context, orderID int64) (fulfillment.LedgerEntry, error) {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, ok := l.entries[orderID]
	if !ok {
		return fulfillment.LedgerEntry{}, fulfillment.ErrNotFound
	}
	return *entry, nil
}

// Unfulfilled returns copies of all entries not yet fulfilled.
func (l *MemoryLedger) Unfulfilled(ctx context.Context) ([]fulfillment.LedgerEntry, error) {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]fulfillment.LedgerEntry, 0)
	for _, entry := range l.entries {
		if !entry.Fulfilled {
			entries = append(entries, *entry)
		}
	}
	return entries, nil
}

// MarkFulfilled flips the entry's fulfilled flag. The check and the set
// happen under one lock, so only one caller ever observes the transition.
func (l *MemoryLedger) MarkFulfilled(ctx context.Context, orderID int64) (bool, error) {
	_ = ctx

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[orderID]
	if !ok {
		return false, fulfillment.ErrNotFound
	}
	if entry.Fulfilled {
		return false, nil
	}
	entry.Fulfilled = true
	return true, nil
}

var _ fulfillment.Ledger = (*MemoryLedger)(nil)
