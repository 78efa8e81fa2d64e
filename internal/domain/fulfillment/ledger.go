// Package fulfillment holds the reconciliation state the bridge keeps per
// submitted order: the ledger mapping platform order ids to partner
// references, and the ephemeral shipment status read back from the partner.
package fulfillment

import (
	"context"
	"errors"
	"time"
)

// Ledger errors.
var (
	ErrAlreadyRecorded = errors.New("fulfillment: order already recorded")
	ErrNotFound        = errors.New("fulfillment: ledger entry not found")
)

// LedgerEntry maps a platform order to its partner reference and tracks
// whether the tracking number has been written back to the platform.
// Entries are created once, on accepted submission, and never deleted;
// Fulfilled is flipped exactly once by the reconciler.
type LedgerEntry struct {
	OrderID     int64
	OrderName   string
	Reference   string
	Fulfilled   bool
	SubmittedAt time.Time
}

// Ledger is the single source of truth for reconciliation. Implementations
// must be safe for concurrent use by the webhook path and the scheduler.
type Ledger interface {
	// Record inserts a new entry. Returns ErrAlreadyRecorded if an entry
	// for the same order id exists, fulfilled or not.
	Record(ctx context.Context, entry LedgerEntry) error

	// Get returns the entry for the order id, or ErrNotFound.
	Get(ctx context.Context, orderID int64) (LedgerEntry, error)

	// Unfulfilled returns all entries with Fulfilled == false.
	Unfulfilled(ctx context.Context) ([]LedgerEntry, error)

	// MarkFulfilled sets Fulfilled on the entry. It reports whether this
	// call performed the transition: false means the entry was already
	// fulfilled (or missing), so the caller must not create another
	// platform fulfillment. This compare-and-set is what keeps the
	// fulfillment call at-most-once under concurrent sweeps.
	MarkFulfilled(ctx context.Context, orderID int64) (bool, error)
}
