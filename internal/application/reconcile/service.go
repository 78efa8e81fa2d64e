// Package reconcile advances unfulfilled ledger entries toward "fulfilled":
// it polls the partner for shipment status and, exactly once per order,
// writes the tracking number back to the platform as a fulfillment.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lovemartco/hp-automation/internal/domain/fulfillment"
	"github.com/lovemartco/hp-automation/internal/infrastructure/metrics"
	"github.com/lovemartco/hp-automation/internal/infrastructure/partner"
	"github.com/lovemartco/hp-automation/internal/infrastructure/shopify"
)

// errNotParsable marks a status response the codec could not decode. Treated
// like a transport failure: the entry is retried on the next sweep.
var errNotParsable = errors.New("reconcile: unparsable status response")

// StatusQuerier queries the partner for the shipment status of a reference.
type StatusQuerier interface {
	QueryStatus(ctx context.Context, reference string) ([]byte, error)
}

// Platform is the platform-side surface the reconciler needs.
type Platform interface {
	ListFulfillmentOrders(ctx context.Context, orderID int64) ([]shopify.FulfillmentOrder, error)
	CreateFulfillment(ctx context.Context, fulfillmentOrderID int64, tracking shopify.Tracking) error
}

// SweepResult summarizes one reconciliation sweep.
type SweepResult struct {
	Checked   int
	Fulfilled int
	Failed    int
}

// Service executes reconciliation sweeps.
type Service struct {
	ledger   fulfillment.Ledger
	partner  StatusQuerier
	platform Platform
	logger   *zap.Logger
}

// NewService creates the reconciliation executor.
func NewService(ledger fulfillment.Ledger, querier StatusQuerier, platform Platform, logger *zap.Logger) *Service {
	return &Service{
		ledger:   ledger,
		partner:  querier,
		platform: platform,
		logger:   logger.Named("reconcile"),
	}
}

// Sweep runs one pass over all unfulfilled ledger entries, sequentially.
// A failure on one entry is logged and isolated; the entry stays unfulfilled
// and is retried automatically on the next sweep.
func (s *Service) Sweep(ctx context.Context) SweepResult {
	metrics.SweepsTotal.Inc()

	result := SweepResult{}

	entries, err := s.ledger.Unfulfilled(ctx)
	if err != nil {
		s.logger.Error("Failed to list unfulfilled ledger entries", zap.Error(err))
		return result
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return result
		}
		if entry.Reference == "" {
			continue
		}
		result.Checked++

		fulfilled, err := s.reconcileEntry(ctx, entry)
		if err != nil {
			result.Failed++
			s.logger.Warn("Reconciliation failed for entry, will retry next sweep",
				zap.Int64("order_id", entry.OrderID),
				zap.String("reference", entry.Reference),
				zap.Error(err),
			)
			continue
		}
		if fulfilled {
			result.Fulfilled++
		}
	}

	if result.Checked > 0 {
		s.logger.Info("Reconciliation sweep completed",
			zap.Int("checked", result.Checked),
			zap.Int("fulfilled", result.Fulfilled),
			zap.Int("failed", result.Failed),
		)
	}
	return result
}

// reconcileEntry checks one entry and, when the partner reports it shipped,
// creates the platform fulfillment and flips the entry's flag. The flag is
// re-checked immediately before the non-idempotent platform call so the
// create-then-mark sequence stays at-most-once even if sweeps ever overlap.
func (s *Service) reconcileEntry(ctx context.Context, entry fulfillment.LedgerEntry) (bool, error) {
	raw, err := s.partner.QueryStatus(ctx, entry.Reference)
	if err != nil {
		return false, fmt.Errorf("query status: %w", err)
	}

	env, ok := partner.DecodeEnvelope(raw)
	if !ok {
		return false, errNotParsable
	}

	status := fulfillment.ShipmentStatus{
		Status:         env.Status,
		TrackingNumber: env.TrackingNumber,
		ShipAgent:      env.ShipAgent,
	}
	if !status.Shipped() {
		return false, nil
	}

	current, err := s.ledger.Get(ctx, entry.OrderID)
	if err != nil {
		return false, fmt.Errorf("reload ledger entry: %w", err)
	}
	if current.Fulfilled {
		return false, nil
	}

	fulfillmentOrders, err := s.platform.ListFulfillmentOrders(ctx, entry.OrderID)
	if err != nil {
		metrics.FulfillmentsTotal.WithLabelValues(metrics.OutcomeTransport).Inc()
		return false, fmt.Errorf("list fulfillment orders: %w", err)
	}
	if len(fulfillmentOrders) == 0 {
		// The order may have been fulfilled or cancelled out-of-band.
		s.logger.Warn("No fulfillment order on platform for shipped order, skipping",
			zap.Int64("order_id", entry.OrderID),
			zap.String("reference", entry.Reference),
		)
		return false, nil
	}

	tracking := shopify.Tracking{
		Number:  status.TrackingNumber,
		Company: status.ShipAgent,
	}
	if err := s.platform.CreateFulfillment(ctx, fulfillmentOrders[0].ID, tracking); err != nil {
		metrics.FulfillmentsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return false, fmt.Errorf("create fulfillment: %w", err)
	}

	if _, err := s.ledger.MarkFulfilled(ctx, entry.OrderID); err != nil {
		// The fulfillment was created; failing to persist the flag risks a
		// duplicate on the next sweep, which is worth a loud log line.
		s.logger.Error("Fulfillment created but ledger flag update failed",
			zap.Int64("order_id", entry.OrderID),
			zap.String("reference", entry.Reference),
			zap.Error(err),
		)
		return false, fmt.Errorf("mark fulfilled: %w", err)
	}

	metrics.FulfillmentsTotal.WithLabelValues(metrics.OutcomeCreated).Inc()
	s.logger.Info("Order fulfilled on platform",
		zap.Int64("order_id", entry.OrderID),
		zap.String("reference", entry.Reference),
		zap.String("tracking_number", status.TrackingNumber),
		zap.String("ship_agent", status.ShipAgent),
	)
	return true, nil
}
