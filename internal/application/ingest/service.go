// Package ingest implements the webhook side of the pipeline: authenticate
// the orders-paid delivery, translate the order into the partner envelope,
// submit it, and record the partner reference in the ledger.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lovemartco/hp-automation/internal/domain/fulfillment"
	"github.com/lovemartco/hp-automation/internal/domain/order"
	"github.com/lovemartco/hp-automation/internal/infrastructure/metrics"
	"github.com/lovemartco/hp-automation/internal/infrastructure/partner"
	"github.com/lovemartco/hp-automation/internal/infrastructure/shopify"
)

// ErrInvalidSignature is returned when the webhook HMAC does not verify.
// The handler maps it to 401; nothing else happens for that delivery.
var ErrInvalidSignature = errors.New("ingest: invalid webhook signature")

// PartnerSubmitter submits an encoded envelope to the partner.
type PartnerSubmitter interface {
	Submit(ctx context.Context, envelope []byte) ([]byte, error)
}

// Outcome classifies one processed webhook delivery. Every outcome except a
// signature or parse failure is acknowledged with success to the sender.
type Outcome string

const (
	// OutcomeSubmitted: partner accepted the order, ledger entry created.
	OutcomeSubmitted Outcome = "submitted"
	// OutcomeSkipped: no SKU-bearing line items, no partner call made.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeDuplicate: order already in the ledger, no resubmission.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeFailed: submission failed (rejection, transport or protocol
	// error). The delivery is still acknowledged so the sender does not
	// redeliver forever; the order stays untracked until resubmitted
	// manually. Documented trade-off, not a bug.
	OutcomeFailed Outcome = "failed"
)

// Service is the ingest orchestrator.
type Service struct {
	webhookSecret string
	codec         *partner.Codec
	partner       PartnerSubmitter
	ledger        fulfillment.Ledger
	logger        *zap.Logger
}

// NewService creates the ingest orchestrator.
func NewService(webhookSecret string, codec *partner.Codec, submitter PartnerSubmitter, ledger fulfillment.Ledger, logger *zap.Logger) *Service {
	return &Service{
		webhookSecret: webhookSecret,
		codec:         codec,
		partner:       submitter,
		ledger:        ledger,
		logger:        logger.Named("ingest"),
	}
}

// HandleOrderPaid processes one orders-paid webhook delivery.
//
// The signature is verified over the exact raw bytes before anything is
// parsed. Returns ErrInvalidSignature for a bad signature and a plain error
// for an unparsable body; any downstream failure is absorbed into
// OutcomeFailed with a nil error, per the acknowledge-always contract.
func (s *Service) HandleOrderPaid(ctx context.Context, body []byte, signature string) (Outcome, error) {
	if !shopify.VerifyWebhookSignature(s.webhookSecret, body, signature) {
		metrics.WebhooksTotal.WithLabelValues("unauthorized").Inc()
		return "", ErrInvalidSignature
	}

	var o order.Order
	if err := json.Unmarshal(body, &o); err != nil {
		metrics.WebhooksTotal.WithLabelValues("malformed").Inc()
		return "", fmt.Errorf("ingest: parse order payload: %w", err)
	}

	outcome := s.process(ctx, &o)
	metrics.WebhooksTotal.WithLabelValues(string(outcome)).Inc()
	return outcome, nil
}

func (s *Service) process(ctx context.Context, o *order.Order) Outcome {
	log := s.logger.With(
		zap.Int64("order_id", o.ID),
		zap.String("order_name", o.Name),
	)

	if !o.Eligible() {
		// The partner rejects orders without stock-coded items; skipping
		// up front is an optimization, not an error.
		log.Info("Order has no stock-coded line items, skipping submission")
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return OutcomeSkipped
	}

	if _, err := s.ledger.Get(ctx, o.ID); err == nil {
		log.Info("Order already recorded, ignoring duplicate delivery")
		return OutcomeDuplicate
	}

	envelope, err := s.codec.EncodeSubmission(o)
	if err != nil {
		log.Error("Failed to encode submission envelope", zap.Error(err))
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return OutcomeFailed
	}

	raw, err := s.partner.Submit(ctx, envelope)
	if err != nil {
		log.Error("Partner submission failed, order is untracked", zap.Error(err))
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeTransport).Inc()
		return OutcomeFailed
	}

	env, ok := partner.DecodeEnvelope(raw)
	if !ok {
		log.Error("Partner returned an unparsable submission response, order is untracked")
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeProtocol).Inc()
		return OutcomeFailed
	}

	if env.Code != partner.CodeAccepted {
		log.Error("Partner rejected submission, order is untracked",
			zap.String("code", env.Code),
		)
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return OutcomeFailed
	}

	reference := env.Reference
	if reference == "" {
		reference = o.Reference()
	}

	entry := fulfillment.LedgerEntry{
		OrderID:     o.ID,
		OrderName:   o.Name,
		Reference:   reference,
		SubmittedAt: o.CreatedAt,
	}
	if err := s.ledger.Record(ctx, entry); err != nil {
		if errors.Is(err, fulfillment.ErrAlreadyRecorded) {
			log.Info("Order recorded by a concurrent delivery")
			return OutcomeDuplicate
		}
		log.Error("Failed to record ledger entry for accepted submission",
			zap.String("reference", reference),
			zap.Error(err),
		)
		metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return OutcomeFailed
	}

	log.Info("Order submitted to partner",
		zap.String("reference", reference),
	)
	metrics.SubmissionsTotal.WithLabelValues(metrics.OutcomeAccepted).Inc()
	return OutcomeSubmitted
}
