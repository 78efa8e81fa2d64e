// Package metrics holds the bridge's Prometheus instruments.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome label values shared by the ingest and reconcile counters.
const (
	OutcomeAccepted  = "accepted"
	OutcomeSkipped   = "skipped"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
	OutcomeProtocol  = "protocol_error"
	OutcomeCreated   = "created"
	OutcomeError     = "error"
)

var (
	WebhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_webhooks_total",
			Help: "Total number of orders-paid webhook deliveries by outcome",
		},
		[]string{"outcome"},
	)

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_submissions_total",
			Help: "Total number of partner submissions by outcome",
		},
		[]string{"outcome"},
	)

	SweepsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_sweeps_total",
			Help: "Total number of reconciliation sweeps executed",
		},
	)

	FulfillmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_fulfillments_total",
			Help: "Total number of platform fulfillment attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// Register registers all bridge metrics with the default registry.
func Register() {
	prometheus.MustRegister(
		WebhooksTotal,
		SubmissionsTotal,
		SweepsTotal,
		FulfillmentsTotal,
	)
}
