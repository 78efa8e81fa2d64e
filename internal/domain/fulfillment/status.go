package fulfillment

import "strings"

// StatusShipped is the normalized partner status that triggers the platform
// fulfillment write-back.
const StatusShipped = "shipped"

// ShipmentStatus is the result of one partner status query. It is consumed
// immediately by the reconciler and never stored.
type ShipmentStatus struct {
	Status         string
	TrackingNumber string
	ShipAgent      string
}

// Shipped reports whether the partner considers the order shipped. The
// partner's status labels vary in casing, so comparison is normalized.
func (s ShipmentStatus) Shipped() bool {
	return strings.EqualFold(strings.TrimSpace(s.Status), StatusShipped)
}
