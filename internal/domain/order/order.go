// Package order models the Shopify order as the bridge receives it from the
// orders-paid webhook, together with the derivations the fulfillment partner
// needs: the partner reference and the shipping-method code.
package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the platform-owned order payload. It is read-only to the bridge;
// fields mirror the subset of Shopify's order JSON the pipeline consumes.
type Order struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	OrderNumber int64      `json:"order_number"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Note        string     `json:"note"`
	CreatedAt   time.Time  `json:"created_at"`
	LineItems   []LineItem `json:"line_items"`

	ShippingAddress *Address       `json:"shipping_address"`
	BillingAddress  *Address       `json:"billing_address"`
	ShippingLines   []ShippingLine `json:"shipping_lines"`
}

// LineItem is a single order line. SKU may be empty for non-physical items,
// which excludes the line from partner submission.
type LineItem struct {
	ID       int64           `json:"id"`
	SKU      string          `json:"sku"`
	Title    string          `json:"title"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Address is a Shopify shipping or billing address.
type Address struct {
	Name     string `json:"name"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Province string `json:"province_code"`
	Zip      string `json:"zip"`
	Country  string `json:"country_code"`
	Phone    string `json:"phone"`
}

// ShippingLine carries the customer-facing shipping method label.
type ShippingLine struct {
	Title string `json:"title"`
}

// FulfillableItems returns the line items that carry a stock-keeping code.
// Only these are submitted to the partner.
func (o *Order) FulfillableItems() []LineItem {
	items := make([]LineItem, 0, len(o.LineItems))
	for _, item := range o.LineItems {
		if item.SKU != "" {
			items = append(items, item)
		}
	}
	return items
}

// Eligible reports whether the order qualifies for partner submission.
// An order with no SKU-bearing line items is rejected by the partner, so the
// bridge skips it up front.
func (o *Order) Eligible() bool {
	return len(o.FulfillableItems()) > 0
}

// ShipTo returns the address used for the partner's ship-to block: the
// shipping address when present, otherwise the billing address.
func (o *Order) ShipTo() *Address {
	if o.ShippingAddress != nil {
		return o.ShippingAddress
	}
	return o.BillingAddress
}

// ShippingTitle returns the label of the first shipping line, or empty when
// the order has none.
func (o *Order) ShippingTitle() string {
	if len(o.ShippingLines) == 0 {
		return ""
	}
	return o.ShippingLines[0].Title
}
