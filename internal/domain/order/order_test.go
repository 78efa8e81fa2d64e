package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFulfillableItems(t *testing.T) {
	o := &Order{
		LineItems: []LineItem{
			{SKU: "SKU1", Quantity: 2},
			{SKU: "", Title: "Gift wrap", Quantity: 1},
			{SKU: "SKU2", Quantity: 1},
		},
	}

	items := o.FulfillableItems()
	assert.Len(t, items, 2)
	assert.Equal(t, "SKU1", items[0].SKU)
	assert.Equal(t, "SKU2", items[1].SKU)
}

func TestEligible(t *testing.T) {
	tests := []struct {
		name  string
		items []LineItem
		want  bool
	}{
		{
			name:  "has stock-coded item",
			items: []LineItem{{SKU: "SKU1", Quantity: 1}},
			want:  true,
		},
		{
			name:  "only non-physical items",
			items: []LineItem{{SKU: "", Title: "Tip"}, {SKU: "", Title: "Digital download"}},
			want:  false,
		},
		{
			name:  "no items at all",
			items: nil,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{LineItems: tt.items}
			assert.Equal(t, tt.want, o.Eligible())
		})
	}
}

func TestShipTo(t *testing.T) {
	shipping := &Address{Name: "Ship Recipient", City: "Portland"}
	billing := &Address{Name: "Bill Payer", City: "Seattle"}

	t.Run("prefers shipping address", func(t *testing.T) {
		o := &Order{ShippingAddress: shipping, BillingAddress: billing}
		assert.Equal(t, shipping, o.ShipTo())
	})

	t.Run("falls back to billing address", func(t *testing.T) {
		o := &Order{BillingAddress: billing}
		assert.Equal(t, billing, o.ShipTo())
	})

	t.Run("nil when neither present", func(t *testing.T) {
		o := &Order{}
		assert.Nil(t, o.ShipTo())
	})
}

func TestShippingTitle(t *testing.T) {
	t.Run("first shipping line wins", func(t *testing.T) {
		o := &Order{ShippingLines: []ShippingLine{{Title: "USPS Priority"}, {Title: "FedEx Ground"}}}
		assert.Equal(t, "USPS Priority", o.ShippingTitle())
	})

	t.Run("empty without shipping lines", func(t *testing.T) {
		o := &Order{}
		assert.Equal(t, "", o.ShippingTitle())
	})
}
