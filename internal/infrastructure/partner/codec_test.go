package partner

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lovemartco/hp-automation/internal/domain/order"
)

func testCodec() *Codec {
	return NewCodec(Credentials{Account: "acct-1", Token: "tok-1"}, "")
}

// decodedSubmission mirrors the submission envelope for assertions.
type decodedSubmission struct {
	XMLName  xml.Name `xml:"request"`
	Account  string   `xml:"account"`
	Password string   `xml:"password"`
	Order    struct {
		Reference    string `xml:"referencenumber"`
		ShipBy       string `xml:"shipby"`
		Date         string `xml:"date"`
		Instructions string `xml:"instructions"`
		ShipTo       struct {
			Name    string `xml:"name"`
			City    string `xml:"city"`
			State   string `xml:"state"`
			Country string `xml:"country"`
			Email   string `xml:"email"`
			Phone   string `xml:"phone"`
		} `xml:"shipto"`
		Items []struct {
			Code     string `xml:"code"`
			Quantity int    `xml:"quantity"`
		} `xml:"items>item"`
	} `xml:"order"`
}

func TestEncodeSubmission(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 23, 30, 0, 0, time.FixedZone("PST", -8*3600))

	o := &order.Order{
		ID:        5001,
		Name:      "#1002",
		Email:     "buyer@example.com",
		Note:      "HPREF: TEST1002",
		CreatedAt: createdAt,
		LineItems: []order.LineItem{
			{SKU: "SKU1", Quantity: 2},
			{SKU: "", Title: "Gift note", Quantity: 1},
		},
		ShippingAddress: &order.Address{
			Name:     "Pat Example",
			Address1: "1 Main St",
			City:     "Portland",
			Province: "OR",
			Zip:      "97205",
			Country:  "US",
			Phone:    "+1 555 0100",
		},
		ShippingLines: []order.ShippingLine{{Title: "USPS Priority"}},
	}

	raw, err := testCodec().EncodeSubmission(o)
	require.NoError(t, err)

	var got decodedSubmission
	require.NoError(t, xml.Unmarshal(raw, &got))

	assert.Equal(t, "acct-1", got.Account)
	assert.Equal(t, "tok-1", got.Password)
	assert.Equal(t, "TEST1002", got.Order.Reference)
	assert.Equal(t, order.ShipCodeUSPSPriority, got.Order.ShipBy)
	// 23:30 PST on the 14th is the 15th in UTC.
	assert.Equal(t, "2026-03-15", got.Order.Date)
	assert.Equal(t, "Pat Example", got.Order.ShipTo.Name)
	assert.Equal(t, "OR", got.Order.ShipTo.State)
	assert.Equal(t, "buyer@example.com", got.Order.ShipTo.Email)
	assert.Equal(t, "+1 555 0100", got.Order.ShipTo.Phone)

	require.Len(t, got.Order.Items, 1, "only SKU-bearing items are submitted")
	assert.Equal(t, "SKU1", got.Order.Items[0].Code)
	assert.Equal(t, 2, got.Order.Items[0].Quantity)
}

func TestEncodeSubmissionPhoneFallback(t *testing.T) {
	o := &order.Order{
		ID:        5002,
		Name:      "#1003",
		Phone:     "+1 555 0199",
		CreatedAt: time.Now(),
		LineItems: []order.LineItem{{SKU: "SKU1", Quantity: 1}},
		BillingAddress: &order.Address{
			Name: "Bill Payer",
			City: "Seattle",
		},
	}

	raw, err := testCodec().EncodeSubmission(o)
	require.NoError(t, err)

	var got decodedSubmission
	require.NoError(t, xml.Unmarshal(raw, &got))

	// No shipping address: billing is used, and the order-level phone fills
	// the gap left by the address.
	assert.Equal(t, "Bill Payer", got.Order.ShipTo.Name)
	assert.Equal(t, "+1 555 0199", got.Order.ShipTo.Phone)
}

func TestEncodeSubmissionTruncatesInstructions(t *testing.T) {
	o := &order.Order{
		ID:        5003,
		Name:      "#1004",
		Note:      strings.Repeat("x", 400),
		CreatedAt: time.Now(),
		LineItems: []order.LineItem{{SKU: "SKU1", Quantity: 1}},
	}

	raw, err := testCodec().EncodeSubmission(o)
	require.NoError(t, err)

	var got decodedSubmission
	require.NoError(t, xml.Unmarshal(raw, &got))
	assert.Len(t, got.Order.Instructions, maxInstructionsLen)
}

func TestEncodeStatusQuery(t *testing.T) {
	raw, err := testCodec().EncodeStatusQuery("TEST1002")
	require.NoError(t, err)

	var got struct {
		XMLName     xml.Name `xml:"request"`
		Account     string   `xml:"account"`
		Password    string   `xml:"password"`
		OrderStatus string   `xml:"orderstatus"`
	}
	require.NoError(t, xml.Unmarshal(raw, &got))
	assert.Equal(t, "acct-1", got.Account)
	assert.Equal(t, "TEST1002", got.OrderStatus)
}

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantOK bool
		want   Envelope
	}{
		{
			name:   "submission acceptance",
			body:   `<response><code>100</code><reference>R1</reference></response>`,
			wantOK: true,
			want:   Envelope{Code: "100", Reference: "R1"},
		},
		{
			name:   "status with tracking",
			body:   `<response><status>Shipped</status><trackingnumber1>9999</trackingnumber1><shipagent>FedEx</shipagent></response>`,
			wantOK: true,
			want:   Envelope{Status: "Shipped", TrackingNumber: "9999", ShipAgent: "FedEx"},
		},
		{
			name:   "rejection code passes through",
			body:   `<response><code>200</code></response>`,
			wantOK: true,
			want:   Envelope{Code: "200"},
		},
		{
			name:   "error page html",
			body:   `<!DOCTYPE html><html><body>Service Unavailable<br></body></html>`,
			wantOK: false,
		},
		{
			name:   "empty body",
			body:   ``,
			wantOK: false,
		},
		{
			name:   "truncated xml",
			body:   `<response><code>100`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, ok := DecodeEnvelope([]byte(tt.body))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.NotNil(t, env)
				assert.Equal(t, tt.want, *env)
			}
		})
	}
}
