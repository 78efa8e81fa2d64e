// Package partner implements the fulfillment partner's XML-over-HTTP
// protocol: envelope encoding, best-effort response decoding, and the HTTP
// client with the partner's certificate quirks handled.
package partner

import (
	"encoding/xml"

	"github.com/lovemartco/hp-automation/internal/domain/order"
)

// CodeAccepted is the partner's documented submission-accepted code. Any
// other code, including "200", is a rejection.
const CodeAccepted = "100"

// maxInstructionsLen caps the free-text instructions field; the partner
// truncates (or rejects) anything longer.
const maxInstructionsLen = 250

const submissionDateLayout = "2006-01-02"

// Credentials are carried in every envelope.
type Credentials struct {
	Account string
	Token   string
}

// Codec translates between the platform order representation and the
// partner's XML envelopes.
type Codec struct {
	creds           Credentials
	defaultShipCode string
}

// NewCodec creates a codec with the account credentials and the configured
// default shipping code (may be empty; the mapping stays total either way).
func NewCodec(creds Credentials, defaultShipCode string) *Codec {
	return &Codec{
		creds:           creds,
		defaultShipCode: defaultShipCode,
	}
}

// ---------------------------------------------------------------------------
// Request envelopes
// ---------------------------------------------------------------------------

type submissionRequest struct {
	XMLName  xml.Name       `xml:"request"`
	Account  string         `xml:"account"`
	Password string         `xml:"password"`
	Order    submittedOrder `xml:"order"`
}

type submittedOrder struct {
	Reference    string          `xml:"referencenumber"`
	ShipBy       string          `xml:"shipby"`
	Date         string          `xml:"date"`
	ShipTo       shipTo          `xml:"shipto"`
	Instructions string          `xml:"instructions,omitempty"`
	Items        []submittedItem `xml:"items>item"`
}

type shipTo struct {
	Name     string `xml:"name"`
	Address1 string `xml:"address1"`
	Address2 string `xml:"address2,omitempty"`
	City     string `xml:"city"`
	State    string `xml:"state"`
	Zip      string `xml:"zip"`
	Country  string `xml:"country"`
	Email    string `xml:"email,omitempty"`
	Phone    string `xml:"phone,omitempty"`
}

type submittedItem struct {
	Code     string `xml:"code"`
	Quantity int    `xml:"quantity"`
}

type statusRequest struct {
	XMLName     xml.Name `xml:"request"`
	Account     string   `xml:"account"`
	Password    string   `xml:"password"`
	OrderStatus string   `xml:"orderstatus"`
}

// EncodeSubmission builds the partner submission envelope for an order.
// The submission date is the order's creation date truncated to the UTC
// calendar day; only SKU-bearing line items are emitted.
func (c *Codec) EncodeSubmission(o *order.Order) ([]byte, error) {
	req := submissionRequest{
		Account:  c.creds.Account,
		Password: c.creds.Token,
		Order: submittedOrder{
			Reference:    o.Reference(),
			ShipBy:       order.ShippingCode(o.ShippingTitle(), c.defaultShipCode),
			Date:         o.CreatedAt.UTC().Format(submissionDateLayout),
			Instructions: truncate(o.Note, maxInstructionsLen),
		},
	}

	for _, item := range o.FulfillableItems() {
		req.Order.Items = append(req.Order.Items, submittedItem{
			Code:     item.SKU,
			Quantity: item.Quantity,
		})
	}

	if addr := o.ShipTo(); addr != nil {
		req.Order.ShipTo = shipTo{
			Name:     addr.Name,
			Address1: addr.Address1,
			Address2: addr.Address2,
			City:     addr.City,
			State:    addr.Province,
			Zip:      addr.Zip,
			Country:  addr.Country,
			Email:    o.Email,
			Phone:    firstNonEmpty(addr.Phone, o.Phone),
		}
	}

	return xml.Marshal(req)
}

// EncodeStatusQuery builds the status-query envelope for a partner reference.
func (c *Codec) EncodeStatusQuery(reference string) ([]byte, error) {
	return xml.Marshal(statusRequest{
		Account:     c.creds.Account,
		Password:    c.creds.Token,
		OrderStatus: reference,
	})
}

// ---------------------------------------------------------------------------
// Response envelope
// ---------------------------------------------------------------------------

// Envelope is the flat field set of a partner response. Submission responses
// carry Code and Reference; status responses carry Status, TrackingNumber
// and ShipAgent.
type Envelope struct {
	Code           string `xml:"code"`
	Reference      string `xml:"reference"`
	Status         string `xml:"status"`
	TrackingNumber string `xml:"trackingnumber1"`
	ShipAgent      string `xml:"shipagent"`
}

// DecodeEnvelope parses a partner response. The second return value is false
// when the body is not a well-formed envelope — the partner service returns
// error HTML under load — and callers must treat that as a soft failure, not
// a crash.
func DecodeEnvelope(data []byte) (*Envelope, bool) {
	var env Envelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, false
	}
	return &env, true
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
