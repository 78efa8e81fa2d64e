// Package shopify implements the platform side of the bridge: webhook
// signature verification and the Admin API calls the reconciler needs to
// write tracking numbers back as fulfillments.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lovemartco/hp-automation/internal/infrastructure/config"
)

// maxResponseSize limits Admin API response bodies.
const maxResponseSize = 4 << 20

// Client errors.
var (
	// ErrTransport covers timeouts, connection failures and non-2xx
	// responses from the Admin API.
	ErrTransport = errors.New("shopify: transport failure")

	ErrMissingDomain      = errors.New("shopify: domain is required")
	ErrMissingAccessToken = errors.New("shopify: access token is required")
)

// FulfillmentOrder is a platform-side grouping of an order's line items
// eligible for a single shipment notification.
type FulfillmentOrder struct {
	ID      int64  `json:"id"`
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

// Tracking is the tracking information written to a fulfillment.
type Tracking struct {
	Number  string
	Company string
}

// Client talks to the Shopify Admin API.
type Client struct {
	domain     string
	token      string
	apiVersion string
	httpClient *http.Client
}

// NewClient creates an Admin API client from configuration.
func NewClient(cfg config.ShopifyConfig) (*Client, error) {
	if cfg.Domain == "" {
		return nil, ErrMissingDomain
	}
	if cfg.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = "2024-10"
	}

	return &Client{
		domain:     cfg.Domain,
		token:      cfg.AccessToken,
		apiVersion: apiVersion,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// ListFulfillmentOrders returns the fulfillment orders for a platform order.
func (c *Client) ListFulfillmentOrders(ctx context.Context, orderID int64) ([]FulfillmentOrder, error) {
	url := fmt.Sprintf("https://%s/admin/api/%s/orders/%d/fulfillment_orders.json", c.domain, c.apiVersion, orderID)

	body, err := c.doRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		FulfillmentOrders []FulfillmentOrder `json:"fulfillment_orders"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shopify: parse fulfillment orders: %w", err)
	}
	return resp.FulfillmentOrders, nil
}

// CreateFulfillment creates a fulfillment for the fulfillment order with the
// given tracking info and notifies the customer.
//
// This call is NOT idempotent on the platform side: calling it twice for the
// same fulfillment order sends the customer a duplicate shipment
// notification. The at-most-once guarantee lives in the caller's ledger, not
// here.
func (c *Client) CreateFulfillment(ctx context.Context, fulfillmentOrderID int64, tracking Tracking) error {
	url := fmt.Sprintf("https://%s/admin/api/%s/fulfillments.json", c.domain, c.apiVersion)

	payload := map[string]any{
		"fulfillment": map[string]any{
			"notify_customer": true,
			"tracking_info": map[string]any{
				"number":  tracking.Number,
				"company": tracking.Company,
			},
			"line_items_by_fulfillment_order": []map[string]any{
				{"fulfillment_order_id": fulfillmentOrderID},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("shopify: marshal fulfillment: %w", err)
	}

	_, err = c.doRequest(ctx, http.MethodPost, url, body)
	return err
}

// doRequest performs an authenticated Admin API request.
func (c *Client) doRequest(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("shopify: build request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrTransport, resp.StatusCode)
	}

	return respBody, nil
}
