package shopify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lovemartco/hp-automation/internal/infrastructure/config"
)

// newTestClient points a client at a TLS test server; Admin API URLs are
// always https, so the server's own client supplies the trusted transport.
func newTestClient(srv *httptest.Server) *Client {
	return &Client{
		domain:     strings.TrimPrefix(srv.URL, "https://"),
		token:      "shpat_test_token",
		apiVersion: "2024-10",
		httpClient: srv.Client(),
	}
}

func TestNewClientValidation(t *testing.T) {
	t.Run("missing domain", func(t *testing.T) {
		_, err := NewClient(config.ShopifyConfig{AccessToken: "tok"})
		assert.ErrorIs(t, err, ErrMissingDomain)
	})

	t.Run("missing access token", func(t *testing.T) {
		_, err := NewClient(config.ShopifyConfig{Domain: "shop.myshopify.com"})
		assert.ErrorIs(t, err, ErrMissingAccessToken)
	})

	t.Run("valid", func(t *testing.T) {
		client, err := NewClient(config.ShopifyConfig{
			Domain:      "shop.myshopify.com",
			AccessToken: "tok",
		})
		require.NoError(t, err)
		assert.Equal(t, "2024-10", client.apiVersion)
	})
}

func TestListFulfillmentOrders(t *testing.T) {
	var gotPath, gotToken string
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		_, _ = w.Write([]byte(`{"fulfillment_orders":[{"id":701,"order_id":5001,"status":"open"},{"id":702,"order_id":5001,"status":"open"}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)

	orders, err := client.ListFulfillmentOrders(context.Background(), 5001)
	require.NoError(t, err)

	assert.Equal(t, "/admin/api/2024-10/orders/5001/fulfillment_orders.json", gotPath)
	assert.Equal(t, "shpat_test_token", gotToken)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(701), orders[0].ID)
	assert.Equal(t, "open", orders[0].Status)
}

func TestCreateFulfillment(t *testing.T) {
	var gotPath string
	var gotPayload map[string]any
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotPayload)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"fulfillment":{"id":901}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)

	err := client.CreateFulfillment(context.Background(), 701, Tracking{Number: "9999", Company: "FedEx"})
	require.NoError(t, err)

	assert.Equal(t, "/admin/api/2024-10/fulfillments.json", gotPath)

	fulfillment, ok := gotPayload["fulfillment"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, fulfillment["notify_customer"])

	trackingInfo, ok := fulfillment["tracking_info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "9999", trackingInfo["number"])
	assert.Equal(t, "FedEx", trackingInfo["company"])

	byOrder, ok := fulfillment["line_items_by_fulfillment_order"].([]any)
	require.True(t, ok)
	require.Len(t, byOrder, 1)
	assert.Equal(t, float64(701), byOrder[0].(map[string]any)["fulfillment_order_id"])
}

func TestDoRequestNon2xxIsTransportError(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":"Not Found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv)

	_, err := client.ListFulfillmentOrders(context.Background(), 5001)
	assert.ErrorIs(t, err, ErrTransport)
}
