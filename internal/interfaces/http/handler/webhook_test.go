package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lovemartco/hp-automation/internal/application/ingest"
	"github.com/lovemartco/hp-automation/internal/interfaces/http/dto"
)

// fakeIngester records the delivery and plays back a scripted result.
type fakeIngester struct {
	outcome      ingest.Outcome
	err          error
	gotBody      []byte
	gotSignature string
}

func (f *fakeIngester) HandleOrderPaid(_ context.Context, body []byte, signature string) (ingest.Outcome, error) {
	f.gotBody = body
	f.gotSignature = signature
	return f.outcome, f.err
}

func newWebhookRouter(ingester *fakeIngester) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/webhooks/shopify/orders-paid", NewWebhookHandler(ingester).HandleOrdersPaid)
	return engine
}

func postWebhook(engine *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify/orders-paid", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Shopify-Hmac-Sha256", signature)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHandleOrdersPaid(t *testing.T) {
	tests := []struct {
		name       string
		outcome    ingest.Outcome
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "submitted",
			outcome:    ingest.OutcomeSubmitted,
			wantStatus: http.StatusOK,
			wantBody:   "submitted",
		},
		{
			name:       "failed submission is still acknowledged",
			outcome:    ingest.OutcomeFailed,
			wantStatus: http.StatusOK,
			wantBody:   "failed",
		},
		{
			name:       "duplicate delivery is acknowledged",
			outcome:    ingest.OutcomeDuplicate,
			wantStatus: http.StatusOK,
			wantBody:   "duplicate",
		},
		{
			name:       "invalid signature",
			err:        ingest.ErrInvalidSignature,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed payload",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingester := &fakeIngester{outcome: tt.outcome, err: tt.err}
			engine := newWebhookRouter(ingester)

			body := []byte(`{"id":5001,"name":"#1001"}`)
			w := postWebhook(engine, body, "sig-header")

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

			if tt.wantStatus == http.StatusOK {
				assert.True(t, resp.Success)
				data, ok := resp.Data.(map[string]any)
				require.True(t, ok)
				assert.Equal(t, true, data["received"])
				assert.Equal(t, tt.wantBody, data["outcome"])
			} else {
				assert.False(t, resp.Success)
				require.NotNil(t, resp.Error)
			}

			// The raw bytes and the header must reach the service untouched.
			assert.Equal(t, body, ingester.gotBody)
			assert.Equal(t, "sig-header", ingester.gotSignature)
		})
	}
}

func TestHandleOrdersPaidMissingSignatureHeader(t *testing.T) {
	ingester := &fakeIngester{err: ingest.ErrInvalidSignature}
	engine := newWebhookRouter(ingester)

	w := postWebhook(engine, []byte(`{}`), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, ingester.gotSignature)
}
