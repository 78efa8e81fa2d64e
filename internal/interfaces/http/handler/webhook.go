package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lovemartco/hp-automation/internal/application/ingest"
	"github.com/lovemartco/hp-automation/internal/infrastructure/logger"
)

// shopifyHmacHeader carries the base64 HMAC-SHA256 of the raw body.
const shopifyHmacHeader = "X-Shopify-Hmac-Sha256"

// Orders-paid webhooks are a single order JSON; cap the body well above any
// realistic order size.
const maxWebhookPayloadSize = 1 << 20

// OrderIngester processes one verified webhook delivery.
type OrderIngester interface {
	HandleOrderPaid(ctx context.Context, body []byte, signature string) (ingest.Outcome, error)
}

// WebhookHandler handles the Shopify orders-paid webhook. Shopify calls this
// endpoint; authenticity comes from the HMAC header, not from a session.
type WebhookHandler struct {
	BaseHandler
	ingester OrderIngester
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(ingester OrderIngester) *WebhookHandler {
	return &WebhookHandler{ingester: ingester}
}

// WebhookResponse is the acknowledgment returned to Shopify.
type WebhookResponse struct {
	Received bool   `json:"received"`
	Outcome  string `json:"outcome,omitempty"`
}

// HandleOrdersPaid receives an orders-paid delivery.
//
// Responses: 200 for every processed delivery regardless of the downstream
// submission outcome (a non-200 would make Shopify redeliver the same order
// forever), 401 for a bad signature, 500 for an unreadable or malformed
// body.
func (h *WebhookHandler) HandleOrdersPaid(c *gin.Context) {
	log := logger.FromGin(c)

	// The raw bytes are what the HMAC covers; they must be read before any
	// parsing touches the body.
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize))
	if err != nil {
		h.InternalError(c, "Failed to read request body")
		return
	}

	signature := c.GetHeader(shopifyHmacHeader)

	outcome, err := h.ingester.HandleOrderPaid(c.Request.Context(), payload, signature)
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidSignature) {
			h.Unauthorized(c, "Webhook signature verification failed")
			return
		}
		log.Error("Webhook processing failed", zap.Error(err))
		h.InternalError(c, "Failed to process webhook")
		return
	}

	h.Success(c, WebhookResponse{
		Received: true,
		Outcome:  string(outcome),
	})
}
