package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mamipapa/store-backend/internal/services/payment/marzpay"
)

// WebhookProcessor is the slice of the reconciler the webhook handler
// depends on.
type WebhookProcessor interface {
	Handle(ctx context.Context, event marzpay.WebhookEvent) error
}

// PaymentWebhookHandler handles MarzPay webhook callbacks
type PaymentWebhookHandler struct {
	reconciler WebhookProcessor
}

// NewPaymentWebhookHandler creates a new webhook handler
func NewPaymentWebhookHandler(reconciler WebhookProcessor) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{reconciler: reconciler}
}

type webhookPayload struct {
	Transaction struct {
		UUID      string `json:"uuid"`
		Reference string `json:"reference"`
	} `json:"transaction"`
	Collection struct {
		Amount      int64  `json:"amount"`
		PhoneNumber string `json:"phone_number"`
		Provider    string `json:"provider"`
	} `json:"collection"`
	Status string `json:"status"`
}

// Notify receives a payment status notification from the gateway.
// Unknown transactions are acknowledged with 200 so the gateway stops
// retrying a delivery this system can never apply; everything else that
// fails reconciliation keeps a non-2xx status so the gateway retries.
func (h *PaymentWebhookHandler) Notify(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}

	event := marzpay.WebhookEvent{
		TransactionID: payload.Transaction.UUID,
		Reference:     payload.Transaction.Reference,
		Status:        payload.Status,
		Amount:        payload.Collection.Amount,
		PhoneNumber:   payload.Collection.PhoneNumber,
		Provider:      payload.Collection.Provider,
		RawPayload: map[string]interface{}{
			"transaction": map[string]interface{}{
				"uuid":      payload.Transaction.UUID,
				"reference": payload.Transaction.Reference,
			},
			"collection": map[string]interface{}{
				"amount":       payload.Collection.Amount,
				"phone_number": payload.Collection.PhoneNumber,
				"provider":     payload.Collection.Provider,
			},
			"status": payload.Status,
		},
	}

	if err := h.reconciler.Handle(c.Request.Context(), event); err != nil {
		switch {
		case errors.Is(err, marzpay.ErrUnknownTransaction):
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		case errors.Is(err, marzpay.ErrUnknownEventStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unrecognized status"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process webhook"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
