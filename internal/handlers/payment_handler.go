package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mamipapa/store-backend/internal/models"
	"github.com/mamipapa/store-backend/internal/repository"
	"github.com/mamipapa/store-backend/internal/services/payment/marzpay"
)

// CollectionInitiator is the slice of the collection service the
// payment handler depends on.
type CollectionInitiator interface {
	Collect(ctx context.Context, input marzpay.CollectInput) (*models.PaymentTransaction, error)
	GetByReference(ctx context.Context, reference string) (*models.PaymentTransaction, error)
}

// ServicesLister lists the mobile money services the gateway supports.
type ServicesLister interface {
	GetAvailableServices(ctx context.Context) ([]marzpay.Service, error)
}

// PaymentHandler handles payment collection requests
type PaymentHandler struct {
	collections CollectionInitiator
	services    ServicesLister
	payments    repository.PaymentRepository
	orders      repository.OrderRepository
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(collections CollectionInitiator, services ServicesLister, payments repository.PaymentRepository, orders repository.OrderRepository) *PaymentHandler {
	return &PaymentHandler{
		collections: collections,
		services:    services,
		payments:    payments,
		orders:      orders,
	}
}

// CollectRequest represents the request body for initiating a collection
type CollectRequest struct {
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Description string `json:"description"`
}

// Collect initiates a mobile money collection. When an order id is
// supplied the amount comes from the stored order total, never from the
// request body.
func (h *PaymentHandler) Collect(c *gin.Context) {
	var req CollectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := marzpay.CollectInput{
		Amount:      req.Amount,
		PhoneNumber: req.PhoneNumber,
		Description: req.Description,
	}

	if req.OrderID != "" {
		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}
		order, err := h.orders.FindByID(c.Request.Context(), orderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
			return
		}
		if order.Status != models.OrderStatusPending {
			c.JSON(http.StatusConflict, gin.H{"error": "order is not awaiting payment"})
			return
		}
		input.OrderID = &order.ID
		input.Amount = order.Total
	}

	tx, err := h.collections.Collect(c.Request.Context(), input)
	if err != nil {
		status, message := collectErrorResponse(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"transaction_id": tx.TransactionID,
		"reference":      tx.Reference,
		"status":         tx.Status,
		"amount":         tx.Amount,
		"currency":       tx.Currency,
		"provider":       tx.Provider,
		"phone_number":   tx.PhoneNumber,
	})
}

// GetByReference returns the stored state of a collection
func (h *PaymentHandler) GetByReference(c *gin.Context) {
	reference := c.Param("reference")

	tx, err := h.collections.GetByReference(c.Request.Context(), reference)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payment"})
		return
	}

	c.JSON(http.StatusOK, tx)
}

// List returns recent payment transactions for admin review
func (h *PaymentHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	txs, err := h.payments.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": txs})
}

// ListServices returns the mobile money services available for collection
func (h *PaymentHandler) ListServices(c *gin.Context) {
	services, err := h.services.GetAvailableServices(c.Request.Context())
	if err != nil {
		status, message := collectErrorResponse(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": services})
}

func collectErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, marzpay.ErrInvalidAmount),
		errors.Is(err, marzpay.ErrInvalidPhoneFormat):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, marzpay.ErrGatewayTimeout):
		return http.StatusGatewayTimeout, "payment gateway timed out"
	case errors.Is(err, marzpay.ErrMalformedResponse):
		return http.StatusBadGateway, "payment gateway returned an unexpected response"
	}

	var gatewayErr *marzpay.GatewayError
	if errors.As(err, &gatewayErr) {
		return http.StatusBadGateway, gatewayErr.Message
	}
	return http.StatusInternalServerError, "failed to initiate payment"
}
