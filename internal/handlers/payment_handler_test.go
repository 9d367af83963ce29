package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mamipapa/store-backend/internal/models"
	"github.com/mamipapa/store-backend/internal/repository"
	"github.com/mamipapa/store-backend/internal/services/payment/marzpay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCollections implements CollectionInitiator for handler tests.
type stubCollections struct {
	tx        *models.PaymentTransaction
	err       error
	lastInput marzpay.CollectInput
}

func (s *stubCollections) Collect(ctx context.Context, input marzpay.CollectInput) (*models.PaymentTransaction, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.tx, nil
}

func (s *stubCollections) GetByReference(ctx context.Context, reference string) (*models.PaymentTransaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tx, nil
}

// stubOrderRepo serves a single order by id.
type stubOrderRepo struct {
	order *models.Order
}

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) error { return nil }

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, repository.ErrNotFound
	}
	return s.order, nil
}

func (s *stubOrderRepo) List(ctx context.Context, limit, offset int) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) MarkPaid(ctx context.Context, id uuid.UUID, reference string) (bool, error) {
	return false, nil
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	return nil
}

func postCollect(t *testing.T, collections CollectionInitiator, orders repository.OrderRepository, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	handler := NewPaymentHandler(collections, nil, nil, orders)
	router.POST("/api/payments/collect", handler.Collect)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(http.MethodPost, "/api/payments/collect", &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func pendingTransaction() *models.PaymentTransaction {
	return &models.PaymentTransaction{
		TransactionID: "tx-1",
		Reference:     "ref-1",
		PhoneNumber:   "256771234567",
		Provider:      "mtn",
		Amount:        15000,
		Currency:      "UGX",
		Status:        models.PaymentStatusPending,
	}
}

func TestCollectSuccess(t *testing.T) {
	collections := &stubCollections{tx: pendingTransaction()}
	w := postCollect(t, collections, &stubOrderRepo{}, map[string]interface{}{
		"amount":       15000,
		"phone_number": "0771234567",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "ref-1")
	assert.Equal(t, int64(15000), collections.lastInput.Amount)
}

func TestCollectUsesOrderTotalNotClientAmount(t *testing.T) {
	order := &models.Order{
		Total:  42000,
		Status: models.OrderStatusPending,
	}
	order.ID = uuid.New()

	collections := &stubCollections{tx: pendingTransaction()}
	w := postCollect(t, collections, &stubOrderRepo{order: order}, map[string]interface{}{
		"order_id":     order.ID.String(),
		"amount":       1,
		"phone_number": "0771234567",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(42000), collections.lastInput.Amount)
	require.NotNil(t, collections.lastInput.OrderID)
	assert.Equal(t, order.ID, *collections.lastInput.OrderID)
}

func TestCollectUnknownOrder(t *testing.T) {
	collections := &stubCollections{tx: pendingTransaction()}
	w := postCollect(t, collections, &stubOrderRepo{}, map[string]interface{}{
		"order_id":     uuid.NewString(),
		"phone_number": "0771234567",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCollectCompletedOrderConflicts(t *testing.T) {
	order := &models.Order{
		Total:  42000,
		Status: models.OrderStatusCompleted,
	}
	order.ID = uuid.New()

	collections := &stubCollections{tx: pendingTransaction()}
	w := postCollect(t, collections, &stubOrderRepo{order: order}, map[string]interface{}{
		"order_id":     order.ID.String(),
		"phone_number": "0771234567",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCollectErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid amount", marzpay.ErrInvalidAmount, http.StatusBadRequest},
		{"invalid phone", marzpay.ErrInvalidPhoneFormat, http.StatusBadRequest},
		{"gateway timeout", marzpay.ErrGatewayTimeout, http.StatusGatewayTimeout},
		{"malformed response", marzpay.ErrMalformedResponse, http.StatusBadGateway},
		{"gateway rejection", &marzpay.GatewayError{StatusCode: 422, Message: "insufficient balance"}, http.StatusBadGateway},
		{"internal", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collections := &stubCollections{err: tt.err}
			w := postCollect(t, collections, &stubOrderRepo{}, map[string]interface{}{
				"amount":       5000,
				"phone_number": "0771234567",
			})
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestGetByReference(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tx := pendingTransaction()
	tx.CreatedAt = time.Now()
	collections := &stubCollections{tx: tx}

	router := gin.New()
	handler := NewPaymentHandler(collections, nil, nil, &stubOrderRepo{})
	router.GET("/api/payments/:reference", handler.GetByReference)

	req := httptest.NewRequest(http.MethodGet, "/api/payments/ref-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tx-1")
}

func TestGetByReferenceNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	collections := &stubCollections{err: repository.ErrNotFound}

	router := gin.New()
	handler := NewPaymentHandler(collections, nil, nil, &stubOrderRepo{})
	router.GET("/api/payments/:reference", handler.GetByReference)

	req := httptest.NewRequest(http.MethodGet, "/api/payments/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
