package jobs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mamipapa/store-backend/internal/models"
	"github.com/mamipapa/store-backend/internal/queue"
	"github.com/mamipapa/store-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeOrderRepo is an in-memory OrderRepository.
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	cp := *order
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (f *fakeOrderRepo) List(ctx context.Context, limit, offset int) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) MarkPaid(ctx context.Context, id uuid.UUID, reference string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok || order.Status != models.OrderStatusPending {
		return false, nil
	}
	order.Status = models.OrderStatusCompleted
	order.PaymentReference = reference
	return true, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order, ok := f.orders[id]; ok {
		order.Status = status
	}
	return nil
}

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) Enqueue(ctx context.Context, jobType queue.JobType, payload interface{}) (string, error) {
	args := m.Called(ctx, jobType, payload)
	return args.String(0), args.Error(1)
}

func (m *mockEnqueuer) EnqueueIn(ctx context.Context, jobType queue.JobType, payload interface{}, delay time.Duration) (string, error) {
	args := m.Called(ctx, jobType, payload, delay)
	return args.String(0), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fulfillJob(t *testing.T, orderID uuid.UUID, reference string) queue.Job {
	t.Helper()
	payload, err := json.Marshal(queue.FulfillOrderPayload{
		OrderID:       orderID,
		TransactionID: "tx-1",
		Reference:     reference,
	})
	require.NoError(t, err)
	return queue.Job{
		ID:      uuid.NewString(),
		Type:    queue.JobTypeFulfillOrder,
		Payload: payload,
	}
}

func TestFulfillOrderMarksOrderPaid(t *testing.T) {
	orders := newFakeOrderRepo()
	order := &models.Order{
		CustomerName:  "Jane",
		CustomerPhone: "256771234567",
		CustomerEmail: "jane@example.com",
		Total:         15000,
		Status:        models.OrderStatusPending,
	}
	require.NoError(t, orders.Create(context.Background(), order))

	jobs := new(mockEnqueuer)
	jobs.On("Enqueue", mock.Anything, queue.JobTypeNotifyCustomer, mock.MatchedBy(func(p interface{}) bool {
		payload, ok := p.(queue.NotifyCustomerPayload)
		return ok && payload.OrderID == order.ID && payload.Subject == "order_confirmed"
	})).Return("job-2", nil).Once()

	handler := NewFulfillOrderHandler(orders, jobs, testLogger())
	err := handler(context.Background(), fulfillJob(t, order.ID, "ref-1"))
	require.NoError(t, err)

	updated, err := orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, updated.Status)
	assert.Equal(t, "ref-1", updated.PaymentReference)
	jobs.AssertExpectations(t)
}

func TestFulfillOrderIsIdempotent(t *testing.T) {
	orders := newFakeOrderRepo()
	order := &models.Order{
		CustomerName:  "Jane",
		CustomerPhone: "256771234567",
		Total:         15000,
		Status:        models.OrderStatusPending,
	}
	require.NoError(t, orders.Create(context.Background(), order))

	jobs := new(mockEnqueuer)
	jobs.On("Enqueue", mock.Anything, queue.JobTypeNotifyCustomer, mock.Anything).Return("job-2", nil).Once()

	handler := NewFulfillOrderHandler(orders, jobs, testLogger())
	job := fulfillJob(t, order.ID, "ref-1")

	require.NoError(t, handler(context.Background(), job))
	require.NoError(t, handler(context.Background(), job))

	jobs.AssertNumberOfCalls(t, "Enqueue", 1)
}

func TestFulfillOrderUnknownOrderSwallowed(t *testing.T) {
	orders := newFakeOrderRepo()
	jobs := new(mockEnqueuer)

	handler := NewFulfillOrderHandler(orders, jobs, testLogger())
	err := handler(context.Background(), fulfillJob(t, uuid.New(), "ref-1"))

	// Unknown orders are dropped rather than retried forever.
	assert.NoError(t, err)
	jobs.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
}

func TestFulfillOrderBadPayload(t *testing.T) {
	orders := newFakeOrderRepo()
	jobs := new(mockEnqueuer)

	handler := NewFulfillOrderHandler(orders, jobs, testLogger())
	err := handler(context.Background(), queue.Job{
		ID:      uuid.NewString(),
		Type:    queue.JobTypeFulfillOrder,
		Payload: []byte("{not json"),
	})
	assert.Error(t, err)
}

func TestNotifyCustomerHandler(t *testing.T) {
	handler := NewNotifyCustomerHandler(testLogger())

	payload, err := json.Marshal(queue.NotifyCustomerPayload{
		OrderID: uuid.New(),
		Email:   "jane@example.com",
		Subject: "order_confirmed",
	})
	require.NoError(t, err)

	err = handler(context.Background(), queue.Job{
		ID:      uuid.NewString(),
		Type:    queue.JobTypeNotifyCustomer,
		Payload: payload,
	})
	assert.NoError(t, err)
}
