package order

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/mamipapa/store-backend/internal/models"
	"github.com/mamipapa/store-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*models.Product)}
}

func (f *fakeProductRepo) Create(ctx context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	cp := *product
	f.products[product.ID] = &cp
	return nil
}

func (f *fakeProductRepo) Update(ctx context.Context, product *models.Product) error { return nil }

func (f *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *product
	return &cp, nil
}

func (f *fakeProductRepo) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeProductRepo) List(ctx context.Context, category string, inStockOnly bool) ([]models.Product, error) {
	return nil, nil
}

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
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, order := range f.orders {
		if order.UserID != nil && *order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) MarkPaid(ctx context.Context, id uuid.UUID, reference string) (bool, error) {
	return false, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order, ok := f.orders[id]; ok {
		order.Status = status
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedProduct(t *testing.T, repo *fakeProductRepo, price int64, inStock bool) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:    "Baby romper",
		Slug:    "baby-romper-" + uuid.NewString()[:8],
		Price:   price,
		InStock: inStock,
	}
	require.NoError(t, repo.Create(context.Background(), product))
	return product
}

func TestCreateComputesTotalFromCatalogPrices(t *testing.T) {
	products := newFakeProductRepo()
	orders := newFakeOrderRepo()
	svc := NewService(orders, products, testLogger())

	romper := seedProduct(t, products, 25000, true)
	toy := seedProduct(t, products, 15000, true)

	order, err := svc.Create(context.Background(), CreateInput{
		CustomerName:  "Jane",
		CustomerPhone: "0771234567",
		Items: []ItemInput{
			{ProductID: romper.ID, Quantity: 2},
			{ProductID: toy.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(65000), order.Total)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "UGX", order.Currency)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Baby romper", order.Items[0].ProductName)
	assert.Equal(t, int64(25000), order.Items[0].UnitPrice)
}

func TestCreateRejectsEmptyOrder(t *testing.T) {
	svc := NewService(newFakeOrderRepo(), newFakeProductRepo(), testLogger())

	_, err := svc.Create(context.Background(), CreateInput{CustomerName: "Jane", CustomerPhone: "0771234567"})
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestCreateRejectsInvalidQuantity(t *testing.T) {
	products := newFakeProductRepo()
	svc := NewService(newFakeOrderRepo(), products, testLogger())
	product := seedProduct(t, products, 5000, true)

	for _, qty := range []int{0, -1} {
		_, err := svc.Create(context.Background(), CreateInput{
			CustomerName:  "Jane",
			CustomerPhone: "0771234567",
			Items:         []ItemInput{{ProductID: product.ID, Quantity: qty}},
		})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestCreateRejectsUnknownProduct(t *testing.T) {
	svc := NewService(newFakeOrderRepo(), newFakeProductRepo(), testLogger())

	_, err := svc.Create(context.Background(), CreateInput{
		CustomerName:  "Jane",
		CustomerPhone: "0771234567",
		Items:         []ItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateRejectsOutOfStockProduct(t *testing.T) {
	products := newFakeProductRepo()
	svc := NewService(newFakeOrderRepo(), products, testLogger())
	product := seedProduct(t, products, 5000, false)

	_, err := svc.Create(context.Background(), CreateInput{
		CustomerName:  "Jane",
		CustomerPhone: "0771234567",
		Items:         []ItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCancelPendingOrder(t *testing.T) {
	products := newFakeProductRepo()
	orders := newFakeOrderRepo()
	svc := NewService(orders, products, testLogger())
	product := seedProduct(t, products, 5000, true)

	order, err := svc.Create(context.Background(), CreateInput{
		CustomerName:  "Jane",
		CustomerPhone: "0771234567",
		Items:         []ItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), order.ID))

	updated, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)
}

func TestCancelCompletedOrderFails(t *testing.T) {
	orders := newFakeOrderRepo()
	svc := NewService(orders, newFakeProductRepo(), testLogger())

	order := &models.Order{
		CustomerName:  "Jane",
		CustomerPhone: "0771234567",
		Status:        models.OrderStatusCompleted,
	}
	require.NoError(t, orders.Create(context.Background(), order))

	assert.Error(t, svc.Cancel(context.Background(), order.ID))
}
