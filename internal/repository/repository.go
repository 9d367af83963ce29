package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mamipapa/store-backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// PaymentRepository persists payment transactions and webhook audit events.
type PaymentRepository interface {
	Create(ctx context.Context, tx *models.PaymentTransaction) error
	FindByTransactionID(ctx context.Context, transactionID string) (*models.PaymentTransaction, error)
	FindByReference(ctx context.Context, reference string) (*models.PaymentTransaction, error)
	// MarkTerminal transitions a pending transaction to the given terminal
	// status. It returns true only when this call performed the transition;
	// false means the record was already in a terminal state.
	MarkTerminal(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (bool, error)
	FindStalePending(ctx context.Context, olderThan time.Time, limit int) ([]models.PaymentTransaction, error)
	SaveWebhookEvent(ctx context.Context, event *models.PaymentWebhookEvent) error
	List(ctx context.Context, limit, offset int) ([]models.PaymentTransaction, error)
}

// ProductRepository persists catalog products.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context, category string, inStockOnly bool) ([]models.Product, error)
}

// UserRepository persists store accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

// OrderRepository persists orders and their line items.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, limit, offset int) ([]models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	// MarkPaid completes a pending order and records the payment reference.
	MarkPaid(ctx context.Context, id uuid.UUID, reference string) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
}
