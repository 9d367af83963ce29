package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mamipapa/store-backend/internal/models"
	"github.com/mamipapa/store-backend/internal/repository"
)

var (
	ErrEmptyOrder         = errors.New("order has no items")
	ErrInvalidQuantity    = errors.New("item quantity must be greater than zero")
	ErrProductUnavailable = errors.New("product is out of stock")
)

// Service creates and queries orders. Totals are always computed from
// current catalog prices, never from client supplied amounts.
type Service struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewService creates an order service
func NewService(orders repository.OrderRepository, products repository.ProductRepository, logger *slog.Logger) *Service {
	return &Service{
		orders:   orders,
		products: products,
		logger:   logger,
	}
}

// ItemInput is one requested order line.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateInput is the input for placing an order.
type CreateInput struct {
	UserID          *uuid.UUID
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	DeliveryAddress string
	Items           []ItemInput
}

// Create validates the requested items against the catalog, prices each
// line from the stored product, and persists the order as pending.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	var total int64
	items := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}

		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("product %s: %w", item.ProductID, repository.ErrNotFound)
			}
			return nil, err
		}
		if !product.InStock {
			return nil, fmt.Errorf("product %s: %w", product.Slug, ErrProductUnavailable)
		}

		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    item.Quantity,
		})
		total += product.Price * int64(item.Quantity)
	}

	order := &models.Order{
		UserID:          input.UserID,
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   input.CustomerPhone,
		DeliveryAddress: input.DeliveryAddress,
		Total:           total,
		Currency:        "UGX",
		Status:          models.OrderStatusPending,
		PaymentMethod:   "mobile_money",
		Items:           items,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("order created",
		"order_id", order.ID.String(),
		"total", order.Total,
		"items", len(order.Items))

	return order, nil
}

// Get returns one order by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// ListByUser returns the orders a customer has placed.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// Cancel cancels an order that has not completed.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if order.Status == models.OrderStatusCompleted {
		return fmt.Errorf("cannot cancel a completed order")
	}
	return s.orders.UpdateStatus(ctx, id, models.OrderStatusCancelled)
}
