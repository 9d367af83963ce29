package marzpay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mamipapa/store-backend/internal/models"
	"github.com/mamipapa/store-backend/internal/repository"
)

// GatewayClient is the slice of the MarzPay client the collection
// service depends on.
type GatewayClient interface {
	CollectMoney(ctx context.Context, request *CollectionRequest) (*CollectionResult, error)
	GetCollection(ctx context.Context, transactionID string) (*CollectionResult, error)
}

// CollectionService initiates mobile money collections and records them.
type CollectionService struct {
	client   GatewayClient
	builder  *RequestBuilder
	payments repository.PaymentRepository
	logger   *slog.Logger
}

// NewCollectionService creates a collection service
func NewCollectionService(client GatewayClient, builder *RequestBuilder, payments repository.PaymentRepository, logger *slog.Logger) *CollectionService {
	return &CollectionService{
		client:   client,
		builder:  builder,
		payments: payments,
		logger:   logger,
	}
}

// CollectInput is the caller-facing input for starting a collection.
type CollectInput struct {
	OrderID     *uuid.UUID
	Amount      int64
	PhoneNumber string
	Description string
}

// Collect validates the input, submits the collection to the gateway,
// and persists a pending transaction record. Validation failures never
// reach the network. The record is written only after the gateway
// accepts the request, so the webhook path must tolerate deliveries for
// transactions it cannot find yet.
func (s *CollectionService) Collect(ctx context.Context, input CollectInput) (*models.PaymentTransaction, error) {
	request, err := s.builder.Build(input.Amount, input.PhoneNumber, input.Description, "")
	if err != nil {
		return nil, err
	}

	result, err := s.client.CollectMoney(ctx, request)
	if err != nil {
		return nil, err
	}

	tx := &models.PaymentTransaction{
		OrderID:           input.OrderID,
		TransactionID:     result.TransactionID,
		Reference:         request.Reference,
		PhoneNumber:       request.PhoneNumber,
		Provider:          string(result.Provider),
		Amount:            request.Amount,
		Currency:          currencyOrDefault(result.Currency),
		Description:       request.Description,
		Status:            models.PaymentStatusPending,
		ProviderReference: result.ProviderReference,
		CallbackURL:       request.CallbackURL,
	}

	if err := s.payments.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record payment transaction: %w", err)
	}

	s.logger.Info("collection initiated",
		"transaction_id", tx.TransactionID,
		"reference", tx.Reference,
		"amount", tx.Amount,
		"provider", tx.Provider)

	return tx, nil
}

// GetByReference returns the stored transaction for a merchant reference.
func (s *CollectionService) GetByReference(ctx context.Context, reference string) (*models.PaymentTransaction, error) {
	return s.payments.FindByReference(ctx, reference)
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return "UGX"
	}
	return currency
}
