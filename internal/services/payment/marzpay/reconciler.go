package marzpay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mamipapa/store-backend/internal/models"
	"github.com/mamipapa/store-backend/internal/queue"
	"github.com/mamipapa/store-backend/internal/repository"
)

// WebhookEvent is a gateway status notification after payload parsing.
type WebhookEvent struct {
	TransactionID string
	Reference     string
	Status        string
	Amount        int64
	PhoneNumber   string
	Provider      string
	RawPayload    map[string]interface{}
}

// terminalStatuses maps webhook status strings to the terminal payment
// states they produce. Anything outside this table is rejected.
var terminalStatuses = map[string]models.PaymentStatus{
	"completed":  models.PaymentStatusCompleted,
	"successful": models.PaymentStatusCompleted,
	"success":    models.PaymentStatusCompleted,
	"failed":     models.PaymentStatusFailed,
	"cancelled":  models.PaymentStatusCancelled,
}

// Reconciler applies webhook events to stored payment transactions.
type Reconciler struct {
	payments repository.PaymentRepository
	jobs     queue.Enqueuer
	logger   *slog.Logger
}

// NewReconciler creates a webhook reconciler
func NewReconciler(payments repository.PaymentRepository, jobs queue.Enqueuer, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		payments: payments,
		jobs:     jobs,
		logger:   logger,
	}
}

// Handle reconciles one webhook delivery. A transaction moves from
// pending to exactly one terminal state no matter how many times the
// gateway retries the delivery; replays after the transition are
// acknowledged without effect. Fulfillment side effects run only on the
// delivery that wins the transition, and only for completed payments.
func (r *Reconciler) Handle(ctx context.Context, event WebhookEvent) error {
	terminal, ok := terminalStatuses[event.Status]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEventStatus, event.Status)
	}

	tx, err := r.lookup(ctx, event)
	if err != nil {
		return err
	}

	r.auditEvent(ctx, event, terminal)

	transitioned, err := r.payments.MarkTerminal(ctx, tx.ID, terminal)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	if !transitioned {
		r.logger.Info("duplicate webhook ignored",
			"transaction_id", tx.TransactionID,
			"reference", tx.Reference,
			"status", string(terminal))
		return nil
	}

	r.logger.Info("payment transaction reconciled",
		"transaction_id", tx.TransactionID,
		"reference", tx.Reference,
		"status", string(terminal))

	if terminal == models.PaymentStatusCompleted && tx.OrderID != nil {
		r.enqueueFulfillment(ctx, tx)
	}
	return nil
}

func (r *Reconciler) lookup(ctx context.Context, event WebhookEvent) (*models.PaymentTransaction, error) {
	if event.TransactionID != "" {
		tx, err := r.payments.FindByTransactionID(ctx, event.TransactionID)
		if err == nil {
			return tx, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	if event.Reference != "" {
		tx, err := r.payments.FindByReference(ctx, event.Reference)
		if err == nil {
			return tx, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	r.logger.Warn("webhook for unknown transaction",
		"transaction_id", event.TransactionID,
		"reference", event.Reference,
		"status", event.Status)
	return nil, ErrUnknownTransaction
}

// auditEvent stores the raw delivery for later inspection. Audit
// failures are logged but never block reconciliation.
func (r *Reconciler) auditEvent(ctx context.Context, event WebhookEvent, terminal models.PaymentStatus) {
	record := &models.PaymentWebhookEvent{
		TransactionID: event.TransactionID,
		Reference:     event.Reference,
		Status:        string(terminal),
		RawData:       models.JSON(event.RawPayload),
	}
	if err := r.payments.SaveWebhookEvent(ctx, record); err != nil {
		r.logger.Error("failed to save webhook audit event",
			"transaction_id", event.TransactionID,
			"error", err)
	}
}

// enqueueFulfillment schedules order fulfillment. Queue failures are
// logged rather than returned; the webhook is still acknowledged
// because the status update is already durable.
func (r *Reconciler) enqueueFulfillment(ctx context.Context, tx *models.PaymentTransaction) {
	payload := queue.FulfillOrderPayload{
		OrderID:       *tx.OrderID,
		TransactionID: tx.TransactionID,
		Reference:     tx.Reference,
	}
	if _, err := r.jobs.Enqueue(ctx, queue.JobTypeFulfillOrder, payload); err != nil {
		r.logger.Error("failed to enqueue fulfillment job",
			"order_id", tx.OrderID.String(),
			"reference", tx.Reference,
			"error", err)
	}
}
