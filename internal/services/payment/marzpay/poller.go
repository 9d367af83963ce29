package marzpay

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/mamipapa/store-backend/internal/models"
	"github.com/mamipapa/store-backend/internal/repository"
)

const pollBatchSize = 50

// StatusPoller periodically queries the gateway for transactions that
// have sat in pending longer than expected. It covers webhook deliveries
// that never arrived; results feed the same reconciler as webhooks so
// the transition rules stay in one place.
type StatusPoller struct {
	payments   repository.PaymentRepository
	client     GatewayClient
	reconciler *Reconciler
	interval   time.Duration
	pendingAge time.Duration
	scheduler  *gocron.Scheduler
	logger     *slog.Logger
}

// NewStatusPoller creates a poller. interval is how often it runs and
// pendingAge is how old a pending transaction must be before it is checked.
func NewStatusPoller(payments repository.PaymentRepository, client GatewayClient, reconciler *Reconciler, interval, pendingAge time.Duration, logger *slog.Logger) *StatusPoller {
	return &StatusPoller{
		payments:   payments,
		client:     client,
		reconciler: reconciler,
		interval:   interval,
		pendingAge: pendingAge,
		scheduler:  gocron.NewScheduler(time.UTC),
		logger:     logger,
	}
}

// Start schedules the poll loop in the background.
func (p *StatusPoller) Start() error {
	if _, err := p.scheduler.Every(p.interval).Do(p.runOnce); err != nil {
		return err
	}
	p.scheduler.StartAsync()
	return nil
}

// Stop halts the scheduler and waits for a running poll to finish.
func (p *StatusPoller) Stop() {
	p.scheduler.Stop()
}

func (p *StatusPoller) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()

	cutoff := time.Now().Add(-p.pendingAge)
	stale, err := p.payments.FindStalePending(ctx, cutoff, pollBatchSize)
	if err != nil {
		p.logger.Error("failed to load stale pending transactions", "error", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	p.logger.Info("polling stale pending transactions", "count", len(stale))
	for _, tx := range stale {
		p.checkTransaction(ctx, tx)
	}
}

func (p *StatusPoller) checkTransaction(ctx context.Context, tx models.PaymentTransaction) {
	result, err := p.client.GetCollection(ctx, tx.TransactionID)
	if err != nil {
		p.logger.Error("status poll failed",
			"transaction_id", tx.TransactionID,
			"error", err)
		return
	}

	var status string
	switch result.Status {
	case CollectionStatusSuccess:
		status = "completed"
	case CollectionStatusFailed:
		status = "failed"
	case CollectionStatusCancelled:
		status = "cancelled"
	default:
		// Still pending at the gateway, check again next run.
		return
	}

	event := WebhookEvent{
		TransactionID: tx.TransactionID,
		Reference:     tx.Reference,
		Status:        status,
		Amount:        result.RawAmount,
		PhoneNumber:   tx.PhoneNumber,
		Provider:      string(result.Provider),
		RawPayload: map[string]interface{}{
			"source":         "status_poller",
			"transaction_id": tx.TransactionID,
			"status":         status,
		},
	}
	if err := p.reconciler.Handle(ctx, event); err != nil {
		p.logger.Error("failed to reconcile polled transaction",
			"transaction_id", tx.TransactionID,
			"error", err)
	}
}
