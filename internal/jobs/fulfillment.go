package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mamipapa/store-backend/internal/queue"
	"github.com/mamipapa/store-backend/internal/repository"
)

// NewFulfillOrderHandler returns the handler for fulfill_order jobs. It
// completes the order and schedules a customer notification. The order
// update is conditional on pending status, so a replayed job is a no-op.
func NewFulfillOrderHandler(orders repository.OrderRepository, jobs queue.Enqueuer, logger *slog.Logger) queue.JobHandler {
	return func(ctx context.Context, job queue.Job) error {
		var payload queue.FulfillOrderPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal fulfill_order payload: %w", err)
		}

		order, err := orders.FindByID(ctx, payload.OrderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				logger.Warn("fulfillment for unknown order",
					"order_id", payload.OrderID.String(),
					"reference", payload.Reference)
				return nil
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		marked, err := orders.MarkPaid(ctx, order.ID, payload.Reference)
		if err != nil {
			return fmt.Errorf("failed to mark order paid: %w", err)
		}
		if !marked {
			logger.Info("order already fulfilled",
				"order_id", order.ID.String(),
				"reference", payload.Reference)
			return nil
		}

		logger.Info("order fulfilled",
			"order_id", order.ID.String(),
			"reference", payload.Reference,
			"total", order.Total)

		notify := queue.NotifyCustomerPayload{
			OrderID: order.ID,
			Email:   order.CustomerEmail,
			Phone:   order.CustomerPhone,
			Subject: "order_confirmed",
		}
		if _, err := jobs.Enqueue(ctx, queue.JobTypeNotifyCustomer, notify); err != nil {
			logger.Error("failed to enqueue customer notification",
				"order_id", order.ID.String(),
				"error", err)
		}
		return nil
	}
}
