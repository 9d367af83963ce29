package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mamipapa/store-backend/internal/queue"
)

// NewNotifyCustomerHandler returns the handler for notify_customer jobs.
// Delivery currently goes to the log; an email or SMS provider can be
// plugged in here without touching the producers.
func NewNotifyCustomerHandler(logger *slog.Logger) queue.JobHandler {
	return func(ctx context.Context, job queue.Job) error {
		var payload queue.NotifyCustomerPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal notify_customer payload: %w", err)
		}

		logger.Info("customer notification",
			"order_id", payload.OrderID.String(),
			"subject", payload.Subject,
			"email", payload.Email,
			"phone", payload.Phone)
		return nil
	}
}
