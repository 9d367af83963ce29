package jobs

import (
	"log/slog"

	"github.com/mamipapa/store-backend/internal/queue"
	"github.com/mamipapa/store-backend/internal/repository"
)

// RegisterJobHandlers wires all job handlers onto the worker.
func RegisterJobHandlers(worker *queue.Worker, orders repository.OrderRepository, jobs queue.Enqueuer, logger *slog.Logger) {
	worker.RegisterHandler(queue.JobTypeFulfillOrder, NewFulfillOrderHandler(orders, jobs, logger))
	worker.RegisterHandler(queue.JobTypeNotifyCustomer, NewNotifyCustomerHandler(logger))
}
