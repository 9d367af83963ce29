package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeFulfillOrder   JobType = "fulfill_order"
	JobTypeNotifyCustomer JobType = "notify_customer"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job represents a background job
type Job struct {
	ID         string          `json:"id"`
	Type       JobType         `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Status     JobStatus       `json:"status"`
	RetryCount int             `json:"retry_count"`
	MaxRetries int             `json:"max_retries"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	RunAt      time.Time       `json:"run_at"`
}

// FulfillOrderPayload is the payload for fulfill_order jobs.
type FulfillOrderPayload struct {
	OrderID       uuid.UUID `json:"order_id"`
	TransactionID string    `json:"transaction_id"`
	Reference     string    `json:"reference"`
}

// NotifyCustomerPayload is the payload for notify_customer jobs.
type NotifyCustomerPayload struct {
	OrderID uuid.UUID `json:"order_id"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone"`
	Subject string    `json:"subject"`
}

// JobHandler processes one job.
type JobHandler func(ctx context.Context, job Job) error

// Enqueuer is the producer side of the queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobType JobType, payload interface{}) (string, error)
	EnqueueIn(ctx context.Context, jobType JobType, payload interface{}, delay time.Duration) (string, error)
}
