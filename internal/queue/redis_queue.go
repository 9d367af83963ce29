package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	queuePrefix   = "queue:"
	delayedPrefix = "delayed:"

	// DefaultMaxRetries is how many times a failed job is retried.
	DefaultMaxRetries = 3
)

// RedisQueue is a job queue backed by Redis lists, with a sorted set
// per queue for delayed jobs.
type RedisQueue struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisQueue creates a new Redis queue
func NewRedisQueue(client *redis.Client, logger *slog.Logger) *RedisQueue {
	return &RedisQueue{
		client: client,
		logger: logger,
	}
}

// Enqueue adds a job to the queue
func (q *RedisQueue) Enqueue(ctx context.Context, jobType JobType, payload interface{}) (string, error) {
	job, err := newJob(jobType, payload, time.Now())
	if err != nil {
		return "", err
	}
	if err := q.push(ctx, job); err != nil {
		return "", err
	}
	return job.ID, nil
}

// EnqueueIn adds a job to the queue with a delay
func (q *RedisQueue) EnqueueIn(ctx context.Context, jobType JobType, payload interface{}, delay time.Duration) (string, error) {
	job, err := newJob(jobType, payload, time.Now().Add(delay))
	if err != nil {
		return "", err
	}
	if err := q.pushDelayed(ctx, job); err != nil {
		return "", err
	}
	return job.ID, nil
}

// Dequeue blocks up to timeout waiting for a job. It returns nil with
// no error when the queue is empty.
func (q *RedisQueue) Dequeue(ctx context.Context, jobType JobType, timeout time.Duration) (*Job, error) {
	q.promoteDelayed(ctx, jobType)

	result, err := q.client.BRPop(ctx, timeout, queuePrefix+string(jobType)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop job from queue: %w", err)
	}
	if len(result) < 2 {
		return nil, fmt.Errorf("unexpected result format from BRPOP")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	job.Status = JobStatusProcessing
	job.UpdatedAt = time.Now()
	return &job, nil
}

// Retry puts a failed job back on the delayed queue if it has retries
// left. It returns false when the job is exhausted.
func (q *RedisQueue) Retry(ctx context.Context, job *Job, delay time.Duration) (bool, error) {
	if job.RetryCount >= job.MaxRetries {
		return false, nil
	}
	job.RetryCount++
	job.Status = JobStatusPending
	job.RunAt = time.Now().Add(delay)
	job.UpdatedAt = time.Now()
	if err := q.pushDelayed(ctx, job); err != nil {
		return false, err
	}
	return true, nil
}

func newJob(jobType JobType, payload interface{}, runAt time.Time) (*Job, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job payload: %w", err)
	}
	now := time.Now()
	return &Job{
		ID:         uuid.New().String(),
		Type:       jobType,
		Payload:    payloadBytes,
		Status:     JobStatusPending,
		MaxRetries: DefaultMaxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
		RunAt:      runAt,
	}, nil
}

func (q *RedisQueue) push(ctx context.Context, job *Job) error {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, queuePrefix+string(job.Type), jobBytes).Err(); err != nil {
		return fmt.Errorf("failed to push job to queue: %w", err)
	}
	return nil
}

func (q *RedisQueue) pushDelayed(ctx context.Context, job *Job) error {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	err = q.client.ZAdd(ctx, delayedPrefix+string(job.Type), &redis.Z{
		Score:  float64(job.RunAt.Unix()),
		Member: jobBytes,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to add job to delayed queue: %w", err)
	}
	return nil
}

// promoteDelayed moves delayed jobs whose run time has passed onto the
// main queue.
func (q *RedisQueue) promoteDelayed(ctx context.Context, jobType JobType) {
	key := delayedPrefix + string(jobType)
	jobs, err := q.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", time.Now().Unix()),
	}).Result()
	if err != nil {
		q.logger.Error("failed to read delayed jobs", "queue", string(jobType), "error", err)
		return
	}

	for _, jobStr := range jobs {
		if err := q.client.LPush(ctx, queuePrefix+string(jobType), jobStr).Err(); err != nil {
			q.logger.Error("failed to promote delayed job", "queue", string(jobType), "error", err)
			continue
		}
		q.client.ZRem(ctx, key, jobStr)
	}
}
