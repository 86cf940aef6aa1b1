package redisq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"statement-ingest/internal/models"
	"statement-ingest/internal/queue"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultPollTimeout = 5 * time.Second
	errorBackoff       = time.Second
)

type Options struct {
	Name           string
	MaxConcurrency int
	PollTimeout    time.Duration
}

// Queue is a reliable Redis list queue. Workers move each message into a
// processing list while the handler runs and remove it on acknowledgement.
type Queue struct {
	client      *redis.Client
	name        string
	processing  string
	concurrency int
	pollTimeout time.Duration
	logger      *zap.Logger

	mu       sync.Mutex
	wg       sync.WaitGroup
	stopPoll context.CancelFunc
	started  bool
	closed   bool
}

func New(client *redis.Client, opts Options, logger *zap.Logger) *Queue {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 1
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = defaultPollTimeout
	}
	return &Queue{
		client:      client,
		name:        opts.Name,
		processing:  ProcessingKey(opts.Name),
		concurrency: opts.MaxConcurrency,
		pollTimeout: opts.PollTimeout,
		logger:      logger,
	}
}

func ProcessingKey(name string) string {
	return name + ":processing"
}

func Encode(batch *models.ClassifiedBatch) ([]byte, error) {
	return json.Marshal(batch)
}

func Decode(payload string) (*models.ClassifiedBatch, error) {
	var batch models.ClassifiedBatch
	if err := json.Unmarshal([]byte(payload), &batch); err != nil {
		return nil, fmt.Errorf("invalid batch payload: %w", err)
	}
	return &batch, nil
}

func (q *Queue) Publish(ctx context.Context, batch *models.ClassifiedBatch) error {
	payload, err := Encode(batch)
	if err != nil {
		return fmt.Errorf("%w: %w", queue.ErrPublishFailed, err)
	}

	if err := q.client.RPush(ctx, q.name, payload).Err(); err != nil {
		return fmt.Errorf("%w: %w", queue.ErrPublishFailed, err)
	}

	q.logger.Debug("Batch published",
		zap.String("queue", q.name),
		zap.String("job_id", batch.JobID),
		zap.Int("items", len(batch.Items)),
	)
	return nil
}

// Start returns leftovers of a previous run to the queue and launches the workers.
func (q *Queue) Start(ctx context.Context, handler queue.Handler) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return queue.ErrQueueClosed
	}
	if q.started {
		return errors.New("consumer already started")
	}

	recovered, err := q.recover(ctx)
	if err != nil {
		return fmt.Errorf("failed to recover in-flight batches: %w", err)
	}
	if recovered > 0 {
		q.logger.Warn("Requeued batches left in processing list", zap.Int("count", recovered))
	}

	pollCtx, cancel := context.WithCancel(ctx)
	q.stopPoll = cancel
	q.started = true

	for i := 0; i < q.concurrency; i++ {
		q.wg.Add(1)
		go q.worker(ctx, pollCtx, handler)
	}

	q.logger.Info("Redis consumer started",
		zap.String("queue", q.name),
		zap.Int("workers", q.concurrency),
		zap.Duration("poll_timeout", q.pollTimeout),
	)
	return nil
}

func (q *Queue) recover(ctx context.Context) (int, error) {
	count := 0
	for {
		err := q.client.LMove(ctx, q.processing, q.name, "RIGHT", "LEFT").Err()
		if errors.Is(err, redis.Nil) {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		count++
	}
}

// worker polls with pollCtx so Stop interrupts the wait, while handlers keep
// ctx and can finish the batch in flight.
func (q *Queue) worker(ctx, pollCtx context.Context, handler queue.Handler) {
	defer q.wg.Done()

	for {
		if pollCtx.Err() != nil {
			return
		}

		payload, err := q.client.BLMove(pollCtx, q.name, q.processing, "LEFT", "RIGHT", q.pollTimeout).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if pollCtx.Err() != nil {
				return
			}
			q.logger.Error("Failed to poll queue", zap.String("queue", q.name), zap.Error(err))
			time.Sleep(errorBackoff)
			continue
		}

		q.process(ctx, payload, handler)
	}
}

func (q *Queue) process(ctx context.Context, payload string, handler queue.Handler) {
	batch, err := Decode(payload)
	if err != nil {
		q.logger.Error("Dropping malformed batch", zap.Error(err))
		q.ack(ctx, payload)
		return
	}

	if err := handler(ctx, batch); err != nil {
		q.logger.Warn("Batch handler failed, requeueing",
			zap.String("job_id", batch.JobID),
			zap.Error(err),
		)
		q.requeue(ctx, payload)
		return
	}

	q.ack(ctx, payload)
}

func (q *Queue) ack(ctx context.Context, payload string) {
	if err := q.client.LRem(context.WithoutCancel(ctx), q.processing, 1, payload).Err(); err != nil {
		q.logger.Error("Failed to acknowledge batch", zap.Error(err))
	}
}

func (q *Queue) requeue(ctx context.Context, payload string) {
	ctx = context.WithoutCancel(ctx)
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.processing, 1, payload)
		pipe.RPush(ctx, q.name, payload)
		return nil
	})
	if err != nil {
		q.logger.Error("Failed to requeue batch", zap.Error(err))
	}
}

// Stop ends polling and waits for in-flight batches until ctx expires.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	if q.stopPoll != nil {
		q.stopPoll()
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("Redis consumer stopped", zap.String("queue", q.name))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the underlying client.
func (q *Queue) Close() error {
	return q.client.Close()
}

var _ queue.Publisher = (*Queue)(nil)
var _ queue.Consumer = (*Queue)(nil)
