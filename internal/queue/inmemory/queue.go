package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"statement-ingest/internal/models"
	"statement-ingest/internal/queue"

	"go.uber.org/zap"
)

const redeliveryDelay = time.Second

// Queue is a channel-backed publisher and consumer for single-process deployments and tests.
type Queue struct {
	batches   chan *models.ClassifiedBatch
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	workers   int
	logger    *zap.Logger
}

// NewQueue creates a queue holding up to bufferSize undelivered batches,
// drained by workers goroutines once started.
func NewQueue(bufferSize, workers int, logger *zap.Logger) *Queue {
	if workers <= 0 {
		workers = 1
	}
	return &Queue{
		batches:   make(chan *models.ClassifiedBatch, bufferSize),
		closeChan: make(chan struct{}),
		workers:   workers,
		logger:    logger,
	}
}

func (q *Queue) Publish(ctx context.Context, batch *models.ClassifiedBatch) error {
	q.mu.RLock()
	closed := q.closed
	q.mu.RUnlock()
	if closed {
		return fmt.Errorf("%w: %w", queue.ErrPublishFailed, queue.ErrQueueClosed)
	}

	// the channel itself is never closed, closeChan unblocks senders on Stop
	select {
	case q.batches <- batch:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", queue.ErrPublishFailed, ctx.Err())
	case <-q.closeChan:
		return fmt.Errorf("%w: %w", queue.ErrPublishFailed, queue.ErrQueueClosed)
	}
}

func (q *Queue) Start(ctx context.Context, handler queue.Handler) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return queue.ErrQueueClosed
	}

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	q.logger.Info("In-memory consumer started", zap.Int("workers", q.workers))
	return nil
}

func (q *Queue) worker(ctx context.Context, handler queue.Handler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case batch := <-q.batches:
			if batch == nil {
				return
			}
			if err := handler(ctx, batch); err != nil {
				q.redeliver(batch, err)
			}
		}
	}
}

func (q *Queue) redeliver(batch *models.ClassifiedBatch, cause error) {
	q.logger.Warn("Batch handler failed, scheduling redelivery",
		zap.String("job_id", batch.JobID),
		zap.Error(cause),
	)
	time.AfterFunc(redeliveryDelay, func() {
		if err := q.Publish(context.Background(), batch); err != nil {
			q.logger.Error("Failed to redeliver batch", zap.String("job_id", batch.JobID), zap.Error(err))
		}
	})
}

// Stop lets in-flight batches finish and waits for workers until ctx expires.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if pending := len(q.batches); pending > 0 {
			q.logger.Warn("In-memory queue stopped with undelivered batches", zap.Int("pending", pending))
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var _ queue.Publisher = (*Queue)(nil)
var _ queue.Consumer = (*Queue)(nil)
