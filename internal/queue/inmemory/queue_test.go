package inmemory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"statement-ingest/internal/models"
	"statement-ingest/internal/queue"

	"go.uber.org/zap"
)

func TestQueueDeliversEveryBatch(t *testing.T) {
	q := NewQueue(10, 3, zap.NewNop())

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	wg.Add(5)

	err := q.Start(context.Background(), func(ctx context.Context, batch *models.ClassifiedBatch) error {
		mu.Lock()
		seen[batch.JobID] = true
		mu.Unlock()
		wg.Done()
		return nil
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		if err := q.Publish(context.Background(), &models.ClassifiedBatch{JobID: id}); err != nil {
			t.Fatalf("Publish(%s) error = %v", id, err)
		}
	}

	waitOrFail(t, &wg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := q.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if len(seen) != 5 {
		t.Errorf("handled %d distinct batches, want 5", len(seen))
	}
}

func TestQueueRedeliversOnHandlerError(t *testing.T) {
	q := NewQueue(10, 1, zap.NewNop())

	var calls int32
	var wg sync.WaitGroup
	wg.Add(1)

	_ = q.Start(context.Background(), func(ctx context.Context, batch *models.ClassifiedBatch) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return errors.New("try again")
		}
		wg.Done()
		return nil
	})
	_ = q.Publish(context.Background(), &models.ClassifiedBatch{JobID: "retry"})

	waitOrFail(t, &wg)
	_ = q.Close()

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("handler calls = %d, want 2", got)
	}
}

func TestPublishAfterStopFails(t *testing.T) {
	q := NewQueue(1, 1, zap.NewNop())
	_ = q.Close()

	err := q.Publish(context.Background(), &models.ClassifiedBatch{})
	if !errors.Is(err, queue.ErrPublishFailed) || !errors.Is(err, queue.ErrQueueClosed) {
		t.Errorf("Publish() error = %v, want ErrPublishFailed wrapping ErrQueueClosed", err)
	}
	if err := q.Start(context.Background(), nil); !errors.Is(err, queue.ErrQueueClosed) {
		t.Errorf("Start() error = %v, want ErrQueueClosed", err)
	}
}

func TestPublishHonoursContextWhenFull(t *testing.T) {
	q := NewQueue(1, 1, zap.NewNop())
	defer q.Close()

	_ = q.Publish(context.Background(), &models.ClassifiedBatch{JobID: "fills-buffer"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Publish(ctx, &models.ClassifiedBatch{JobID: "blocked"})
	if !errors.Is(err, queue.ErrPublishFailed) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Publish() error = %v, want ErrPublishFailed wrapping deadline", err)
	}
}

func waitOrFail(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for handler")
	}
}
