package redisq

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"statement-ingest/internal/models"
	"statement-ingest/internal/queue"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestEncodeDecode(t *testing.T) {
	batch := &models.ClassifiedBatch{
		JobID:        "job-1",
		Institution:  "Bank",
		Currency:     "BRL",
		DocumentType: models.DocumentTypeCardInvoice,
		ItemCount:    1,
		Items: []models.ClassifiedItem{{
			Date:             models.NewDate(2024, time.January, 15),
			ShortDescription: "MARKET",
			Amount:           decimal.RequireFromString("150.50"),
			Kind:             "DEBIT",
		}},
	}

	payload, err := Encode(batch)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(string(payload))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if got.JobID != "job-1" || got.DocumentType != models.DocumentTypeCardInvoice || len(got.Items) != 1 {
		t.Fatalf("Decode() = %+v", got)
	}
	if !got.Items[0].Amount.Equal(batch.Items[0].Amount) {
		t.Errorf("amount = %s, want %s", got.Items[0].Amount, batch.Items[0].Amount)
	}
	if got.Items[0].Date.String() != "2024-01-15" {
		t.Errorf("date = %s", got.Items[0].Date)
	}

	if _, err := Decode("{not json"); err == nil {
		t.Error("Decode() of malformed payload should fail")
	}
}

func TestPublishWrapsTransportError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	q := New(client, Options{Name: "test-queue"}, zap.NewNop())
	defer q.Close()

	err := q.Publish(context.Background(), &models.ClassifiedBatch{JobID: "x"})
	if !errors.Is(err, queue.ErrPublishFailed) {
		t.Errorf("Publish() error = %v, want ErrPublishFailed", err)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	q := New(redis.NewClient(&redis.Options{}), Options{Name: "q"}, zap.NewNop())
	defer q.Close()

	if q.concurrency != 1 || q.pollTimeout != defaultPollTimeout {
		t.Errorf("defaults = %d, %v", q.concurrency, q.pollTimeout)
	}
	if q.processing != "q:processing" {
		t.Errorf("processing key = %q", q.processing)
	}
}

func newTestQueue(t *testing.T, name string) (*Queue, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	q := New(client, Options{Name: name, MaxConcurrency: 2, PollTimeout: time.Second}, zap.NewNop())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = q.Stop(ctx)
		_ = q.Close()
	})
	return q, client
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func listLen(client *redis.Client, key string) func() int64 {
	return func() int64 {
		n, _ := client.LLen(context.Background(), key).Result()
		return n
	}
}

func TestAcknowledgedBatchLeavesProcessingList(t *testing.T) {
	q, client := newTestQueue(t, "ack-queue")
	ctx := context.Background()
	received := make(chan *models.ClassifiedBatch, 1)

	err := q.Start(ctx, func(ctx context.Context, batch *models.ClassifiedBatch) error {
		received <- batch
		return nil
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := q.Publish(ctx, &models.ClassifiedBatch{JobID: "job-1", Institution: "Bank"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case batch := <-received:
		if batch.JobID != "job-1" {
			t.Errorf("JobID = %q, want job-1", batch.JobID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("batch was not delivered")
	}

	pending, processing := listLen(client, "ack-queue"), listLen(client, ProcessingKey("ack-queue"))
	waitFor(t, "acknowledgement", func() bool { return pending() == 0 && processing() == 0 })
}

func TestFailedBatchIsRequeued(t *testing.T) {
	q, client := newTestQueue(t, "retry-queue")
	ctx := context.Background()

	var mu sync.Mutex
	calls := 0
	done := make(chan struct{})
	err := q.Start(ctx, func(ctx context.Context, batch *models.ClassifiedBatch) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return errors.New("database unavailable")
		}
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := q.Publish(ctx, &models.ClassifiedBatch{JobID: "job-2"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("failed batch was not delivered again")
	}

	pending, processing := listLen(client, "retry-queue"), listLen(client, ProcessingKey("retry-queue"))
	waitFor(t, "acknowledgement after retry", func() bool { return pending() == 0 && processing() == 0 })

	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
}

func TestStartRestoresInFlightBatches(t *testing.T) {
	q, client := newTestQueue(t, "recover-queue")
	ctx := context.Background()

	payload, err := Encode(&models.ClassifiedBatch{JobID: "left-behind"})
	if err != nil {
		t.Fatal(err)
	}
	if err := client.RPush(ctx, ProcessingKey("recover-queue"), payload).Err(); err != nil {
		t.Fatal(err)
	}

	received := make(chan string, 1)
	err = q.Start(ctx, func(ctx context.Context, batch *models.ClassifiedBatch) error {
		received <- batch.JobID
		return nil
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	select {
	case id := <-received:
		if id != "left-behind" {
			t.Errorf("JobID = %q, want left-behind", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("batch left in the processing list was not redelivered")
	}

	processing := listLen(client, ProcessingKey("recover-queue"))
	waitFor(t, "processing list to drain", func() bool { return processing() == 0 })
}

func TestMalformedPayloadIsDropped(t *testing.T) {
	q, client := newTestQueue(t, "bad-queue")
	ctx := context.Background()

	if err := client.RPush(ctx, "bad-queue", "{not json").Err(); err != nil {
		t.Fatal(err)
	}
	if err := q.Publish(ctx, &models.ClassifiedBatch{JobID: "good"}); err != nil {
		t.Fatal(err)
	}

	received := make(chan string, 2)
	err := q.Start(ctx, func(ctx context.Context, batch *models.ClassifiedBatch) error {
		received <- batch.JobID
		return nil
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	select {
	case id := <-received:
		if id != "good" {
			t.Errorf("JobID = %q, want good", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("valid batch was not delivered")
	}

	pending, processing := listLen(client, "bad-queue"), listLen(client, ProcessingKey("bad-queue"))
	waitFor(t, "queues to drain", func() bool { return pending() == 0 && processing() == 0 })
	if len(received) != 0 {
		t.Error("malformed payload reached the handler")
	}
}

func TestStopEndsPolling(t *testing.T) {
	q, _ := newTestQueue(t, "idle-queue")

	err := q.Start(context.Background(), func(ctx context.Context, batch *models.ClassifiedBatch) error {
		return nil
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()
	if err := q.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v, want workers to leave the poll", err)
	}

	if err := q.Start(context.Background(), nil); !errors.Is(err, queue.ErrQueueClosed) {
		t.Errorf("Start() after Stop error = %v, want ErrQueueClosed", err)
	}
}
