package queue

import (
	"context"
	"errors"

	"statement-ingest/internal/models"
)

var (
	ErrPublishFailed = errors.New("failed to publish batch")
	ErrQueueClosed   = errors.New("queue is closed")
)

// Handler processes one batch. A nil return acknowledges the message; an
// error asks the transport to deliver it again.
type Handler func(ctx context.Context, batch *models.ClassifiedBatch) error

type Publisher interface {
	Publish(ctx context.Context, batch *models.ClassifiedBatch) error
	Close() error
}

type Consumer interface {
	Start(ctx context.Context, handler Handler) error
	Stop(ctx context.Context) error
}
