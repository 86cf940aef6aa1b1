package service

import (
	"context"
	"io"
	"time"

	"statement-ingest/internal/models"

	"github.com/google/uuid"
)

// JobStore persists jobs. Update applies fn to the latest stored state under a
// row lock and writes the result back atomically.
type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, tenantID string, jobID uuid.UUID) (*models.Job, error)
	List(ctx context.Context, tenantID string, status models.JobStatus) ([]*models.Job, error)
	ListStale(ctx context.Context, tenantID string, cutoff time.Time) ([]*models.Job, error)
	Update(ctx context.Context, tenantID string, jobID uuid.UUID, fn func(*models.Job) error) (*models.Job, error)
	TenantOf(ctx context.Context, jobID uuid.UUID) (string, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	ExistsByReference(ctx context.Context, key models.DuplicateKey) (bool, error)
	ExistsExact(ctx context.Context, key models.DuplicateKey) (bool, error)
	List(ctx context.Context, tenantID string) ([]*models.Transaction, error)
	ListByInstitution(ctx context.Context, tenantID, institution string) ([]*models.Transaction, error)
	ListByPeriod(ctx context.Context, tenantID string, start, end time.Time) ([]*models.Transaction, error)
}

type TextExtractor interface {
	ExtractText(ctx context.Context, r io.Reader, contentType string) (string, error)
}

type DocumentArchive interface {
	Store(ctx context.Context, tenantID, jobID, fileName, contentType string, data []byte) (string, error)
}
