package service

import (
	"context"
	"fmt"
	"time"

	"statement-ingest/internal/models"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	tenantCacheExpiration = time.Hour
	tenantCacheCleanup    = 10 * time.Minute
)

type JobService struct {
	store   JobStore
	tenants *cache.Cache
	now     func() time.Time
	logger  *zap.Logger
}

func NewJobService(store JobStore, logger *zap.Logger) *JobService {
	return &JobService{
		store:   store,
		tenants: cache.New(tenantCacheExpiration, tenantCacheCleanup),
		now:     time.Now,
		logger:  logger,
	}
}

// parseJobID treats malformed ids like unknown ones.
func parseJobID(jobID string) (uuid.UUID, error) {
	id, err := uuid.Parse(jobID)
	if err != nil {
		return uuid.Nil, models.ErrJobNotFound
	}
	return id, nil
}

func (s *JobService) Create(ctx context.Context, tenantID, fileName, institution, currency string, docType models.DocumentType) (*models.Job, error) {
	job := models.NewJob(tenantID, fileName, institution, currency, docType, s.now().UTC())
	if err := s.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	s.tenants.SetDefault(job.JobID.String(), tenantID)

	s.logger.Info("Job created",
		zap.String("job_id", job.JobID.String()),
		zap.String("tenant_id", tenantID),
		zap.String("file_name", fileName),
	)
	return job, nil
}

func (s *JobService) Get(ctx context.Context, tenantID, jobID string) (*models.Job, error) {
	id, err := parseJobID(jobID)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, tenantID, id)
}

// List returns the tenant's jobs newest first. An empty status means all.
func (s *JobService) List(ctx context.Context, tenantID string, status models.JobStatus) ([]*models.Job, error) {
	return s.store.List(ctx, tenantID, status)
}

// ListStale returns PROCESSING jobs that started more than olderThan ago.
func (s *JobService) ListStale(ctx context.Context, tenantID string, olderThan time.Duration) ([]*models.Job, error) {
	return s.store.ListStale(ctx, tenantID, s.now().UTC().Add(-olderThan))
}

func (s *JobService) update(ctx context.Context, tenantID, jobID string, fn func(*models.Job, time.Time) error) (*models.Job, error) {
	id, err := parseJobID(jobID)
	if err != nil {
		return nil, err
	}
	return s.store.Update(ctx, tenantID, id, func(job *models.Job) error {
		return fn(job, s.now().UTC())
	})
}

func (s *JobService) Cancel(ctx context.Context, tenantID, jobID string) (*models.Job, error) {
	job, err := s.update(ctx, tenantID, jobID, (*models.Job).Cancel)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Job cancelled", zap.String("job_id", jobID), zap.String("tenant_id", tenantID))
	return job, nil
}

func (s *JobService) Start(ctx context.Context, tenantID, jobID string) (*models.Job, error) {
	return s.update(ctx, tenantID, jobID, (*models.Job).Start)
}

func (s *JobService) UpdateProgress(ctx context.Context, tenantID, jobID string, progress int) error {
	_, err := s.update(ctx, tenantID, jobID, func(job *models.Job, now time.Time) error {
		return job.SetProgress(progress, now)
	})
	return err
}

func (s *JobService) Complete(ctx context.Context, tenantID, jobID string, stats models.JobStats) (*models.Job, error) {
	return s.update(ctx, tenantID, jobID, func(job *models.Job, now time.Time) error {
		return job.Complete(stats, now)
	})
}

func (s *JobService) Fail(ctx context.Context, tenantID, jobID, detail string) (*models.Job, error) {
	return s.update(ctx, tenantID, jobID, func(job *models.Job, now time.Time) error {
		return job.Fail(detail, now)
	})
}

// TenantOf resolves the owner of a job regardless of the caller. It exists for
// the batch consumer, which receives job ids without a tenant.
func (s *JobService) TenantOf(ctx context.Context, jobID string) (string, error) {
	if tenant, ok := s.tenants.Get(jobID); ok {
		return tenant.(string), nil
	}

	id, err := parseJobID(jobID)
	if err != nil {
		return "", err
	}
	tenant, err := s.store.TenantOf(ctx, id)
	if err != nil {
		return "", err
	}
	s.tenants.SetDefault(jobID, tenant)
	return tenant, nil
}
