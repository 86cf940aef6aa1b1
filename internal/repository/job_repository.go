package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"statement-ingest/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var jobColumns = []string{
	"job_id", "tenant_id", "file_name", "institution", "currency", "document_type", "status",
	"progress", "started_at", "finished_at", "processed_count", "saved_count", "duplicate_count",
	"error_count", "elapsed_ms", "throughput", "message", "error_detail", "created_at", "updated_at",
}

type JobRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewJobRepository(db *pgxpool.Pool, logger *zap.Logger) *JobRepository {
	return &JobRepository{
		db:     db,
		logger: logger,
	}
}

func insertJobQuery(job *models.Job) squirrel.InsertBuilder {
	return squirrel.Insert("jobs").
		Columns(jobColumns...).
		Values(
			job.JobID, job.TenantID, job.FileName, job.Institution, job.Currency, job.DocumentType, job.Status,
			job.Progress, job.StartedAt, job.FinishedAt, job.ProcessedCount, job.SavedCount, job.DuplicateCount,
			job.ErrorCount, job.ElapsedMs, job.Throughput, job.Message, job.ErrorDetail, job.CreatedAt, job.UpdatedAt,
		).
		PlaceholderFormat(squirrel.Dollar)
}

func selectJobQuery(tenantID string, jobID uuid.UUID) squirrel.SelectBuilder {
	return squirrel.Select(jobColumns...).
		From("jobs").
		Where(squirrel.Eq{"job_id": jobID, "tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar)
}

func listJobsQuery(tenantID string, status models.JobStatus) squirrel.SelectBuilder {
	query := squirrel.Select(jobColumns...).
		From("jobs").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)
	if status != "" {
		query = query.Where(squirrel.Eq{"status": status})
	}
	return query
}

func staleJobsQuery(tenantID string, cutoff time.Time) squirrel.SelectBuilder {
	return squirrel.Select(jobColumns...).
		From("jobs").
		Where(squirrel.Eq{"tenant_id": tenantID, "status": models.JobStatusProcessing}).
		Where(squirrel.Lt{"started_at": cutoff}).
		OrderBy("started_at ASC").
		PlaceholderFormat(squirrel.Dollar)
}

func updateJobQuery(job *models.Job) squirrel.UpdateBuilder {
	return squirrel.Update("jobs").
		Set("status", job.Status).
		Set("progress", job.Progress).
		Set("started_at", job.StartedAt).
		Set("finished_at", job.FinishedAt).
		Set("processed_count", job.ProcessedCount).
		Set("saved_count", job.SavedCount).
		Set("duplicate_count", job.DuplicateCount).
		Set("error_count", job.ErrorCount).
		Set("elapsed_ms", job.ElapsedMs).
		Set("throughput", job.Throughput).
		Set("message", job.Message).
		Set("error_detail", job.ErrorDetail).
		Set("updated_at", job.UpdatedAt).
		Where(squirrel.Eq{"job_id": job.JobID, "tenant_id": job.TenantID}).
		PlaceholderFormat(squirrel.Dollar)
}

func scanJob(row pgx.Row) (*models.Job, error) {
	var job models.Job
	err := row.Scan(
		&job.JobID, &job.TenantID, &job.FileName, &job.Institution, &job.Currency, &job.DocumentType, &job.Status,
		&job.Progress, &job.StartedAt, &job.FinishedAt, &job.ProcessedCount, &job.SavedCount, &job.DuplicateCount,
		&job.ErrorCount, &job.ElapsedMs, &job.Throughput, &job.Message, &job.ErrorDetail, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	sql, args, err := insertJobQuery(job).ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *JobRepository) Get(ctx context.Context, tenantID string, jobID uuid.UUID) (*models.Job, error) {
	sql, args, err := selectJobQuery(tenantID, jobID).ToSql()
	if err != nil {
		return nil, err
	}

	return scanJob(r.db.QueryRow(ctx, sql, args...))
}

func (r *JobRepository) List(ctx context.Context, tenantID string, status models.JobStatus) ([]*models.Job, error) {
	sql, args, err := listJobsQuery(tenantID, status).ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryJobs(ctx, sql, args)
}

// ListStale returns the tenant's PROCESSING jobs started before cutoff.
func (r *JobRepository) ListStale(ctx context.Context, tenantID string, cutoff time.Time) ([]*models.Job, error) {
	sql, args, err := staleJobsQuery(tenantID, cutoff).ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryJobs(ctx, sql, args)
}

func (r *JobRepository) queryJobs(ctx context.Context, sql string, args []interface{}) ([]*models.Job, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]*models.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// Update locks the job row, applies fn to the persisted state and writes the
// result back in the same transaction. An error from fn aborts the write.
func (r *JobRepository) Update(ctx context.Context, tenantID string, jobID uuid.UUID, fn func(*models.Job) error) (*models.Job, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.logger.Warn("Failed to rollback job update", zap.String("job_id", jobID.String()), zap.Error(rbErr))
		}
	}()

	sql, args, err := selectJobQuery(tenantID, jobID).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, err
	}

	job, err := scanJob(tx.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, err
	}

	if err := fn(job); err != nil {
		return nil, err
	}

	sql, args, err = updateJobQuery(job).ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return nil, fmt.Errorf("failed to write job: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit job update: %w", err)
	}
	return job, nil
}

// TenantOf resolves the owning tenant of a job without tenant scoping.
// Only the batch consumer should call it.
func (r *JobRepository) TenantOf(ctx context.Context, jobID uuid.UUID) (string, error) {
	sql, args, err := squirrel.Select("tenant_id").
		From("jobs").
		Where(squirrel.Eq{"job_id": jobID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return "", err
	}

	var tenantID string
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&tenantID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrJobNotFound
		}
		return "", err
	}
	return tenantID, nil
}
