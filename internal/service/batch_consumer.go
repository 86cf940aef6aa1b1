package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"statement-ingest/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SystemTenant owns transactions from batches that carry no job id.
const SystemTenant = "system"

var errMissingDate = errors.New("transaction has no date")

// BatchResult summarises one consumed batch. Saved+Duplicates+Errors == Total
// unless the batch was skipped.
type BatchResult struct {
	Total      int
	Saved      int
	Duplicates int
	Errors     int
	Skipped    bool
}

// BatchConsumer stores classified batches and drives their job to a terminal state.
type BatchConsumer struct {
	jobs            *JobService
	transactions    TransactionStore
	detector        *DuplicateDetector
	defaultCurrency string
	now             func() time.Time
	logger          *zap.Logger
}

func NewBatchConsumer(jobs *JobService, transactions TransactionStore, detector *DuplicateDetector, defaultCurrency string, logger *zap.Logger) *BatchConsumer {
	if defaultCurrency == "" {
		defaultCurrency = models.DefaultCurrency
	}
	return &BatchConsumer{
		jobs:            jobs,
		transactions:    transactions,
		detector:        detector,
		defaultCurrency: defaultCurrency,
		now:             time.Now,
		logger:          logger,
	}
}

// Handle is the queue handler. A shutdown in progress, or a storage error that
// could not be recorded on the job, is returned so the transport redelivers the
// batch. Everything else is acknowledged.
func (c *BatchConsumer) Handle(ctx context.Context, batch *models.ClassifiedBatch) error {
	_, err := c.Process(ctx, batch)
	return err
}

func (c *BatchConsumer) Process(ctx context.Context, batch *models.ClassifiedBatch) (result BatchResult, err error) {
	jobID := strings.TrimSpace(batch.JobID)
	tenantID := SystemTenant
	log := c.logger.With(zap.String("job_id", jobID), zap.String("institution", batch.Institution))

	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic while consuming batch",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			if failErr := c.failJob(ctx, tenantID, jobID, fmt.Sprintf("unexpected error: %v", r)); failErr != nil {
				err = fmt.Errorf("job %s panicked and could not be marked failed: %w", jobID, failErr)
				return
			}
			err = nil
		}
	}()

	if jobID != "" {
		tenantID, err = c.jobs.TenantOf(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			if errors.Is(err, models.ErrJobNotFound) {
				log.Error("Batch references an unknown job, dropping it", zap.Error(err))
				return result, nil
			}
			log.Error("Cannot resolve job owner, leaving batch for redelivery", zap.Error(err))
			return result, fmt.Errorf("resolve owner of job %s: %w", jobID, err)
		}
		log = log.With(zap.String("tenant_id", tenantID))

		if _, err := c.jobs.Start(ctx, tenantID, jobID); err != nil {
			if errors.Is(err, models.ErrInvalidTransition) {
				log.Info("Job already finished, skipping batch", zap.Error(err))
				result.Skipped = true
				return result, nil
			}
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			log.Error("Failed to start job", zap.Error(err))
			if failErr := c.failJob(ctx, tenantID, jobID, fmt.Sprintf("failed to start processing: %v", err)); failErr != nil {
				return result, fmt.Errorf("start job %s: %w", jobID, err)
			}
			return result, nil
		}
	}

	result.Total = len(batch.Items)
	log.Info("Consuming batch", zap.Int("items", result.Total))
	start := c.now()

	for i := range batch.Items {
		if ctx.Err() != nil {
			log.Warn("Shutdown during batch, leaving it for redelivery", zap.Int("processed", i))
			return result, ctx.Err()
		}

		if jobID != "" {
			if err := c.jobs.UpdateProgress(ctx, tenantID, jobID, models.Progress(i, result.Total)); err != nil {
				log.Warn("Failed to write progress", zap.Int("index", i), zap.Error(err))
			}
		}

		c.processItem(ctx, tenantID, batch, &batch.Items[i], &result, log)
	}

	if jobID != "" {
		stats := models.JobStats{
			Processed:  result.Total,
			Saved:      result.Saved,
			Duplicates: result.Duplicates,
			Errors:     result.Errors,
		}
		if _, err := c.jobs.Complete(ctx, tenantID, jobID, stats); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			log.Error("Failed to complete job", zap.Error(err))
			if !errors.Is(err, models.ErrInvalidTransition) {
				if failErr := c.failJob(ctx, tenantID, jobID, fmt.Sprintf("failed to record completion: %v", err)); failErr != nil {
					return result, fmt.Errorf("complete job %s: %w", jobID, err)
				}
			}
			return result, nil
		}
	}

	log.Info("Batch consumed",
		zap.Int("total", result.Total),
		zap.Int("saved", result.Saved),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("errors", result.Errors),
		zap.Duration("duration", c.now().Sub(start)),
	)
	return result, nil
}

// processItem never lets a single item abort the batch.
func (c *BatchConsumer) processItem(ctx context.Context, tenantID string, batch *models.ClassifiedBatch, item *models.ClassifiedItem, result *BatchResult, log *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic while storing transaction", zap.Any("panic", r))
			result.Errors++
		}
	}()

	tx, err := c.buildTransaction(tenantID, batch, item)
	if err != nil {
		log.Warn("Rejected transaction", zap.String("description", item.ShortDescription), zap.Error(err))
		result.Errors++
		return
	}

	if c.detector.IsDuplicate(ctx, tx) {
		log.Debug("Duplicate transaction ignored",
			zap.String("date", item.Date.String()),
			zap.String("amount", tx.Amount.String()),
		)
		result.Duplicates++
		return
	}

	if err := c.transactions.Create(ctx, tx); err != nil {
		log.Warn("Failed to save transaction", zap.String("description", tx.ShortDescription), zap.Error(err))
		result.Errors++
		return
	}
	result.Saved++
}

func (c *BatchConsumer) buildTransaction(tenantID string, batch *models.ClassifiedBatch, item *models.ClassifiedItem) (*models.Transaction, error) {
	if item.Date.IsZero() {
		return nil, errMissingDate
	}

	currency := strings.ToUpper(strings.TrimSpace(item.Currency))
	if currency == "" {
		currency = strings.ToUpper(strings.TrimSpace(batch.Currency))
	}
	if currency == "" {
		currency = c.defaultCurrency
	}

	reference := sanitizeUTF8(item.ExternalReference)
	if IsPlaceholderReference(reference) {
		reference = ""
	}

	now := c.now().UTC()
	return &models.Transaction{
		ID:                uuid.New(),
		TenantID:          tenantID,
		Institution:       sanitizeUTF8(batch.Institution),
		Date:              item.Date.Time,
		ShortDescription:  sanitizeUTF8(item.ShortDescription),
		Detail:            sanitizeUTF8(item.Detail),
		ExternalReference: reference,
		Amount:            item.Amount.Round(models.AmountScale),
		Currency:          currency,
		Kind:              sanitizeUTF8(item.Kind),
		Category:          sanitizeUTF8(item.Category),
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// failJob records a batch-level failure on the job. A nil return means the
// failure is visible on the job record and the batch can be acknowledged.
func (c *BatchConsumer) failJob(ctx context.Context, tenantID, jobID, detail string) error {
	if jobID == "" {
		return nil
	}
	_, err := c.jobs.Fail(context.WithoutCancel(ctx), tenantID, jobID, detail)
	if err == nil || errors.Is(err, models.ErrInvalidTransition) {
		return nil
	}
	c.logger.Error("Failed to mark job as failed",
		zap.String("job_id", jobID),
		zap.String("tenant_id", tenantID),
		zap.Error(err),
	)
	return err
}
