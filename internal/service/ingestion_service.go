package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"statement-ingest/internal/classifier"
	"statement-ingest/internal/extract"
	"statement-ingest/internal/models"
	"statement-ingest/internal/queue"

	"go.uber.org/zap"
)

var (
	ErrExtractionFailed = errors.New("text extraction failed")

	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ValidationError reports a rejected upload field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Upload is one document submitted for ingestion.
type Upload struct {
	FileName     string
	ContentType  string
	Data         []byte
	Institution  string
	Currency     string
	DocumentType string
}

type SubmitResult struct {
	JobID        string
	Status       models.JobStatus
	ItemCount    int
	FileName     string
	Institution  string
	Currency     string
	DocumentType models.DocumentType
	ArchiveKey   string
}

type IngestionService struct {
	jobs            *JobService
	extractor       TextExtractor
	classifier      classifier.Classifier
	publisher       queue.Publisher
	archive         DocumentArchive
	maxFileSize     int64
	defaultCurrency string
	logger          *zap.Logger
}

// NewIngestionService wires the synchronous upload path. archive may be nil.
func NewIngestionService(
	jobs *JobService,
	extractor TextExtractor,
	cls classifier.Classifier,
	publisher queue.Publisher,
	archive DocumentArchive,
	maxFileSize int64,
	defaultCurrency string,
	logger *zap.Logger,
) *IngestionService {
	if defaultCurrency == "" {
		defaultCurrency = models.DefaultCurrency
	}
	return &IngestionService{
		jobs:            jobs,
		extractor:       extractor,
		classifier:      cls,
		publisher:       publisher,
		archive:         archive,
		maxFileSize:     maxFileSize,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

type validatedUpload struct {
	contentType  string
	institution  string
	currency     string
	documentType models.DocumentType
}

func (s *IngestionService) validate(up Upload) (*validatedUpload, error) {
	if len(up.Data) == 0 {
		return nil, &ValidationError{Field: "file", Message: "file is empty"}
	}
	if s.maxFileSize > 0 && int64(len(up.Data)) > s.maxFileSize {
		return nil, &ValidationError{Field: "file", Message: fmt.Sprintf("file exceeds the maximum size of %d bytes", s.maxFileSize)}
	}

	contentType := extract.NormalizeContentType(up.ContentType, up.FileName)
	if !extract.IsSupported(contentType) {
		return nil, fmt.Errorf("%w: %s (supported: PDF, CSV)", extract.ErrUnsupportedFormat, up.ContentType)
	}

	institution := strings.TrimSpace(up.Institution)
	if institution == "" {
		return nil, &ValidationError{Field: "institution", Message: "institution is required"}
	}

	docType, err := models.ParseDocumentType(up.DocumentType)
	if err != nil {
		return nil, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown document type %q", up.DocumentType)}
	}

	currency := strings.ToUpper(strings.TrimSpace(up.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}
	if !currencyPattern.MatchString(currency) {
		return nil, &ValidationError{Field: "currency", Message: "currency must be a 3-letter code"}
	}

	return &validatedUpload{
		contentType:  contentType,
		institution:  institution,
		currency:     currency,
		documentType: docType,
	}, nil
}

// Submit validates and classifies a document, records a PENDING job and
// publishes the classified batch for asynchronous storage.
func (s *IngestionService) Submit(ctx context.Context, tenantID string, up Upload) (*SubmitResult, error) {
	v, err := s.validate(up)
	if err != nil {
		return nil, err
	}

	text, err := s.extractor.ExtractText(ctx, bytes.NewReader(up.Data), v.contentType)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	job, err := s.jobs.Create(ctx, tenantID, up.FileName, v.institution, v.currency, v.documentType)
	if err != nil {
		return nil, err
	}
	jobID := job.JobID.String()
	log := s.logger.With(zap.String("job_id", jobID), zap.String("tenant_id", tenantID))

	result := &SubmitResult{
		JobID:        jobID,
		Status:       job.Status,
		FileName:     up.FileName,
		Institution:  v.institution,
		Currency:     v.currency,
		DocumentType: v.documentType,
	}

	if s.archive != nil {
		key, err := s.archive.Store(ctx, tenantID, jobID, up.FileName, v.contentType, up.Data)
		if err != nil {
			log.Warn("Failed to archive document", zap.Error(err))
		} else {
			result.ArchiveKey = key
		}
	}

	batch, err := s.classifier.Classify(ctx, text, v.institution, v.currency, v.documentType)
	if err != nil {
		if !errors.Is(err, classifier.ErrClassification) {
			err = fmt.Errorf("%w: %w", classifier.ErrClassification, err)
		}
		log.Error("Classification failed", zap.Error(err))
		if _, failErr := s.jobs.Fail(context.WithoutCancel(ctx), tenantID, jobID, err.Error()); failErr != nil {
			log.Error("Failed to mark job as failed", zap.Error(failErr))
		}
		return nil, fmt.Errorf("job %s: %w", jobID, err)
	}

	batch.JobID = jobID
	batch.ItemCount = len(batch.Items)
	result.ItemCount = batch.ItemCount

	if err := s.publisher.Publish(ctx, batch); err != nil {
		if !errors.Is(err, queue.ErrPublishFailed) {
			err = fmt.Errorf("%w: %w", queue.ErrPublishFailed, err)
		}
		log.Error("Failed to publish batch, job stays pending", zap.Error(err))
		return nil, fmt.Errorf("job %s: %w", jobID, err)
	}

	log.Info("Document submitted",
		zap.String("file_name", up.FileName),
		zap.String("document_type", string(v.documentType)),
		zap.Int("items", batch.ItemCount),
	)
	return result, nil
}
