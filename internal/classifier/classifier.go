package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"statement-ingest/internal/models"
	"statement-ingest/pkg/config"

	"go.uber.org/zap"
)

var (
	ErrClassification  = errors.New("classification failed")
	ErrUnknownProvider = errors.New("unknown AI provider")
)

// Classifier turns extracted document text into a batch of structured items.
type Classifier interface {
	Classify(ctx context.Context, text, institution, currency string, docType models.DocumentType) (*models.ClassifiedBatch, error)
	Close() error
}

// New builds the classifier selected by cfg.Provider.
func New(ctx context.Context, cfg *config.AIConfig, logger *zap.Logger) (Classifier, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "placeholder":
		logger.Warn("Using placeholder classifier, documents will produce sample transactions")
		return NewPlaceholder(logger), nil
	case "gemini":
		return NewGemini(ctx, cfg, logger)
	case "gigachat":
		return NewGigaChat(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}

func newBatch(institution, currency string, docType models.DocumentType, items []models.ClassifiedItem) *models.ClassifiedBatch {
	if items == nil {
		items = []models.ClassifiedItem{}
	}
	return &models.ClassifiedBatch{
		Institution:  institution,
		Currency:     currency,
		DocumentType: docType,
		ItemCount:    len(items),
		Items:        items,
	}
}
