package classifier

import (
	"context"
	"time"

	"statement-ingest/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Placeholder returns two fixed sample transactions for any document. It lets
// the pipeline run end to end without an AI provider.
type Placeholder struct {
	now    func() time.Time
	logger *zap.Logger
}

func NewPlaceholder(logger *zap.Logger) *Placeholder {
	return &Placeholder{
		now:    time.Now,
		logger: logger,
	}
}

func (p *Placeholder) Classify(ctx context.Context, text, institution, currency string, docType models.DocumentType) (*models.ClassifiedBatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Info("Classifying document with placeholder",
		zap.String("institution", institution),
		zap.String("currency", currency),
		zap.String("document_type", string(docType)),
		zap.Int("text_length", len(text)),
	)

	today := p.now().UTC()
	day := func(daysAgo int) models.Date {
		d := today.AddDate(0, 0, -daysAgo)
		return models.NewDate(d.Year(), d.Month(), d.Day())
	}

	items := []models.ClassifiedItem{
		{
			Date:              day(1),
			ShortDescription:  "PURCHASE",
			Detail:            "SAMPLE SUPERMARKET",
			ExternalReference: "123456",
			Amount:            decimal.RequireFromString("150.50"),
			Currency:          currency,
			Kind:              "DEBIT",
			Category:          string(models.CategoryFood),
		},
		{
			Date:              day(2),
			ShortDescription:  "PAYMENT",
			Detail:            "ELECTRICITY BILL",
			ExternalReference: "789012",
			Amount:            decimal.RequireFromString("89.90"),
			Currency:          currency,
			Kind:              "DEBIT",
			Category:          string(models.CategoryHousing),
		},
	}

	return newBatch(institution, currency, docType, items), nil
}

func (p *Placeholder) Close() error {
	return nil
}
