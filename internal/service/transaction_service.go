package service

import (
	"context"
	"strings"
	"time"

	"statement-ingest/internal/models"

	"go.uber.org/zap"
)

type TransactionService struct {
	store  TransactionStore
	logger *zap.Logger
}

func NewTransactionService(store TransactionStore, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		store:  store,
		logger: logger,
	}
}

func (s *TransactionService) List(ctx context.Context, tenantID string) ([]*models.Transaction, error) {
	return s.store.List(ctx, tenantID)
}

func (s *TransactionService) ListByInstitution(ctx context.Context, tenantID, institution string) ([]*models.Transaction, error) {
	institution = strings.TrimSpace(institution)
	if institution == "" {
		return nil, &ValidationError{Field: "institution", Message: "institution is required"}
	}
	return s.store.ListByInstitution(ctx, tenantID, institution)
}

// ListByPeriod returns transactions dated from start to end, both inclusive.
func (s *TransactionService) ListByPeriod(ctx context.Context, tenantID string, start, end time.Time) ([]*models.Transaction, error) {
	if end.Before(start) {
		return nil, &ValidationError{Field: "end", Message: "end must not be before start"}
	}
	return s.store.ListByPeriod(ctx, tenantID, start, end)
}
