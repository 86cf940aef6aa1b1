package service

import (
	"context"
	"strings"

	"statement-ingest/internal/models"

	"go.uber.org/zap"
)

var placeholderReferences = map[string]bool{
	"null": true,
	"none": true,
	"n/a":  true,
	"-":    true,
}

// IsPlaceholderReference reports whether ref carries no real reference number.
func IsPlaceholderReference(ref string) bool {
	ref = strings.ToLower(strings.TrimSpace(ref))
	return ref == "" || placeholderReferences[ref]
}

// DuplicateDetector decides whether a transaction is already stored for its tenant.
type DuplicateDetector struct {
	store  TransactionStore
	logger *zap.Logger
}

func NewDuplicateDetector(store TransactionStore, logger *zap.Logger) *DuplicateDetector {
	return &DuplicateDetector{
		store:  store,
		logger: logger,
	}
}

// IsDuplicate matches on the external reference when there is one and on the
// full description otherwise. A failed lookup counts as "not a duplicate".
func (d *DuplicateDetector) IsDuplicate(ctx context.Context, tx *models.Transaction) bool {
	key := models.DuplicateKey{
		TenantID:          tx.TenantID,
		Institution:       tx.Institution,
		Date:              tx.Date,
		ExternalReference: strings.TrimSpace(tx.ExternalReference),
		ShortDescription:  tx.ShortDescription,
		Detail:            tx.Detail,
		Amount:            tx.Amount.Round(models.AmountScale),
	}

	var (
		found bool
		err   error
		mode  string
	)
	if IsPlaceholderReference(key.ExternalReference) {
		mode = "exact"
		found, err = d.store.ExistsExact(ctx, key)
	} else {
		mode = "reference"
		found, err = d.store.ExistsByReference(ctx, key)
	}

	if err != nil {
		d.logger.Warn("Duplicate lookup failed, treating as new transaction",
			zap.String("tenant_id", tx.TenantID),
			zap.String("mode", mode),
			zap.Error(err),
		)
		return false
	}
	return found
}
