package repository

import (
	"context"
	"time"

	"statement-ingest/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var transactionColumns = []string{
	"id", "tenant_id", "institution", "date", "short_description", "detail", "external_reference",
	"amount", "currency", "kind", "category", "created_at", "updated_at",
}

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

func insertTransactionQuery(tx *models.Transaction) squirrel.InsertBuilder {
	return squirrel.Insert("transactions").
		Columns(transactionColumns...).
		Values(
			tx.ID, tx.TenantID, tx.Institution, tx.Date, tx.ShortDescription, tx.Detail, tx.ExternalReference,
			tx.Amount.Round(models.AmountScale), tx.Currency, tx.Kind, tx.Category, tx.CreatedAt, tx.UpdatedAt,
		).
		PlaceholderFormat(squirrel.Dollar)
}

func existsQuery(where squirrel.Sqlizer) squirrel.SelectBuilder {
	return squirrel.Select("1").
		Prefix("SELECT EXISTS (").
		From("transactions").
		Where(where).
		Suffix(")").
		PlaceholderFormat(squirrel.Dollar)
}

func referenceMatch(key models.DuplicateKey) squirrel.Eq {
	return squirrel.Eq{
		"tenant_id":          key.TenantID,
		"institution":        key.Institution,
		"date":               key.Date,
		"external_reference": key.ExternalReference,
		"amount":             key.Amount.Round(models.AmountScale),
	}
}

func exactMatch(key models.DuplicateKey) squirrel.Eq {
	return squirrel.Eq{
		"tenant_id":         key.TenantID,
		"institution":       key.Institution,
		"date":              key.Date,
		"short_description": key.ShortDescription,
		"amount":            key.Amount.Round(models.AmountScale),
		"detail":            key.Detail,
	}
}

func listTransactionsQuery(tenantID string) squirrel.SelectBuilder {
	return squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("date DESC", "created_at DESC").
		PlaceholderFormat(squirrel.Dollar)
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	sql, args, err := insertTransactionQuery(tx).ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ExistsByReference matches on tenant, institution, date, external reference and amount.
func (r *TransactionRepository) ExistsByReference(ctx context.Context, key models.DuplicateKey) (bool, error) {
	return r.exists(ctx, referenceMatch(key))
}

// ExistsExact matches on tenant, institution, date, description, amount and detail.
func (r *TransactionRepository) ExistsExact(ctx context.Context, key models.DuplicateKey) (bool, error) {
	return r.exists(ctx, exactMatch(key))
}

func (r *TransactionRepository) exists(ctx context.Context, where squirrel.Sqlizer) (bool, error) {
	sql, args, err := existsQuery(where).ToSql()
	if err != nil {
		return false, err
	}

	var found bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

func (r *TransactionRepository) List(ctx context.Context, tenantID string) ([]*models.Transaction, error) {
	sql, args, err := listTransactionsQuery(tenantID).ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryTransactions(ctx, sql, args)
}

func (r *TransactionRepository) ListByInstitution(ctx context.Context, tenantID, institution string) ([]*models.Transaction, error) {
	sql, args, err := listTransactionsQuery(tenantID).
		Where(squirrel.Eq{"institution": institution}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryTransactions(ctx, sql, args)
}

// ListByPeriod returns transactions dated within [start, end].
func (r *TransactionRepository) ListByPeriod(ctx context.Context, tenantID string, start, end time.Time) ([]*models.Transaction, error) {
	sql, args, err := listTransactionsQuery(tenantID).
		Where(squirrel.GtOrEq{"date": start}).
		Where(squirrel.LtOrEq{"date": end}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryTransactions(ctx, sql, args)
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, sql string, args []interface{}) ([]*models.Transaction, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]*models.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var tx models.Transaction
	err := row.Scan(
		&tx.ID, &tx.TenantID, &tx.Institution, &tx.Date, &tx.ShortDescription, &tx.Detail, &tx.ExternalReference,
		&tx.Amount, &tx.Currency, &tx.Kind, &tx.Category, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
