package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultCurrency = "BRL"

// AmountScale is the number of fractional digits stored and compared.
const AmountScale = 4

type TransactionCategory string

const (
	CategoryFood          TransactionCategory = "FOOD"
	CategoryTransport     TransactionCategory = "TRANSPORT"
	CategoryHealth        TransactionCategory = "HEALTH"
	CategoryEntertainment TransactionCategory = "ENTERTAINMENT"
	CategoryHousing       TransactionCategory = "HOUSING"
	CategoryEducation     TransactionCategory = "EDUCATION"
	CategoryOther         TransactionCategory = "OTHER"
)

// Transaction is an append-only record of a single statement line.
type Transaction struct {
	ID                uuid.UUID       `db:"id"`
	TenantID          string          `db:"tenant_id"`
	Institution       string          `db:"institution"`
	Date              time.Time       `db:"date"`
	ShortDescription  string          `db:"short_description"`
	Detail            string          `db:"detail"`
	ExternalReference string          `db:"external_reference"`
	Amount            decimal.Decimal `db:"amount"`
	Currency          string          `db:"currency"`
	Kind              string          `db:"kind"`
	Category          string          `db:"category"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// DuplicateKey holds the fields the duplicate detector compares.
type DuplicateKey struct {
	TenantID          string
	Institution       string
	Date              time.Time
	ExternalReference string
	ShortDescription  string
	Detail            string
	Amount            decimal.Decimal
}
