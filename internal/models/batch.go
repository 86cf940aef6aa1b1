package models

import (
	"github.com/shopspring/decimal"
)

// ClassifiedBatch is the queue message produced by the classifier for one document.
type ClassifiedBatch struct {
	JobID        string           `json:"jobId,omitempty"`
	Institution  string           `json:"institution"`
	Currency     string           `json:"currency"`
	DocumentType DocumentType     `json:"documentType"`
	ItemCount    int              `json:"itemCount"`
	Items        []ClassifiedItem `json:"items"`
}

type ClassifiedItem struct {
	Date              Date            `json:"date"`
	ShortDescription  string          `json:"shortDescription"`
	Detail            string          `json:"detail"`
	ExternalReference string          `json:"externalReference,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency,omitempty"`
	Kind              string          `json:"kind"`
	Category          string          `json:"category"`
}
