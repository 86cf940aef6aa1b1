package dto

import (
	"time"

	"statement-ingest/internal/models"
)

// TransactionResponse carries the amount as a decimal string so no precision is lost.
type TransactionResponse struct {
	ID                string `json:"id"`
	Institution       string `json:"institution"`
	Date              string `json:"date"`
	ShortDescription  string `json:"shortDescription"`
	Detail            string `json:"detail"`
	ExternalReference string `json:"externalReference,omitempty"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	Kind              string `json:"kind"`
	Category          string `json:"category"`
	CreatedAt         string `json:"createdAt"`
}

func NewTransactionResponses(txs []*models.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, TransactionResponse{
			ID:                tx.ID.String(),
			Institution:       tx.Institution,
			Date:              tx.Date.Format(models.DateLayout),
			ShortDescription:  tx.ShortDescription,
			Detail:            tx.Detail,
			ExternalReference: tx.ExternalReference,
			Amount:            tx.Amount.String(),
			Currency:          tx.Currency,
			Kind:              tx.Kind,
			Category:          tx.Category,
			CreatedAt:         tx.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
