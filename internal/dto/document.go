package dto

import "statement-ingest/internal/service"

// SubmitResponse is returned with 202 Accepted once a document is queued.
type SubmitResponse struct {
	JobID        string `json:"jobId"`
	Status       string `json:"status"`
	FileName     string `json:"fileName"`
	Institution  string `json:"institution"`
	Currency     string `json:"currency"`
	DocumentType string `json:"documentType"`
	ItemCount    int    `json:"itemCount"`
	ArchiveKey   string `json:"archiveKey,omitempty"`
	Message      string `json:"message"`
}

func NewSubmitResponse(r *service.SubmitResult) SubmitResponse {
	return SubmitResponse{
		JobID:        r.JobID,
		Status:       string(r.Status),
		FileName:     r.FileName,
		Institution:  r.Institution,
		Currency:     r.Currency,
		DocumentType: string(r.DocumentType),
		ItemCount:    r.ItemCount,
		ArchiveKey:   r.ArchiveKey,
		Message:      "document accepted for processing",
	}
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}
