package dto

import (
	"time"

	"statement-ingest/internal/models"
)

type JobResponse struct {
	JobID          string   `json:"jobId"`
	FileName       string   `json:"fileName"`
	Institution    string   `json:"institution"`
	Currency       string   `json:"currency"`
	DocumentType   string   `json:"documentType"`
	Status         string   `json:"status"`
	Progress       int      `json:"progress"`
	StartedAt      *string  `json:"startedAt"`
	FinishedAt     *string  `json:"finishedAt"`
	ProcessedCount int      `json:"processedCount"`
	SavedCount     int      `json:"savedCount"`
	DuplicateCount int      `json:"duplicateCount"`
	ErrorCount     int      `json:"errorCount"`
	ElapsedMs      *int64   `json:"elapsedMs"`
	Throughput     *float64 `json:"throughput"`
	Message        string   `json:"message,omitempty"`
	ErrorDetail    string   `json:"errorDetail,omitempty"`
	CreatedAt      string   `json:"createdAt"`
	UpdatedAt      string   `json:"updatedAt"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func NewJobResponse(job *models.Job) JobResponse {
	return JobResponse{
		JobID:          job.JobID.String(),
		FileName:       job.FileName,
		Institution:    job.Institution,
		Currency:       job.Currency,
		DocumentType:   string(job.DocumentType),
		Status:         string(job.Status),
		Progress:       job.Progress,
		StartedAt:      formatTime(job.StartedAt),
		FinishedAt:     formatTime(job.FinishedAt),
		ProcessedCount: job.ProcessedCount,
		SavedCount:     job.SavedCount,
		DuplicateCount: job.DuplicateCount,
		ErrorCount:     job.ErrorCount,
		ElapsedMs:      job.ElapsedMs,
		Throughput:     job.Throughput,
		Message:        job.Message,
		ErrorDetail:    job.ErrorDetail,
		CreatedAt:      job.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      job.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func NewJobResponses(jobs []*models.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, NewJobResponse(job))
	}
	return out
}
