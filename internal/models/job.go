package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrJobNotFound       = errors.New("job not found for this tenant")
	ErrInvalidTransition = errors.New("invalid job state transition")
	ErrCannotCancel      = fmt.Errorf("%w: cannot cancel in current state", ErrInvalidTransition)
	ErrUnknownJobStatus  = errors.New("unknown job status")
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
	JobStatusCancelled  JobStatus = "CANCELLED"
)

func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

func ParseJobStatus(s string) (JobStatus, error) {
	switch status := JobStatus(strings.ToUpper(strings.TrimSpace(s))); status {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownJobStatus, s)
}

var allowedTransitions = map[JobStatus][]JobStatus{
	JobStatusPending:    {JobStatusProcessing, JobStatusFailed, JobStatusCancelled},
	JobStatusProcessing: {JobStatusProcessing, JobStatusCompleted, JobStatusFailed},
}

// CanTransition reports whether a job in status from may move to status to.
func CanTransition(from, to JobStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// JobStats are the final counters written on completion.
type JobStats struct {
	Processed  int
	Saved      int
	Duplicates int
	Errors     int
}

// Job tracks one ingested document from upload to its terminal state.
type Job struct {
	JobID          uuid.UUID    `db:"job_id"`
	TenantID       string       `db:"tenant_id"`
	FileName       string       `db:"file_name"`
	Institution    string       `db:"institution"`
	Currency       string       `db:"currency"`
	DocumentType   DocumentType `db:"document_type"`
	Status         JobStatus    `db:"status"`
	Progress       int          `db:"progress"`
	StartedAt      *time.Time   `db:"started_at"`
	FinishedAt     *time.Time   `db:"finished_at"`
	ProcessedCount int          `db:"processed_count"`
	SavedCount     int          `db:"saved_count"`
	DuplicateCount int          `db:"duplicate_count"`
	ErrorCount     int          `db:"error_count"`
	ElapsedMs      *int64       `db:"elapsed_ms"`
	Throughput     *float64     `db:"throughput"`
	Message        string       `db:"message"`
	ErrorDetail    string       `db:"error_detail"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

// NewJob returns a PENDING job with a fresh id.
func NewJob(tenantID, fileName, institution, currency string, docType DocumentType, now time.Time) *Job {
	return &Job{
		JobID:        uuid.New(),
		TenantID:     tenantID,
		FileName:     fileName,
		Institution:  institution,
		Currency:     currency,
		DocumentType: docType,
		Status:       JobStatusPending,
		Message:      "waiting for classification",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (j *Job) transition(to JobStatus) error {
	if !CanTransition(j.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, to)
	}
	j.Status = to
	return nil
}

// Start moves the job to PROCESSING. Re-entry from PROCESSING keeps the first
// StartedAt so elapsed time covers every delivery of the batch.
func (j *Job) Start(now time.Time) error {
	if err := j.transition(JobStatusProcessing); err != nil {
		return err
	}
	if j.StartedAt == nil {
		j.StartedAt = &now
	}
	j.Message = "processing transactions"
	j.UpdatedAt = now
	return nil
}

// SetProgress records progress while PROCESSING and never moves it backwards.
func (j *Job) SetProgress(progress int, now time.Time) error {
	if j.Status != JobStatusProcessing {
		return fmt.Errorf("%w: progress update while %s", ErrInvalidTransition, j.Status)
	}
	if progress > 100 {
		progress = 100
	}
	if progress > j.Progress {
		j.Progress = progress
	}
	j.UpdatedAt = now
	return nil
}

// Complete writes the final counters together with the terminal transition.
func (j *Job) Complete(stats JobStats, now time.Time) error {
	if err := j.transition(JobStatusCompleted); err != nil {
		return err
	}
	j.ProcessedCount = stats.Processed
	j.SavedCount = stats.Saved
	j.DuplicateCount = stats.Duplicates
	j.ErrorCount = stats.Errors
	j.Progress = 100
	j.finish(now)
	if j.ElapsedMs != nil && *j.ElapsedMs > 0 {
		throughput := float64(stats.Processed) / (float64(*j.ElapsedMs) / 1000.0)
		j.Throughput = &throughput
	}
	j.Message = fmt.Sprintf("processed %d transactions: %d saved, %d duplicates, %d errors",
		stats.Processed, stats.Saved, stats.Duplicates, stats.Errors)
	return nil
}

func (j *Job) Fail(detail string, now time.Time) error {
	if err := j.transition(JobStatusFailed); err != nil {
		return err
	}
	j.ErrorDetail = detail
	j.Message = "processing failed"
	j.finish(now)
	return nil
}

func (j *Job) Cancel(now time.Time) error {
	if j.Status != JobStatusPending {
		return fmt.Errorf("%w (status %s)", ErrCannotCancel, j.Status)
	}
	if err := j.transition(JobStatusCancelled); err != nil {
		return err
	}
	j.Message = "cancelled by user"
	j.finish(now)
	return nil
}

func (j *Job) finish(now time.Time) {
	j.FinishedAt = &now
	j.UpdatedAt = now
	if j.StartedAt != nil {
		elapsed := now.Sub(*j.StartedAt).Milliseconds()
		j.ElapsedMs = &elapsed
	}
}

// Progress returns floor((index+1)*100/total) for the item at index.
func Progress(index, total int) int {
	if total <= 0 {
		return 100
	}
	return (index + 1) * 100 / total
}
