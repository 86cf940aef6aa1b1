package models

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func pendingJob() *Job {
	return NewJob("tenant-a", "statement.pdf", "Bank", "BRL", DocumentTypeStatement, t0)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to JobStatus
		want     bool
	}{
		{JobStatusPending, JobStatusProcessing, true},
		{JobStatusPending, JobStatusCancelled, true},
		{JobStatusPending, JobStatusFailed, true},
		{JobStatusPending, JobStatusCompleted, false},
		{JobStatusProcessing, JobStatusProcessing, true},
		{JobStatusProcessing, JobStatusCompleted, true},
		{JobStatusProcessing, JobStatusFailed, true},
		{JobStatusProcessing, JobStatusCancelled, false},
		{JobStatusCompleted, JobStatusProcessing, false},
		{JobStatusFailed, JobStatusCompleted, false},
		{JobStatusCancelled, JobStatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestJobLifecycle(t *testing.T) {
	job := pendingJob()

	if err := job.Start(t0); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	for i, p := range []int{33, 20, 66} {
		if err := job.SetProgress(p, t0.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("SetProgress(%d) error = %v", p, err)
		}
	}
	if job.Progress != 66 {
		t.Errorf("Progress = %d, want 66 (never decreases)", job.Progress)
	}

	stats := JobStats{Processed: 4, Saved: 2, Duplicates: 1, Errors: 1}
	if err := job.Complete(stats, t0.Add(2*time.Second)); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if job.Status != JobStatusCompleted {
		t.Errorf("Status = %s, want COMPLETED", job.Status)
	}
	if job.Progress != 100 {
		t.Errorf("Progress = %d, want 100", job.Progress)
	}
	if job.FinishedAt == nil || job.ElapsedMs == nil || *job.ElapsedMs != 2000 {
		t.Fatalf("FinishedAt/ElapsedMs not set correctly: %v %v", job.FinishedAt, job.ElapsedMs)
	}
	if job.Throughput == nil || *job.Throughput != 2 {
		t.Errorf("Throughput = %v, want 2", job.Throughput)
	}
	if job.SavedCount != 2 || job.DuplicateCount != 1 || job.ErrorCount != 1 || job.ProcessedCount != 4 {
		t.Errorf("counters = %+v", job)
	}
}

func TestJobRestartKeepsStartedAt(t *testing.T) {
	job := pendingJob()
	_ = job.Start(t0)
	_ = job.SetProgress(50, t0)

	later := t0.Add(time.Minute)
	if err := job.Start(later); err != nil {
		t.Fatalf("re-entry Start() error = %v", err)
	}
	if !job.StartedAt.Equal(t0) {
		t.Errorf("StartedAt = %v, want first start %v", job.StartedAt, t0)
	}
	if !job.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %v, want %v", job.UpdatedAt, later)
	}
	if job.Progress != 50 {
		t.Errorf("Progress = %d, want 50 after re-entry", job.Progress)
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	completed := pendingJob()
	_ = completed.Start(t0)
	_ = completed.Complete(JobStats{}, t0)

	failed := pendingJob()
	_ = failed.Fail("boom", t0)

	cancelled := pendingJob()
	_ = cancelled.Cancel(t0)

	for _, job := range []*Job{completed, failed, cancelled} {
		t.Run(string(job.Status), func(t *testing.T) {
			if job.FinishedAt == nil {
				t.Error("FinishedAt must be set for terminal jobs")
			}
			checks := map[string]error{
				"start":    job.Start(t0),
				"progress": job.SetProgress(10, t0),
				"complete": job.Complete(JobStats{}, t0),
				"fail":     job.Fail("again", t0),
				"cancel":   job.Cancel(t0),
			}
			for name, err := range checks {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("%s on terminal job: error = %v, want ErrInvalidTransition", name, err)
				}
			}
		})
	}
}

func TestCancelOnlyFromPending(t *testing.T) {
	job := pendingJob()
	if err := job.Cancel(t0); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if job.ElapsedMs != nil {
		t.Errorf("ElapsedMs = %v, want nil for a job that never started", *job.ElapsedMs)
	}

	err := job.Cancel(t0)
	if !errors.Is(err, ErrCannotCancel) || !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Cancel() error = %v, want ErrCannotCancel", err)
	}

	running := pendingJob()
	_ = running.Start(t0)
	if err := running.Cancel(t0); !errors.Is(err, ErrCannotCancel) {
		t.Errorf("Cancel() while processing error = %v, want ErrCannotCancel", err)
	}
}

func TestFailFromPendingHasNoElapsed(t *testing.T) {
	job := pendingJob()
	if err := job.Fail("classifier unavailable", t0); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	if job.ErrorDetail != "classifier unavailable" {
		t.Errorf("ErrorDetail = %q", job.ErrorDetail)
	}
	if job.ElapsedMs != nil {
		t.Error("ElapsedMs must stay nil without StartedAt")
	}
}

func TestProgress(t *testing.T) {
	var got []int
	for i := 0; i < 3; i++ {
		got = append(got, Progress(i, 3))
	}
	want := []int{33, 66, 100}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Progress sequence = %v, want %v", got, want)
		}
	}
	if Progress(0, 0) != 100 {
		t.Error("empty batch progress should be 100")
	}
}

func TestParseJobStatus(t *testing.T) {
	if s, err := ParseJobStatus(" processing "); err != nil || s != JobStatusProcessing {
		t.Errorf("ParseJobStatus() = %v, %v", s, err)
	}
	if _, err := ParseJobStatus("DONE"); !errors.Is(err, ErrUnknownJobStatus) {
		t.Errorf("ParseJobStatus(DONE) error = %v", err)
	}
}
