package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"statement-ingest/internal/models"

	"github.com/google/uuid"
)

type memJobStore struct {
	mu              sync.Mutex
	jobs            map[uuid.UUID]*models.Job
	progress        map[uuid.UUID][]int
	panicOnComplete bool
	createErr       error
	// tenantErr and updateErr simulate an unreachable database
	tenantErr error
	updateErr error
}

func newMemJobStore() *memJobStore {
	return &memJobStore{
		jobs:     make(map[uuid.UUID]*models.Job),
		progress: make(map[uuid.UUID][]int),
	}
}

func (s *memJobStore) Create(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	copied := *job
	s.jobs[job.JobID] = &copied
	return nil
}

func (s *memJobStore) Get(ctx context.Context, tenantID string, jobID uuid.UUID) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.TenantID != tenantID {
		return nil, models.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *memJobStore) List(ctx context.Context, tenantID string, status models.JobStatus) ([]*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Job
	for _, job := range s.jobs {
		if job.TenantID == tenantID && (status == "" || job.Status == status) {
			copied := *job
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memJobStore) ListStale(ctx context.Context, tenantID string, cutoff time.Time) ([]*models.Job, error) {
	all, _ := s.List(ctx, tenantID, models.JobStatusProcessing)
	var out []*models.Job
	for _, job := range all {
		if job.StartedAt != nil && job.StartedAt.Before(cutoff) {
			out = append(out, job)
		}
	}
	return out, nil
}

func (s *memJobStore) Update(ctx context.Context, tenantID string, jobID uuid.UUID, fn func(*models.Job) error) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	job, ok := s.jobs[jobID]
	if !ok || job.TenantID != tenantID {
		return nil, models.ErrJobNotFound
	}
	copied := *job
	if err := fn(&copied); err != nil {
		return nil, err
	}
	if s.panicOnComplete && copied.Status == models.JobStatusCompleted {
		panic("storage exploded")
	}
	if copied.Progress != job.Progress {
		s.progress[jobID] = append(s.progress[jobID], copied.Progress)
	}
	s.jobs[jobID] = &copied
	result := copied
	return &result, nil
}

func (s *memJobStore) TenantOf(ctx context.Context, jobID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tenantErr != nil {
		return "", s.tenantErr
	}
	job, ok := s.jobs[jobID]
	if !ok {
		return "", models.ErrJobNotFound
	}
	return job.TenantID, nil
}

func (s *memJobStore) job(id string) *models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.jobs[uuid.MustParse(id)]
	if job == nil {
		return nil
	}
	copied := *job
	return &copied
}

type memTransactionStore struct {
	mu           sync.Mutex
	transactions []*models.Transaction
	lookupErr    error
	// createErr returns an error for the transaction, or nil to store it
	createErr func(tx *models.Transaction) error
}

func (s *memTransactionStore) Create(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		if err := s.createErr(tx); err != nil {
			return err
		}
	}
	copied := *tx
	s.transactions = append(s.transactions, &copied)
	return nil
}

func (s *memTransactionStore) exists(match func(*models.Transaction) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return false, s.lookupErr
	}
	for _, tx := range s.transactions {
		if match(tx) {
			return true, nil
		}
	}
	return false, nil
}

func sameScope(tx *models.Transaction, key models.DuplicateKey) bool {
	return tx.TenantID == key.TenantID &&
		tx.Institution == key.Institution &&
		tx.Date.Equal(key.Date) &&
		tx.Amount.Round(models.AmountScale).Equal(key.Amount.Round(models.AmountScale))
}

func (s *memTransactionStore) ExistsByReference(ctx context.Context, key models.DuplicateKey) (bool, error) {
	return s.exists(func(tx *models.Transaction) bool {
		return sameScope(tx, key) && tx.ExternalReference == key.ExternalReference
	})
}

func (s *memTransactionStore) ExistsExact(ctx context.Context, key models.DuplicateKey) (bool, error) {
	return s.exists(func(tx *models.Transaction) bool {
		return sameScope(tx, key) && tx.ShortDescription == key.ShortDescription && tx.Detail == key.Detail
	})
}

func (s *memTransactionStore) filter(match func(*models.Transaction) bool) []*models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Transaction, 0)
	for _, tx := range s.transactions {
		if match(tx) {
			out = append(out, tx)
		}
	}
	return out
}

func (s *memTransactionStore) List(ctx context.Context, tenantID string) ([]*models.Transaction, error) {
	return s.filter(func(tx *models.Transaction) bool { return tx.TenantID == tenantID }), nil
}

func (s *memTransactionStore) ListByInstitution(ctx context.Context, tenantID, institution string) ([]*models.Transaction, error) {
	return s.filter(func(tx *models.Transaction) bool {
		return tx.TenantID == tenantID && tx.Institution == institution
	}), nil
}

func (s *memTransactionStore) ListByPeriod(ctx context.Context, tenantID string, start, end time.Time) ([]*models.Transaction, error) {
	return s.filter(func(tx *models.Transaction) bool {
		return tx.TenantID == tenantID && !tx.Date.Before(start) && !tx.Date.After(end)
	}), nil
}

type stubExtractor struct {
	text string
	err  error
}

func (e *stubExtractor) ExtractText(ctx context.Context, r io.Reader, contentType string) (string, error) {
	return e.text, e.err
}

type stubClassifier struct {
	items []models.ClassifiedItem
	err   error
	calls int
}

func (c *stubClassifier) Classify(ctx context.Context, text, institution, currency string, docType models.DocumentType) (*models.ClassifiedBatch, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	items := make([]models.ClassifiedItem, len(c.items))
	copy(items, c.items)
	return &models.ClassifiedBatch{
		Institution:  institution,
		Currency:     currency,
		DocumentType: docType,
		ItemCount:    len(items),
		Items:        items,
	}, nil
}

func (c *stubClassifier) Close() error { return nil }

type capturePublisher struct {
	mu      sync.Mutex
	batches []*models.ClassifiedBatch
	err     error
}

func (p *capturePublisher) Publish(ctx context.Context, batch *models.ClassifiedBatch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.batches = append(p.batches, batch)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

type stubArchive struct {
	keys []string
	err  error
}

func (a *stubArchive) Store(ctx context.Context, tenantID, jobID, fileName, contentType string, data []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	key := tenantID + "/" + jobID + "/" + fileName
	a.keys = append(a.keys, key)
	return key, nil
}

var errBoom = errors.New("boom")
