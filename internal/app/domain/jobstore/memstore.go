package jobstore

import (
	"context"
	"sync"
	"time"

	"github.com/shacharon/placesearch/internal/app/models"
)

// MemStore is the in-process, sync.RWMutex-guarded Store used in dev and
// tests — the teacher's own UnifiedCache convention applied to job state.
type MemStore struct {
	mu            sync.RWMutex
	jobs          map[string]*models.Job
	byIdempotency map[string]string // idempotencyKey -> requestID
	pools         map[string]*models.CandidatePool
}

// NewMemStore builds an empty in-process store.
func NewMemStore() *MemStore {
	return &MemStore{
		jobs:          make(map[string]*models.Job),
		byIdempotency: make(map[string]string),
		pools:         make(map[string]*models.CandidatePool),
	}
}

func (s *MemStore) Create(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.RequestID] = &cp
	if job.IdempotencyKey != "" {
		s.byIdempotency[job.IdempotencyKey] = job.RequestID
	}
	return nil
}

func (s *MemStore) SetStatus(_ context.Context, requestID string, status models.JobStatus, progress *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[requestID]
	if !ok {
		return ErrNotFound
	}
	if job.Status.IsTerminal() {
		return nil
	}
	job.Status = status
	if progress != nil {
		job.Progress = *progress
	}
	job.UpdatedAt = time.Now()
	return nil
}

func (s *MemStore) SetResult(_ context.Context, requestID string, result []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[requestID]
	if !ok {
		return ErrNotFound
	}
	job.Result = result
	job.UpdatedAt = time.Now()
	return nil
}

func (s *MemStore) SetError(_ context.Context, requestID string, kind models.ErrorKind, message, route string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[requestID]
	if !ok {
		return ErrNotFound
	}
	if job.Status.IsTerminal() {
		return nil
	}
	job.Status = models.JobDoneFailed
	job.Error = &models.JobError{Kind: kind, Message: message, Route: route}
	job.UpdatedAt = time.Now()
	return nil
}

func (s *MemStore) UpdateHeartbeat(_ context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[requestID]
	if !ok {
		return ErrNotFound
	}
	if job.Status.IsTerminal() {
		return nil
	}
	job.UpdatedAt = time.Now()
	return nil
}

// MarkStaleIfRunning mirrors PGStore's re-read-under-lock behaviour using
// the store's own mutex: only a caller that observes the job still RUNNING
// performs the transition.
func (s *MemStore) MarkStaleIfRunning(_ context.Context, requestID, message string, resultJSON []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[requestID]
	if !ok {
		return false, ErrNotFound
	}
	if job.Status != models.JobRunning {
		return false, nil
	}
	job.Status = models.JobDoneFailed
	job.Error = &models.JobError{Kind: models.ErrStaleRunning, Message: message, Route: "stale_check"}
	job.Result = resultJSON
	job.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemStore) FindByIdempotencyKey(_ context.Context, key string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	requestID, ok := s.byIdempotency[key]
	if !ok {
		return nil, ErrNotFound
	}
	job, ok := s.jobs[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *MemStore) SetCandidatePool(_ context.Context, requestID string, pool *models.CandidatePool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[requestID]; !ok {
		return ErrNotFound
	}
	s.pools[requestID] = pool
	return nil
}

func (s *MemStore) GetCandidatePool(_ context.Context, requestID, sessionID string) (*models.CandidatePool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[requestID]
	if !ok || job.SessionID != sessionID {
		return nil, ErrNotFound
	}
	pool, ok := s.pools[requestID]
	if !ok {
		return nil, nil
	}
	return pool, nil
}

func (s *MemStore) Get(_ context.Context, requestID, sessionID string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[requestID]
	if !ok || job.SessionID != sessionID {
		return nil, ErrNotFound
	}
	cp := *job
	return &cp, nil
}
