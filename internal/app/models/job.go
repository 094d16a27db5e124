// Package models holds the normalised data model shared by every pipeline
// stage: Job, SearchContext, LanguageContext, Mapping, Place, RankingProfile,
// and DistanceOrigin, plus the stage error taxonomy.
package models

import "time"

// JobStatus is the one-way lifecycle of a Job.
type JobStatus string

const (
	JobQueued      JobStatus = "QUEUED"
	JobRunning     JobStatus = "RUNNING"
	JobDoneSuccess JobStatus = "DONE_SUCCESS"
	JobDoneFailed  JobStatus = "DONE_FAILED"
)

// IsTerminal reports whether the status can no longer transition.
func (s JobStatus) IsTerminal() bool {
	return s == JobDoneSuccess || s == JobDoneFailed
}

// JobError records a stage-fatal failure on a terminal job.
type JobError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Route   string    `json:"route,omitempty"`
}

// Job is the persisted unit of work keyed by RequestID.
type Job struct {
	RequestID      string     `json:"requestId" db:"request_id"`
	SessionID      string     `json:"sessionId" db:"session_id"`
	Status         JobStatus  `json:"status" db:"status"`
	Progress       int        `json:"progress" db:"progress"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
	Result         []byte     `json:"-" db:"result"`
	Error          *JobError  `json:"error,omitempty" db:"-"`
	IdempotencyKey string     `json:"-" db:"idempotency_key"`
	CandidatePool  *CandidatePool `json:"-" db:"-"`
}

// CandidatePool is the raw provider result set retained with the exact
// SearchContext it was fetched under, so soft-filter-only changes can be
// served without a repeat provider call.
type CandidatePool struct {
	Places  []Place       `json:"places"`
	Context SearchContext `json:"context"`
}
