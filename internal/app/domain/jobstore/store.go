// Package jobstore implements the Job Store contract (spec §4.C) behind
// one Store interface, with two implementations: an in-process memstore for
// dev/tests and a Postgres-backed pgstore for production.
package jobstore

import (
	"context"
	"time"

	"github.com/shacharon/placesearch/internal/app/models"
)

// ErrNotFound is returned by any read when the job does not exist, or when
// it exists but belongs to a different session — ownership mismatches are
// deliberately indistinguishable from a missing job, to avoid leaking
// existence.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "job not found" }

// Store is the Job Store contract every implementation must honour
// identically.
type Store interface {
	Create(ctx context.Context, job *models.Job) error
	SetStatus(ctx context.Context, requestID string, status models.JobStatus, progress *int) error
	SetResult(ctx context.Context, requestID string, result []byte) error
	SetError(ctx context.Context, requestID string, kind models.ErrorKind, message, route string) error
	UpdateHeartbeat(ctx context.Context, requestID string) error
	FindByIdempotencyKey(ctx context.Context, key string) (*models.Job, error)
	SetCandidatePool(ctx context.Context, requestID string, pool *models.CandidatePool) error
	GetCandidatePool(ctx context.Context, requestID, sessionID string) (*models.CandidatePool, error)
	Get(ctx context.Context, requestID, sessionID string) (*models.Job, error)

	// MarkStaleIfRunning atomically re-reads requestID's status and, only if
	// it is still RUNNING, transitions it to DONE_FAILED(STALE_RUNNING) and
	// stores resultJSON as its terminal result. It returns whether this call
	// performed the transition, so a racing caller that finds the job
	// already terminal — marked by a previous call, or completed normally
	// by its own worker — is a safe no-op rather than a double-mark or an
	// overwrite.
	MarkStaleIfRunning(ctx context.Context, requestID, message string, resultJSON []byte) (bool, error)
}

// StaleChecker abstracts the WS hub's active-subscriber signal so the
// staleness logic can be unit tested without a real hub.
type StaleChecker interface {
	HasActiveSubscribers(requestID, sessionID string) bool
}

// IsStale evaluates the §4.C staleness rule: a RUNNING job is stale iff its
// heartbeat and creation are both older than maxAge AND no WS subscriber is
// attached.
func IsStale(job *models.Job, now time.Time, maxAge time.Duration, subs StaleChecker) bool {
	if job.Status != models.JobRunning {
		return false
	}
	if now.Sub(job.UpdatedAt) <= maxAge {
		return false
	}
	if now.Sub(job.CreatedAt) <= maxAge {
		return false
	}
	if subs != nil && subs.HasActiveSubscribers(job.RequestID, job.SessionID) {
		return false
	}
	return true
}
