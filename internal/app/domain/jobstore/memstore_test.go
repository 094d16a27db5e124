package jobstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shacharon/placesearch/internal/app/models"
)

func newJob(requestID, sessionID string) *models.Job {
	now := time.Now()
	return &models.Job{
		RequestID: requestID, SessionID: sessionID,
		Status: models.JobRunning, Progress: 10,
		CreatedAt: now, UpdatedAt: now,
		IdempotencyKey: "idem-" + requestID,
	}
}

func TestMemStore_OwnershipMismatchLooksLikeNotFound(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newJob("r1", "session-a")))

	_, err := s.Get(ctx, "r1", "session-b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_TerminalJobIsImmutable(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newJob("r2", "s")))
	require.NoError(t, s.SetError(ctx, "r2", models.ErrSearchFailed, "boom", ""))

	require.NoError(t, s.SetStatus(ctx, "r2", models.JobDoneSuccess, nil))

	job, err := s.Get(ctx, "r2", "s")
	require.NoError(t, err)
	assert.Equal(t, models.JobDoneFailed, job.Status, "terminal job must not be overwritten by a later transition")
}

func TestMemStore_HeartbeatNoopOnTerminal(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newJob("r3", "s")))
	require.NoError(t, s.SetError(ctx, "r3", models.ErrSearchFailed, "x", ""))

	before, _ := s.Get(ctx, "r3", "s")
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, s.UpdateHeartbeat(ctx, "r3"))
	after, _ := s.Get(ctx, "r3", "s")

	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestMemStore_FindByIdempotencyKey(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newJob("r4", "s")))

	job, err := s.FindByIdempotencyKey(ctx, "idem-r4")
	require.NoError(t, err)
	assert.Equal(t, "r4", job.RequestID)
}

type fakeSubs struct{ active bool }

func (f fakeSubs) HasActiveSubscribers(requestID, sessionID string) bool { return f.active }

func TestIsStale_ActiveSubscriberKeepsJobAlive(t *testing.T) {
	job := newJob("r5", "s")
	job.CreatedAt = time.Now().Add(-2 * time.Minute)
	job.UpdatedAt = time.Now().Add(-2 * time.Minute)

	assert.False(t, IsStale(job, time.Now(), 90*time.Second, fakeSubs{active: true}))
	assert.True(t, IsStale(job, time.Now(), 90*time.Second, fakeSubs{active: false}))
}

func TestMemStore_MarkStaleIfRunning_OnlyFirstCallTransitions(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newJob("r6", "s")))

	transitioned, err := s.MarkStaleIfRunning(ctx, "r6", "stale", []byte(`{"status":"DONE_FAILED"}`))
	require.NoError(t, err)
	assert.True(t, transitioned)

	again, err := s.MarkStaleIfRunning(ctx, "r6", "stale", []byte(`{"status":"DONE_FAILED"}`))
	require.NoError(t, err)
	assert.False(t, again, "a job already marked stale must not be marked twice")

	job, err := s.Get(ctx, "r6", "s")
	require.NoError(t, err)
	assert.Equal(t, models.JobDoneFailed, job.Status)
	assert.Equal(t, models.ErrStaleRunning, job.Error.Kind)
}

func TestMemStore_MarkStaleIfRunning_NeverOverwritesSuccess(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newJob("r7", "s")))
	require.NoError(t, s.SetResult(ctx, "r7", []byte(`{"status":"DONE_SUCCESS"}`)))
	require.NoError(t, s.SetStatus(ctx, "r7", models.JobDoneSuccess, nil))

	transitioned, err := s.MarkStaleIfRunning(ctx, "r7", "stale", []byte(`{"status":"DONE_FAILED"}`))
	require.NoError(t, err)
	assert.False(t, transitioned)

	job, err := s.Get(ctx, "r7", "s")
	require.NoError(t, err)
	assert.Equal(t, models.JobDoneSuccess, job.Status, "a completed job must never be clobbered by a racing stale-mark")
}
