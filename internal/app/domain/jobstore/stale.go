package jobstore

import (
	"context"
	"encoding/json"

	"github.com/shacharon/placesearch/internal/app/domain/language"
	"github.com/shacharon/placesearch/internal/app/domain/response"
	"github.com/shacharon/placesearch/internal/app/models"
	appmetrics "github.com/shacharon/placesearch/internal/app/observability/metrics"
)

const staleMessage = "job outlived its heartbeat with no active listener"

// MarkStale transitions a job IsStale has already flagged to
// DONE_FAILED(STALE_RUNNING), writing the same stable error-shape response
// the Orchestrator persists for any other terminal failure. The language a
// stale job fails under is never recorded on the Job itself, so this falls
// back to the English default rather than reconstructing the original
// request's resolution.
//
// Store.MarkStaleIfRunning re-reads the job inside its own write, so this
// is safe to call from multiple racing callers (a dedup lookup in Submit, a
// concurrent result poll): only the caller that still observes the job
// RUNNING performs the transition, matching the at-most-once guarantee.
func MarkStale(ctx context.Context, store Store, job *models.Job) (response.Response, bool, error) {
	failed := *job
	failed.Status = models.JobDoneFailed
	failed.Error = &models.JobError{Kind: models.ErrStaleRunning, Message: staleMessage, Route: "stale_check"}

	resp := response.BuildFailed(&failed, language.Resolve(models.LangEnglish, "", 0))
	raw, err := json.Marshal(resp)
	if err != nil {
		return response.Response{}, false, err
	}

	transitioned, err := store.MarkStaleIfRunning(ctx, job.RequestID, staleMessage, raw)
	if err != nil {
		return response.Response{}, false, err
	}
	if transitioned {
		appmetrics.RecordJobStaleMarked()
	}
	return resp, transitioned, nil
}
