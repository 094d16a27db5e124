package response

import (
	"testing"

	"github.com/shacharon/placesearch/internal/app/models"
)

func TestBuildFailed_StableShapeWithStoredError(t *testing.T) {
	job := &models.Job{
		RequestID: "r1",
		Status:    models.JobDoneFailed,
		Error:     &models.JobError{Kind: models.ErrProviderFailed, Message: "upstream timeout"},
	}
	resp := BuildFailed(job, models.LanguageContext{})
	if !resp.Terminal {
		t.Fatal("expected terminal=true")
	}
	if resp.Status != models.JobDoneFailed {
		t.Fatalf("expected DONE_FAILED status, got %v", resp.Status)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrProviderFailed {
		t.Fatalf("expected PROVIDER_FAILED code, got %+v", resp.Error)
	}
}

func TestBuildFailed_SafeDefaultsWhenResultMissing(t *testing.T) {
	job := &models.Job{RequestID: "r2", Status: models.JobDoneFailed}
	resp := BuildFailed(job, models.LanguageContext{})
	if resp.Error == nil || resp.Error.Code != models.ErrResultMissing {
		t.Fatalf("expected RESULT_MISSING fallback, got %+v", resp.Error)
	}
	if resp.Results == nil {
		t.Fatal("expected non-nil empty results slice")
	}
}
