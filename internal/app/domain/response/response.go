// Package response implements the Response Builder (spec §4.N): the stable
// HTTP/WS-visible result shape, including the stable-error-shape contract
// for terminally-failed jobs.
package response

import (
	"time"

	"github.com/shacharon/placesearch/internal/app/models"
)

// contractsVersion is the response wire-contract version, bumped whenever
// meta's shape changes in a client-visible way.
const contractsVersion = "search_contracts_v1"

// LanguageContextView is the subset of LanguageContext exposed to clients,
// with provenance attached.
type LanguageContextView struct {
	UILanguage          models.Language                      `json:"uiLanguage"`
	QueryLanguage       models.Language                      `json:"queryLanguage"`
	AssistantLanguage   models.Language                      `json:"assistantLanguage"`
	AssistantProvenance models.AssistantLanguageProvenance    `json:"assistantProvenance"`
	SearchLanguage      models.Language                       `json:"searchLanguage"`
	SearchProvenance    models.SearchLanguageProvenance       `json:"searchProvenance"`
}

// Meta is the response's meta envelope.
type Meta struct {
	TookMs                   int64                 `json:"tookMs"`
	Source                   string                `json:"source"`
	ContractsVersion         string                `json:"contractsVersion"`
	LanguageContext          LanguageContextView   `json:"languageContext"`
	OrderExplain             *models.OrderExplain  `json:"orderExplain,omitempty"`
	CuisineEnforcementFailed bool                  `json:"cuisineEnforcementFailed,omitempty"`
}

// ErrorView is the stable error shape surfaced on a DONE_FAILED job.
type ErrorView struct {
	Code      models.ErrorKind `json:"code"`
	Message   string           `json:"message"`
	ErrorType string           `json:"errorType"`
}

// Response is the full HTTP/WS result payload.
type Response struct {
	RequestID string            `json:"requestId"`
	Status    models.JobStatus  `json:"status"`
	Results   []models.Place    `json:"results"`
	Meta      Meta              `json:"meta"`
	Error     *ErrorView        `json:"error,omitempty"`
	Terminal  bool              `json:"terminal"`
}

// Build assembles the success-path response for a job with a stored result.
func Build(job *models.Job, places []models.Place, lang models.LanguageContext, order *models.OrderExplain, cuisineEnforcementFailed bool, tookMs int64) Response {
	return Response{
		RequestID: job.RequestID,
		Status:    job.Status,
		Results:   places,
		Terminal:  job.Status.IsTerminal(),
		Meta: Meta{
			TookMs:                   tookMs,
			Source:                   "route2",
			ContractsVersion:         contractsVersion,
			LanguageContext:          viewOf(lang),
			OrderExplain:             order,
			CuisineEnforcementFailed: cuisineEnforcementFailed,
		},
	}
}

// BuildFailed assembles the stable error-shape response (spec §4.N): HTTP
// 200 with status=DONE_FAILED, terminal=true, and safe defaults when the
// job's result slot is empty.
func BuildFailed(job *models.Job, lang models.LanguageContext) Response {
	resp := Response{
		RequestID: job.RequestID,
		Status:    models.JobDoneFailed,
		Results:   []models.Place{},
		Terminal:  true,
		Meta: Meta{
			Source:           "route2",
			ContractsVersion: contractsVersion,
			LanguageContext:  viewOf(lang),
		},
	}

	if job.Error != nil {
		resp.Error = &ErrorView{
			Code:      job.Error.Kind,
			Message:   job.Error.Message,
			ErrorType: string(job.Error.Kind),
		}
	} else {
		// Terminal but no error slot populated (RESULT_MISSING): a
		// non-fatal write failure, filled with safe defaults rather than
		// throwing.
		resp.Error = &ErrorView{
			Code:      models.ErrResultMissing,
			Message:   "job finished but its result could not be retrieved",
			ErrorType: string(models.ErrResultMissing),
		}
	}
	return resp
}

func viewOf(lang models.LanguageContext) LanguageContextView {
	return LanguageContextView{
		UILanguage:          lang.UILanguage,
		QueryLanguage:       lang.QueryLanguage,
		AssistantLanguage:   lang.AssistantLanguage,
		AssistantProvenance: lang.AssistantProvenance,
		SearchLanguage:      lang.SearchLanguage,
		SearchProvenance:    lang.SearchProvenance,
	}
}

// TookMs is a small helper so orchestrator call sites don't repeat the
// duration-to-ms conversion.
func TookMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
