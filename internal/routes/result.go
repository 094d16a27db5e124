package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shacharon/placesearch/internal/app/domain/jobstore"
	"github.com/shacharon/placesearch/internal/app/domain/wshub"
	"github.com/shacharon/placesearch/internal/app/models"
)

type runningMeta struct {
	IsStale      bool   `json:"isStale"`
	AgeMs        int64  `json:"ageMs"`
	UpdatedAgeMs int64  `json:"updatedAgeMs"`
	Message      string `json:"message,omitempty"`
}

type runningResponse struct {
	Status   models.JobStatus `json:"status"`
	Progress int              `json:"progress"`
	Meta     runningMeta      `json:"meta"`
}

// resultHandler implements `GET /search/{requestId}/result` (spec §6):
// terminal jobs return their stored response verbatim (including on
// failure, via the stable error shape already baked into Result by the
// orchestrator); non-terminal jobs return a lightweight polling payload.
// Session ownership mismatches and missing jobs are both reported as 404,
// deliberately indistinguishable from each other.
func resultHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Param("requestId")
		sessionID := c.GetHeader("X-Session-Id")
		if sessionID == "" {
			sessionID = c.Query("sessionId")
		}
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"code": models.ErrValidation, "message": "sessionId is required"})
			return
		}

		job, err := deps.Store.Get(c.Request.Context(), requestID, sessionID)
		if err != nil {
			if err == jobstore.ErrNotFound {
				c.Status(http.StatusNotFound)
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": models.ErrSearchFailed, "message": "could not load job"})
			return
		}

		if job.Status.IsTerminal() {
			if len(job.Result) == 0 {
				c.JSON(http.StatusOK, gin.H{
					"requestId": job.RequestID,
					"status":    models.JobDoneFailed,
					"code":      models.ErrResultMissing,
					"message":   "job finished but its result could not be retrieved",
					"errorType": string(models.ErrResultMissing),
					"terminal":  true,
				})
				return
			}
			c.Data(http.StatusOK, "application/json", job.Result)
			return
		}

		now := time.Now()
		isStale := jobstore.IsStale(job, now, deps.Config.JobStore.MaxRunningJobAge, deps.Hub)
		if isStale {
			resp, transitioned, err := jobstore.MarkStale(c.Request.Context(), deps.Store, job)
			switch {
			case err != nil:
				deps.Logger.Error("mark_stale_failed", zap.String("requestId", requestID), zap.Error(err))
			case transitioned:
				deps.Hub.Publish(requestID, wshub.EventTerminal, resp)
				c.JSON(http.StatusOK, resp)
				return
			default:
				// Lost the race to another caller (its own worker finishing,
				// or a concurrent poll/dedup-lookup marking it first) — the
				// job is terminal now, re-read and serve it the normal way.
				if fresh, err := deps.Store.Get(c.Request.Context(), requestID, sessionID); err == nil && fresh.Status.IsTerminal() && len(fresh.Result) > 0 {
					c.Data(http.StatusOK, "application/json", fresh.Result)
					return
				}
			}
		}
		c.JSON(http.StatusAccepted, runningResponse{
			Status:   job.Status,
			Progress: job.Progress,
			Meta: runningMeta{
				IsStale:      isStale,
				AgeMs:        now.Sub(job.CreatedAt).Milliseconds(),
				UpdatedAgeMs: now.Sub(job.UpdatedAt).Milliseconds(),
			},
		})
	}
}
