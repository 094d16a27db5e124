package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/shacharon/placesearch/internal/app/domain/orchestrator"
	"github.com/shacharon/placesearch/internal/app/models"
)

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type searchRequest struct {
	Query        string          `json:"query" binding:"required"`
	UILanguage   models.Language `json:"uiLanguage"`
	UserLocation *latLng         `json:"userLocation"`
	SessionID    string          `json:"sessionId" binding:"required"`
	RegionHint   string          `json:"regionHint"`
}

type searchAccepted struct {
	RequestID string          `json:"requestId"`
	ResultURL string          `json:"resultUrl"`
	Status    models.JobStatus `json:"status"`
}

// searchHandler implements `POST /search?mode=async` (spec §6): the only
// mode this service supports is async, so the query parameter is accepted
// but not branched on.
func searchHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req searchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": models.ErrValidation, "message": err.Error()})
			return
		}
		if req.UILanguage == "" {
			req.UILanguage = models.LangEnglish
		}
		if !isUILanguage(req.UILanguage) {
			c.JSON(http.StatusBadRequest, gin.H{"code": models.ErrValidation, "message": "uiLanguage must be one of the supported UI languages"})
			return
		}

		in := orchestrator.Input{
			SessionID:  req.SessionID,
			QueryText:  req.Query,
			UILanguage: req.UILanguage,
			RegionHint: req.RegionHint,
		}
		if req.UserLocation != nil {
			pt := orb.Point{req.UserLocation.Lng, req.UserLocation.Lat}
			in.UserLocation = &pt
		}

		job, err := deps.Orchestrator.Submit(c.Request.Context(), in)
		if err != nil {
			deps.Logger.Error("search_submit_failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"code": models.ErrSearchFailed, "message": "could not accept search"})
			return
		}

		c.JSON(http.StatusAccepted, searchAccepted{
			RequestID: job.RequestID,
			ResultURL: "/search/" + job.RequestID + "/result",
			Status:    job.Status,
		})
	}
}

func isUILanguage(lang models.Language) bool {
	for _, l := range models.UILanguages {
		if l == lang {
			return true
		}
	}
	return false
}
