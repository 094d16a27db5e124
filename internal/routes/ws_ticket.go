package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shacharon/placesearch/internal/app/models"
)

type wsTicketRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

type wsTicketResponse struct {
	Ticket string `json:"ticket"`
}

// wsTicketHandler implements `POST /ws-ticket` (spec §6): issues a
// single-use, short-TTL ticket bound to sessionID. The underlying single-use
// store lives in Redis, so its unavailability is surfaced distinctly
// (503 + Retry-After) rather than as a generic 500.
func wsTicketHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req wsTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": models.ErrValidation, "message": err.Error()})
			return
		}

		if err := deps.Tickets.Ping(c.Request.Context()); err != nil {
			c.Header("Retry-After", "2")
			c.JSON(http.StatusServiceUnavailable, gin.H{"code": models.ErrWSTicketRedisUnavail, "message": "ticket store unavailable"})
			return
		}

		tok, err := deps.Tickets.Issue(req.SessionID, "search")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": models.ErrSearchFailed, "message": "could not issue ticket"})
			return
		}

		c.JSON(http.StatusOK, wsTicketResponse{Ticket: tok})
	}
}
