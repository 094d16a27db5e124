// Package routes registers the service's public HTTP/WebSocket surface
// (spec §6): async search submission, result polling, WS ticket issuance,
// and the WebSocket upgrade itself.
package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shacharon/placesearch/internal/app/domain/jobstore"
	"github.com/shacharon/placesearch/internal/app/domain/orchestrator"
	"github.com/shacharon/placesearch/internal/app/domain/ticket"
	"github.com/shacharon/placesearch/internal/app/domain/wshub"
	"github.com/shacharon/placesearch/internal/pkg/config"
)

// Deps carries every service a route handler needs.
type Deps struct {
	Orchestrator *orchestrator.Orchestrator
	Store        jobstore.Store
	Hub          *wshub.Hub
	Tickets      *ticket.Signer
	Config       *config.Config
	Logger       *zap.Logger
}

// Setup registers every route on r.
func Setup(r *gin.Engine, deps Deps) {
	r.POST("/search", searchHandler(deps))
	r.GET("/search/:requestId/result", resultHandler(deps))
	r.POST("/ws-ticket", wsTicketHandler(deps))
	r.GET("/ws", wsHandler(deps))
}
