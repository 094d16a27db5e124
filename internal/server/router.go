package server

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	appmiddleware "github.com/shacharon/placesearch/internal/pkg/middleware"
	"github.com/shacharon/placesearch/internal/routes"
)

// RouterDeps carries the services the HTTP surface is built on top of.
type RouterDeps struct {
	DBPool *pgxpool.Pool
	Logger *zap.Logger
	Routes routes.Deps
}

// SetupRouter configures and returns the Gin router with the full middleware
// stack and the search/ws-ticket/websocket routes.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(appmiddleware.LoggerMiddleware(deps.Logger))
	r.Use(gin.Recovery())
	r.Use(appmiddleware.ObservabilityMiddleware("placesearch"))
	r.Use(appmiddleware.CORSMiddleware())
	r.Use(appmiddleware.SecurityMiddleware())
	r.Use(func(c *gin.Context) {
		c.Set("db", deps.DBPool)
		c.Next()
	})

	routes.Setup(r, deps.Routes)

	return r
}
