package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qiyascc/trendsync/internal/interfaces/http/handler"
	"github.com/qiyascc/trendsync/internal/interfaces/http/middleware"
)

// New assembles the gin engine with the operational API routes.
func New(syncHandler *handler.SyncHandler, logger *zap.Logger, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.Recovery(logger))
	engine.Use(middleware.RequestLogger(logger))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/products", syncHandler.UpsertProduct)
		v1.GET("/products/:id", syncHandler.GetProduct)
		v1.POST("/products/:id/sync", syncHandler.SyncProduct)
		v1.GET("/tickets/:id", syncHandler.GetTicket)
		v1.POST("/taxonomy/invalidate", syncHandler.InvalidateTaxonomy)
	}

	return engine
}
