package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/fieldtrace/fieldtrace-backend/internal/http/handlers"
	httpMW "github.com/fieldtrace/fieldtrace-backend/internal/http/middleware"
)

type RouterConfig struct {
	OrgMiddleware *httpMW.OrgMiddleware

	FieldHandler      *httpH.FieldHandler
	ExtractionHandler *httpH.ExtractionHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.OrgMiddleware != nil {
			api.Use(cfg.OrgMiddleware.RequireOrg())
		}

		// Field definitions
		if cfg.FieldHandler != nil {
			api.POST("/fields", cfg.FieldHandler.Upsert)
			api.GET("/fields", cfg.FieldHandler.List)
			api.DELETE("/fields/:id", cfg.FieldHandler.Delete)
			api.POST("/fields/verify", cfg.FieldHandler.Verify)
			api.GET("/fields/tables", cfg.FieldHandler.Tables)
			api.GET("/fields/tables/:table/columns", cfg.FieldHandler.Columns)
		}

		// Extraction
		if cfg.ExtractionHandler != nil {
			api.POST("/steps/:id/extract", cfg.ExtractionHandler.ProcessPhoto)
			api.GET("/work-items/:id/extractions", cfg.ExtractionHandler.AuditTrail)
		}
	}

	return r
}
