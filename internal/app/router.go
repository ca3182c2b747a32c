package app

import (
	"github.com/gin-gonic/gin"

	httpx "github.com/fieldtrace/fieldtrace-backend/internal/http"
)

func wireRouter(handlers Handlers, middleware Middleware) *gin.Engine {
	return httpx.NewRouter(httpx.RouterConfig{
		OrgMiddleware:     middleware.Org,
		FieldHandler:      handlers.Field,
		ExtractionHandler: handlers.Extraction,
		HealthHandler:     handlers.Health,
	})
}
