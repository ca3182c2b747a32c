package app

import (
	httpH "github.com/fieldtrace/fieldtrace-backend/internal/http/handlers"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
)

type Handlers struct {
	Field      *httpH.FieldHandler
	Extraction *httpH.ExtractionHandler
	Health     *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Field:      httpH.NewFieldHandler(log, services.Fields),
		Extraction: httpH.NewExtractionHandler(log, services.Extraction),
		Health:     httpH.NewHealthHandler(),
	}
}
