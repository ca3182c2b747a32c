package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/fieldtrace/fieldtrace-backend/internal/clients/gcp"
	"github.com/fieldtrace/fieldtrace-backend/internal/clients/openai"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
	"github.com/fieldtrace/fieldtrace-backend/internal/schema"
	"github.com/fieldtrace/fieldtrace-backend/internal/services/extraction"
	"github.com/fieldtrace/fieldtrace-backend/internal/services/fields"
)

type Services struct {
	Fields     fields.Service
	Extraction extraction.Service
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, registry *schema.Registry, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	openaiClient, err := openai.NewClient(log)
	if err != nil {
		return Services{}, fmt.Errorf("init openai client: %w", err)
	}
	photoFetcher, err := gcp.NewPhotoFetcher(log)
	if err != nil {
		return Services{}, fmt.Errorf("init photo fetcher: %w", err)
	}

	fieldService := fields.NewService(db, log, registry, reposet.FieldDefinition)
	extractionService := extraction.NewService(
		log,
		registry,
		reposet.FieldDefinition,
		reposet.AddressRecord,
		reposet.WorkItem,
		reposet.WorkStep,
		reposet.ExtractionAudit,
		extraction.NewOpenAIExtractor(log, openaiClient),
		photoFetcher,
		extraction.Config{
			MaxConcurrency: cfg.ExtractionMaxConcurrency,
			FieldTimeout:   cfg.ExtractionFieldTimeout,
		},
	)

	return Services{
		Fields:     fieldService,
		Extraction: extractionService,
	}, nil
}
