package app

import (
	"time"

	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
	"github.com/fieldtrace/fieldtrace-backend/internal/utils"
)

type Config struct {
	Port                     string
	ExtractionMaxConcurrency int
	ExtractionFieldTimeout   time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8080", log)
	maxConcurrency := utils.GetEnvAsInt("EXTRACTION_MAX_CONCURRENCY", 3, log)
	fieldTimeoutSeconds := utils.GetEnvAsInt("EXTRACTION_FIELD_TIMEOUT_SECONDS", 45, log)
	return Config{
		Port:                     port,
		ExtractionMaxConcurrency: maxConcurrency,
		ExtractionFieldTimeout:   time.Duration(fieldTimeoutSeconds) * time.Second,
	}
}
