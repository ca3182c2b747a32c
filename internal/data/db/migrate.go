package db

import (
	"gorm.io/gorm"

	"github.com/fieldtrace/fieldtrace-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Records (extraction targets)
		// =========================
		&domain.AddressRecord{},

		// =========================
		// Dynamic field declarations
		// =========================
		&domain.FieldDefinition{},

		// =========================
		// Workflow surface (items, steps, source links)
		// =========================
		&domain.WorkItem{},
		&domain.WorkItemSource{},
		&domain.WorkStep{},

		// =========================
		// Extraction traceability
		// =========================
		&domain.ExtractionAudit{},
	)
}
