package app

import (
	"gorm.io/gorm"

	"github.com/fieldtrace/fieldtrace-backend/internal/data/repos"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
	"github.com/fieldtrace/fieldtrace-backend/internal/schema"
)

type Repos struct {
	FieldDefinition repos.FieldDefinitionRepo
	AddressRecord   repos.AddressRecordRepo
	WorkItem        repos.WorkItemRepo
	WorkStep        repos.WorkStepRepo
	ExtractionAudit repos.ExtractionAuditRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger, registry *schema.Registry) Repos {
	log.Info("Wiring repos...")
	return Repos{
		FieldDefinition: repos.NewFieldDefinitionRepo(db, log),
		AddressRecord:   repos.NewAddressRecordRepo(db, log, registry),
		WorkItem:        repos.NewWorkItemRepo(db, log),
		WorkStep:        repos.NewWorkStepRepo(db, log),
		ExtractionAudit: repos.NewExtractionAuditRepo(db, log),
	}
}
