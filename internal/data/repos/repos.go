package repos

import (
	"gorm.io/gorm"

	"github.com/fieldtrace/fieldtrace-backend/internal/data/repos/audit"
	"github.com/fieldtrace/fieldtrace-backend/internal/data/repos/fields"
	"github.com/fieldtrace/fieldtrace-backend/internal/data/repos/records"
	"github.com/fieldtrace/fieldtrace-backend/internal/data/repos/workflow"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
	"github.com/fieldtrace/fieldtrace-backend/internal/schema"
)

type FieldDefinitionRepo = fields.FieldDefinitionRepo
type AddressRecordRepo = records.AddressRecordRepo
type WorkItemRepo = workflow.WorkItemRepo
type WorkStepRepo = workflow.WorkStepRepo
type ExtractionAuditRepo = audit.ExtractionAuditRepo

func NewFieldDefinitionRepo(db *gorm.DB, log *logger.Logger) FieldDefinitionRepo {
	return fields.NewFieldDefinitionRepo(db, log)
}

func NewAddressRecordRepo(db *gorm.DB, log *logger.Logger, registry *schema.Registry) AddressRecordRepo {
	return records.NewAddressRecordRepo(db, log, registry)
}

func NewWorkItemRepo(db *gorm.DB, log *logger.Logger) WorkItemRepo {
	return workflow.NewWorkItemRepo(db, log)
}

func NewWorkStepRepo(db *gorm.DB, log *logger.Logger) WorkStepRepo {
	return workflow.NewWorkStepRepo(db, log)
}

func NewExtractionAuditRepo(db *gorm.DB, log *logger.Logger) ExtractionAuditRepo {
	return audit.NewExtractionAuditRepo(db, log)
}
