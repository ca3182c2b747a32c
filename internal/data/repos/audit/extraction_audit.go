package audit

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldtrace/fieldtrace-backend/internal/domain"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/dbctx"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
)

// ExtractionAuditRepo is append-only: audits are written once at the end of
// a batch and never updated or read back by the pipeline.
type ExtractionAuditRepo interface {
	Create(dbc dbctx.Context, row *domain.ExtractionAudit) (*domain.ExtractionAudit, error)
	ListForWorkItem(dbc dbctx.Context, orgID, workItemID uuid.UUID) ([]*domain.ExtractionAudit, error)
}

type extractionAuditRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExtractionAuditRepo(db *gorm.DB, baseLog *logger.Logger) ExtractionAuditRepo {
	repoLog := baseLog.With("repo", "ExtractionAuditRepo")
	return &extractionAuditRepo{db: db, log: repoLog}
}

func (r *extractionAuditRepo) Create(dbc dbctx.Context, row *domain.ExtractionAudit) (*domain.ExtractionAudit, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// ListForWorkItem exists for operators inspecting a work item's history,
// not for the pipeline.
func (r *extractionAuditRepo) ListForWorkItem(dbc dbctx.Context, orgID, workItemID uuid.UUID) ([]*domain.ExtractionAudit, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var rows []*domain.ExtractionAudit
	if err := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ? AND work_item_id = ?", orgID, workItemID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
