package workflow

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldtrace/fieldtrace-backend/internal/domain"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/dbctx"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
)

var ErrWorkItemNotFound = errors.New("work item not found")

type WorkItemRepo interface {
	Create(dbc dbctx.Context, item *domain.WorkItem) (*domain.WorkItem, error)
	GetScoped(dbc dbctx.Context, orgID, id uuid.UUID) (*domain.WorkItem, error)
	CreateSource(dbc dbctx.Context, src *domain.WorkItemSource) (*domain.WorkItemSource, error)
	// GetSource returns the work item's record link, or nil when none exists.
	GetSource(dbc dbctx.Context, orgID, workItemID uuid.UUID) (*domain.WorkItemSource, error)
}

type workItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkItemRepo(db *gorm.DB, baseLog *logger.Logger) WorkItemRepo {
	repoLog := baseLog.With("repo", "WorkItemRepo")
	return &workItemRepo{db: db, log: repoLog}
}

func (r *workItemRepo) Create(dbc dbctx.Context, item *domain.WorkItem) (*domain.WorkItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *workItemRepo) GetScoped(dbc dbctx.Context, orgID, id uuid.UUID) (*domain.WorkItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var item domain.WorkItem
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWorkItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *workItemRepo) CreateSource(dbc dbctx.Context, src *domain.WorkItemSource) (*domain.WorkItemSource, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if src.ID == uuid.Nil {
		src.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(src).Error; err != nil {
		return nil, err
	}
	return src, nil
}

func (r *workItemRepo) GetSource(dbc dbctx.Context, orgID, workItemID uuid.UUID) (*domain.WorkItemSource, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var src domain.WorkItemSource
	err := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ? AND work_item_id = ?", orgID, workItemID).
		First(&src).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &src, nil
}
