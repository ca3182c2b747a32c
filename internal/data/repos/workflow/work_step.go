package workflow

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fieldtrace/fieldtrace-backend/internal/domain"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/dbctx"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
)

var ErrWorkStepNotFound = errors.New("work step not found")

type WorkStepRepo interface {
	Create(dbc dbctx.Context, step *domain.WorkStep) (*domain.WorkStep, error)
	GetScoped(dbc dbctx.Context, orgID, id uuid.UUID) (*domain.WorkStep, error)
	// MergeEvidence merges entries into the step's evidence map without
	// dropping keys already present.
	MergeEvidence(dbc dbctx.Context, orgID, id uuid.UUID, entries map[string]any) (*domain.WorkStep, error)
}

type workStepRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkStepRepo(db *gorm.DB, baseLog *logger.Logger) WorkStepRepo {
	repoLog := baseLog.With("repo", "WorkStepRepo")
	return &workStepRepo{db: db, log: repoLog}
}

func (r *workStepRepo) Create(dbc dbctx.Context, step *domain.WorkStep) (*domain.WorkStep, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if step.ID == uuid.Nil {
		step.ID = uuid.New()
	}
	if step.Evidence == nil {
		step.Evidence = datatypes.JSONMap{}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(step).Error; err != nil {
		return nil, err
	}
	return step, nil
}

func (r *workStepRepo) GetScoped(dbc dbctx.Context, orgID, id uuid.UUID) (*domain.WorkStep, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var step domain.WorkStep
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&step).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWorkStepNotFound
	}
	if err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *workStepRepo) MergeEvidence(dbc dbctx.Context, orgID, id uuid.UUID, entries map[string]any) (*domain.WorkStep, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	step, err := r.GetScoped(dbc, orgID, id)
	if err != nil {
		return nil, err
	}

	merged := make(datatypes.JSONMap, len(step.Evidence)+len(entries))
	for k, v := range step.Evidence {
		merged[k] = v
	}
	for k, v := range entries {
		merged[k] = v
	}

	now := time.Now().UTC()
	if err := transaction.WithContext(dbc.Ctx).
		Model(&domain.WorkStep{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Updates(map[string]any{"evidence": merged, "updated_at": now}).Error; err != nil {
		return nil, err
	}

	step.Evidence = merged
	step.UpdatedAt = now
	return step, nil
}
