package fields

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fieldtrace/fieldtrace-backend/internal/domain"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/dbctx"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
)

var ErrNotFound = errors.New("field definition not found")

type FieldDefinitionRepo interface {
	// Upsert inserts a definition or, when (org, table, field) already
	// exists, updates its mutable attributes and refreshes updated_at.
	// Returns the stored row either way.
	Upsert(dbc dbctx.Context, def *domain.FieldDefinition) (*domain.FieldDefinition, error)
	GetByID(dbc dbctx.Context, orgID, id uuid.UUID) (*domain.FieldDefinition, error)
	GetByIdentity(dbc dbctx.Context, orgID uuid.UUID, tableName, fieldName string) (*domain.FieldDefinition, error)
	ListForTable(dbc dbctx.Context, orgID uuid.UUID, tableName string) ([]*domain.FieldDefinition, error)
	Delete(dbc dbctx.Context, orgID, id uuid.UUID) error
}

type fieldDefinitionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFieldDefinitionRepo(db *gorm.DB, baseLog *logger.Logger) FieldDefinitionRepo {
	repoLog := baseLog.With("repo", "FieldDefinitionRepo")
	return &fieldDefinitionRepo{db: db, log: repoLog}
}

func (r *fieldDefinitionRepo) Upsert(dbc dbctx.Context, def *domain.FieldDefinition) (*domain.FieldDefinition, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if def.ID == uuid.Nil {
		def.ID = uuid.New()
	}
	if def.FieldType == "" {
		def.FieldType = "text"
	}

	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "organization_id"},
				{Name: "table_name"},
				{Name: "field_name"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"display_label",
				"field_type",
				"description",
				"extraction_instruction",
				"updated_at",
			}),
		}).
		Create(def).Error; err != nil {
		return nil, err
	}

	// On conflict the generated ID above was discarded; read back the
	// surviving row so callers always see the stored identity.
	return r.GetByIdentity(dbc, def.OrganizationID, def.Table, def.FieldName)
}

func (r *fieldDefinitionRepo) GetByID(dbc dbctx.Context, orgID, id uuid.UUID) (*domain.FieldDefinition, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var def domain.FieldDefinition
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&def).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *fieldDefinitionRepo) GetByIdentity(dbc dbctx.Context, orgID uuid.UUID, tableName, fieldName string) (*domain.FieldDefinition, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var def domain.FieldDefinition
	err := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ? AND table_name = ? AND field_name = ?", orgID, tableName, fieldName).
		First(&def).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *fieldDefinitionRepo) ListForTable(dbc dbctx.Context, orgID uuid.UUID, tableName string) ([]*domain.FieldDefinition, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.FieldDefinition
	if err := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ? AND table_name = ?", orgID, tableName).
		Order("field_name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *fieldDefinitionRepo) Delete(dbc dbctx.Context, orgID, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		Delete(&domain.FieldDefinition{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
