package fields

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldtrace/fieldtrace-backend/internal/data/repos"
	"github.com/fieldtrace/fieldtrace-backend/internal/domain"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/dbctx"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
	"github.com/fieldtrace/fieldtrace-backend/internal/schema"
	"github.com/fieldtrace/fieldtrace-backend/internal/utils"
)

// fieldNamePattern is the identifier safety gate: field names become map
// keys and, via the alias table, may name physical columns, so nothing
// outside this shape is ever accepted.
var fieldNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

const maxInstructionLength = 500

// ValidationError is the caller's fault: rejected before storage is
// touched, never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

type UpsertFieldInput struct {
	TableName             string
	FieldName             string
	DisplayLabel          string
	Description           string
	ExtractionInstruction string
	CreatedBy             uuid.UUID
}

type VerifyResult struct {
	Exists      bool                      `json:"exists"`
	Definition  *domain.FieldDefinition   `json:"definition,omitempty"`
	Definitions []*domain.FieldDefinition `json:"definitions"`
}

type ColumnInfo struct {
	Column string `json:"column"`
	Label  string `json:"label"`
}

// Service is the field definition store: org-scoped CRUD over
// administrator-declared logical fields.
type Service interface {
	Upsert(ctx context.Context, orgID uuid.UUID, input UpsertFieldInput) (*domain.FieldDefinition, error)
	ListForTable(ctx context.Context, orgID uuid.UUID, tableName string) ([]*domain.FieldDefinition, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	Verify(ctx context.Context, orgID uuid.UUID, tableName, fieldName string) (*VerifyResult, error)

	KnownTables() []string
	ColumnsForTable(tableName string) ([]ColumnInfo, error)
}

type service struct {
	db        *gorm.DB
	log       *logger.Logger
	registry  *schema.Registry
	fieldDefs repos.FieldDefinitionRepo
}

func NewService(db *gorm.DB, log *logger.Logger, registry *schema.Registry, fieldDefs repos.FieldDefinitionRepo) Service {
	return &service{
		db:        db,
		log:       log.With("service", "FieldService"),
		registry:  registry,
		fieldDefs: fieldDefs,
	}
}

func (s *service) validate(input UpsertFieldInput) error {
	if !s.registry.IsSupportedTable(schema.Table(input.TableName)) {
		return &ValidationError{Reason: fmt.Sprintf("table %q is not eligible for dynamic fields", input.TableName)}
	}
	if !fieldNamePattern.MatchString(input.FieldName) {
		return &ValidationError{Reason: fmt.Sprintf("field name %q is not a valid identifier (want ^[a-z][a-z0-9_]*$)", input.FieldName)}
	}
	if strings.TrimSpace(input.ExtractionInstruction) == "" {
		return &ValidationError{Reason: "extraction instruction is required"}
	}
	if len(input.ExtractionInstruction) > maxInstructionLength {
		return &ValidationError{Reason: fmt.Sprintf("extraction instruction exceeds %d characters", maxInstructionLength)}
	}
	return nil
}

func (s *service) Upsert(ctx context.Context, orgID uuid.UUID, input UpsertFieldInput) (*domain.FieldDefinition, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	label := strings.TrimSpace(input.DisplayLabel)
	if label == "" {
		label = utils.HumanizeColumn(input.FieldName)
	}

	def := &domain.FieldDefinition{
		OrganizationID:        orgID,
		Table:                 input.TableName,
		FieldName:             input.FieldName,
		DisplayLabel:          label,
		FieldType:             "text",
		Description:           strings.TrimSpace(input.Description),
		ExtractionInstruction: strings.TrimSpace(input.ExtractionInstruction),
		CreatedBy:             input.CreatedBy,
	}

	dbc := dbctx.Context{Ctx: ctx}
	stored, err := s.fieldDefs.Upsert(dbc, def)
	if err != nil {
		return nil, fmt.Errorf("upsert field definition: %w", err)
	}

	if _, hasColumn := s.registry.ResolveColumn(schema.Table(input.TableName), input.FieldName); !hasColumn {
		s.log.Debug("field declared without a physical column, values will use the overflow map",
			"table", input.TableName, "field", input.FieldName)
	}
	return stored, nil
}

func (s *service) ListForTable(ctx context.Context, orgID uuid.UUID, tableName string) ([]*domain.FieldDefinition, error) {
	return s.fieldDefs.ListForTable(dbctx.Context{Ctx: ctx}, orgID, tableName)
}

func (s *service) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return s.fieldDefs.Delete(dbctx.Context{Ctx: ctx}, orgID, id)
}

func (s *service) Verify(ctx context.Context, orgID uuid.UUID, tableName, fieldName string) (*VerifyResult, error) {
	dbc := dbctx.Context{Ctx: ctx}

	defs, err := s.fieldDefs.ListForTable(dbc, orgID, tableName)
	if err != nil {
		return nil, err
	}

	out := &VerifyResult{Definitions: defs}
	for _, d := range defs {
		if d.FieldName == fieldName {
			out.Exists = true
			out.Definition = d
			break
		}
	}
	return out, nil
}

func (s *service) KnownTables() []string {
	tables := s.registry.Tables()
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		out = append(out, string(t))
	}
	return out
}

func (s *service) ColumnsForTable(tableName string) ([]ColumnInfo, error) {
	table := schema.Table(tableName)
	if !s.registry.IsSupportedTable(table) {
		return nil, &ValidationError{Reason: fmt.Sprintf("table %q is not eligible for dynamic fields", tableName)}
	}
	cols := s.registry.KnownColumns(table)
	out := make([]ColumnInfo, 0, len(cols))
	for _, c := range cols {
		out = append(out, ColumnInfo{Column: c, Label: utils.HumanizeColumn(c)})
	}
	return out, nil
}
