package domain

import (
	"time"

	"github.com/google/uuid"
)

// FieldDefinition is an administrator-declared, organization-scoped logical
// field: a named piece of data extractable from photos, independent of
// whether it lands in a typed column or the overflow map.
// (organization_id, table_name, field_name) is unique.
type FieldDefinition struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index:idx_field_def_identity,unique" json:"organization_id"`
	Table          string    `gorm:"column:table_name;not null;index:idx_field_def_identity,unique" json:"table_name"`
	FieldName      string    `gorm:"column:field_name;not null;index:idx_field_def_identity,unique" json:"field_name"`

	DisplayLabel          string `gorm:"column:display_label;not null" json:"display_label"`
	FieldType             string `gorm:"column:field_type;not null;default:'text'" json:"field_type"`
	Description           string `gorm:"column:description" json:"description,omitempty"`
	ExtractionInstruction string `gorm:"column:extraction_instruction;not null" json:"extraction_instruction"`

	CreatedBy uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (FieldDefinition) TableName() string { return "field_definition" }
