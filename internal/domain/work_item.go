package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WorkItem is one unit of field-service work (an install, a repair visit).
// The workflow engine that drives it is external; extraction only needs the
// item's link to the record it operates on.
type WorkItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	Title          string    `gorm:"column:title" json:"title,omitempty"`
	Status         string    `gorm:"column:status;not null;default:'open'" json:"status"`

	// Metadata is legacy: older work items carry their record link as a
	// key inside this blob instead of a WorkItemSource row.
	Metadata datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (WorkItem) TableName() string { return "work_item" }

// WorkItemSource links a work item to the record extraction writes into.
// Preferred over scanning WorkItem.Metadata.
type WorkItemSource struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	WorkItemID     uuid.UUID `gorm:"type:uuid;not null;index" json:"work_item_id"`
	SourceTable    string    `gorm:"column:source_table;not null" json:"source_table"`
	SourceID       uuid.UUID `gorm:"type:uuid;not null" json:"source_id"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (WorkItemSource) TableName() string { return "work_item_source" }
