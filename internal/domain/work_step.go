package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WorkStep is one step of a work item's checklist. When a photo is attached
// to a step whose config enables photo analysis, the extraction pipeline
// runs and merges its results into Evidence so downstream workflow logic
// can read extracted values without knowing the storage split.
type WorkStep struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	WorkItemID     uuid.UUID `gorm:"type:uuid;not null;index" json:"work_item_id"`
	Name           string    `gorm:"column:name" json:"name,omitempty"`
	Status         string    `gorm:"column:status;not null;default:'pending'" json:"status"`

	// Config holds the step's photoAnalysisConfig among other settings.
	Config datatypes.JSONMap `gorm:"column:config;type:jsonb" json:"config"`

	// Evidence accumulates step outputs; extraction merges into it
	// non-destructively.
	Evidence datatypes.JSONMap `gorm:"column:evidence;type:jsonb" json:"evidence"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (WorkStep) TableName() string { return "work_step" }
