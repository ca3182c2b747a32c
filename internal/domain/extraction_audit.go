package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ExtractionStatusCompleted           = "completed"
	ExtractionStatusCompletedWithErrors = "completed_with_errors"
	ExtractionStatusFailed              = "failed"
)

// ExtractionAudit is the append-only trace of one extraction batch (one
// photo, N requested fields). Written at the end of every batch regardless
// of outcome, never updated, never read back by the pipeline itself.
type ExtractionAudit struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	WorkItemID     uuid.UUID `gorm:"type:uuid;index" json:"work_item_id"`
	StepID         uuid.UUID `gorm:"type:uuid;index" json:"step_id"`

	// TargetTable/TargetID are empty when source resolution failed; the
	// row is still written so the failure leaves a trace.
	TargetTable string     `gorm:"column:target_table" json:"target_table,omitempty"`
	TargetID    *uuid.UUID `gorm:"type:uuid" json:"target_id,omitempty"`

	ExtractedData     datatypes.JSON `gorm:"column:extracted_data;type:jsonb" json:"extracted_data"`
	AverageConfidence float64        `gorm:"column:average_confidence;not null;default:0" json:"average_confidence"`
	Status            string         `gorm:"column:status;not null" json:"status"`
	Model             string         `gorm:"column:model" json:"model,omitempty"`
	ProcessingTimeMs  int64          `gorm:"column:processing_time_ms;not null;default:0" json:"processing_time_ms"`
	ErrorMessage      string         `gorm:"column:error_message" json:"error_message,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ExtractionAudit) TableName() string { return "extraction_audit" }
