package extraction

import (
	"strings"

	"github.com/google/uuid"
)

// PhotoData is one photo attached to a work step.
type PhotoData struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// ExtractionRequest names one field to pull out of a photo. Either FieldID
// points at a declared FieldDefinition (whose table/field/label win), or
// the caller supplies the target directly.
type ExtractionRequest struct {
	FieldID               *uuid.UUID `json:"fieldId,omitempty"`
	TargetTable           string     `json:"targetTable,omitempty"`
	TargetField           string     `json:"targetField,omitempty"`
	ExtractionInstruction string     `json:"extractionInstruction"`
	PostProcess           string     `json:"postProcess,omitempty"` // uppercase | lowercase | trim | none
	Required              bool       `json:"required,omitempty"`
}

// PhotoAnalysisConfig is the step configuration that triggers extraction.
type PhotoAnalysisConfig struct {
	Enabled     bool                `json:"enabled"`
	Extractions []ExtractionRequest `json:"extractions"`
}

// ProcessPhotoInput is one extraction batch: one photo, N requested fields,
// one target record resolved from the work item.
type ProcessPhotoInput struct {
	StepID     uuid.UUID
	WorkItemID uuid.UUID
	Photo      PhotoData
	Config     PhotoAnalysisConfig
}

// ExtractionResult is one successfully extracted field.
type ExtractionResult struct {
	Value        string  `json:"value"`
	Confidence   float64 `json:"confidence"` // 0..100
	DisplayLabel string  `json:"displayLabel"`
	TargetTable  string  `json:"targetTable"`
}

// Error kinds, per field. Validation and configuration gate before
// inference; extraction errors are tolerated per field; persistence errors
// fail the batch.
const (
	ErrKindValidation       = "validation"
	ErrKindConfiguration    = "configuration"
	ErrKindExtraction       = "extraction"
	ErrKindPersistence      = "persistence"
	ErrKindUnsupportedTable = "unsupported_table"
)

type FieldError struct {
	Field   string `json:"field"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// BatchResult is what the workflow caller sees. A batch with per-field
// errors is still successful as long as persistence went through; Errors is
// always populated when any field failed so the UI can show field-level
// diagnostics.
type BatchResult struct {
	Success          bool                        `json:"success"`
	Status           string                      `json:"status"`
	ExtractedData    map[string]ExtractionResult `json:"extractedData"`
	Confidence       float64                     `json:"confidence"`
	ProcessingTimeMs int64                       `json:"processingTimeMs"`
	Errors           []FieldError                `json:"errors,omitempty"`
	AuditID          uuid.UUID                   `json:"auditId"`
}

func applyPostProcess(value, mode string) string {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "uppercase":
		return strings.ToUpper(value)
	case "lowercase":
		return strings.ToLower(value)
	default:
		// "trim", "none" and anything unrecognized: the trim above already
		// happened.
		return value
	}
}
