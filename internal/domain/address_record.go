package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AddressRecord is the installation record mutated by the extraction
// pipeline: a fixed set of typed columns plus one schemaless overflow map
// (CustomFields) for any logical field without a physical column. Every
// read and write is scoped by OrganizationID.
type AddressRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`

	Street string `gorm:"column:street" json:"street,omitempty"`
	City   string `gorm:"column:city" json:"city,omitempty"`

	// Typed columns eligible as ColumnAlias targets. Must stay in sync
	// with schema.AddressRecordColumns.
	RouterSerial   string `gorm:"column:router_serial" json:"router_serial,omitempty"`
	ModemMac       string `gorm:"column:modem_mac" json:"modem_mac,omitempty"`
	MeterNumber    string `gorm:"column:meter_number" json:"meter_number,omitempty"`
	PanelID        string `gorm:"column:panel_id" json:"panel_id,omitempty"`
	GateCode       string `gorm:"column:gate_code" json:"gate_code,omitempty"`
	TechnicianNote string `gorm:"column:technician_note" json:"technician_note,omitempty"`

	// CustomFields is the overflow map. Merges into it must never drop
	// keys already present.
	CustomFields datatypes.JSONMap `gorm:"column:custom_fields;type:jsonb" json:"custom_fields"`

	// Version guards the single batched UPDATE against a concurrent batch
	// touching the same row.
	Version int64 `gorm:"column:version;not null;default:0" json:"version"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (AddressRecord) TableName() string { return "address_records" }
