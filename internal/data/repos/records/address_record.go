package records

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fieldtrace/fieldtrace-backend/internal/domain"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/dbctx"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
	"github.com/fieldtrace/fieldtrace-backend/internal/schema"
)

var (
	ErrRecordNotFound  = errors.New("target record not found")
	ErrVersionConflict = errors.New("record version conflict")
)

// AddressRecordRepo is the column resolver & writer: it decides whether a
// logical field lands in a typed column or the custom_fields overflow map
// and performs the scoped read-modify-write.
//
// WriteMany is the batch primitive: one read and one UPDATE for the whole
// field set, so concurrent fields inside a batch cannot lose overflow keys
// to stale merges. Concurrent batches against the same record are fenced by
// the version column instead; a conflicting UPDATE is retried once from a
// fresh read.
type AddressRecordRepo interface {
	Create(dbc dbctx.Context, rec *domain.AddressRecord) (*domain.AddressRecord, error)
	GetScoped(dbc dbctx.Context, orgID, id uuid.UUID) (*domain.AddressRecord, error)

	// Write persists a single logical field. Unsupported tables are a
	// logged no-op returning (nil, nil) so a table going dark mid-rollout
	// degrades instead of crashing a workflow.
	Write(dbc dbctx.Context, orgID uuid.UUID, table schema.Table, recordID uuid.UUID, field string, value any) (*domain.AddressRecord, error)

	// WriteMany persists a whole batch with one read and one write.
	WriteMany(dbc dbctx.Context, orgID uuid.UUID, table schema.Table, recordID uuid.UUID, fields map[string]any) (*domain.AddressRecord, error)
}

type addressRecordRepo struct {
	db       *gorm.DB
	log      *logger.Logger
	registry *schema.Registry
}

func NewAddressRecordRepo(db *gorm.DB, baseLog *logger.Logger, registry *schema.Registry) AddressRecordRepo {
	repoLog := baseLog.With("repo", "AddressRecordRepo")
	return &addressRecordRepo{db: db, log: repoLog, registry: registry}
}

func (r *addressRecordRepo) Create(dbc dbctx.Context, rec *domain.AddressRecord) (*domain.AddressRecord, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CustomFields == nil {
		rec.CustomFields = datatypes.JSONMap{}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *addressRecordRepo) GetScoped(dbc dbctx.Context, orgID, id uuid.UUID) (*domain.AddressRecord, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var rec domain.AddressRecord
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *addressRecordRepo) Write(dbc dbctx.Context, orgID uuid.UUID, table schema.Table, recordID uuid.UUID, field string, value any) (*domain.AddressRecord, error) {
	return r.WriteMany(dbc, orgID, table, recordID, map[string]any{field: value})
}

func (r *addressRecordRepo) WriteMany(dbc dbctx.Context, orgID uuid.UUID, table schema.Table, recordID uuid.UUID, fields map[string]any) (*domain.AddressRecord, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if !r.registry.IsSupportedTable(table) {
		r.log.Warn("write skipped, table not wired for dynamic fields",
			"table", string(table), "record_id", recordID, "field_count", len(fields))
		return nil, nil
	}
	if len(fields) == 0 {
		return r.GetScoped(dbc, orgID, recordID)
	}

	rec, err := r.GetScoped(dbc, orgID, recordID)
	if err != nil {
		return nil, err
	}

	updated, err := r.writeOnce(dbc, transaction, orgID, table, rec, fields)
	if errors.Is(err, ErrVersionConflict) {
		// Another batch won the race; one fresh read-then-write attempt.
		rec, err = r.GetScoped(dbc, orgID, recordID)
		if err != nil {
			return nil, err
		}
		return r.writeOnce(dbc, transaction, orgID, table, rec, fields)
	}
	return updated, err
}

func (r *addressRecordRepo) writeOnce(dbc dbctx.Context, transaction *gorm.DB, orgID uuid.UUID, table schema.Table, rec *domain.AddressRecord, fields map[string]any) (*domain.AddressRecord, error) {
	now := time.Now().UTC()
	updates := map[string]any{
		"updated_at": now,
		"version":    rec.Version + 1,
	}

	// Partition into columns-subset and overflow-subset; the overflow
	// merge must keep every key already present on the row.
	var merged datatypes.JSONMap
	for field, value := range fields {
		if col, ok := r.registry.ResolveColumn(table, field); ok {
			updates[col] = value
			continue
		}
		if merged == nil {
			merged = make(datatypes.JSONMap, len(rec.CustomFields)+len(fields))
			for k, v := range rec.CustomFields {
				merged[k] = v
			}
		}
		merged[field] = value
	}
	if merged != nil {
		updates["custom_fields"] = merged
	}

	res := transaction.WithContext(dbc.Ctx).
		Model(&domain.AddressRecord{}).
		Where("id = ? AND organization_id = ? AND version = ?", rec.ID, orgID, rec.Version).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrVersionConflict
	}

	// Reflect the update on the already-read row instead of re-reading.
	out := *rec
	out.Version = rec.Version + 1
	out.UpdatedAt = now
	if merged != nil {
		out.CustomFields = merged
	}
	applyColumnUpdates(&out, updates)
	return &out, nil
}

func applyColumnUpdates(rec *domain.AddressRecord, updates map[string]any) {
	for col, val := range updates {
		s, ok := val.(string)
		if !ok {
			continue
		}
		switch col {
		case "router_serial":
			rec.RouterSerial = s
		case "modem_mac":
			rec.ModemMac = s
		case "meter_number":
			rec.MeterNumber = s
		case "panel_id":
			rec.PanelID = s
		case "gate_code":
			rec.GateCode = s
		case "technician_note":
			rec.TechnicianNote = s
		}
	}
}
