package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fieldtrace/fieldtrace-backend/internal/domain"
)

func SeedAddressRecord(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID) *domain.AddressRecord {
	tb.Helper()
	rec := &domain.AddressRecord{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Street:         "12 Harbor Rd",
		City:           "Duluth",
		CustomFields:   datatypes.JSONMap{},
	}
	if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
		tb.Fatalf("seed address record: %v", err)
	}
	return rec
}

func SeedWorkItem(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID) *domain.WorkItem {
	tb.Helper()
	item := &domain.WorkItem{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Title:          "fiber install",
		Status:         "open",
		Metadata:       datatypes.JSONMap{},
	}
	if err := tx.WithContext(ctx).Create(item).Error; err != nil {
		tb.Fatalf("seed work item: %v", err)
	}
	return item
}

func SeedWorkItemSource(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID, workItemID uuid.UUID, sourceTable string, sourceID uuid.UUID) *domain.WorkItemSource {
	tb.Helper()
	src := &domain.WorkItemSource{
		ID:             uuid.New(),
		OrganizationID: orgID,
		WorkItemID:     workItemID,
		SourceTable:    sourceTable,
		SourceID:       sourceID,
	}
	if err := tx.WithContext(ctx).Create(src).Error; err != nil {
		tb.Fatalf("seed work item source: %v", err)
	}
	return src
}

func SeedWorkStep(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID, workItemID uuid.UUID) *domain.WorkStep {
	tb.Helper()
	step := &domain.WorkStep{
		ID:             uuid.New(),
		OrganizationID: orgID,
		WorkItemID:     workItemID,
		Name:           "photo evidence",
		Status:         "pending",
		Config:         datatypes.JSONMap{},
		Evidence:       datatypes.JSONMap{},
	}
	if err := tx.WithContext(ctx).Create(step).Error; err != nil {
		tb.Fatalf("seed work step: %v", err)
	}
	return step
}

func SeedFieldDefinition(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID, tableName, fieldName, label, instruction string) *domain.FieldDefinition {
	tb.Helper()
	def := &domain.FieldDefinition{
		ID:                    uuid.New(),
		OrganizationID:        orgID,
		Table:                 tableName,
		FieldName:             fieldName,
		DisplayLabel:          label,
		FieldType:             "text",
		ExtractionInstruction: instruction,
	}
	if err := tx.WithContext(ctx).Create(def).Error; err != nil {
		tb.Fatalf("seed field definition: %v", err)
	}
	return def
}
