package fields

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	fieldsrepo "github.com/fieldtrace/fieldtrace-backend/internal/data/repos/fields"
	"github.com/fieldtrace/fieldtrace-backend/internal/data/repos/testutil"
	"github.com/fieldtrace/fieldtrace-backend/internal/domain"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/dbctx"
	"github.com/fieldtrace/fieldtrace-backend/internal/schema"
)

// stubFieldRepo records calls; validation failures must never reach it.
type stubFieldRepo struct {
	upsertCalls int
	lastUpsert  *domain.FieldDefinition
	byIdentity  map[string]*domain.FieldDefinition
}

func (s *stubFieldRepo) Upsert(dbc dbctx.Context, def *domain.FieldDefinition) (*domain.FieldDefinition, error) {
	s.upsertCalls++
	if def.ID == uuid.Nil {
		def.ID = uuid.New()
	}
	s.lastUpsert = def
	return def, nil
}

func (s *stubFieldRepo) GetByID(dbc dbctx.Context, orgID, id uuid.UUID) (*domain.FieldDefinition, error) {
	return nil, fieldsrepo.ErrNotFound
}

func (s *stubFieldRepo) GetByIdentity(dbc dbctx.Context, orgID uuid.UUID, tableName, fieldName string) (*domain.FieldDefinition, error) {
	if def, ok := s.byIdentity[tableName+"/"+fieldName]; ok {
		return def, nil
	}
	return nil, fieldsrepo.ErrNotFound
}

func (s *stubFieldRepo) ListForTable(dbc dbctx.Context, orgID uuid.UUID, tableName string) ([]*domain.FieldDefinition, error) {
	var out []*domain.FieldDefinition
	for _, def := range s.byIdentity {
		if def.Table == tableName {
			out = append(out, def)
		}
	}
	return out, nil
}

func (s *stubFieldRepo) Delete(dbc dbctx.Context, orgID, id uuid.UUID) error { return nil }

func newTestService(t *testing.T, repo *stubFieldRepo) Service {
	t.Helper()
	return NewService(nil, testutil.Logger(t), schema.Default(), repo)
}

func TestUpsertRejectsUnknownTableBeforeStorage(t *testing.T) {
	repo := &stubFieldRepo{}
	svc := newTestService(t, repo)

	_, err := svc.Upsert(context.Background(), uuid.New(), UpsertFieldInput{
		TableName:             "customers",
		FieldName:             "gate_code",
		ExtractionInstruction: "Read the gate code",
	})
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.upsertCalls != 0 {
		t.Fatalf("storage touched despite validation failure: %d calls", repo.upsertCalls)
	}
}

func TestUpsertRejectsBadFieldName(t *testing.T) {
	repo := &stubFieldRepo{}
	svc := newTestService(t, repo)

	for _, bad := range []string{"Install Notes", "1field", "field-name", "UPPER", ""} {
		_, err := svc.Upsert(context.Background(), uuid.New(), UpsertFieldInput{
			TableName:             "address_records",
			FieldName:             bad,
			ExtractionInstruction: "Read it",
		})
		if !IsValidationError(err) {
			t.Fatalf("field name %q should fail validation, got %v", bad, err)
		}
	}
	if repo.upsertCalls != 0 {
		t.Fatalf("storage touched despite validation failures: %d calls", repo.upsertCalls)
	}
}

func TestUpsertRejectsOversizedInstruction(t *testing.T) {
	repo := &stubFieldRepo{}
	svc := newTestService(t, repo)

	_, err := svc.Upsert(context.Background(), uuid.New(), UpsertFieldInput{
		TableName:             "address_records",
		FieldName:             "install_notes",
		ExtractionInstruction: strings.Repeat("x", maxInstructionLength+1),
	})
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.upsertCalls != 0 {
		t.Fatal("storage touched despite oversized instruction")
	}
}

func TestUpsertDefaultsDisplayLabel(t *testing.T) {
	repo := &stubFieldRepo{}
	svc := newTestService(t, repo)

	def, err := svc.Upsert(context.Background(), uuid.New(), UpsertFieldInput{
		TableName:             "address_records",
		FieldName:             "install_notes",
		ExtractionInstruction: "Transcribe the notes",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if def.DisplayLabel != "Install Notes" {
		t.Fatalf("defaulted label: %q", def.DisplayLabel)
	}
	if def.FieldType != "text" {
		t.Fatalf("field type: %q", def.FieldType)
	}
}

func TestVerifyReportsExistence(t *testing.T) {
	orgID := uuid.New()
	repo := &stubFieldRepo{byIdentity: map[string]*domain.FieldDefinition{
		"address_records/install_notes": {
			ID:             uuid.New(),
			OrganizationID: orgID,
			Table:          "address_records",
			FieldName:      "install_notes",
		},
	}}
	svc := newTestService(t, repo)

	got, err := svc.Verify(context.Background(), orgID, "address_records", "install_notes")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !got.Exists || got.Definition == nil {
		t.Fatalf("expected existing field, got %+v", got)
	}

	missing, err := svc.Verify(context.Background(), orgID, "address_records", "never_declared")
	if err != nil {
		t.Fatalf("verify missing: %v", err)
	}
	if missing.Exists {
		t.Fatal("undeclared field reported as existing")
	}
	if len(missing.Definitions) != 1 {
		t.Fatalf("expected table listing alongside the lookup, got %d", len(missing.Definitions))
	}
}

func TestColumnsForTable(t *testing.T) {
	svc := newTestService(t, &stubFieldRepo{})

	cols, err := svc.ColumnsForTable("address_records")
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	byColumn := map[string]string{}
	for _, c := range cols {
		byColumn[c.Column] = c.Label
	}
	if byColumn["router_serial"] != "Router Serial" {
		t.Fatalf("label for router_serial: %q", byColumn["router_serial"])
	}

	if _, err := svc.ColumnsForTable("customers"); !IsValidationError(err) {
		t.Fatalf("unknown table should fail validation, got %v", err)
	}
}

func TestKnownTables(t *testing.T) {
	svc := newTestService(t, &stubFieldRepo{})

	tables := svc.KnownTables()
	if len(tables) != 1 || tables[0] != "address_records" {
		t.Fatalf("known tables: %v", tables)
	}
}
