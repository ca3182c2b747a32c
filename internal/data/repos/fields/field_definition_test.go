package fields

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fieldtrace/fieldtrace-backend/internal/data/repos/testutil"
	"github.com/fieldtrace/fieldtrace-backend/internal/domain"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/dbctx"
)

func TestUpsertInsertsThenUpdates(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewFieldDefinitionRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	orgID := uuid.New()

	first, err := repo.Upsert(dbc, &domain.FieldDefinition{
		OrganizationID:        orgID,
		Table:                 "address_records",
		FieldName:             "install_notes",
		DisplayLabel:          "Install Notes",
		FieldType:             "text",
		ExtractionInstruction: "Transcribe the notes on the work order",
	})
	if err != nil {
		t.Fatalf("insert upsert: %v", err)
	}
	if first.ID == uuid.Nil {
		t.Fatal("expected assigned id")
	}

	// Coarse clocks can hand both upserts the same timestamp.
	time.Sleep(10 * time.Millisecond)

	second, err := repo.Upsert(dbc, &domain.FieldDefinition{
		OrganizationID:        orgID,
		Table:                 "address_records",
		FieldName:             "install_notes",
		DisplayLabel:          "Installation Notes",
		FieldType:             "text",
		ExtractionInstruction: "Transcribe the handwritten notes",
	})
	if err != nil {
		t.Fatalf("update upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert created a second row: %s vs %s", second.ID, first.ID)
	}
	if second.DisplayLabel != "Installation Notes" {
		t.Fatalf("display label not refreshed: %q", second.DisplayLabel)
	}
	if second.ExtractionInstruction != "Transcribe the handwritten notes" {
		t.Fatalf("instruction not refreshed: %q", second.ExtractionInstruction)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("updated_at did not advance: %s -> %s", first.UpdatedAt, second.UpdatedAt)
	}

	defs, err := repo.ListForTable(dbc, orgID, "address_records")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
}

func TestUpsertSameFieldDifferentOrgs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewFieldDefinitionRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	orgA := uuid.New()
	orgB := uuid.New()

	for _, org := range []uuid.UUID{orgA, orgB} {
		if _, err := repo.Upsert(dbc, &domain.FieldDefinition{
			OrganizationID:        org,
			Table:                 "address_records",
			FieldName:             "gate_code",
			DisplayLabel:          "Gate Code",
			FieldType:             "text",
			ExtractionInstruction: "Read the gate code from the keypad photo",
		}); err != nil {
			t.Fatalf("upsert for org %s: %v", org, err)
		}
	}

	defsA, err := repo.ListForTable(dbc, orgA, "address_records")
	if err != nil {
		t.Fatalf("list org a: %v", err)
	}
	if len(defsA) != 1 {
		t.Fatalf("org a should see exactly its own definition, got %d", len(defsA))
	}
	if defsA[0].OrganizationID != orgA {
		t.Fatalf("org a got a row owned by %s", defsA[0].OrganizationID)
	}
}

func TestGetByIdentityScoping(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewFieldDefinitionRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	orgID := uuid.New()

	testutil.SeedFieldDefinition(t, dbc.Ctx, tx, orgID, "address_records", "panel_brand", "Panel Brand", "Read the brand off the breaker panel")

	got, err := repo.GetByIdentity(dbc, orgID, "address_records", "panel_brand")
	if err != nil {
		t.Fatalf("get by identity: %v", err)
	}
	if got.FieldName != "panel_brand" {
		t.Fatalf("wrong row: %q", got.FieldName)
	}

	if _, err := repo.GetByIdentity(dbc, uuid.New(), "address_records", "panel_brand"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign org, got %v", err)
	}
}

func TestDeleteScoped(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewFieldDefinitionRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	orgID := uuid.New()

	def := testutil.SeedFieldDefinition(t, dbc.Ctx, tx, orgID, "address_records", "meter_location", "Meter Location", "Describe where the meter sits")

	if err := repo.Delete(dbc, uuid.New(), def.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign org delete should be ErrNotFound, got %v", err)
	}
	if err := repo.Delete(dbc, orgID, def.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(dbc, orgID, def.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
