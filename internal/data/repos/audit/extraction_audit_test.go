package audit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/fieldtrace/fieldtrace-backend/internal/data/repos/testutil"
	"github.com/fieldtrace/fieldtrace-backend/internal/domain"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/dbctx"
)

func TestCreateAndListForWorkItem(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewExtractionAuditRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	orgID := uuid.New()
	workItemID := uuid.New()

	targetID := uuid.New()
	stored, err := repo.Create(dbc, &domain.ExtractionAudit{
		OrganizationID:    orgID,
		WorkItemID:        workItemID,
		StepID:            uuid.New(),
		TargetTable:       "address_records",
		TargetID:          &targetID,
		ExtractedData:     datatypes.JSON([]byte(`{"routerSerial":{"value":"SN-1"}}`)),
		AverageConfidence: 88,
		Status:            domain.ExtractionStatusCompleted,
		Model:             "gpt-test",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if stored.ID == uuid.Nil {
		t.Fatal("expected assigned id")
	}

	// A failed batch with no resolvable target still gets a row.
	if _, err := repo.Create(dbc, &domain.ExtractionAudit{
		OrganizationID: orgID,
		WorkItemID:     workItemID,
		StepID:         uuid.New(),
		ExtractedData:  datatypes.JSON([]byte(`{}`)),
		Status:         domain.ExtractionStatusFailed,
		ErrorMessage:   "work item has no resolvable extraction target",
	}); err != nil {
		t.Fatalf("create failed-batch row: %v", err)
	}

	rows, err := repo.ListForWorkItem(dbc, orgID, workItemID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 audit rows, got %d", len(rows))
	}

	foreign, err := repo.ListForWorkItem(dbc, uuid.New(), workItemID)
	if err != nil {
		t.Fatalf("foreign list: %v", err)
	}
	if len(foreign) != 0 {
		t.Fatalf("foreign org must see nothing, got %d rows", len(foreign))
	}
}
