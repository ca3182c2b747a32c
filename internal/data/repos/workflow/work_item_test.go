package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/fieldtrace/fieldtrace-backend/internal/data/repos/testutil"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/dbctx"
)

func TestGetSourcePrefersLinkRow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewWorkItemRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	orgID := uuid.New()

	item := testutil.SeedWorkItem(t, dbc.Ctx, tx, orgID)
	rec := testutil.SeedAddressRecord(t, dbc.Ctx, tx, orgID)
	testutil.SeedWorkItemSource(t, dbc.Ctx, tx, orgID, item.ID, "address_records", rec.ID)

	src, err := repo.GetSource(dbc, orgID, item.ID)
	if err != nil {
		t.Fatalf("get source: %v", err)
	}
	if src == nil {
		t.Fatal("expected a source link")
	}
	if src.SourceTable != "address_records" || src.SourceID != rec.ID {
		t.Fatalf("wrong source: %s/%s", src.SourceTable, src.SourceID)
	}
}

func TestGetSourceAbsentIsNotAnError(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewWorkItemRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	orgID := uuid.New()

	item := testutil.SeedWorkItem(t, dbc.Ctx, tx, orgID)

	src, err := repo.GetSource(dbc, orgID, item.ID)
	if err != nil {
		t.Fatalf("get source: %v", err)
	}
	if src != nil {
		t.Fatalf("expected no source, got %+v", src)
	}
}

func TestGetScopedWorkItem(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewWorkItemRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	orgID := uuid.New()

	item := testutil.SeedWorkItem(t, dbc.Ctx, tx, orgID)

	if _, err := repo.GetScoped(dbc, orgID, item.ID); err != nil {
		t.Fatalf("get scoped: %v", err)
	}
	if _, err := repo.GetScoped(dbc, uuid.New(), item.ID); !errors.Is(err, ErrWorkItemNotFound) {
		t.Fatalf("foreign org get should be ErrWorkItemNotFound, got %v", err)
	}
}
