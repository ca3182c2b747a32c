package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldtrace/fieldtrace-backend/internal/domain"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/ctxutil"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
	"github.com/fieldtrace/fieldtrace-backend/internal/services/fields"
)

type stubFieldService struct {
	lastOrg   uuid.UUID
	lastInput fields.UpsertFieldInput
	upsertErr error
}

func (s *stubFieldService) Upsert(ctx context.Context, orgID uuid.UUID, input fields.UpsertFieldInput) (*domain.FieldDefinition, error) {
	s.lastOrg = orgID
	s.lastInput = input
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	return &domain.FieldDefinition{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Table:          input.TableName,
		FieldName:      input.FieldName,
		DisplayLabel:   input.DisplayLabel,
		FieldType:      "text",
	}, nil
}

func (s *stubFieldService) ListForTable(ctx context.Context, orgID uuid.UUID, tableName string) ([]*domain.FieldDefinition, error) {
	return nil, nil
}

func (s *stubFieldService) Delete(ctx context.Context, orgID, id uuid.UUID) error { return nil }

func (s *stubFieldService) Verify(ctx context.Context, orgID uuid.UUID, tableName, fieldName string) (*fields.VerifyResult, error) {
	return &fields.VerifyResult{}, nil
}

func (s *stubFieldService) KnownTables() []string { return []string{"address_records"} }

func (s *stubFieldService) ColumnsForTable(tableName string) ([]fields.ColumnInfo, error) {
	return []fields.ColumnInfo{{Column: "router_serial", Label: "Router Serial"}}, nil
}

func handlerLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func fieldRouter(t *testing.T, svc fields.Service, orgID uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewFieldHandler(handlerLogger(t), svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{OrganizationID: orgID})
		c.Request = c.Request.WithContext(ctx)
	})
	r.POST("/api/fields", h.Upsert)
	r.GET("/api/fields/tables", h.Tables)
	r.GET("/api/fields/tables/:table/columns", h.Columns)
	return r
}

func TestUpsertHandlerPassesOrgScope(t *testing.T) {
	svc := &stubFieldService{}
	orgID := uuid.New()
	r := fieldRouter(t, svc, orgID)

	body := `{"tableName":"address_records","fieldName":"install_notes","extractionInstruction":"Transcribe the notes"}`
	req := httptest.NewRequest(http.MethodPost, "/api/fields", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastOrg != orgID {
		t.Fatalf("org not propagated: %s", svc.lastOrg)
	}
	if svc.lastInput.FieldName != "install_notes" {
		t.Fatalf("input not bound: %+v", svc.lastInput)
	}
}

func TestUpsertHandlerMapsValidationTo400(t *testing.T) {
	svc := &stubFieldService{upsertErr: &fields.ValidationError{Reason: "field name \"Bad Name\" is not a valid identifier"}}
	r := fieldRouter(t, svc, uuid.New())

	body := `{"tableName":"address_records","fieldName":"Bad Name","extractionInstruction":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/api/fields", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error.Code != "invalid_field" {
		t.Fatalf("error code: %q", envelope.Error.Code)
	}
}

func TestTablesAndColumnsHandlers(t *testing.T) {
	r := fieldRouter(t, &stubFieldService{}, uuid.New())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fields/tables", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "address_records") {
		t.Fatalf("tables: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fields/tables/address_records/columns", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Router Serial") {
		t.Fatalf("columns: %d %s", rec.Code, rec.Body.String())
	}
}
