package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/ctxutil"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestRequireOrgAttachesRequestData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	orgID := uuid.New()
	techID := uuid.New()

	var seen *ctxutil.RequestData
	r := gin.New()
	r.Use(NewOrgMiddleware(testLogger(t)).RequireOrg())
	r.GET("/ping", func(c *gin.Context) {
		seen = ctxutil.GetRequestData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Organization-ID", orgID.String())
	req.Header.Set("X-Technician-ID", techID.String())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	if seen == nil {
		t.Fatal("request data not attached")
	}
	if seen.OrganizationID != orgID || seen.TechnicianID != techID {
		t.Fatalf("request data: %+v", seen)
	}
}

func TestRequireOrgRejectsMissingOrInvalidHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(NewOrgMiddleware(testLogger(t)).RequireOrg())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for name, header := range map[string]string{
		"missing": "",
		"garbage": "not-a-uuid",
		"nil":     uuid.Nil.String(),
	} {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if header != "" {
			req.Header.Set("X-Organization-ID", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s header: status %d, want 401", name, rec.Code)
		}
	}
}
