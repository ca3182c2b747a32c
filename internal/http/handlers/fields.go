package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	fieldsrepo "github.com/fieldtrace/fieldtrace-backend/internal/data/repos/fields"
	"github.com/fieldtrace/fieldtrace-backend/internal/http/response"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/ctxutil"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
	"github.com/fieldtrace/fieldtrace-backend/internal/platform/apierr"
	"github.com/fieldtrace/fieldtrace-backend/internal/services/fields"
)

type FieldHandler struct {
	log    *logger.Logger
	fields fields.Service
}

func NewFieldHandler(log *logger.Logger, fieldService fields.Service) *FieldHandler {
	return &FieldHandler{
		log:    log.With("Handler", "FieldHandler"),
		fields: fieldService,
	}
}

type upsertFieldRequest struct {
	TableName             string `json:"tableName" binding:"required"`
	FieldName             string `json:"fieldName" binding:"required"`
	DisplayLabel          string `json:"displayLabel"`
	Description           string `json:"description"`
	ExtractionInstruction string `json:"extractionInstruction"`
}

// Upsert handles POST /api/fields.
func (h *FieldHandler) Upsert(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request data"))
		return
	}

	var req upsertFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	def, err := h.fields.Upsert(c.Request.Context(), rd.OrganizationID, fields.UpsertFieldInput{
		TableName:             req.TableName,
		FieldName:             req.FieldName,
		DisplayLabel:          req.DisplayLabel,
		Description:           req.Description,
		ExtractionInstruction: req.ExtractionInstruction,
		CreatedBy:             rd.TechnicianID,
	})
	if err != nil {
		if fields.IsValidationError(err) {
			response.RespondError(c, http.StatusBadRequest, "invalid_field", err)
			return
		}
		h.log.Error("field upsert failed", "table", req.TableName, "field", req.FieldName, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}
	response.RespondOK(c, gin.H{"field": def})
}

// List handles GET /api/fields?table=....
func (h *FieldHandler) List(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request data"))
		return
	}
	table := c.Query("table")
	if table == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_table", errors.New("query parameter \"table\" is required"))
		return
	}

	defs, err := h.fields.ListForTable(c.Request.Context(), rd.OrganizationID, table)
	if err != nil {
		if fields.IsValidationError(err) {
			response.RespondError(c, http.StatusBadRequest, "invalid_table", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}
	response.RespondOK(c, gin.H{"fields": defs})
}

// Delete handles DELETE /api/fields/:id.
func (h *FieldHandler) Delete(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request data"))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	if err := h.fields.Delete(c.Request.Context(), rd.OrganizationID, id); err != nil {
		if errors.Is(err, fieldsrepo.ErrNotFound) {
			response.RespondFromError(c, apierr.NotFound(err))
			return
		}
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": id})
}

type verifyFieldRequest struct {
	TableName string `json:"tableName" binding:"required"`
	FieldName string `json:"fieldName" binding:"required"`
}

// Verify handles POST /api/fields/verify.
func (h *FieldHandler) Verify(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request data"))
		return
	}

	var req verifyFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	result, err := h.fields.Verify(c.Request.Context(), rd.OrganizationID, req.TableName, req.FieldName)
	if err != nil {
		if fields.IsValidationError(err) {
			response.RespondError(c, http.StatusBadRequest, "invalid_table", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}
	response.RespondOK(c, result)
}

// Tables handles GET /api/fields/tables.
func (h *FieldHandler) Tables(c *gin.Context) {
	response.RespondOK(c, gin.H{"tables": h.fields.KnownTables()})
}

// Columns handles GET /api/fields/tables/:table/columns.
func (h *FieldHandler) Columns(c *gin.Context) {
	cols, err := h.fields.ColumnsForTable(c.Param("table"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_table", err)
		return
	}
	response.RespondOK(c, gin.H{"columns": cols})
}
