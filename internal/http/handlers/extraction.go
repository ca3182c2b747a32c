package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldtrace/fieldtrace-backend/internal/http/response"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/ctxutil"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
	"github.com/fieldtrace/fieldtrace-backend/internal/services/extraction"
)

type ExtractionHandler struct {
	log        *logger.Logger
	extraction extraction.Service
}

func NewExtractionHandler(log *logger.Logger, extractionService extraction.Service) *ExtractionHandler {
	return &ExtractionHandler{
		log:        log.With("Handler", "ExtractionHandler"),
		extraction: extractionService,
	}
}

type processPhotoRequest struct {
	WorkItemID uuid.UUID                      `json:"workItemId" binding:"required"`
	PhotoURL   string                         `json:"photoUrl" binding:"required"`
	Caption    string                         `json:"caption"`
	Config     extraction.PhotoAnalysisConfig `json:"config"`
}

// ProcessPhoto handles POST /api/steps/:id/extract. The workflow engine
// calls this when a photo step completes with analysis enabled.
func (h *ExtractionHandler) ProcessPhoto(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request data"))
		return
	}
	stepID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	var req processPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	result, err := h.extraction.ProcessPhoto(c.Request.Context(), rd.OrganizationID, extraction.ProcessPhotoInput{
		StepID:     stepID,
		WorkItemID: req.WorkItemID,
		Photo:      extraction.PhotoData{URL: req.PhotoURL, Caption: req.Caption},
		Config:     req.Config,
	})
	if err != nil {
		if errors.Is(err, extraction.ErrAnalysisDisabled) {
			response.RespondError(c, http.StatusBadRequest, "analysis_disabled", err)
			return
		}
		h.log.Error("photo extraction batch failed",
			"step_id", stepID, "work_item_id", req.WorkItemID, "error", err)
		// The batch result still carries the failure detail for the caller.
		if result != nil {
			c.JSON(http.StatusUnprocessableEntity, result)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}
	response.RespondOK(c, result)
}

// AuditTrail handles GET /api/work-items/:id/extractions.
func (h *ExtractionHandler) AuditTrail(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request data"))
		return
	}
	workItemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	rows, err := h.extraction.AuditTrail(c.Request.Context(), rd.OrganizationID, workItemID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"extractions": rows})
}
