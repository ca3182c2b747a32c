package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/fieldtrace/fieldtrace-backend/internal/clients/gcp"
	"github.com/fieldtrace/fieldtrace-backend/internal/clients/openai"
	"github.com/fieldtrace/fieldtrace-backend/internal/data/repos"
	"github.com/fieldtrace/fieldtrace-backend/internal/data/repos/fields"
	"github.com/fieldtrace/fieldtrace-backend/internal/domain"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/ctxutil"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/dbctx"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
	"github.com/fieldtrace/fieldtrace-backend/internal/schema"
)

var (
	ErrAnalysisDisabled  = errors.New("photo analysis is not enabled for this step")
	ErrNoSource          = errors.New("work item has no resolvable extraction target")
	ErrNoValueFromPhotos = errors.New("no value extracted from any photo")
)

// Service runs extraction batches: one photo in, N fields resolved,
// inferred, persisted through a single batched write, audited, and
// projected into step evidence.
type Service interface {
	ProcessPhoto(ctx context.Context, orgID uuid.UUID, input ProcessPhotoInput) (*BatchResult, error)

	// ExtractFieldFromPhotos tries photos in order and returns the first
	// non-empty successful value; later photos are never attempted. Order
	// is load-bearing: callers supply photos by priority.
	ExtractFieldFromPhotos(ctx context.Context, photos []PhotoData, instruction string) (string, float64, error)

	// AuditTrail lists the extraction history for one work item, newest
	// first. Read-only operator surface.
	AuditTrail(ctx context.Context, orgID, workItemID uuid.UUID) ([]*domain.ExtractionAudit, error)
}

type Config struct {
	MaxConcurrency int
	FieldTimeout   time.Duration
}

type service struct {
	log       *logger.Logger
	registry  *schema.Registry
	fieldDefs repos.FieldDefinitionRepo
	records   repos.AddressRecordRepo
	workItems repos.WorkItemRepo
	workSteps repos.WorkStepRepo
	audits    repos.ExtractionAuditRepo
	extractor Extractor
	photos    gcp.PhotoFetcher

	maxConcurrency int
	fieldTimeout   time.Duration
}

func NewService(
	log *logger.Logger,
	registry *schema.Registry,
	fieldDefs repos.FieldDefinitionRepo,
	records repos.AddressRecordRepo,
	workItems repos.WorkItemRepo,
	workSteps repos.WorkStepRepo,
	audits repos.ExtractionAuditRepo,
	extractor Extractor,
	photos gcp.PhotoFetcher,
	cfg Config,
) Service {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 3
	}
	if cfg.FieldTimeout <= 0 {
		cfg.FieldTimeout = 45 * time.Second
	}
	return &service{
		log:            log.With("service", "ExtractionService"),
		registry:       registry,
		fieldDefs:      fieldDefs,
		records:        records,
		workItems:      workItems,
		workSteps:      workSteps,
		audits:         audits,
		extractor:      extractor,
		photos:         photos,
		maxConcurrency: cfg.MaxConcurrency,
		fieldTimeout:   cfg.FieldTimeout,
	}
}

// plannedField is one extraction request after metadata resolution.
type plannedField struct {
	req         ExtractionRequest
	table       schema.Table
	field       string
	label       string
	instruction string
}

func (s *service) ProcessPhoto(ctx context.Context, orgID uuid.UUID, input ProcessPhotoInput) (*BatchResult, error) {
	start := time.Now()
	dbc := dbctx.Context{Ctx: ctx}
	res := &BatchResult{ExtractedData: map[string]ExtractionResult{}}

	if !input.Config.Enabled || len(input.Config.Extractions) == 0 {
		return nil, ErrAnalysisDisabled
	}

	srcTable, srcID, err := s.resolveSource(dbc, orgID, input.WorkItemID)
	if err != nil {
		// The batch cannot go anywhere, but the attempt still leaves a
		// trace: an audit row with no target.
		res.Status = domain.ExtractionStatusFailed
		res.ProcessingTimeMs = time.Since(start).Milliseconds()
		s.writeAudit(dbc, orgID, input, res, "", nil, err.Error())
		return res, err
	}

	plan := s.resolveRequests(dbc, orgID, srcTable, input.Config.Extractions, res)

	// One fetch per batch; every field reads the same photo.
	var image openai.ImageInput
	if len(plan) > 0 {
		data, mime, fetchErr := s.photos.Fetch(ctx, input.Photo.URL)
		if fetchErr != nil {
			for _, pf := range plan {
				res.Errors = append(res.Errors, FieldError{
					Field:   pf.field,
					Kind:    ErrKindExtraction,
					Message: fmt.Sprintf("photo unavailable: %v", fetchErr),
				})
			}
			plan = nil
		} else {
			image = openai.ImageInput{ImageURL: openai.DataURL(mime, data), Detail: "high"}
		}
	}

	s.runInference(ctx, plan, image, res)

	// In-flight inference was allowed to finish; a cancelled batch stops
	// short of the write.
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.Status = domain.ExtractionStatusFailed
		res.ProcessingTimeMs = time.Since(start).Milliseconds()
		s.writeAudit(dbc, orgID, input, res, string(srcTable), &srcID, "batch cancelled before persistence")
		return res, ctxErr
	}

	if err := s.persist(dbc, orgID, srcTable, srcID, res); err != nil {
		res.Errors = append(res.Errors, FieldError{Field: "*", Kind: ErrKindPersistence, Message: err.Error()})
		res.Status = domain.ExtractionStatusFailed
		res.ProcessingTimeMs = time.Since(start).Milliseconds()
		s.writeAudit(dbc, orgID, input, res, string(srcTable), &srcID, err.Error())
		return res, err
	}

	res.Success = true
	res.Confidence = averageConfidence(res.ExtractedData)
	if len(res.Errors) > 0 {
		res.Status = domain.ExtractionStatusCompletedWithErrors
	} else {
		res.Status = domain.ExtractionStatusCompleted
	}
	res.ProcessingTimeMs = time.Since(start).Milliseconds()

	s.writeAudit(dbc, orgID, input, res, string(srcTable), &srcID, "")
	s.projectEvidence(dbc, orgID, input.StepID, res)

	return res, nil
}

// resolveSource prefers the work item's source link and falls back to
// scanning legacy metadata for a known identifier key.
func (s *service) resolveSource(dbc dbctx.Context, orgID, workItemID uuid.UUID) (schema.Table, uuid.UUID, error) {
	src, err := s.workItems.GetSource(dbc, orgID, workItemID)
	if err != nil {
		return "", uuid.Nil, err
	}
	if src != nil {
		return schema.Table(src.SourceTable), src.SourceID, nil
	}

	item, err := s.workItems.GetScoped(dbc, orgID, workItemID)
	if err != nil {
		return "", uuid.Nil, err
	}
	for _, key := range []string{"addressRecordId", "address_record_id"} {
		raw, ok := item.Metadata[key]
		if !ok {
			continue
		}
		str, ok := raw.(string)
		if !ok {
			continue
		}
		id, parseErr := uuid.Parse(str)
		if parseErr != nil {
			continue
		}
		return schema.TableAddressRecords, id, nil
	}
	return "", uuid.Nil, ErrNoSource
}

// resolveRequests resolves field metadata and applies the pre-flight gate:
// a field that resolves to neither a physical column nor a declared
// definition never reaches inference.
func (s *service) resolveRequests(dbc dbctx.Context, orgID uuid.UUID, srcTable schema.Table, requests []ExtractionRequest, res *BatchResult) []plannedField {
	plan := make([]plannedField, 0, len(requests))

	for _, req := range requests {
		pf := plannedField{
			req:         req,
			table:       schema.Table(req.TargetTable),
			field:       req.TargetField,
			label:       "",
			instruction: strings.TrimSpace(req.ExtractionInstruction),
		}
		if pf.table == "" {
			pf.table = srcTable
		}

		if req.FieldID != nil {
			def, err := s.fieldDefs.GetByID(dbc, orgID, *req.FieldID)
			if err != nil {
				res.Errors = append(res.Errors, FieldError{
					Field:   req.TargetField,
					Kind:    ErrKindConfiguration,
					Message: fmt.Sprintf("field definition %s: %v", req.FieldID, err),
				})
				continue
			}
			pf.table = schema.Table(def.Table)
			pf.field = def.FieldName
			pf.label = def.DisplayLabel
			if pf.instruction == "" {
				pf.instruction = def.ExtractionInstruction
			}
		}

		if pf.field == "" || pf.instruction == "" {
			res.Errors = append(res.Errors, FieldError{
				Field:   pf.field,
				Kind:    ErrKindValidation,
				Message: "extraction request needs a target field and an instruction",
			})
			continue
		}

		// The batch persists to exactly one record; a request aimed at a
		// different table has nowhere to land.
		if pf.table != srcTable {
			res.Errors = append(res.Errors, FieldError{
				Field:   pf.field,
				Kind:    ErrKindConfiguration,
				Message: fmt.Sprintf("field targets table %q but this work item's record lives in %q", pf.table, srcTable),
			})
			continue
		}

		if _, hasColumn := s.registry.ResolveColumn(pf.table, pf.field); !hasColumn {
			// No physical column: only a declared definition makes this
			// field persistable (via the overflow map). Anything else is
			// skipped before spending an inference call on it.
			if _, err := s.fieldDefs.GetByIdentity(dbc, orgID, string(pf.table), pf.field); err != nil {
				if errors.Is(err, fields.ErrNotFound) {
					res.Errors = append(res.Errors, FieldError{
						Field:   pf.field,
						Kind:    ErrKindConfiguration,
						Message: fmt.Sprintf("field %q does not exist on table %q; create it first", pf.field, pf.table),
					})
				} else {
					res.Errors = append(res.Errors, FieldError{
						Field:   pf.field,
						Kind:    ErrKindConfiguration,
						Message: err.Error(),
					})
				}
				continue
			}
		}

		if pf.label == "" {
			pf.label = pf.field
		}
		plan = append(plan, pf)
	}
	return plan
}

// runInference fans the eligible fields out over a bounded worker set; the
// accumulator is shared under a mutex, failures stay per-field.
func (s *service) runInference(ctx context.Context, plan []plannedField, image openai.ImageInput, res *BatchResult) {
	if len(plan) == 0 {
		return
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)

	// In-flight calls run to completion even when the batch is cancelled;
	// the cancellation gate sits between inference and persistence.
	base := context.WithoutCancel(ctx)

	for _, pf := range plan {
		pf := pf
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(base, s.fieldTimeout)
			defer cancel()

			infRes, err := s.extractor.Extract(fctx, image, pf.instruction)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err != nil:
				res.Errors = append(res.Errors, fieldExtractionError(pf, err.Error()))
			case infRes == nil || !infRes.Success || strings.TrimSpace(infRes.ExtractedText) == "":
				res.Errors = append(res.Errors, fieldExtractionError(pf, "no value found in photo"))
			default:
				res.ExtractedData[pf.field] = ExtractionResult{
					Value:        applyPostProcess(infRes.ExtractedText, pf.req.PostProcess),
					Confidence:   infRes.Confidence,
					DisplayLabel: pf.label,
					TargetTable:  string(pf.table),
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

func fieldExtractionError(pf plannedField, msg string) FieldError {
	if pf.req.Required {
		msg += " (required field)"
	}
	return FieldError{Field: pf.field, Kind: ErrKindExtraction, Message: msg}
}

// persist writes all accumulated results in one batched read-modify-write.
func (s *service) persist(dbc dbctx.Context, orgID uuid.UUID, srcTable schema.Table, srcID uuid.UUID, res *BatchResult) error {
	if len(res.ExtractedData) == 0 {
		return nil
	}

	values := make(map[string]any, len(res.ExtractedData))
	for field, r := range res.ExtractedData {
		values[field] = r.Value
	}

	updated, err := s.records.WriteMany(dbc, orgID, srcTable, srcID, values)
	if err != nil {
		return fmt.Errorf("persist extracted fields: %w", err)
	}
	if updated == nil {
		// Storage not wired up for this table; non-fatal, but visible.
		res.Errors = append(res.Errors, FieldError{
			Field:   "*",
			Kind:    ErrKindUnsupportedTable,
			Message: fmt.Sprintf("table %q is not wired for dynamic field writes; extracted values were not persisted", srcTable),
		})
	}
	return nil
}

func (s *service) writeAudit(dbc dbctx.Context, orgID uuid.UUID, input ProcessPhotoInput, res *BatchResult, targetTable string, targetID *uuid.UUID, errMsg string) {
	// The trail outlives the request: a cancelled batch still gets its row.
	dbc.Ctx = context.WithoutCancel(ctxutil.Default(dbc.Ctx))

	payload, marshalErr := json.Marshal(res.ExtractedData)
	if marshalErr != nil {
		payload = []byte("{}")
	}

	if errMsg == "" && len(res.Errors) > 0 {
		msgs := make([]string, 0, len(res.Errors))
		for _, fe := range res.Errors {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
		}
		errMsg = strings.Join(msgs, "; ")
	}

	row := &domain.ExtractionAudit{
		OrganizationID:    orgID,
		WorkItemID:        input.WorkItemID,
		StepID:            input.StepID,
		TargetTable:       targetTable,
		TargetID:          targetID,
		ExtractedData:     datatypes.JSON(payload),
		AverageConfidence: averageConfidence(res.ExtractedData),
		Status:            res.Status,
		Model:             s.extractor.Model(),
		ProcessingTimeMs:  res.ProcessingTimeMs,
		ErrorMessage:      errMsg,
	}

	stored, err := s.audits.Create(dbc, row)
	if err != nil {
		// Losing the trace is bad but not worth failing a batch whose
		// record write already went through.
		s.log.Error("failed to append extraction audit",
			"work_item_id", input.WorkItemID, "step_id", input.StepID, "error", err)
		return
	}
	res.AuditID = stored.ID
}

// projectEvidence writes the flat field → value view into step evidence so
// downstream workflow logic never needs to know the storage split.
func (s *service) projectEvidence(dbc dbctx.Context, orgID, stepID uuid.UUID, res *BatchResult) {
	entries := make(map[string]any, len(res.ExtractedData)+1)
	extracted := make([]string, 0, len(res.ExtractedData))
	for field, r := range res.ExtractedData {
		entries[field] = r.Value
		extracted = append(extracted, field)
	}
	entries["_extractionMetadata"] = map[string]any{
		"confidence":       res.Confidence,
		"extractedFields":  extracted,
		"processingTimeMs": res.ProcessingTimeMs,
	}

	if _, err := s.workSteps.MergeEvidence(dbc, orgID, stepID, entries); err != nil {
		s.log.Warn("failed to merge extraction evidence into step",
			"step_id", stepID, "error", err)
	}
}

func (s *service) ExtractFieldFromPhotos(ctx context.Context, photos []PhotoData, instruction string) (string, float64, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return "", 0, fmt.Errorf("extraction instruction required")
	}

	var lastErr error
	for _, photo := range photos {
		if ctx.Err() != nil {
			return "", 0, ctx.Err()
		}

		data, mime, err := s.photos.Fetch(ctx, photo.URL)
		if err != nil {
			lastErr = err
			continue
		}

		fctx, cancel := context.WithTimeout(ctx, s.fieldTimeout)
		infRes, err := s.extractor.Extract(fctx, openai.ImageInput{ImageURL: openai.DataURL(mime, data), Detail: "high"}, instruction)
		cancel()
		if err != nil {
			lastErr = err
			continue
		}
		if infRes != nil && infRes.Success && strings.TrimSpace(infRes.ExtractedText) != "" {
			return strings.TrimSpace(infRes.ExtractedText), infRes.Confidence, nil
		}
	}

	if lastErr != nil {
		return "", 0, fmt.Errorf("%w: last error: %v", ErrNoValueFromPhotos, lastErr)
	}
	return "", 0, ErrNoValueFromPhotos
}

func (s *service) AuditTrail(ctx context.Context, orgID, workItemID uuid.UUID) ([]*domain.ExtractionAudit, error) {
	return s.audits.ListForWorkItem(dbctx.Context{Ctx: ctx}, orgID, workItemID)
}

func averageConfidence(results map[string]ExtractionResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Confidence
	}
	return sum / float64(len(results))
}
