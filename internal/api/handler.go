package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"eraport-ingestion/internal/config"
	"eraport-ingestion/internal/logger"
	"eraport-ingestion/internal/model"
	pkgerrors "eraport-ingestion/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Pipeline is implemented by ingest.Service.
type Pipeline interface {
	UploadAndValidate(ctx context.Context, path string) (string, error)
	Drafts(ctx context.Context, batchID string) ([]model.DraftRow, error)
	Batches(ctx context.Context) ([]model.DraftBatchSummary, error)
	Confirm(ctx context.Context, req model.ConfirmRequest) (int, error)
	CompleteImport(ctx context.Context, path string, hints model.ImportHints) (model.ImportResults, error)
}

type Handler struct {
	pipeline Pipeline
	validate *validator.Validate
	cfg      *config.Config
	log      zerolog.Logger
}

func NewHandler(pipeline Pipeline, cfg *config.Config) *Handler {
	return &Handler{
		pipeline: pipeline,
		validate: validator.New(),
		cfg:      cfg,
		log:      logger.Get(),
	}
}

func (h *Handler) UploadAndValidate(c *gin.Context) {
	path, cleanup, err := h.saveUpload(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer cleanup()

	batchID, err := h.pipeline.UploadAndValidate(c.Request.Context(), path)
	if err != nil {
		h.log.Error().Err(err).Msg("Upload failed")
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, model.UploadResponse{
		Message:       "File uploaded and validated",
		UploadBatchID: batchID,
	})
}

func (h *Handler) GetDrafts(c *gin.Context) {
	batchID := c.Param("batch_id")
	rows, err := h.pipeline.Drafts(c.Request.Context(), batchID)
	if err != nil {
		h.log.Warn().Err(err).Str("batch_id", batchID).Msg("Failed to get drafts")
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) ListBatches(c *gin.Context) {
	batches, err := h.pipeline.Batches(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list draft batches")
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}

func (h *Handler) Confirm(c *gin.Context) {
	var req model.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: err.Error()})
		return
	}

	processed, err := h.pipeline.Confirm(c.Request.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Str("batch_id", req.UploadBatchID).Msg("Confirm failed")
		h.fail(c, err)
		return
	}

	h.log.Info().Str("batch_id", req.UploadBatchID).Int("processed", processed).Msg("Drafts confirmed")
	c.JSON(http.StatusOK, model.ConfirmResponse{
		Message:        "Data saved successfully",
		ProcessedCount: processed,
	})
}

func (h *Handler) CompleteImport(c *gin.Context) {
	var hints model.ImportHints
	if err := c.ShouldBind(&hints); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Invalid academic year hint"})
		return
	}

	path, cleanup, err := h.saveUpload(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer cleanup()

	results, err := h.pipeline.CompleteImport(c.Request.Context(), path, hints)
	if err != nil {
		h.log.Error().Err(err).Msg("Import failed")
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, model.ImportResponse{
		Message: "Import completed",
		Results: results,
	})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}

// saveUpload writes the "file" form field to a temp file. cleanup removes it
// and must be deferred by the caller as soon as err is nil.
func (h *Handler) saveUpload(c *gin.Context) (string, func(), error) {
	file, err := c.FormFile("file")
	if err != nil {
		return "", nil, pkgerrors.ErrMissingFile
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".xlsx" && ext != ".xlsm" {
		return "", nil, fmt.Errorf("%w: %s", pkgerrors.ErrInvalidFileFormat, file.Filename)
	}
	if limit := h.cfg.Upload.MaxSizeMB << 20; limit > 0 && file.Size > limit {
		return "", nil, fmt.Errorf("%w: file larger than %d MB", pkgerrors.ErrInvalidFileFormat, h.cfg.Upload.MaxSizeMB)
	}

	tmp, err := os.CreateTemp(h.cfg.Upload.TempDir, "raport-*"+ext)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()

	cleanup := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.log.Warn().Err(err).Str("path", path).Msg("Failed to remove temp upload")
		}
	}

	if err := c.SaveUploadedFile(file, path); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to save upload: %w", err)
	}
	return path, cleanup, nil
}

func (h *Handler) fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), model.ErrorResponse{Message: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pkgerrors.ErrMissingFile), errors.Is(err, pkgerrors.ErrInvalidFileFormat):
		return http.StatusBadRequest
	case errors.Is(err, pkgerrors.ErrBatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, pkgerrors.ErrBatchLocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
