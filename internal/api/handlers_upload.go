// handlers_upload.go - Image upload and inference handlers
package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/image-inference/backend/internal/inference"
	"github.com/image-inference/backend/internal/models"
)

// HandleUploadSingle accepts one image under form field "file", stores
// it, runs inference and returns the detection payload.
func (h *Handler) HandleUploadSingle(c echo.Context) error {
	category := c.Param("category")

	fh, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file in request")
	}
	if fh.Filename == "" {
		return NewBadRequestError("no file selected")
	}
	if !h.cfg.IsAllowedExtension(fh.Filename) {
		return NewUnsupportedMediaError(fmt.Sprintf(
			"unsupported file type, allowed: %s", strings.Join(h.cfg.AllowedExtensionList(), ", ")))
	}

	result, err := h.inferOne(c, category, fh, 0)
	if err != nil {
		return err
	}

	fmt.Printf("[API] inference complete: %s, detections: %d\n", result.OriginalFilename, result.DetectionCount)
	return c.JSON(http.StatusOK, models.NewResponse(true, "inference complete", result))
}

// HandleUploadMultiple accepts up to the configured maximum of images
// under form field "files" and runs inference per file, collecting
// per-file outcomes instead of failing the whole batch.
func (h *Handler) HandleUploadMultiple(c echo.Context) error {
	category := c.Param("category")

	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("invalid multipart form")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return NewBadRequestError("no files in request")
	}
	if len(files) > h.cfg.Inference.MaxBatchFiles {
		return NewBadRequestError(fmt.Sprintf(
			"too many files, maximum is %d", h.cfg.Inference.MaxBatchFiles))
	}

	summary := models.BatchSummary{
		TotalFiles: len(files),
		Results:    make([]models.BatchItemResult, 0, len(files)),
	}

	for i, fh := range files {
		item := models.BatchItemResult{
			Index:    i + 1,
			Filename: fh.Filename,
		}

		switch {
		case fh.Filename == "":
			item.Msg = "empty filename"
		case !h.cfg.IsAllowedExtension(fh.Filename):
			item.Msg = "unsupported file type"
		default:
			result, err := h.inferOne(c, category, fh, i+1)
			if err != nil {
				item.Msg = err.Error()
			} else {
				item.OK = true
				item.Msg = "inference succeeded"
				item.Data = result
				summary.SuccessCount++
			}
		}

		summary.Results = append(summary.Results, item)
	}
	summary.FailedCount = summary.TotalFiles - summary.SuccessCount

	msg := fmt.Sprintf("batch inference complete, %d/%d files succeeded",
		summary.SuccessCount, summary.TotalFiles)
	fmt.Printf("[API] %s\n", msg)
	return c.JSON(http.StatusOK, models.NewResponse(true, msg, summary))
}

// inferOne validates, stores and infers one multipart file. index > 0
// marks a batch position and selects the batch filename encoding.
func (h *Handler) inferOne(c echo.Context, category string, fh *multipart.FileHeader, index int) (*models.InferenceResult, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, NewInternalError("failed to read uploaded file", err)
	}
	if err := inference.ValidateImage(data); err != nil {
		return nil, NewBadRequestError("file corrupt or not a valid image")
	}

	filename := sanitizeFilename(fh.Filename)
	ts := time.Now().Unix()

	path, size, err := h.repo.SaveUpload(category, filename, ts, index, bytes.NewReader(data))
	if err != nil {
		return nil, NewInternalError("failed to save file", err)
	}
	fmt.Printf("[API] saved upload %s (%d bytes)\n", path, size)

	visDir, err := h.repo.VisualizationDir(category)
	if err != nil {
		return nil, NewInternalError("failed to prepare visualization directory", err)
	}

	result, err := h.engine.Detect(c.Request().Context(), path, visDir)
	if err != nil {
		return nil, NewInternalError("inference failed", err)
	}

	result.Category = category
	result.OriginalFilename = filename
	result.UploadPath = path
	result.InferenceTime = time.Now().Format(models.TimeFormat)
	return result, nil
}

// sanitizeFilename strips any directory component and replaces
// characters outside [A-Za-z0-9._-] so the name is safe as a path
// segment.
func sanitizeFilename(name string) string {
	base := filepath.Base(filepath.ToSlash(name))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" || out == "." || out == ".." {
		return "upload"
	}
	return out
}
