// handlers.go - Result management handlers: listing, export, cleanup
package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/image-inference/backend/internal/config"
	"github.com/image-inference/backend/internal/inference"
	"github.com/image-inference/backend/internal/models"
	"github.com/image-inference/backend/internal/results"
)

// Handler handles API requests.
type Handler struct {
	repo   results.Repository
	engine inference.Engine
	cfg    *config.AppConfig
}

// NewHandler creates a new API handler.
func NewHandler(repo results.Repository, engine inference.Engine, cfg *config.AppConfig) *Handler {
	return &Handler{
		repo:   repo,
		engine: engine,
		cfg:    cfg,
	}
}

// HandleListResults returns all result records for the requested
// scope (optional ?category=) plus summary statistics.
func (h *Handler) HandleListResults(c echo.Context) error {
	category := c.QueryParam("category")

	records, summary, err := h.repo.List(category)
	if err != nil {
		return NewInternalError("failed to list results", err)
	}

	data := map[string]any{
		"summary": summary,
		"results": records,
	}
	msg := fmt.Sprintf("retrieved %d inference results", len(records))
	return c.JSON(http.StatusOK, models.NewResponse(true, msg, data))
}

// HandleListResultsMsgpack returns the listing in MessagePack format,
// which is considerably smaller than JSON for large result sets. The
// encoder reuses the json struct tags so both listings share one key
// vocabulary.
func (h *Handler) HandleListResultsMsgpack(c echo.Context) error {
	category := c.QueryParam("category")

	records, summary, err := h.repo.List(category)
	if err != nil {
		return NewInternalError("failed to list results", err)
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	err = enc.Encode(models.NewResponse(true,
		fmt.Sprintf("retrieved %d inference results", len(records)),
		map[string]any{"summary": summary, "results": records},
	))
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", buf.Bytes())
}

// HandleDownloadResults streams a zip archive of the requested scope:
// every category, or just :category when present. The temporary
// archive is removed once the transfer finishes, on every exit path.
func (h *Handler) HandleDownloadResults(c echo.Context) error {
	category := c.Param("category")

	arch, err := h.repo.BuildArchive(category)
	if err != nil {
		if errors.Is(err, results.ErrCategoryNotFound) {
			return NewNotFoundError(fmt.Sprintf("category '%s' does not exist or has no files", category))
		}
		return NewInternalError("failed to build results archive", err)
	}
	defer arch.Remove()

	fmt.Printf("[API] results archive %s: %d files\n", arch.Name, arch.FileCount)
	return c.Attachment(arch.Path, arch.Name)
}

// HandleCleanResults deletes every stored result and recreates the
// empty storage subtrees.
func (h *Handler) HandleCleanResults(c echo.Context) error {
	files, dirs, err := h.repo.CleanAll()
	if err != nil {
		return NewInternalError("cleanup failed", err)
	}

	msg := fmt.Sprintf("cleanup complete: deleted %d files and %d directories", files, dirs)
	data := map[string]int{
		"files_deleted": files,
		"dirs_deleted":  dirs,
	}
	return c.JSON(http.StatusOK, models.NewResponse(true, msg, data))
}

// HandleCleanCategory deletes one category's results. Deleting
// nothing is a 404: cleanup success requires actual removal.
func (h *Handler) HandleCleanCategory(c echo.Context) error {
	category := c.Param("category")

	files, err := h.repo.CleanCategory(category)
	if err != nil {
		if errors.Is(err, results.ErrCategoryNotFound) {
			return NewNotFoundError(fmt.Sprintf("category '%s' does not exist or is already empty", category))
		}
		return NewInternalError("cleanup failed", err)
	}

	msg := fmt.Sprintf("cleaned category '%s': deleted %d files", category, files)
	data := map[string]int{"files_deleted": files}
	return c.JSON(http.StatusOK, models.NewResponse(true, msg, data))
}
