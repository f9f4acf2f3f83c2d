// handlers_health.go - Health check handler
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/image-inference/backend/internal/models"
)

// HandleHealth reports server and model status.
func (h *Handler) HandleHealth(c echo.Context) error {
	modelStatus := "not found"
	if h.engine.Ready() {
		modelStatus = "loaded"
	}

	data := map[string]any{
		"server_status":      "running",
		"model_status":       modelStatus,
		"save_directory":     h.repo.Root(),
		"allowed_extensions": h.cfg.AllowedExtensionList(),
		"max_file_size_mb":   h.cfg.Inference.MaxFileSizeMB,
	}
	return c.JSON(http.StatusOK, models.NewResponse(true, "server is running", data))
}
