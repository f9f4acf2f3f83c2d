// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers all API routes with the Echo instance.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	// Health check
	e.GET("/test", h.HandleHealth)

	// Upload + inference
	e.POST("/upload/:category/single", h.HandleUploadSingle)
	e.POST("/upload/:category/multiple", h.HandleUploadMultiple)

	// Result management
	e.GET("/results", h.HandleListResults)
	e.GET("/results/msgpack", h.HandleListResultsMsgpack)
	e.GET("/results/download", h.HandleDownloadResults)
	e.GET("/results/download/:category", h.HandleDownloadResults)
	e.DELETE("/results/clean", h.HandleCleanResults)
	e.DELETE("/results/clean/:category", h.HandleCleanCategory)
}
