package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/nestfinance/nest-core/internal/export"
	"github.com/nestfinance/nest-core/internal/middleware"
	"github.com/nestfinance/nest-core/internal/session"
)

// ExportHandler handles snapshot export HTTP requests
type ExportHandler struct {
	sessions *session.Manager
	exporter *export.Exporter
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(sessions *session.Manager, exporter *export.Exporter) *ExportHandler {
	return &ExportHandler{sessions: sessions, exporter: exporter}
}

// ExportResponse represents the export result in API responses
type ExportResponse struct {
	URL string `json:"url"`
}

// Export handles POST /api/export
//
// The current snapshot is serialised to JSON, uploaded to object storage
// and returned as a short-lived download link.
func (h *ExportHandler) Export(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	if h.exporter == nil {
		return NewInternalError(c, "Export storage is not configured")
	}

	snap := h.sessions.StoreFor(userID).Snapshot()
	if snap.Loading {
		return NewValidationError(c, "Store is still loading, retry shortly")
	}

	url, err := h.exporter.Export(c.Request().Context(), snap)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Snapshot export failed")
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, ExportResponse{URL: url})
}
