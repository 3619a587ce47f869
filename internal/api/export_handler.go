package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/help-workstation-api/internal/service"
	"github.com/rs/zerolog"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /v1/articles/export?format=...
// Streams the export directly to the response
func (h *ExportHandler) StreamExport(c *gin.Context) {
	format := c.DefaultQuery("format", "ndjson")

	h.log.Info().
		Str("format", format).
		Str("actor", c.GetString(actorKey)).
		Msg("Starting streaming export")

	err := h.services.Export.StreamArticles(c.Request.Context(), c.Writer, format)
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		respondError(c, h.log, err)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("format", format).Msg("Export failed")
		// Can't return error JSON after streaming has started
		return
	}
}
