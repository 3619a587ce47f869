package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/help-workstation-api/internal/models"
	"github.com/help-workstation-api/internal/service"
	"github.com/help-workstation-api/internal/validation"
	"github.com/rs/zerolog"
)

// MessageHandler handles inbound message endpoints
type MessageHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(services *service.Services, log zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		services: services,
		log:      log.With().Str("handler", "message").Logger(),
	}
}

// Create handles POST /v1/messages
func (h *MessageHandler) Create(c *gin.Context) {
	var in models.MessageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}
	if in.Referrer == "" {
		in.Referrer = c.GetHeader("Referer")
	}

	message, err := h.services.Message.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// List handles GET /v1/messages
func (h *MessageHandler) List(c *gin.Context) {
	q := models.MessageQuery{
		Status: models.MessageStatus(c.Query("status")),
		Text:   strings.TrimSpace(c.Query("q")),
	}
	var fields []validation.FieldError
	q.Limit, fields = intQuery(c, "limit", fields)
	q.Offset, fields = intQuery(c, "offset", fields)
	if len(fields) > 0 {
		respondError(c, h.log, &service.ValidationError{Fields: fields})
		return
	}

	page, err := h.services.Message.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /v1/messages/:id
func (h *MessageHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	message, err := h.services.Message.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, message)
}

// UpdateStatus handles PATCH /v1/messages/:id/status
func (h *MessageHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status models.MessageStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	message, err := h.services.Message.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, message)
}
