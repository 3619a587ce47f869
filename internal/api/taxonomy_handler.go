package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/help-workstation-api/internal/models"
	"github.com/help-workstation-api/internal/service"
	"github.com/rs/zerolog"
)

// TaxonomyHandler handles category, audience and tag endpoints. The same
// handlers serve every taxonomy; the route fixes the kind.
type TaxonomyHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewTaxonomyHandler creates a new TaxonomyHandler
func NewTaxonomyHandler(services *service.Services, log zerolog.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{
		services: services,
		log:      log.With().Str("handler", "taxonomy").Logger(),
	}
}

// List handles GET /v1/{kind}
func (h *TaxonomyHandler) List(kind models.TermKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		terms, err := h.services.Taxonomy.List(c.Request.Context(), kind)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": terms})
	}
}

// Create handles POST /v1/{kind}
func (h *TaxonomyHandler) Create(kind models.TermKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.TermInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c)
			return
		}

		term, err := h.services.Taxonomy.Create(c.Request.Context(), kind, in)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusCreated, term)
	}
}

// Update handles PUT /v1/{kind}/:id
func (h *TaxonomyHandler) Update(kind models.TermKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var in models.TermInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c)
			return
		}

		term, err := h.services.Taxonomy.Update(c.Request.Context(), kind, id, in)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, term)
	}
}

// Delete handles DELETE /v1/{kind}/:id
func (h *TaxonomyHandler) Delete(kind models.TermKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := h.services.Taxonomy.Delete(c.Request.Context(), kind, id); err != nil {
			respondError(c, h.log, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// Reorder handles PUT /v1/{kind}/order
func (h *TaxonomyHandler) Reorder(kind models.TermKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			IDs []string `json:"ids"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}

		terms, err := h.services.Taxonomy.Reorder(c.Request.Context(), kind, req.IDs)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": terms})
	}
}

// GetCategoryAudiences handles GET /v1/categories/:id/audiences
func (h *TaxonomyHandler) GetCategoryAudiences(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ids, err := h.services.Taxonomy.CategoryAudiences(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audience_ids": ids})
}

// SetCategoryAudiences handles PUT /v1/categories/:id/audiences
func (h *TaxonomyHandler) SetCategoryAudiences(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		AudienceIDs []string `json:"audience_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	ids, err := h.services.Taxonomy.SetCategoryAudiences(c.Request.Context(), id, req.AudienceIDs)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audience_ids": ids})
}
