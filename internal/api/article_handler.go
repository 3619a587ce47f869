package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/help-workstation-api/internal/models"
	"github.com/help-workstation-api/internal/service"
	"github.com/help-workstation-api/internal/validation"
	"github.com/rs/zerolog"
)

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// List handles GET /v1/articles
func (h *ArticleHandler) List(c *gin.Context) {
	query, fields := parseArticleQuery(c)
	if len(fields) > 0 {
		respondError(c, h.log, &service.ValidationError{Fields: fields})
		return
	}

	page, err := h.services.Article.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Create handles POST /v1/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var content models.ArticleContent
	if err := c.ShouldBindJSON(&content); err != nil {
		badRequest(c)
		return
	}

	article, err := h.services.Article.SaveDraft(c.Request.Context(), "", content, c.GetString(actorKey))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

// Get handles GET /v1/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.services.Article.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Update handles PUT /v1/articles/:id. Every save creates a new version.
func (h *ArticleHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var content models.ArticleContent
	if err := c.ShouldBindJSON(&content); err != nil {
		badRequest(c)
		return
	}

	article, err := h.services.Article.SaveDraft(c.Request.Context(), id, content, c.GetString(actorKey))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// ListVersions handles GET /v1/articles/:id/versions
func (h *ArticleHandler) ListVersions(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	versions, err := h.services.Article.ListVersions(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": versions})
}

// GetVersion handles GET /v1/articles/:id/versions/:version_id
func (h *ArticleHandler) GetVersion(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	versionID, ok := idParam(c, "version_id")
	if !ok {
		return
	}

	version, err := h.services.Article.GetVersion(c.Request.Context(), id, versionID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, version)
}

// Publish handles POST /v1/articles/:id/publish
func (h *ArticleHandler) Publish(c *gin.Context) {
	h.transition(c, h.services.Article.Publish)
}

// Archive handles POST /v1/articles/:id/archive
func (h *ArticleHandler) Archive(c *gin.Context) {
	h.transition(c, h.services.Article.Archive)
}

// Restore handles POST /v1/articles/:id/restore
func (h *ArticleHandler) Restore(c *gin.Context) {
	h.transition(c, h.services.Article.Restore)
}

func (h *ArticleHandler) transition(c *gin.Context, apply func(ctx context.Context, id string) (*models.Article, error)) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	article, err := apply(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// RequestDelete handles POST /v1/articles/:id/deletion
func (h *ArticleHandler) RequestDelete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	confirmation, err := h.services.Article.RequestDelete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusAccepted, confirmation)
}

// ConfirmDelete handles DELETE /v1/articles/:id/deletion/:token
func (h *ArticleHandler) ConfirmDelete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.services.Article.ConfirmDelete(c.Request.Context(), id, c.Param("token")); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().Str("article_id", id).Str("actor", c.GetString(actorKey)).Msg("Article deleted on request")
	c.Status(http.StatusNoContent)
}

// parseArticleQuery turns list query parameters into typed filters. Values
// that do not parse are reported under their parameter name.
func parseArticleQuery(c *gin.Context) (models.ArticleQuery, []validation.FieldError) {
	var q models.ArticleQuery
	var fields []validation.FieldError

	if v := c.Query("status"); v != "" {
		var statuses []models.ArticleStatus
		for _, s := range strings.Split(v, ",") {
			statuses = append(statuses, models.ArticleStatus(strings.TrimSpace(s)))
		}
		q.Filters = append(q.Filters, models.StatusFilter{Statuses: statuses})
	}
	if v := c.Query("category_id"); v != "" {
		q.Filters = append(q.Filters, models.CategoryFilter{CategoryID: v})
	}
	if v := c.Query("visibility"); v != "" {
		q.Filters = append(q.Filters, models.VisibilityFilter{Visibility: models.Visibility(v)})
	}
	if v := c.Query("tag"); v != "" {
		q.Filters = append(q.Filters, models.TagFilter{Tag: v})
	}
	if v := strings.TrimSpace(c.Query("q")); v != "" {
		q.Filters = append(q.Filters, models.TextSearch{Text: v})
	}

	var dates models.DateRange
	for _, bound := range []struct {
		name string
		dst  **time.Time
	}{{"from", &dates.From}, {"to", &dates.To}} {
		v := c.Query(bound.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			fields = append(fields, validation.FieldError{Field: bound.name, Message: "must be an RFC3339 timestamp"})
			continue
		}
		*bound.dst = &t
	}
	if dates.From != nil || dates.To != nil {
		q.Filters = append(q.Filters, dates)
	}

	q.Sort = models.ArticleSort(c.Query("sort"))
	switch c.DefaultQuery("order", "desc") {
	case "desc":
		q.Desc = true
	case "asc":
	default:
		fields = append(fields, validation.FieldError{Field: "order", Message: "must be asc or desc"})
	}

	q.Limit, fields = intQuery(c, "limit", fields)
	q.Offset, fields = intQuery(c, "offset", fields)
	return q, fields
}

func intQuery(c *gin.Context, name string, fields []validation.FieldError) (int, []validation.FieldError) {
	v := c.Query(name)
	if v == "" {
		return 0, fields
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, append(fields, validation.FieldError{Field: name, Message: "must be an integer"})
	}
	return n, fields
}
