package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/help-workstation-api/internal/service"
	"github.com/help-workstation-api/internal/validation"
	"github.com/rs/zerolog"
)

// respondError maps service errors onto HTTP responses. Only unexpected
// failures are logged; their details are not sent to the client.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPrecondition):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrSlugTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConfirmationRequired):
		c.JSON(http.StatusPreconditionRequired, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// badRequest reports an undecodable body
func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

// idParam returns a UUID path parameter in canonical lowercase form.
// Anything else cannot name a record, so it is answered with 404 before
// reaching the store.
func idParam(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	id, ok := validation.CanonicalUUID(raw)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": name + " " + raw + ": not found"})
		return "", false
	}
	return id, true
}
