package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/site-generator-api/internal/service"
)

// respondError maps service errors onto HTTP responses.
//
// On read paths an access-denied result is rendered with the exact response a
// missing artifact produces, so callers cannot probe whether a private
// artifact exists. Mutations keep the distinction: the caller already proved
// they know the id, and 403 vs 404 is useful feedback there.
func (h *SiteHandler) respondError(c *gin.Context, err error, isRead bool) {
	var validationErr *service.ValidationError
	var upstreamErr *service.UpstreamError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"errors": []gin.H{{"field": validationErr.Field, "message": validationErr.Message}},
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "artifact not found"})
	case errors.Is(err, service.ErrAccessDenied):
		if isRead {
			c.JSON(http.StatusNotFound, gin.H{"error": "artifact not found"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.As(err, &upstreamErr):
		if upstreamErr.Retryable() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content generation temporarily unavailable, retry later"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "content generation rejected the instruction"})
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
