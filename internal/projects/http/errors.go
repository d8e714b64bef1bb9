package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
)

// writeError maps the domain error taxonomy onto the uniform error body.
// Causes of 5xx responses are logged and never returned.
func writeError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "validation failed", "details": ve.Fields})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "not authenticated"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "forbidden"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "already exists"})
	default:
		evt := zerolog.Ctx(c.Request.Context()).Error().Err(err)
		var ue *domain.UpstreamError
		if errors.As(err, &ue) {
			evt = evt.Str("op", ue.Op)
		}
		evt.Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}

func badBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"ok":      false,
		"error":   "validation failed",
		"details": []domain.FieldError{{Field: "body", Message: "must be a valid JSON object"}},
	})
}
