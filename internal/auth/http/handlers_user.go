package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ctein-nexus/nexus-backend/internal/auth"
	"github.com/ctein-nexus/nexus-backend/internal/users"
)

// GetProfile returns the caller's identity and stored profile.
func (h *Handler) GetProfile(c *gin.Context) {
	id, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "not authenticated"})
		return
	}

	user, err := h.profiles.Get(c.Request.Context(), id.UID)
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("get profile")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "identity": id, "user": user})
}

type updateProfileReq struct {
	DisplayName string `json:"display_name" binding:"required,max=255"`
}

// UpdateProfile sets the display name shown on public projects.
func (h *Handler) UpdateProfile(c *gin.Context) {
	uid := auth.UserFirebaseUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "not authenticated"})
		return
	}

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.DisplayName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":      false,
			"error":   "validation failed",
			"details": []gin.H{{"field": "display_name", "message": "is required and at most 255 characters"}},
		})
		return
	}

	user, err := h.profiles.UpdateDisplayName(c.Request.Context(), uid, strings.TrimSpace(req.DisplayName))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "user not found"})
			return
		}
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("update profile")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
		return
	}
	if h.views != nil {
		h.views.Invalidate(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}
