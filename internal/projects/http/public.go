package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ctein-nexus/nexus-backend/internal/projects/validation"
)

func (h *Handler) listPublic(defaultLimit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := validation.PublicQuery(c.Query("limit"), c.Query("offset"), c.Query("search"), defaultLimit)
		page, err := h.public.List(c.Request.Context(), q)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "projects": page.Projects, "pagination": page.Pagination})
	}
}
