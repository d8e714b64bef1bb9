package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ctein-nexus/nexus-backend/internal/auth"
	"github.com/ctein-nexus/nexus-backend/internal/projects/validation"
)

func (h *Handler) listProjects(c *gin.Context) {
	items, err := h.projects.List(c.Request.Context(), auth.UserFirebaseUID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items, "total": len(items)})
}

func (h *Handler) createProject(c *gin.Context) {
	var req validation.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	p, err := h.projects.Create(c.Request.Context(), auth.UserFirebaseUID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) getProject(c *gin.Context) {
	p, err := h.projects.Get(c.Request.Context(), c.Param("id"), auth.UserFirebaseUID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) updateProject(c *gin.Context) {
	var req validation.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	p, err := h.projects.Update(c.Request.Context(), c.Param("id"), auth.UserFirebaseUID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) deleteProject(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), c.Param("id"), auth.UserFirebaseUID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "project deleted"})
}
