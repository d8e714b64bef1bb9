package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ctein-nexus/nexus-backend/internal/auth"
)

// RequireAdmin must run after an identity middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.FromContext(c)
		if !ok {
			unauthorized(c, "not authenticated")
			return
		}
		if !id.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "error": "admin access required"})
			return
		}
		c.Next()
	}
}
