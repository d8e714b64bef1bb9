package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ctein-nexus/nexus-backend/internal/auth"
	"github.com/ctein-nexus/nexus-backend/internal/users"
)

type UserEnsurer interface {
	EnsureUser(ctx context.Context, u users.UpsertUser) error
}

// EnsureUser upserts the caller's profile so the public listing can show a
// creator name.
func EnsureUser(repo UserEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.FromContext(c)
		if !ok {
			c.Next()
			return
		}

		err := repo.EnsureUser(c.Request.Context(), users.UpsertUser{
			FirebaseUID: id.UID,
			Email:       id.Email,
			DisplayName: id.Name,
			PhotoURL:    id.Picture,
		})
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("ensure user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
			return
		}
		c.Next()
	}
}
