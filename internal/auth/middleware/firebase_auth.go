package middleware

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ctein-nexus/nexus-backend/internal/auth"
)

// TokenVerifier is satisfied by *auth.Client from the Firebase Admin SDK.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseAuthMiddleware validates Firebase ID tokens and extracts user info
func FirebaseAuthMiddleware(verifier TokenVerifier, admins auth.AdminSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			unauthorized(c, "missing authorization token")
			return
		}

		decoded, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("token rejected")
			unauthorized(c, "invalid token")
			return
		}

		id := auth.Identity{UID: decoded.UID}
		if email, ok := decoded.Claims["email"].(string); ok {
			id.Email = email
		}
		if name, ok := decoded.Claims["name"].(string); ok {
			id.Name = name
		}
		if picture, ok := decoded.Claims["picture"].(string); ok {
			id.Picture = picture
		}
		adminClaim, _ := decoded.Claims["admin"].(bool)
		id.Admin = adminClaim || admins.Contains(id.UID)

		setIdentity(c, id)
		c.Next()
	}
}

// DevIdentityMiddleware authenticates every request as uid. It is only
// installed when the configuration enables the development bypass, which
// config.Validate forbids in production.
func DevIdentityMiddleware(uid string, admins auth.AdminSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		setIdentity(c, auth.Identity{
			UID:   uid,
			Name:  "Development User",
			Admin: admins.Contains(uid),
		})
		c.Next()
	}
}

func setIdentity(c *gin.Context, id auth.Identity) {
	auth.SetIdentity(c, id)

	// Enrich the request logger with the caller.
	logger := zerolog.Ctx(c.Request.Context()).With().Str("uid", id.UID).Logger()
	c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": msg})
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.EqualFold(bearerToken[:7], "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
