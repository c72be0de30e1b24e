package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docqa-backend/internal/shared/auth"
	"docqa-backend/internal/shared/server/respond"
	"docqa-backend/internal/shared/telemetry"
)

const (
	userIDKey       = "userId"
	authSourceKey   = "authSource"
	sessionCookie   = "session_id"
	devUserIDHeader = "X-User-Id"
)

// AuthConfig selects the identity sources Auth accepts.
type AuthConfig struct {
	Env    string
	Secret []byte
	// Sessions enables the session_id cookie. Nil disables it.
	Sessions auth.SessionStore
}

// Auth resolves the caller's identity from a bearer token, a session cookie or,
// in dev, the X-User-Id header, and stores it in context.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	devLike := isDevLike(cfg.Env)
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		if authHeader := strings.TrimSpace(c.GetHeader("Authorization")); authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			if token == "" {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			claims, err := auth.VerifyJWT(cfg.Secret, token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			setIdentity(c, claims.Subject, "jwt")
			c.Next()
			return
		}

		if cfg.Sessions != nil {
			if sessionID, err := c.Cookie(sessionCookie); err == nil && strings.TrimSpace(sessionID) != "" {
				owner, err := cfg.Sessions.Lookup(c.Request.Context(), sessionID)
				if err != nil {
					if !errors.Is(err, auth.ErrSessionNotFound) {
						telemetry.Error("auth.session_lookup_failed", map[string]any{
							"error":      err,
							"request_id": RequestIDFromContext(c),
						})
					}
					respond.Error(c, http.StatusUnauthorized, "unauthorized", "Invalid session", nil)
					return
				}
				setIdentity(c, owner, "session")
				c.Next()
				return
			}
		}

		if devLike {
			if userID := strings.TrimSpace(c.GetHeader(devUserIDHeader)); userID != "" {
				setIdentity(c, userID, "header")
				c.Next()
				return
			}
		}

		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
	}
}

func setIdentity(c *gin.Context, userID, source string) {
	c.Set(userIDKey, userID)
	c.Set(authSourceKey, source)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	}
	return false
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
