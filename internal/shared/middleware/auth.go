package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gigmarket-backend/internal/shared/response"
	"gigmarket-backend/pkg/jwt"
)

// ContextUserID is the gin context key carrying the authenticated actor id.
const ContextUserID = "user_id"

// AuthMiddleware verifies the Bearer token and stores the actor id in the
// request context. The engine trusts this id without re-checking credentials.
func AuthMiddleware(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "missing or malformed authorization header")
			c.Abort()
			return
		}

		claims, err := manager.ValidateAccessToken(token)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "invalid user id in token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// OptionalAuthMiddleware sets the actor id when a valid token is present
// but lets anonymous requests through. Search uses it to widen status
// visibility for posters.
func OptionalAuthMiddleware(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := manager.ValidateAccessToken(token); err == nil {
				if userID, err := uuid.Parse(claims.UserID); err == nil {
					c.Set(ContextUserID, userID)
				}
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}

	return parts[1], true
}

// ActorID reads the authenticated actor id set by AuthMiddleware.
func ActorID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := v.(uuid.UUID)
	return id, ok
}

// RequireActor aborts with 401 when no actor id is present.
func RequireActor(c *gin.Context) (uuid.UUID, bool) {
	id, ok := ActorID(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		c.Abort()
	}
	return id, ok
}
