package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"plogo-server/internal/domain/profile"
	"plogo-server/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

const (
	ctxProfileIDKey   = "profile_id"
	ctxProfileRoleKey = "profile_role"
)

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(authHeader[len("Bearer "):])
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			c.Abort()
			return
		}

		profileID, role, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ctxProfileIDKey, profileID)
		c.Set(ctxProfileRoleKey, role)
		c.Set("jwt_claims", map[string]any{
			"profile_id": profileID.String(),
			"role":       role.String(),
		})
		c.Next()
	}
}

// RequireRole restricts a route group to one profile role; must run after
// RequireAuth.
func (m *AuthMiddleware) RequireRole(required profile.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetProfileRole(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			c.Abort()
			return
		}

		if role != required {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func GetProfileID(c *gin.Context) (uuid.UUID, bool) {
	profileID, exists := c.Get(ctxProfileIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := profileID.(uuid.UUID)
	return id, ok
}

func GetProfileRole(c *gin.Context) (profile.Role, bool) {
	profileRole, exists := c.Get(ctxProfileRoleKey)
	if !exists {
		return "", false
	}

	role, ok := profileRole.(profile.Role)
	return role, ok
}
