package middleware

import (
	"strings"

	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
	"github.com/NafisaTasnimR/UpNext/internal/utils"
	"github.com/NafisaTasnimR/UpNext/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
)

// AuthRequired checks the bearer token and stores the caller's identity in the context
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "authorization header required")
			c.Abort()
			return
		}

		// "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		role, err := models.ParseGlobalRole(claims.Role)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, role)

		c.Next()
	}
}

// RequireRole lets the request through only for the listed global roles.
func RequireRole(roles ...models.GlobalRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := GetRole(c)
		for _, r := range roles {
			if current == r {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "not allowed")
		c.Abort()
	}
}

// AdminRequired is RequireRole(ADMIN)
func AdminRequired() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		return id.(uint)
	}
	return 0
}

func GetUsername(c *gin.Context) string {
	if username, exists := c.Get(ContextUsername); exists {
		return username.(string)
	}
	return ""
}

func GetRole(c *gin.Context) models.GlobalRole {
	if role, exists := c.Get(ContextRole); exists {
		return role.(models.GlobalRole)
	}
	return ""
}

// GetActor returns the authenticated caller.
func GetActor(c *gin.Context) lifecycle.Actor {
	return lifecycle.Actor{
		UserID:   GetUserID(c),
		Username: GetUsername(c),
		Role:     GetRole(c),
	}
}
