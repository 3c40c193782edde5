package middleware

import (
	"net/http"
	"strings"

	"task-notify/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID         = "user_id"
	ContextRole           = "role"
	ContextOrganizationID = "organization_id"
)

// AuthMiddleware validates the bearer token and stores the caller identity
// in the gin context.
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return authenticate(jwtService, false)
}

// StreamAuthMiddleware also accepts the token as a "token" query parameter,
// since browsers cannot set headers on EventSource or WebSocket requests.
func StreamAuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return authenticate(jwtService, true)
}

func authenticate(jwtService *jwt.Service, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
				c.Abort()
				return
			}
			token = parts[1]
		} else if allowQuery {
			token = c.Query("token")
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextOrganizationID, claims.OrganizationID)
		c.Next()
	}
}

// RequireRole rejects callers whose role claim is not one of roles. It must
// run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions", "code": "forbidden"})
		c.Abort()
	}
}
