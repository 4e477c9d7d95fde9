package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by the Actor middleware
const (
	ActorNameKey = "actor_name"
	ActorRoleKey = "actor_role"
)

// Known actor roles. Roles are advisory flags supplied by the gateway; the
// engine enforces them only where an operation is restricted.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// Actor captures the acting user from the X-User-Name and X-User-Role
// headers. Every mutating operation attributes its writes and events to this
// identity.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.GetHeader("X-User-Name"))
		role := strings.ToLower(strings.TrimSpace(c.GetHeader("X-User-Role")))
		if role == "" {
			role = RoleOperator
		}
		c.Set(ActorNameKey, name)
		c.Set(ActorRoleKey, role)
		c.Next()
	}
}

// GetActorName returns the acting user's name, or "" when none was supplied
func GetActorName(c *gin.Context) string {
	return c.GetString(ActorNameKey)
}

// GetActorRole returns the acting user's role flag
func GetActorRole(c *gin.Context) string {
	return c.GetString(ActorRoleKey)
}

// RequireActor rejects requests that carry no actor identity
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetActorName(c) == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ERR_INVALID_INPUT",
					"message": "X-User-Name header is required",
				},
			})
			return
		}
		c.Next()
	}
}

// RequireRole rejects requests whose actor does not carry the given role
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetActorRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ERR_FORBIDDEN",
					"message": "This operation requires the " + role + " role",
				},
			})
			return
		}
		c.Next()
	}
}
