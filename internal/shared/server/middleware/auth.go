package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/auth"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
	userRolesKey = "userRoles"
)

// Role names carried in the JWT roles claim.
const (
	RoleVerifiedCandidate = "VERIFIED_CANDIDATE"
	RoleInternalService   = "INTERNAL_SERVICE"
)

// Auth validates the bearer JWT and stores the verified identity in the
// request context. The subject is never taken from client-supplied fields.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		claims, err := auth.VerifyJWT(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		c.Set(userIDKey, claims.Sub)
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		c.Set(userRolesKey, claims.Roles)
		c.Next()
	}
}

// RequireRole rejects requests whose verified identity lacks the role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, r := range UserRolesFromContext(c) {
			if r == role {
				c.Next()
				return
			}
		}
		respond.Error(c, http.StatusForbidden, "forbidden", "missing required role", nil)
	}
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

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}

// UserRolesFromContext fetches the roles set by the auth middleware.
func UserRolesFromContext(c *gin.Context) []string {
	if c == nil {
		return nil
	}
	val, _ := c.Get(userRolesKey)
	if roles, ok := val.([]string); ok {
		return roles
	}
	return nil
}
