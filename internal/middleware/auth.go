// Package middleware provides HTTP middleware for the contacts API.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/addrbook/contacts-api/internal/models"
	"github.com/addrbook/contacts-api/internal/repository"
	"github.com/addrbook/contacts-api/internal/service"
)

// userKey is the gin context key holding the authenticated user.
const userKey = "currentUser"

// RequireAuth validates the bearer token and loads the authenticated user
// into the request context. Requests without a valid, unexpired access token
// are rejected with 401.
func RequireAuth(tokens service.TokenService, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := tokens.Decode(token, service.TokenKindAccess)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		user, err := users.FindByUsername(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				abortUnauthorized(c, "invalid or expired token")
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// RequireAdmin rejects requests whose authenticated user lacks the admin
// role. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user stored by RequireAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// SetCurrentUser stores the user on the context; exported for handler tests.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(userKey, user)
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.Split(header, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
