// Session-cookie authentication middleware.
//
// SessionAuth resolves the login cookie on every request and, when the token
// maps to a live session, stores the authenticated account in the Gin context.
// Resolution failures are treated as "not logged in" rather than errors, so
// public endpoints keep working for anonymous visitors. RequireUser() gates
// endpoints that need an authenticated caller.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/listoflists/go-survey-backend/internal/domain"
)

// contextUserKey is the Gin context key under which the authenticated user is
// stored by SessionAuth.
const contextUserKey = "currentUser"

// UserResolver maps a session token to the account it belongs to. A nil user
// with a nil error is treated the same as an error: no authenticated caller.
type UserResolver func(ctx context.Context, token string) (*domain.User, error)

// SessionAuth reads the session cookie and resolves it to a user via resolve.
// Missing, malformed, or expired tokens simply leave the request anonymous.
func SessionAuth(cookieName string, resolve UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err == nil {
			token = strings.TrimSpace(token)
		}
		if token != "" {
			if u, rerr := resolve(c.Request.Context(), token); rerr == nil && u != nil {
				c.Set(contextUserKey, u)
			}
		}
		c.Next()
	}
}

// UserFrom returns the user stored by SessionAuth, or nil when the request is
// anonymous.
func UserFrom(c *gin.Context) *domain.User {
	if v, ok := c.Get(contextUserKey); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// RequireUser aborts with a 401 envelope when no authenticated user is
// present. Mount it on route groups that must not serve anonymous callers.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserFrom(c) == nil {
			rid := c.Writer.Header().Get("X-Request-ID")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": rid,
				"code":       "unauthorized",
				"message":    "login required",
			})
			return
		}
		c.Next()
	}
}
