package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/consultsite/domain"
)

// SessionFrom returns the session the gatekeeper resolved for this request
func SessionFrom(c *gin.Context) (*domain.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*domain.Session)
	return s, ok && s != nil
}

// JarFrom returns the request's cookie jar, creating one when the
// gatekeeper did not run for this route
func JarFrom(c *gin.Context) *CookieJar {
	if v, ok := c.Get(ContextJar); ok {
		if jar, ok := v.(*CookieJar); ok {
			return jar
		}
	}
	jar := NewCookieJar(c.Request)
	c.Set(ContextJar, jar)
	return jar
}

// PrincipalFrom builds the record-policy principal for the signed-in user
func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	s, ok := SessionFrom(c)
	if !ok {
		return domain.Principal{}, false
	}
	role := s.Role
	if role == "" && s.User != nil {
		role = s.User.Role
	}
	return domain.Principal{UserID: s.UserID, Role: role}, true
}

// RequireSession rejects requests without a resolved session. Page
// requests are already redirected by the gatekeeper; this guards JSON
// and form posts that must never run anonymously.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
			c.Abort()
			return
		}

		c.Set("user_id", principal.UserID)
		c.Set("user_role", principal.Role)
		c.Next()
	}
}

// RequireRole allows only signed-in users with the given role. It must
// run after RequireSession.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_role") != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}
