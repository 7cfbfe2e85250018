package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"groundtruth/internal/service"
)

// Context key under which the authenticated SessionUser is stored.
const UserKey = "sessionUser"

// Auth creates a Gin middleware that authenticates requests with either a
// Bearer session token or HTTP Basic credentials. Basic credentials are
// validated against the classifier service on every request; tokens are
// verified locally.
func Auth(auth service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		scheme, value, found := strings.Cut(authHeader, " ")
		if !found {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer <token> or Basic <credentials>"})
			c.Abort()
			return
		}

		var user *service.SessionUser
		var err error
		switch scheme {
		case "Bearer":
			user, err = auth.Deserialize(value)
		case "Basic":
			username, password, ok := c.Request.BasicAuth()
			if !ok {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Malformed Basic credentials"})
				c.Abort()
				return
			}
			user, err = auth.Verify(c.Request.Context(), username, password)
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unsupported authorization scheme"})
			c.Abort()
			return
		}

		if err != nil {
			logger.Debug("Request authentication failed", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			c.Abort()
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// TenantGuard rejects requests whose :tenant path segment is not among the
// session's tenants. A mismatch ends the session from the client's point of
// view, so it answers 401 like every other auth failure.
func TenantGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		tenant := c.Param("tenant")
		for _, owned := range user.Tenants {
			if owned == tenant {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusUnauthorized, gin.H{"error": "Tenant not available to this session"})
		c.Abort()
	}
}

// CurrentUser returns the authenticated user set by Auth, or nil.
func CurrentUser(c *gin.Context) *service.SessionUser {
	value, ok := c.Get(UserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*service.SessionUser)
	return user
}
