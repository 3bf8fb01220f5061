package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/trefstays/stays-backend/internal/services"
	"github.com/trefstays/stays-backend/internal/session"
)

const (
	// AdminCookieName holds the admin session token
	AdminCookieName = "admin_session"

	// AdminContextKey is the key used to store the admin session in Gin context
	AdminContextKey = "admin_session"

	// AdminLoginPath is where unauthenticated admins are sent
	AdminLoginPath = "/admin/login"
)

// AdminSession requires a valid admin session cookie and redirects to the login page otherwise
func AdminSession(auth *services.AdminAuthService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(AdminCookieName)
		if err != nil || token == "" {
			c.Redirect(http.StatusSeeOther, AdminLoginPath)
			c.Abort()
			return
		}

		sess, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrAdminSessionNotFound) {
				logger.WithError(err).Error("Failed to load admin session")
			}
			c.Redirect(http.StatusSeeOther, AdminLoginPath)
			c.Abort()
			return
		}

		c.Set(AdminContextKey, sess)
		c.Next()
	}
}

// GetAdminSession retrieves the admin session from Gin context
func GetAdminSession(c *gin.Context) (*session.AdminSession, bool) {
	value, exists := c.Get(AdminContextKey)
	if !exists {
		return nil, false
	}
	sess, ok := value.(*session.AdminSession)
	return sess, ok
}
