package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trefstays/stays-backend/internal/database"
	"github.com/trefstays/stays-backend/internal/middleware"
	"github.com/trefstays/stays-backend/internal/models"
	"github.com/trefstays/stays-backend/internal/services"
	"github.com/trefstays/stays-backend/internal/session"
	"github.com/trefstays/stays-backend/internal/utils"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	flashCookieName   = "admin_flash"
	adminCookiePath   = "/admin"
	adminDashboardURL = "/admin/dashboard"

	logoutMessage = "You have been logged out successfully."
)

// Templates parses the admin pages for gin's HTML renderer
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))
}

type loginPage struct {
	Flash    string
	Email    string
	Remember bool
	Errors   map[string]string
}

type dashboardPage struct {
	Flash   string
	Admin   *session.AdminSession
	Pending *services.PendingOverview
}

// AdminAuthHandler serves the admin login surface and dashboard
type AdminAuthHandler struct {
	adminAuthService *services.AdminAuthService
	listingService   *services.ListingService
	cookieSecure     bool
	logger           *logrus.Logger
}

// NewAdminAuthHandler creates a new admin auth handler
func NewAdminAuthHandler(
	adminAuthService *services.AdminAuthService,
	listingService *services.ListingService,
	cookieSecure bool,
	logger *logrus.Logger,
) *AdminAuthHandler {
	return &AdminAuthHandler{
		adminAuthService: adminAuthService,
		listingService:   listingService,
		cookieSecure:     cookieSecure,
		logger:           logger,
	}
}

// RegisterRoutes mounts the admin pages on r. Login posts go through limiter.
func (h *AdminAuthHandler) RegisterRoutes(r gin.IRouter, limiter gin.HandlerFunc) {
	admin := r.Group("/admin")
	admin.GET("/login", h.ShowLoginForm)
	admin.POST("/login", limiter, h.Login)
	admin.POST("/logout", h.Logout)

	guarded := admin.Group("", middleware.AdminSession(h.adminAuthService, h.logger))
	guarded.GET("/dashboard", h.Dashboard)
	guarded.POST("/properties/:id/approve", h.ApproveProperty)
}

func (h *AdminAuthHandler) setFlash(c *gin.Context, message string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, message, 60, adminCookiePath, "", h.cookieSecure, true)
}

// takeFlash reads and clears the flash message
func (h *AdminAuthHandler) takeFlash(c *gin.Context) string {
	message, err := c.Cookie(flashCookieName)
	if err != nil || message == "" {
		return ""
	}
	c.SetCookie(flashCookieName, "", -1, adminCookiePath, "", h.cookieSecure, true)
	return message
}

// ShowLoginForm renders the login page, or skips it for an admin already signed in
func (h *AdminAuthHandler) ShowLoginForm(c *gin.Context) {
	if token, err := c.Cookie(middleware.AdminCookieName); err == nil && token != "" {
		if _, err := h.adminAuthService.Authenticate(c.Request.Context(), token); err == nil {
			c.Redirect(http.StatusSeeOther, adminDashboardURL)
			return
		}
	}

	c.HTML(http.StatusOK, "login.tmpl", loginPage{
		Flash:  h.takeFlash(c),
		Errors: map[string]string{},
	})
}

// Login handles the login form post
func (h *AdminAuthHandler) Login(c *gin.Context) {
	var form models.AdminLoginForm
	if err := c.ShouldBind(&form); err != nil {
		form = models.AdminLoginForm{Email: c.PostForm("email")}
	}

	page := loginPage{Email: form.Email, Remember: form.Remember}

	if errs := services.ValidateLoginForm(form); len(errs) > 0 {
		page.Errors = errs
		c.HTML(http.StatusUnprocessableEntity, "login.tmpl", page)
		return
	}

	sess, err := h.adminAuthService.Login(c.Request.Context(), services.AdminLoginInput{
		Email:     form.Email,
		Password:  form.Password,
		Remember:  form.Remember,
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	})
	if err != nil {
		var authErr *services.AdminAuthError
		if errors.As(err, &authErr) {
			page.Errors = map[string]string{"email": authErr.Error()}
			c.HTML(http.StatusUnprocessableEntity, "login.tmpl", page)
			return
		}

		h.logger.WithError(err).Error("Admin login failed")
		page.Errors = map[string]string{"general": "Something went wrong. Please try again."}
		c.HTML(http.StatusInternalServerError, "login.tmpl", page)
		return
	}

	maxAge := 0
	if form.Remember {
		maxAge = int(sess.ExpiresAt.Sub(sess.CreatedAt).Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminCookieName, sess.Token, maxAge, adminCookiePath, "", h.cookieSecure, true)
	c.Redirect(http.StatusSeeOther, adminDashboardURL)
}

// Logout destroys the admin session
func (h *AdminAuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.AdminCookieName); err == nil && token != "" {
		if err := h.adminAuthService.Logout(c.Request.Context(), token); err != nil {
			h.logger.WithError(err).Error("Failed to destroy admin session")
		}
	}

	c.SetCookie(middleware.AdminCookieName, "", -1, adminCookiePath, "", h.cookieSecure, true)
	h.setFlash(c, logoutMessage)
	c.Redirect(http.StatusSeeOther, middleware.AdminLoginPath)
}

// Dashboard lists the listings waiting for review
func (h *AdminAuthHandler) Dashboard(c *gin.Context) {
	admin, _ := middleware.GetAdminSession(c)

	pending, err := h.listingService.Pending(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load pending listings")
		c.String(http.StatusInternalServerError, "Failed to load the dashboard")
		return
	}

	c.HTML(http.StatusOK, "dashboard.tmpl", dashboardPage{
		Flash:   h.takeFlash(c),
		Admin:   admin,
		Pending: pending,
	})
}

// ApproveProperty publishes a pending listing
func (h *AdminAuthHandler) ApproveProperty(c *gin.Context) {
	admin, _ := middleware.GetAdminSession(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.setFlash(c, "Property not found.")
		c.Redirect(http.StatusSeeOther, adminDashboardURL)
		return
	}

	switch err := h.listingService.Approve(c.Request.Context(), id, admin.AdminID); {
	case errors.Is(err, database.ErrPropertyNotFound):
		h.setFlash(c, "Property not found.")
	case err != nil:
		h.logger.WithError(err).WithField("property_id", id).Error("Failed to approve property")
		h.setFlash(c, "Failed to approve the property.")
	default:
		h.setFlash(c, "Property approved.")
	}
	c.Redirect(http.StatusSeeOther, adminDashboardURL)
}
