package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/trefstays/stays-backend/internal/database"
	"github.com/trefstays/stays-backend/internal/models"
	"github.com/trefstays/stays-backend/internal/session"
	"github.com/trefstays/stays-backend/internal/utils"
	"github.com/trefstays/stays-backend/pkg/validator"
)

// AdminAuthReason is why an admin login was refused
type AdminAuthReason string

const (
	ReasonInvalidCredentials AdminAuthReason = "invalid_credentials"
	ReasonNotAdmin           AdminAuthReason = "not_admin"
	ReasonNotActivated       AdminAuthReason = "not_activated"
)

var adminAuthMessages = map[AdminAuthReason]string{
	ReasonInvalidCredentials: "Invalid credentials provided.",
	ReasonNotAdmin:           "Access denied. Admin privileges required.",
	ReasonNotActivated:       "Your account is not activated.",
}

// AdminAuthError is a refused admin login. Its message is safe to show on the login form.
type AdminAuthError struct {
	Reason AdminAuthReason
}

func (e *AdminAuthError) Error() string {
	return adminAuthMessages[e.Reason]
}

// AdminLoginInput is a login attempt together with where it came from
type AdminLoginInput struct {
	Email     string
	Password  string
	Remember  bool
	IPAddress string
	UserAgent string
}

// AdminAuthService handles admin authentication business logic
type AdminAuthService struct {
	adminRepo *database.AdminUserRepository
	sessions  *session.RedisStore
	broker    *session.Broker
	logger    *logrus.Logger
}

// NewAdminAuthService creates a new admin auth service
func NewAdminAuthService(
	adminRepo *database.AdminUserRepository,
	sessions *session.RedisStore,
	broker *session.Broker,
	logger *logrus.Logger,
) *AdminAuthService {
	return &AdminAuthService{
		adminRepo: adminRepo,
		sessions:  sessions,
		broker:    broker,
		logger:    logger,
	}
}

// ValidateLoginForm checks the submitted login fields before any lookup
func ValidateLoginForm(form models.AdminLoginForm) map[string]string {
	errs := map[string]string{}
	switch err := validator.ValidateEmail(form.Email); {
	case errors.Is(err, validator.ErrEmptyEmail):
		errs["email"] = "The email field is required."
	case err != nil:
		errs["email"] = "The email must be a valid email address."
	}
	if form.Password == "" {
		errs["password"] = "The password field is required."
	}
	return errs
}

// Login authenticates an admin user and opens a session
func (s *AdminAuthService) Login(ctx context.Context, in AdminLoginInput) (*session.AdminSession, error) {
	log := s.logger.WithFields(logrus.Fields{"email": in.Email, "ip": in.IPAddress})

	admin, err := s.adminRepo.GetByEmail(ctx, validator.NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, database.ErrAdminNotFound) {
			log.WithField("reason", ReasonInvalidCredentials).Warn("Admin login refused")
			return nil, &AdminAuthError{Reason: ReasonInvalidCredentials}
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(in.Password)); err != nil {
		log.WithField("reason", ReasonInvalidCredentials).Warn("Admin login refused")
		return nil, &AdminAuthError{Reason: ReasonInvalidCredentials}
	}

	if admin.Role != models.AdminRole {
		log.WithField("reason", ReasonNotAdmin).Warn("Admin login refused")
		return nil, &AdminAuthError{Reason: ReasonNotAdmin}
	}

	if !admin.Activated {
		log.WithField("reason", ReasonNotActivated).Warn("Admin login refused")
		return nil, &AdminAuthError{Reason: ReasonNotActivated}
	}

	sess := &session.AdminSession{
		AdminID:   admin.ID,
		Email:     admin.Email,
		IPAddress: in.IPAddress,
		Device:    utils.ParseUserAgent(in.UserAgent),
		Remember:  in.Remember,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	if err := s.adminRepo.UpdateLastLogin(ctx, admin.ID); err != nil {
		log.WithError(err).Warn("Failed to update admin last login")
	}

	log.WithFields(logrus.Fields{"admin_id": admin.ID, "device": sess.Device.String()}).Info("Admin logged in")
	s.broker.Publish(session.Event{Kind: session.SignedIn, Session: adminIdentity(sess)})
	return sess, nil
}

// Authenticate resolves a session cookie to its admin session
func (s *AdminAuthService) Authenticate(ctx context.Context, token string) (*session.AdminSession, error) {
	return s.sessions.Get(ctx, token)
}

// Logout destroys the admin session behind token
func (s *AdminAuthService) Logout(ctx context.Context, token string) error {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrAdminSessionNotFound) {
			return nil
		}
		return err
	}

	if err := s.sessions.Delete(ctx, token); err != nil {
		return err
	}

	s.logger.WithField("admin_id", sess.AdminID).Info("Admin logged out")
	s.broker.Publish(session.Event{Kind: session.SignedOut, Session: adminIdentity(sess)})
	return nil
}

func adminIdentity(sess *session.AdminSession) session.Session {
	return session.Session{
		AccountID: sess.AdminID,
		Email:     sess.Email,
		Roles:     []string{models.AdminRole},
		ExpiresAt: sess.ExpiresAt,
	}
}
