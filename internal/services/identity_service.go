package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/trefstays/stays-backend/internal/database"
	"github.com/trefstays/stays-backend/internal/models"
	"github.com/trefstays/stays-backend/internal/session"
	"github.com/trefstays/stays-backend/pkg/jwt"
	"github.com/trefstays/stays-backend/pkg/validator"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password
var ErrInvalidCredentials = errors.New("Invalid login credentials")

// PolicyError is returned when an email or password is refused by the identity provider
type PolicyError struct {
	Err error
}

func (e *PolicyError) Error() string {
	switch {
	case errors.Is(e.Err, validator.ErrPasswordTooShort):
		return fmt.Sprintf("Password should be at least %d characters", validator.MinPasswordLength)
	case errors.Is(e.Err, validator.ErrInvalidEmail), errors.Is(e.Err, validator.ErrEmptyEmail):
		return "Unable to validate email address: invalid format"
	default:
		return e.Err.Error()
	}
}

// UserMessage is the refusal as shown to the user
func (e *PolicyError) UserMessage() string {
	return e.Error()
}

func (e *PolicyError) Unwrap() error {
	return e.Err
}

// IdentityService owns account credentials: it creates accounts and signs them in
type IdentityService struct {
	accounts   *database.AccountRepository
	profiles   *database.ProfileRepository
	jwtService *jwt.Service
	bcryptCost int
	logger     *logrus.Logger
}

// NewIdentityService creates a new identity service
func NewIdentityService(
	accounts *database.AccountRepository,
	profiles *database.ProfileRepository,
	jwtService *jwt.Service,
	bcryptCost int,
	logger *logrus.Logger,
) *IdentityService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &IdentityService{
		accounts:   accounts,
		profiles:   profiles,
		jwtService: jwtService,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// CreateAccount registers a new account. The email is normalized before it is stored.
func (s *IdentityService) CreateAccount(ctx context.Context, email, password string, metadata map[string]string) (uuid.UUID, error) {
	if err := validator.ValidateEmail(email); err != nil {
		return uuid.Nil, &PolicyError{Err: err}
	}
	if err := validator.ValidatePassword(password); err != nil {
		return uuid.Nil, &PolicyError{Err: err}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		Email:        validator.NormalizeEmail(email),
		PasswordHash: string(hash),
	}
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to encode account metadata: %w", err)
		}
		account.Metadata = types.NullJSONText{JSONText: types.JSONText(raw), Valid: true}
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return uuid.Nil, err
	}

	s.logger.WithField("account_id", account.ID).Info("Account created")
	return account.ID, nil
}

// SignIn verifies credentials and issues an access token carrying the account's roles
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	account, err := s.accounts.GetByEmail(ctx, validator.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	roles, err := s.profiles.GetRoles(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(account.ID, account.Email, roles)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &session.Session{
		AccountID:   account.ID,
		Email:       account.Email,
		Roles:       roles,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}
