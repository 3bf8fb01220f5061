package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trefstays/stays-backend/internal/models"
)

// ProfileRepository handles profile and role rows
type ProfileRepository struct {
	db DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts the profile of an account
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	query := `
		INSERT INTO profiles (id, user_id, first_name, last_name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.UserID,
		profile.FirstName,
		profile.LastName,
		profile.Email,
		profile.Phone,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetByUserID retrieves the profile of an account, nil when it has none
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	query := `
		SELECT id, user_id, first_name, last_name, email, phone, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

// AssignRole inserts a role for an account
func (r *ProfileRepository) AssignRole(ctx context.Context, userID uuid.UUID, role string) error {
	if role != models.RoleRenter && role != models.RoleOwner {
		return fmt.Errorf("invalid role: %s", role)
	}

	query := `
		INSERT INTO user_roles (id, user_id, role)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.ExecContext(ctx, query, uuid.New(), userID, role); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	return nil
}

// GetRoles lists the roles of an account
func (r *ProfileRepository) GetRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	query := `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`

	var roles []string
	if err := r.db.SelectContext(ctx, &roles, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}

	return roles, nil
}
