package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/trefstays/stays-backend/internal/database"
	"github.com/trefstays/stays-backend/internal/models"
	"github.com/trefstays/stays-backend/pkg/storage"
)

// WizardBackend carries out the writes of a wizard commit against the
// identity service, PostgreSQL and object storage
type WizardBackend struct {
	identity   *IdentityService
	profiles   *database.ProfileRepository
	properties *database.PropertyRepository
	store      storage.ObjectStore
}

// NewWizardBackend creates a new wizard backend
func NewWizardBackend(
	identity *IdentityService,
	profiles *database.ProfileRepository,
	properties *database.PropertyRepository,
	store storage.ObjectStore,
) *WizardBackend {
	return &WizardBackend{
		identity:   identity,
		profiles:   profiles,
		properties: properties,
		store:      store,
	}
}

func (b *WizardBackend) CreateAccount(ctx context.Context, email, password string, metadata map[string]string) (uuid.UUID, error) {
	return b.identity.CreateAccount(ctx, email, password, metadata)
}

func (b *WizardBackend) InsertProfile(ctx context.Context, profile *models.Profile) error {
	return b.profiles.Create(ctx, profile)
}

func (b *WizardBackend) InsertUserRole(ctx context.Context, accountID uuid.UUID, role string) error {
	return b.profiles.AssignRole(ctx, accountID, role)
}

func (b *WizardBackend) InsertProperty(ctx context.Context, property *models.Property) (uuid.UUID, error) {
	if err := b.properties.Create(ctx, property); err != nil {
		return uuid.Nil, err
	}
	return property.ID, nil
}

func (b *WizardBackend) UploadObject(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	return b.store.Upload(ctx, path, data, contentType)
}

func (b *WizardBackend) InsertPropertyImage(ctx context.Context, image *models.PropertyImage) error {
	return b.properties.CreateImage(ctx, image)
}
