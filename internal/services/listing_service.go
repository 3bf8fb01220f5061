package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trefstays/stays-backend/internal/database"
	"github.com/trefstays/stays-backend/internal/models"
	"github.com/trefstays/stays-backend/pkg/currency"
)

// pendingDashboardLimit caps the pending listings shown on the admin dashboard
const pendingDashboardLimit = 50

// PendingOverview is what the admin dashboard shows
type PendingOverview struct {
	Count      int
	Properties []models.Property
}

// ListingService answers listing queries for the booking site and moderation for admins
type ListingService struct {
	properties *database.PropertyRepository
	logger     *logrus.Logger
}

// NewListingService creates a new listing service
func NewListingService(properties *database.PropertyRepository, logger *logrus.Logger) *ListingService {
	return &ListingService{properties: properties, logger: logger}
}

// displayCurrency picks the currency prices are shown in
func displayCurrency(requested, listed string) string {
	if c, ok := currency.Lookup(requested); ok {
		return c.Code
	}
	return listed
}

// Search lists published properties. maxPrice is expressed in displayIn
// when that is a known currency, otherwise in USD.
func (s *ListingService) Search(ctx context.Context, filter models.PropertyFilter, displayIn string) ([]models.PropertySummary, error) {
	if filter.MaxPrice > 0 {
		if c, ok := currency.Lookup(displayIn); ok {
			filter.MaxPrice = filter.MaxPrice / c.Rate
		}
	}

	results, err := s.properties.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	for i := range results {
		p := &results[i]
		target := displayCurrency(displayIn, p.Currency)
		p.DisplayCurrency = target
		p.DisplayPrice = currency.Convert(p.PricePerNight, p.Currency, target)
		p.FormattedPrice = currency.Format(p.PricePerNight, p.Currency, target)
	}
	if results == nil {
		results = []models.PropertySummary{}
	}
	return results, nil
}

// Detail returns a published property with its photos. Unpublished
// listings are reported as not found.
func (s *ListingService) Detail(ctx context.Context, id uuid.UUID, displayIn string) (*models.PropertyDetail, error) {
	p, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.PropertyStatusPublished {
		return nil, database.ErrPropertyNotFound
	}

	images, err := s.properties.ListImages(ctx, id)
	if err != nil {
		return nil, err
	}
	if images == nil {
		images = []models.PropertyImage{}
	}

	target := displayCurrency(displayIn, p.Currency)
	return &models.PropertyDetail{
		Property:        *p,
		Images:          images,
		DisplayPrice:    currency.Convert(p.PricePerNight, p.Currency, target),
		DisplayCurrency: target,
		FormattedPrice:  currency.Format(p.PricePerNight, p.Currency, target),
	}, nil
}

// ListByOwner lists an owner's properties in every status
func (s *ListingService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Property, error) {
	properties, err := s.properties.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if properties == nil {
		properties = []models.Property{}
	}
	return properties, nil
}

// Pending returns the moderation queue
func (s *ListingService) Pending(ctx context.Context) (*PendingOverview, error) {
	count, err := s.properties.CountByStatus(ctx, models.PropertyStatusPending)
	if err != nil {
		return nil, err
	}
	properties, err := s.properties.ListByStatus(ctx, models.PropertyStatusPending, pendingDashboardLimit)
	if err != nil {
		return nil, err
	}
	return &PendingOverview{Count: count, Properties: properties}, nil
}

// Approve publishes a pending property
func (s *ListingService) Approve(ctx context.Context, id, adminID uuid.UUID) error {
	if err := s.properties.UpdateStatus(ctx, id, models.PropertyStatusPublished); err != nil {
		return fmt.Errorf("failed to approve property: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"property_id": id, "admin_id": adminID}).Info("Property approved")
	return nil
}
