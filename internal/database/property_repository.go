package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trefstays/stays-backend/internal/models"
	"github.com/trefstays/stays-backend/pkg/currency"
)

const propertyColumns = `
	p.id, p.owner_id, p.title, p.property_type, p.bedrooms, p.bathrooms, p.max_guests,
	p.price_per_night, p.currency, p.address, p.city, p.state, p.country, p.zipcode,
	p.description, p.amenities, p.nearby_shul, p.nearby_shul_distance,
	p.nearby_kosher_shops, p.nearby_kosher_shops_distance, p.nearby_mikva,
	p.nearby_mikva_distance, p.kosher_kitchen, p.shabbos_friendly, p.status,
	p.created_at, p.updated_at`

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// PropertyRepository handles property database operations
type PropertyRepository struct {
	db DB
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// Create inserts a new property. Status is always pending, whatever the caller set.
func (r *PropertyRepository) Create(ctx context.Context, p *models.Property) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Status = models.PropertyStatusPending
	if p.Amenities == nil {
		p.Amenities = []string{}
	}

	query := `
		INSERT INTO properties (
			id, owner_id, title, property_type, bedrooms, bathrooms, max_guests,
			price_per_night, currency, address, city, state, country, zipcode,
			description, amenities, nearby_shul, nearby_shul_distance,
			nearby_kosher_shops, nearby_kosher_shops_distance, nearby_mikva,
			nearby_mikva_distance, kosher_kitchen, shabbos_friendly, status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, 'pending', $25, $26
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.OwnerID, p.Title, p.PropertyType, p.Bedrooms, p.Bathrooms, p.MaxGuests,
		p.PricePerNight, p.Currency, p.Address, p.City, p.State, p.Country, p.Zipcode,
		p.Description, p.Amenities, p.NearbyShul, p.NearbyShulDistance,
		p.NearbyKosherShops, p.NearbyKosherShopsDistance, p.NearbyMikva,
		p.NearbyMikvaDistance, p.KosherKitchen, p.ShabbosFriendly,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	return nil
}

// GetByID retrieves a property by ID
func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties p WHERE p.id = $1`

	var p models.Property
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return &p, nil
}

// Search lists published properties matching filter, newest first
func (r *PropertyRepository) Search(ctx context.Context, filter models.PropertyFilter) ([]models.PropertySummary, error) {
	conds := []string{"p.status = $1"}
	args := []interface{}{models.PropertyStatusPublished}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.City != "" {
		add("p.city ILIKE $%d", filter.City)
	}
	if filter.Country != "" {
		add("p.country = $%d", filter.Country)
	}
	if filter.PropertyType != "" {
		add("LOWER(p.property_type) = LOWER($%d)", filter.PropertyType)
	}
	if filter.MinGuests > 0 {
		add("p.max_guests >= $%d", filter.MinGuests)
	}
	if filter.MaxPrice > 0 {
		add("p.price_per_night / "+usdRateExpr("p.currency")+" <= $%d", filter.MaxPrice)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT %s,
		       (SELECT i.image_url FROM property_images i
		         WHERE i.property_id = p.id
		         ORDER BY i.is_main DESC, i.display_order ASC
		         LIMIT 1) AS main_image_url
		FROM properties p
		WHERE %s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d
	`, propertyColumns, strings.Join(conds, " AND "), len(args)-1, len(args))

	var results []models.PropertySummary
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}

	return results, nil
}

// usdRateExpr maps a currency column to its rate against USD
func usdRateExpr(column string) string {
	var b strings.Builder
	b.WriteString("(CASE " + column)
	for _, c := range currency.All() {
		fmt.Fprintf(&b, " WHEN '%s' THEN %g", c.Code, c.Rate)
	}
	b.WriteString(" ELSE 1 END)")
	return b.String()
}

// ListByOwner lists every property of an owner regardless of status
func (r *PropertyRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties p WHERE p.owner_id = $1 ORDER BY p.created_at DESC`

	var properties []models.Property
	if err := r.db.SelectContext(ctx, &properties, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list owner properties: %w", err)
	}

	return properties, nil
}

// ListByStatus lists properties in a status, oldest first
func (r *PropertyRepository) ListByStatus(ctx context.Context, status string, limit int) ([]models.Property, error) {
	if limit <= 0 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	query := `SELECT ` + propertyColumns + ` FROM properties p WHERE p.status = $1 ORDER BY p.created_at ASC LIMIT $2`

	var properties []models.Property
	if err := r.db.SelectContext(ctx, &properties, query, status, limit); err != nil {
		return nil, fmt.Errorf("failed to list properties by status: %w", err)
	}

	return properties, nil
}

// CountByStatus counts properties in a status
func (r *PropertyRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM properties WHERE status = $1`, status); err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return count, nil
}

// UpdateStatus moves a property to a new status
func (r *PropertyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE properties
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update property status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrPropertyNotFound
	}

	return nil
}

// CreateImage inserts a property image row
func (r *PropertyRepository) CreateImage(ctx context.Context, img *models.PropertyImage) error {
	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	img.CreatedAt = time.Now()

	query := `
		INSERT INTO property_images (id, property_id, image_url, is_main, display_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		img.ID, img.PropertyID, img.ImageURL, img.IsMain, img.DisplayOrder, img.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create property image: %w", err)
	}

	return nil
}

// ListImages lists the images of a property in display order
func (r *PropertyRepository) ListImages(ctx context.Context, propertyID uuid.UUID) ([]models.PropertyImage, error) {
	query := `
		SELECT id, property_id, image_url, is_main, display_order, created_at
		FROM property_images
		WHERE property_id = $1
		ORDER BY display_order ASC
	`

	var images []models.PropertyImage
	if err := r.db.SelectContext(ctx, &images, query, propertyID); err != nil {
		return nil, fmt.Errorf("failed to list property images: %w", err)
	}

	return images, nil
}
