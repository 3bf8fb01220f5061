package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Property statuses. New listings always start as pending.
const (
	PropertyStatusPending   = "pending"
	PropertyStatusPublished = "published"
)

// Property is a rentable listing owned by an account
type Property struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	OwnerID       uuid.UUID      `json:"owner_id" db:"owner_id"`
	Title         string         `json:"title" db:"title"`
	PropertyType  string         `json:"property_type" db:"property_type"`
	Bedrooms      int            `json:"bedrooms" db:"bedrooms"`
	Bathrooms     int            `json:"bathrooms" db:"bathrooms"`
	MaxGuests     int            `json:"max_guests" db:"max_guests"`
	PricePerNight float64        `json:"price_per_night" db:"price_per_night"`
	Currency      string         `json:"currency" db:"currency"`
	Address       string         `json:"address" db:"address"`
	City          string         `json:"city" db:"city"`
	State         NullString     `json:"state,omitempty" db:"state"`
	Country       string         `json:"country" db:"country"`
	Zipcode       NullString     `json:"zipcode,omitempty" db:"zipcode"`
	Description   string         `json:"description" db:"description"`
	Amenities     pq.StringArray `json:"amenities" db:"amenities"`

	NearbyShul                NullString `json:"nearby_shul,omitempty" db:"nearby_shul"`
	NearbyShulDistance        NullString `json:"nearby_shul_distance,omitempty" db:"nearby_shul_distance"`
	NearbyKosherShops         NullString `json:"nearby_kosher_shops,omitempty" db:"nearby_kosher_shops"`
	NearbyKosherShopsDistance NullString `json:"nearby_kosher_shops_distance,omitempty" db:"nearby_kosher_shops_distance"`
	NearbyMikva               NullString `json:"nearby_mikva,omitempty" db:"nearby_mikva"`
	NearbyMikvaDistance       NullString `json:"nearby_mikva_distance,omitempty" db:"nearby_mikva_distance"`
	KosherKitchen             bool       `json:"kosher_kitchen" db:"kosher_kitchen"`
	ShabbosFriendly           bool       `json:"shabbos_friendly" db:"shabbos_friendly"`

	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PropertyImage is an uploaded listing photo
type PropertyImage struct {
	ID           uuid.UUID `json:"id" db:"id"`
	PropertyID   uuid.UUID `json:"property_id" db:"property_id"`
	ImageURL     string    `json:"image_url" db:"image_url"`
	IsMain       bool      `json:"is_main" db:"is_main"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// PropertyFilter narrows a listing search. Zero values mean "any".
type PropertyFilter struct {
	City         string
	Country      string
	PropertyType string
	MinGuests    int
	MaxPrice     float64 // in USD
	Limit        int
	Offset       int
}

// PropertySummary is a search result row
type PropertySummary struct {
	Property
	MainImageURL    NullString `json:"main_image_url" db:"main_image_url"`
	DisplayPrice    float64    `json:"display_price" db:"-"`
	DisplayCurrency string     `json:"display_currency" db:"-"`
	FormattedPrice  string     `json:"formatted_price" db:"-"`
}

// PropertyDetail is a listing with all of its photos
type PropertyDetail struct {
	Property
	Images          []PropertyImage `json:"images"`
	DisplayPrice    float64         `json:"display_price"`
	DisplayCurrency string          `json:"display_currency"`
	FormattedPrice  string          `json:"formatted_price"`
}
