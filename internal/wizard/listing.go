package wizard

import (
	"slices"
	"strings"
)

// PredefinedAmenities are offered as checkboxes on the description step
var PredefinedAmenities = []string{
	"WiFi", "Air Conditioning", "Heating", "Kitchen", "Washer", "Dryer",
	"Free Parking", "Pool", "Hot Tub", "Gym", "TV", "Workspace",
	"Elevator", "Wheelchair Accessible", "Smoke Detector", "First Aid Kit",
}

// PropertyTypes are the suggested property types on the basics step
var PropertyTypes = []string{
	"Apartment", "House", "Condo", "Townhouse", "Villa", "Cottage", "Cabin", "Bungalow",
}

// Account holds the credentials and contact details collected on the account step
type Account struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"-"`
	ConfirmPassword string `json:"-"`
}

// Listing holds the property data collected across the owner steps.
// PricePerNight stays as typed so validation can tell "missing" from "not positive".
type Listing struct {
	Title         string `json:"title"`
	PropertyType  string `json:"property_type"`
	Bedrooms      int    `json:"bedrooms"`
	Bathrooms     int    `json:"bathrooms"`
	MaxGuests     int    `json:"max_guests"`
	PricePerNight string `json:"price_per_night"`
	Currency      string `json:"currency"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Zipcode string `json:"zipcode"`

	Description     string   `json:"description"`
	Amenities       []string `json:"amenities"`
	CustomAmenities []string `json:"custom_amenities"`

	NearbyShul                string `json:"nearby_shul"`
	NearbyShulDistance        string `json:"nearby_shul_distance"`
	NearbyKosherShops         string `json:"nearby_kosher_shops"`
	NearbyKosherShopsDistance string `json:"nearby_kosher_shops_distance"`
	NearbyMikva               string `json:"nearby_mikva"`
	NearbyMikvaDistance       string `json:"nearby_mikva_distance"`
	KosherKitchen             bool   `json:"kosher_kitchen"`
	ShabbosFriendly           bool   `json:"shabbos_friendly"`
}

func newListing() Listing {
	return Listing{
		Bedrooms:        1,
		Bathrooms:       1,
		MaxGuests:       2,
		Currency:        "USD",
		Amenities:       []string{},
		CustomAmenities: []string{},
	}
}

func (l Listing) clone() Listing {
	l.Amenities = slices.Clone(l.Amenities)
	l.CustomAmenities = slices.Clone(l.CustomAmenities)
	return l
}

// isOffered reports whether amenity is a predefined or previously added custom option
func (l *Listing) isOffered(amenity string) bool {
	return slices.Contains(PredefinedAmenities, amenity) || slices.Contains(l.CustomAmenities, amenity)
}

// toggleAmenity flips membership of an offered amenity
func (l *Listing) toggleAmenity(amenity string) bool {
	if !l.isOffered(amenity) {
		return false
	}
	if i := slices.Index(l.Amenities, amenity); i >= 0 {
		l.Amenities = slices.Delete(l.Amenities, i, i+1)
	} else {
		l.Amenities = append(l.Amenities, amenity)
	}
	return true
}

// addCustomAmenity adds and selects a user-defined amenity.
// Blank input and exact matches of an existing option are ignored.
func (l *Listing) addCustomAmenity(amenity string) bool {
	trimmed := strings.TrimSpace(amenity)
	if trimmed == "" || l.isOffered(trimmed) {
		return false
	}
	l.CustomAmenities = append(l.CustomAmenities, trimmed)
	if !slices.Contains(l.Amenities, trimmed) {
		l.Amenities = append(l.Amenities, trimmed)
	}
	return true
}

// removeCustomAmenity drops a custom amenity and deselects it
func (l *Listing) removeCustomAmenity(amenity string) bool {
	i := slices.Index(l.CustomAmenities, amenity)
	if i < 0 {
		return false
	}
	l.CustomAmenities = slices.Delete(l.CustomAmenities, i, i+1)
	if j := slices.Index(l.Amenities, amenity); j >= 0 {
		l.Amenities = slices.Delete(l.Amenities, j, j+1)
	}
	return true
}

// SelectedAmenities returns the deduplicated selection in the order it was made
func (l Listing) SelectedAmenities() []string {
	seen := make(map[string]struct{}, len(l.Amenities))
	out := make([]string, 0, len(l.Amenities))
	for _, a := range l.Amenities {
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
