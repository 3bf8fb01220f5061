package wizard

// Field identifies a wizard input that can carry a validation message.
// The set is closed: every key written to or cleared from FieldErrors is one of these.
type Field string

const (
	FieldGeneral Field = "general"
	FieldRole    Field = "role"

	FieldFirstName       Field = "firstName"
	FieldLastName        Field = "lastName"
	FieldEmail           Field = "email"
	FieldPhone           Field = "phone"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"

	FieldTitle         Field = "title"
	FieldPropertyType  Field = "property_type"
	FieldBedrooms      Field = "bedrooms"
	FieldBathrooms     Field = "bathrooms"
	FieldMaxGuests     Field = "max_guests"
	FieldPricePerNight Field = "price_per_night"
	FieldCurrency      Field = "currency"

	FieldAddress Field = "address"
	FieldCity    Field = "city"
	FieldState   Field = "state"
	FieldCountry Field = "country"
	FieldZipcode Field = "zipcode"

	FieldImages      Field = "images"
	FieldDescription Field = "description"
	FieldAmenities   Field = "amenities"

	FieldNearbyShul                Field = "nearby_shul"
	FieldNearbyShulDistance        Field = "nearby_shul_distance"
	FieldNearbyKosherShops         Field = "nearby_kosher_shops"
	FieldNearbyKosherShopsDistance Field = "nearby_kosher_shops_distance"
	FieldNearbyMikva               Field = "nearby_mikva"
	FieldNearbyMikvaDistance       Field = "nearby_mikva_distance"
	FieldKosherKitchen             Field = "kosher_kitchen"
	FieldShabbosFriendly           Field = "shabbos_friendly"
)

// FieldErrors maps a field to the message shown next to it
type FieldErrors map[Field]string

// Empty reports whether no field carries a message
func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

// Clone returns an independent copy
func (e FieldErrors) Clone() FieldErrors {
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// General is the message of the synthetic remote-failure key, if any
func (e FieldErrors) General() string {
	return e[FieldGeneral]
}
