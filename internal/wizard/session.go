package wizard

import (
	"errors"
	"fmt"

	"github.com/trefstays/stays-backend/pkg/currency"
)

var (
	// ErrInvalidTransition is returned for a transition the current state does not allow
	ErrInvalidTransition = errors.New("invalid wizard transition")

	// ErrStepInvalid is returned when validation blocks a transition; details are in Errors()
	ErrStepInvalid = errors.New("step has validation errors")

	// ErrInvalidMode is returned for an unknown mode
	ErrInvalidMode = errors.New("mode must be signup or signin")

	// ErrInvalidRole is returned when choosing anything but renter or owner
	ErrInvalidRole = errors.New("role must be renter or owner")
)

// Session is the state of one signup interaction. It is not safe for
// concurrent use; the Registry serializes access to it.
type Session struct {
	mode    Mode
	role    Role
	step    Step
	account Account
	listing Listing
	media   *MediaStager
	errors  FieldErrors
}

// NewSession starts a signup session at role selection
func NewSession(maxImages int) *Session {
	return &Session{
		mode:    ModeSignUp,
		role:    RoleUnselected,
		step:    StepRoleSelect,
		listing: newListing(),
		media:   NewMediaStager(maxImages),
		errors:  FieldErrors{},
	}
}

func (s *Session) Mode() Mode { return s.mode }
func (s *Session) Role() Role { return s.role }
func (s *Session) Step() Step { return s.step }
func (s *Session) Account() Account { return s.account }
func (s *Session) Listing() Listing { return s.listing.clone() }
func (s *Session) Errors() FieldErrors { return s.errors.Clone() }
func (s *Session) Media() *MediaStager { return s.media }
func (s *Session) IsLastStep() bool { return s.role.Valid() && s.step == LastStep(s.role) }
func (s *Session) clearErrors() { s.errors = FieldErrors{} }
func (s *Session) clearError(f Field) { delete(s.errors, f) }
func (s *Session) requireSignUp() error { return s.requireMode(ModeSignUp) }

func (s *Session) requireMode(m Mode) error {
	if s.mode != m {
		return fmt.Errorf("%w: session is in %s mode", ErrInvalidTransition, s.mode)
	}
	return nil
}

// SetMode toggles between sign-up and sign-in. Either way the wizard
// returns to role selection; entered data is kept.
func (s *Session) SetMode(m Mode) error {
	if !m.Valid() {
		return ErrInvalidMode
	}
	s.mode = m
	s.step = StepRoleSelect
	s.clearErrors()
	return nil
}

// Choose picks the account role and enters step 1
func (s *Session) Choose(role Role) error {
	if err := s.requireSignUp(); err != nil {
		return err
	}
	if s.step != StepRoleSelect {
		return fmt.Errorf("%w: role can only be chosen at %s", ErrInvalidTransition, StepRoleSelect)
	}
	if !role.Valid() {
		s.errors = FieldErrors{FieldRole: "Please choose how you want to use the site"}
		return ErrInvalidRole
	}

	s.role = role
	s.step = StepAccount
	s.clearErrors()
	return nil
}

// Next validates the current step and advances when it passes.
// On failure the step is unchanged and the messages replace Errors().
func (s *Session) Next() error {
	if err := s.requireSignUp(); err != nil {
		return err
	}
	if s.step == StepRoleSelect || s.IsLastStep() {
		return fmt.Errorf("%w: no next step after %s", ErrInvalidTransition, s.step)
	}

	s.errors = Validate(s.step, s)
	if !s.errors.Empty() {
		return ErrStepInvalid
	}
	s.step++
	return nil
}

// Back returns to the previous step without validating
func (s *Session) Back() error {
	if err := s.requireSignUp(); err != nil {
		return err
	}
	if s.step == StepRoleSelect {
		return fmt.Errorf("%w: already at %s", ErrInvalidTransition, StepRoleSelect)
	}
	s.step--
	s.clearErrors()
	return nil
}

// AccountPatch carries the account fields a client edited
type AccountPatch struct {
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	Password        *string `json:"password"`
	ConfirmPassword *string `json:"confirm_password"`
}

// UpdateAccount applies p and clears the messages of the edited fields
func (s *Session) UpdateAccount(p AccountPatch) {
	s.setString(&s.account.FirstName, p.FirstName, FieldFirstName)
	s.setString(&s.account.LastName, p.LastName, FieldLastName)
	s.setString(&s.account.Email, p.Email, FieldEmail)
	s.setString(&s.account.Phone, p.Phone, FieldPhone)
	s.setString(&s.account.Password, p.Password, FieldPassword)
	s.setString(&s.account.ConfirmPassword, p.ConfirmPassword, FieldConfirmPassword)
}

// ListingPatch carries the listing fields a client edited
type ListingPatch struct {
	Title         *string `json:"title"`
	PropertyType  *string `json:"property_type"`
	Bedrooms      *int    `json:"bedrooms"`
	Bathrooms     *int    `json:"bathrooms"`
	MaxGuests     *int    `json:"max_guests"`
	PricePerNight *string `json:"price_per_night"`
	Currency      *string `json:"currency"`

	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Country *string `json:"country"`
	Zipcode *string `json:"zipcode"`

	Description *string `json:"description"`

	NearbyShul                *string `json:"nearby_shul"`
	NearbyShulDistance        *string `json:"nearby_shul_distance"`
	NearbyKosherShops         *string `json:"nearby_kosher_shops"`
	NearbyKosherShopsDistance *string `json:"nearby_kosher_shops_distance"`
	NearbyMikva               *string `json:"nearby_mikva"`
	NearbyMikvaDistance       *string `json:"nearby_mikva_distance"`
	KosherKitchen             *bool   `json:"kosher_kitchen"`
	ShabbosFriendly           *bool   `json:"shabbos_friendly"`
}

// UpdateListing applies p and clears the messages of the edited fields.
// Choosing a country also selects its currency unless p sets one explicitly.
func (s *Session) UpdateListing(p ListingPatch) {
	l := &s.listing

	s.setString(&l.Title, p.Title, FieldTitle)
	s.setString(&l.PropertyType, p.PropertyType, FieldPropertyType)
	s.setInt(&l.Bedrooms, p.Bedrooms, FieldBedrooms)
	s.setInt(&l.Bathrooms, p.Bathrooms, FieldBathrooms)
	s.setInt(&l.MaxGuests, p.MaxGuests, FieldMaxGuests)
	s.setString(&l.PricePerNight, p.PricePerNight, FieldPricePerNight)

	s.setString(&l.Address, p.Address, FieldAddress)
	s.setString(&l.City, p.City, FieldCity)
	s.setString(&l.State, p.State, FieldState)
	s.setString(&l.Country, p.Country, FieldCountry)
	s.setString(&l.Zipcode, p.Zipcode, FieldZipcode)

	if p.Country != nil && p.Currency == nil {
		l.Currency = currency.ForCountry(*p.Country)
		s.clearError(FieldCurrency)
	}
	s.setString(&l.Currency, p.Currency, FieldCurrency)

	s.setString(&l.Description, p.Description, FieldDescription)

	s.setString(&l.NearbyShul, p.NearbyShul, FieldNearbyShul)
	s.setString(&l.NearbyShulDistance, p.NearbyShulDistance, FieldNearbyShulDistance)
	s.setString(&l.NearbyKosherShops, p.NearbyKosherShops, FieldNearbyKosherShops)
	s.setString(&l.NearbyKosherShopsDistance, p.NearbyKosherShopsDistance, FieldNearbyKosherShopsDistance)
	s.setString(&l.NearbyMikva, p.NearbyMikva, FieldNearbyMikva)
	s.setString(&l.NearbyMikvaDistance, p.NearbyMikvaDistance, FieldNearbyMikvaDistance)
	s.setBool(&l.KosherKitchen, p.KosherKitchen, FieldKosherKitchen)
	s.setBool(&l.ShabbosFriendly, p.ShabbosFriendly, FieldShabbosFriendly)
}

func (s *Session) setString(dst *string, v *string, f Field) {
	if v == nil {
		return
	}
	*dst = *v
	s.clearError(f)
}

func (s *Session) setInt(dst *int, v *int, f Field) {
	if v == nil {
		return
	}
	*dst = *v
	s.clearError(f)
}

func (s *Session) setBool(dst *bool, v *bool, f Field) {
	if v == nil {
		return
	}
	*dst = *v
	s.clearError(f)
}

// ToggleAmenity flips a predefined or custom amenity. Unknown names are ignored.
func (s *Session) ToggleAmenity(amenity string) bool {
	s.clearError(FieldAmenities)
	return s.listing.toggleAmenity(amenity)
}

// AddCustomAmenity adds and selects a custom amenity
func (s *Session) AddCustomAmenity(amenity string) bool {
	s.clearError(FieldAmenities)
	return s.listing.addCustomAmenity(amenity)
}

// RemoveCustomAmenity removes a custom amenity from both the options and the selection
func (s *Session) RemoveCustomAmenity(amenity string) bool {
	s.clearError(FieldAmenities)
	return s.listing.removeCustomAmenity(amenity)
}

// AddImages stages a batch of images. A rejected batch leaves the staged
// list untouched and replaces Errors() with the reason.
func (s *Session) AddImages(files []ImageFile) error {
	if err := s.media.Add(files); err != nil {
		switch {
		case errors.Is(err, ErrCapacity):
			s.errors = FieldErrors{FieldImages: fmt.Sprintf("Maximum %d images allowed", s.media.Capacity())}
		case errors.Is(err, ErrNotImage):
			s.errors = FieldErrors{FieldImages: "Only image files can be uploaded"}
		}
		return err
	}
	s.clearError(FieldImages)
	return nil
}

// RemoveImage unstages the image at index
func (s *Session) RemoveImage(index int) bool {
	return s.media.Remove(index)
}

// SetMainImage designates the main image; invalid indexes are a no-op
func (s *Session) SetMainImage(index int) bool {
	return s.media.SetMain(index)
}

// Submission is everything the commit needs, detached from the session
type Submission struct {
	Role      Role
	Account   Account
	Listing   Listing
	Images    []StagedImage
	MainIndex int
}

// PrepareSubmit checks that the session sits on its terminal step with every
// step valid and returns a snapshot to commit. Failing steps leave their
// messages in Errors() and the session where it is.
func (s *Session) PrepareSubmit() (Submission, error) {
	if err := s.requireSignUp(); err != nil {
		return Submission{}, err
	}
	if !s.IsLastStep() {
		return Submission{}, fmt.Errorf("%w: cannot complete from %s", ErrInvalidTransition, s.step)
	}

	for step := StepAccount; step <= s.step; step++ {
		if errs := Validate(step, s); !errs.Empty() {
			s.errors = errs
			return Submission{}, ErrStepInvalid
		}
	}
	s.clearErrors()

	sub := Submission{
		Role:    s.role,
		Account: s.account,
	}
	if s.role == RoleOwner {
		sub.Listing = s.listing.clone()
		sub.Images = s.media.Images()
		sub.MainIndex = s.media.MainIndex()
	}
	return sub, nil
}

// FailSubmit records a remote failure. The session stays on its terminal step
// so the submission can be retried.
func (s *Session) FailSubmit(message string) {
	s.errors = FieldErrors{FieldGeneral: message}
}

// FailSignIn records a rejected sign-in attempt
func (s *Session) FailSignIn(errs FieldErrors) {
	s.errors = errs
}
