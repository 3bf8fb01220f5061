package wizard

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/trefstays/stays-backend/pkg/currency"
	"github.com/trefstays/stays-backend/pkg/validator"
)

// MinDescriptionLength is the shortest accepted property description
const MinDescriptionLength = 20

// Validate checks the inputs owned by step and returns the messages to show.
// It only reads the session; an empty result means the step may be left.
func Validate(step Step, s *Session) FieldErrors {
	errs := FieldErrors{}

	switch step {
	case StepAccount:
		validateAccount(s.account, errs)
	case StepBasics:
		validateBasics(s.listing, errs)
	case StepLocation:
		validateLocation(s.listing, errs)
	case StepPhotos:
		if s.media.Len() == 0 {
			errs[FieldImages] = "Please upload at least one property image"
		}
	case StepDescription:
		validateDescription(s.listing, errs)
	case StepRoleSelect:
		if !s.role.Valid() {
			errs[FieldRole] = "Please choose how you want to use the site"
		}
	}
	// kosher amenities and preview have no required fields

	return errs
}

// ValidateSignIn checks the sign-in form: both fields present, nothing more
func ValidateSignIn(email, password string) FieldErrors {
	errs := FieldErrors{}
	if validator.IsBlank(email) {
		errs[FieldEmail] = "Email is required"
	}
	if password == "" {
		errs[FieldPassword] = "Password is required"
	}
	return errs
}

func validateAccount(a Account, errs FieldErrors) {
	if validator.IsBlank(a.FirstName) {
		errs[FieldFirstName] = "First name is required"
	}
	if validator.IsBlank(a.LastName) {
		errs[FieldLastName] = "Last name is required"
	}

	switch err := validator.ValidateEmail(a.Email); {
	case errors.Is(err, validator.ErrEmptyEmail):
		errs[FieldEmail] = "Email is required"
	case errors.Is(err, validator.ErrInvalidEmail):
		errs[FieldEmail] = "Invalid email format"
	}

	if validator.IsBlank(a.Phone) {
		errs[FieldPhone] = "Phone number is required"
	}

	switch err := validator.ValidatePassword(a.Password); {
	case errors.Is(err, validator.ErrEmptyPassword):
		errs[FieldPassword] = "Password is required"
	case errors.Is(err, validator.ErrPasswordTooShort):
		errs[FieldPassword] = "Password must be at least 6 characters"
	}

	if a.Password != a.ConfirmPassword {
		errs[FieldConfirmPassword] = "Passwords don't match"
	}
}

func validateBasics(l Listing, errs FieldErrors) {
	if validator.IsBlank(l.Title) {
		errs[FieldTitle] = "Property title is required"
	}
	if validator.IsBlank(l.PropertyType) {
		errs[FieldPropertyType] = "Property type is required"
	}

	if l.PricePerNight == "" {
		errs[FieldPricePerNight] = "Price per night is required"
	} else if price, err := ParsePrice(l.PricePerNight); err != nil {
		errs[FieldPricePerNight] = "Price must be a number"
	} else if price <= 0 {
		errs[FieldPricePerNight] = "Price must be greater than 0"
	}

	if l.Bedrooms < 1 {
		errs[FieldBedrooms] = "At least 1 bedroom is required"
	}
	if l.Bathrooms < 1 {
		errs[FieldBathrooms] = "At least 1 bathroom is required"
	}
	if l.MaxGuests < 1 {
		errs[FieldMaxGuests] = "At least 1 guest is required"
	}
	if l.Currency != "" {
		if _, ok := currency.Lookup(l.Currency); !ok {
			errs[FieldCurrency] = "Unsupported currency"
		}
	}
}

func validateLocation(l Listing, errs FieldErrors) {
	if validator.IsBlank(l.Address) {
		errs[FieldAddress] = "Street address is required"
	}
	if validator.IsBlank(l.City) {
		errs[FieldCity] = "City is required"
	}
	if l.Country == "" {
		errs[FieldCountry] = "Country is required"
	} else if _, ok := currency.LookupCountry(l.Country); !ok {
		errs[FieldCountry] = "Unsupported country"
	}
}

func validateDescription(l Listing, errs FieldErrors) {
	if validator.IsBlank(l.Description) {
		errs[FieldDescription] = "Property description is required"
	} else if utf8.RuneCountInString(l.Description) < MinDescriptionLength {
		errs[FieldDescription] = "Description must be at least 20 characters"
	}
}

// ParsePrice reads a nightly price as typed into the form
func ParsePrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("price %q is not a finite number", raw)
	}
	return price, nil
}
