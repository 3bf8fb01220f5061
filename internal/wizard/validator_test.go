package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAccount(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		s := NewSession(DefaultMaxImages)
		s.UpdateAccount(validAccountPatch())

		assert.True(t, Validate(StepAccount, s).Empty())
	})

	t.Run("All Missing", func(t *testing.T) {
		s := NewSession(DefaultMaxImages)

		errs := Validate(StepAccount, s)
		assert.Equal(t, "First name is required", errs[FieldFirstName])
		assert.Equal(t, "Last name is required", errs[FieldLastName])
		assert.Equal(t, "Email is required", errs[FieldEmail])
		assert.Equal(t, "Phone number is required", errs[FieldPhone])
		assert.Equal(t, "Password is required", errs[FieldPassword])
		// empty password equals empty confirmation
		assert.NotContains(t, errs, FieldConfirmPassword)
	})

	t.Run("Bad Email Short Password Mismatch", func(t *testing.T) {
		s := NewSession(DefaultMaxImages)
		p := validAccountPatch()
		p.Email = strPtr("jane@example")
		p.Password = strPtr("abc")
		p.ConfirmPassword = strPtr("abcd")
		s.UpdateAccount(p)

		errs := Validate(StepAccount, s)
		assert.Equal(t, "Invalid email format", errs[FieldEmail])
		assert.Equal(t, "Password must be at least 6 characters", errs[FieldPassword])
		assert.Equal(t, "Passwords don't match", errs[FieldConfirmPassword])
		assert.Len(t, errs, 3)
	})

	t.Run("Whitespace Only Names", func(t *testing.T) {
		s := NewSession(DefaultMaxImages)
		p := validAccountPatch()
		p.FirstName = strPtr("   ")
		s.UpdateAccount(p)

		errs := Validate(StepAccount, s)
		assert.Equal(t, "First name is required", errs[FieldFirstName])
	})
}

func TestValidateBasics(t *testing.T) {
	tests := []struct {
		name  string
		price string
		want  string
	}{
		{"Missing", "", "Price per night is required"},
		{"Zero", "0", "Price must be greater than 0"},
		{"Negative", "-10", "Price must be greater than 0"},
		{"Not A Number", "abc", "Price must be a number"},
		{"NaN", "NaN", "Price must be a number"},
		{"Valid", "150", ""},
		{"Decimal", "99.50", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(DefaultMaxImages)
			s.UpdateListing(ListingPatch{
				Title:         strPtr("Cabin"),
				PropertyType:  strPtr("cabin"),
				PricePerNight: strPtr(tt.price),
			})

			errs := Validate(StepBasics, s)
			if tt.want == "" {
				assert.True(t, errs.Empty(), "unexpected errors: %v", errs)
				return
			}
			assert.Equal(t, tt.want, errs[FieldPricePerNight])
		})
	}

	t.Run("Title And Type Required", func(t *testing.T) {
		s := NewSession(DefaultMaxImages)
		s.UpdateListing(ListingPatch{PricePerNight: strPtr("100")})

		errs := Validate(StepBasics, s)
		assert.Equal(t, "Property title is required", errs[FieldTitle])
		assert.Equal(t, "Property type is required", errs[FieldPropertyType])
	})

	t.Run("Counts At Least One", func(t *testing.T) {
		s := NewSession(DefaultMaxImages)
		s.UpdateListing(ListingPatch{
			Title:         strPtr("Cabin"),
			PropertyType:  strPtr("cabin"),
			PricePerNight: strPtr("100"),
			Bedrooms:      intPtr(0),
			Bathrooms:     intPtr(0),
			MaxGuests:     intPtr(0),
		})

		errs := Validate(StepBasics, s)
		assert.Contains(t, errs, FieldBedrooms)
		assert.Contains(t, errs, FieldBathrooms)
		assert.Contains(t, errs, FieldMaxGuests)
	})

	t.Run("Unknown Currency", func(t *testing.T) {
		s := NewSession(DefaultMaxImages)
		s.UpdateListing(ListingPatch{
			Title:         strPtr("Cabin"),
			PropertyType:  strPtr("cabin"),
			PricePerNight: strPtr("100"),
			Currency:      strPtr("XYZ"),
		})

		assert.Equal(t, "Unsupported currency", Validate(StepBasics, s)[FieldCurrency])
	})
}

func TestValidateLocation(t *testing.T) {
	s := NewSession(DefaultMaxImages)

	errs := Validate(StepLocation, s)
	assert.Equal(t, "Street address is required", errs[FieldAddress])
	assert.Equal(t, "City is required", errs[FieldCity])
	assert.Equal(t, "Country is required", errs[FieldCountry])
	assert.NotContains(t, errs, FieldState)
	assert.NotContains(t, errs, FieldZipcode)

	s.UpdateListing(ListingPatch{Address: strPtr("1 Main St"), City: strPtr("Town"), Country: strPtr("zz")})
	errs = Validate(StepLocation, s)
	assert.Equal(t, "Unsupported country", errs[FieldCountry])
	assert.Len(t, errs, 1)

	s.UpdateListing(ListingPatch{Country: strPtr("il")})
	assert.True(t, Validate(StepLocation, s).Empty())
}

func TestValidatePhotos(t *testing.T) {
	s := NewSession(DefaultMaxImages)
	assert.Equal(t, "Please upload at least one property image", Validate(StepPhotos, s)[FieldImages])

	assert.NoError(t, s.AddImages(pngFiles(1)))
	assert.True(t, Validate(StepPhotos, s).Empty())
}

func TestValidateDescription(t *testing.T) {
	s := NewSession(DefaultMaxImages)
	assert.Equal(t, "Property description is required", Validate(StepDescription, s)[FieldDescription])

	s.UpdateListing(ListingPatch{Description: strPtr("Too short")})
	assert.Equal(t, "Description must be at least 20 characters", Validate(StepDescription, s)[FieldDescription])

	// counted in characters, not bytes
	s.UpdateListing(ListingPatch{Description: strPtr("דירה יפה ליד הים")})
	assert.Contains(t, Validate(StepDescription, s), FieldDescription)

	s.UpdateListing(ListingPatch{Description: strPtr("exactly twenty chars")})
	assert.True(t, Validate(StepDescription, s).Empty())
}

func TestValidateOptionalSteps(t *testing.T) {
	s := NewSession(DefaultMaxImages)
	assert.True(t, Validate(StepKosherAmenities, s).Empty())
	assert.True(t, Validate(StepPreview, s).Empty())
}

func TestValidateIsPure(t *testing.T) {
	s := NewSession(DefaultMaxImages)
	s.UpdateListing(ListingPatch{PricePerNight: strPtr("0")})
	before := s.Listing()

	first := Validate(StepBasics, s)
	second := Validate(StepBasics, s)

	assert.Equal(t, first, second)
	assert.Equal(t, before, s.Listing())
	assert.True(t, s.Errors().Empty())
	assert.Equal(t, StepRoleSelect, s.Step())
}

func TestValidateSignIn(t *testing.T) {
	errs := ValidateSignIn(" ", "")
	assert.Equal(t, "Email is required", errs[FieldEmail])
	assert.Equal(t, "Password is required", errs[FieldPassword])

	// sign in does not enforce the signup policy
	assert.True(t, ValidateSignIn("jane@example.com", "x").Empty())
}
