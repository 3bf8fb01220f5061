package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"jane@example.com", nil, "Standard address"},
		{"first.last+tag@sub.example.co.uk", nil, "Plus tag and subdomain"},
		{"", ErrEmptyEmail, "Empty string"},
		{"   ", ErrEmptyEmail, "Whitespace only"},
		{"jane.example.com", ErrInvalidEmail, "Missing at sign"},
		{"jane@example", ErrInvalidEmail, "Missing dot after domain"},
		{"@.", ErrInvalidEmail, "Only separators"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedErr, ValidateEmail(tc.input))
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Equal(t, ErrEmptyPassword, ValidatePassword(""))
	assert.Equal(t, ErrPasswordTooShort, ValidatePassword("12345"))
	assert.NoError(t, ValidatePassword("123456"))
	assert.NoError(t, ValidatePassword("secret1"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank(" \t\n"))
	assert.False(t, IsBlank(" x "))
}
