package validator

import (
	"errors"
	"regexp"
	"strings"
)

// MinPasswordLength is the shortest password accepted at signup
const MinPasswordLength = 6

var (
	// ErrEmptyEmail indicates the email address is blank
	ErrEmptyEmail = errors.New("email is required")

	// ErrInvalidEmail indicates the email address does not look like local@domain.tld
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrEmptyPassword indicates the password is empty
	ErrEmptyPassword = errors.New("password is required")

	// ErrPasswordTooShort indicates the password is below MinPasswordLength
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
)

// emailRegex is intentionally loose: something@something.something, no whitespace
var emailRegex = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidateEmail checks that email is present and matches the basic address pattern.
// Surrounding whitespace counts as empty, but the pattern is tested on the raw value.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmptyEmail
	}
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword checks the signup password policy
func ValidatePassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// NormalizeEmail lowercases and trims an email for lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsBlank reports whether s is empty after trimming whitespace
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
