package database

import (
	"errors"

	"github.com/lib/pq"
)

// userError is a sentinel whose text is safe to show to end users
type userError string

func (e userError) Error() string       { return string(e) }
func (e userError) UserMessage() string { return string(e) }

var (
	// ErrDuplicateEmail is returned when an email is already registered
	ErrDuplicateEmail error = userError("User already registered")

	// ErrAccountNotFound is returned when no account matches
	ErrAccountNotFound = errors.New("account not found")

	// ErrPropertyNotFound is returned when no property matches
	ErrPropertyNotFound = errors.New("property not found")

	// ErrAdminNotFound is returned when no admin user matches
	ErrAdminNotFound = errors.New("admin user not found")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
