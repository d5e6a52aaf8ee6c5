package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when trying to create an account with an existing email
	ErrDuplicateEmail = errors.New("account with this email already exists")

	// ErrDuplicateUsername is returned when trying to create an account with an existing username
	ErrDuplicateUsername = errors.New("account with this username already exists")

	// ErrDuplicateIdentity is returned when a provider subject is already linked
	ErrDuplicateIdentity = errors.New("identity is already linked")
)
