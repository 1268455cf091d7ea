package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrSelfModification   = errors.New("cannot deactivate or delete your own account")

	ErrVendorNotFound    = errors.New("vendor not found")
	ErrVendorExists      = errors.New("vendor already exists")
	ErrAccountInactive   = errors.New("account not active")
	ErrPendingApproval   = errors.New("pending approval")
	ErrInvalidTransition = errors.New("invalid verification status transition")

	ErrInvalidCategory = errors.New("invalid category")
	ErrItemNotFound    = errors.New("inventory item not found")
	ErrDuplicateItem   = errors.New("inventory item already exists")
	ErrStorageDisabled = errors.New("object storage is not configured")
)

// ValidationError describes a single rejected input field. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
