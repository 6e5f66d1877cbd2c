package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUserAlreadyExists  = errors.New("username taken")
	ErrInvalidCredentials = errors.New("invalid credentials provided")
	ErrUsernameNotAllowed = errors.New("username not allowed")
	ErrForbidden          = errors.New("forbidden")

	// ErrInvalidResetToken indicates that a password reset request used a token
	// that is either expired, already used, or was never valid.
	ErrInvalidResetToken = errors.New("invalid or expired password reset token")

	// ErrInvalidID is returned when a record reference names another table or
	// contains characters that cannot form a record id.
	ErrInvalidID = errors.New("invalid record id")
)
