// Package common defines shared constants and sentinel errors used across
// the accounts service layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Credential errors. The message is the same for an unknown user and a
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrDuplicateUsername  = errors.New("username already taken")

	// Lookup errors.
	ErrUserNotFound = errors.New("user not found")

	// Validation errors (malformed input shape, bad ids).
	ErrValidation = errors.New("validation error")

	// Auth errors (invalid, malformed or wrong-kind token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrInvalidToken)

	// Authorization errors raised at the transport boundary.
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient role")
)
