package types

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across repositories, services and handlers.
// Repositories wrap these with fmt.Errorf("...: %w", err) so callers can
// match with errors.Is while logs keep the full chain.
var (
	ErrNotFound        = errors.New("record not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrAdminOnly       = errors.New("admin only")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("invalid input")
	ErrMissingField    = errors.New("missing required field")
	ErrDatabase        = errors.New("database error")
	ErrInternal        = errors.New("internal error")
)

// ErrProfileNotFound distinguishes "verified identity with no profile row"
// from other not-found cases; the frontend matches on its message.
var ErrProfileNotFound = fmt.Errorf("no profile: %w", ErrNotFound)
