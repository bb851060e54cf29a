// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers to
// distinguish between different failure scenarios: ErrForbidden indicates the
// current user is not authorized to touch a resource owned by someone else,
// ErrConflict signals that an operation cannot proceed because of existing
// state (e.g. joining a group twice).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into an HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert or update cannot be performed
// because of conflicting state. Handlers translate this into an HTTP 409.
var ErrConflict = errors.New("conflict")
