// Package repository defines error types that are reused across multiple
// repositories and by the core engines built on top of them.  These
// sentinel values allow higher layers such as handlers to distinguish
// between different failure scenarios.  For example, ErrEventNotFound
// indicates that a referenced event does not exist, while ErrForbidden
// signals that the current actor attempted an operation on a resource
// owned by someone else.
package repository

import "errors"

// ErrEventNotFound is returned when the referenced event does not
// exist.  Handlers should translate this into an HTTP 404 response.
var ErrEventNotFound = errors.New("event not found")

// ErrMovementNotFound is returned when a movement does not exist under
// the given event.  Handlers should translate this into 404.
var ErrMovementNotFound = errors.New("movement not found")

// ErrAssignmentNotFound is returned when a crew assignment referenced by
// id or by (event, member) pair does not exist.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrAllocationNotFound is returned when an equipment allocation
// referenced by id does not exist under the given event.
var ErrAllocationNotFound = errors.New("allocation not found")

// ErrActorNotFound is returned when an actor profile does not exist.
var ErrActorNotFound = errors.New("actor not found")

// ErrEmailExists is returned when registering a profile with an email
// that is already taken.  Handlers should translate this into 409.
var ErrEmailExists = errors.New("email already exists")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")
