// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow handlers to distinguish between
// failure scenarios without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a row does not exist or is not owned by the
// caller. Handlers translate it into a 404 response, so ownership is never
// disclosed.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique key
// (email or username). Handlers translate it into a 409 response.
var ErrDuplicate = errors.New("duplicate")
