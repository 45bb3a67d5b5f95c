package store

import "errors"

// ErrNotFound is returned when a record does not exist or is not owned by
// the caller. Handlers translate it into a 404.
var ErrNotFound = errors.New("not found")

// ErrDuplicateUsername is returned when registering a username that is
// already taken.
var ErrDuplicateUsername = errors.New("username already exists")
