package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row. Callers that need
// to distinguish "absent" from "store failure" check for it with errors.Is.
var ErrNotFound = errors.New("not found")
