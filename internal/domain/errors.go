package domain

import "errors"

// ErrNotFound is returned when a product or snapshot lookup matches
// nothing. Callers surface it; it is never silently defaulted.
var ErrNotFound = errors.New("not found")
