package storage

import "errors"

// ErrNotFound reports a read of a path with no stored object. Both
// backends wrap it so callers can branch on the miss without knowing
// which store is configured.
var ErrNotFound = errors.New("blob not found")
