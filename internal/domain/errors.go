package domain

import "errors"

// ErrUnknownProduct is returned when a product key has no registered
// diagnostic.
var ErrUnknownProduct = errors.New("unknown product")
