package draft

import "errors"

// ErrCatchNotFound is returned when the referenced catch does not exist.
var ErrCatchNotFound = errors.New("catch not found")
