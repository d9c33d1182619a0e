package price

import "errors"

// Sentinel errors for the price resolver.
var (
	// ErrMissingPrice means no authoritative price is available for the fish
	// type today. Recoverable: the caller should prompt for a manual entry.
	// Every fetch, timeout, or parse failure maps here - never a crash.
	ErrMissingPrice = errors.New("no price available")

	// ErrInvalidPrice means a manual price entry was not a positive dollar
	// amount with at most two decimal places.
	ErrInvalidPrice = errors.New("invalid price")
)
