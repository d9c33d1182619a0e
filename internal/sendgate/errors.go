package sendgate

import "errors"

var (
	// ErrNotFound is returned when the draft id is unknown.
	ErrNotFound = errors.New("draft not found")

	// ErrAlreadySent is returned when the draft was already delivered.
	// The first send stands; no second delivery happens.
	ErrAlreadySent = errors.New("draft already sent")

	// ErrBlocked is returned when guardrails blocked the draft. A blocked
	// draft can never be sent; it must be regenerated.
	ErrBlocked = errors.New("draft blocked by guardrails")

	// ErrConflict is returned when a concurrent approval won the status
	// transition race.
	ErrConflict = errors.New("draft status changed concurrently")

	// ErrDelivery wraps transport failures. The draft is rolled back to
	// failed and may be re-approved explicitly.
	ErrDelivery = errors.New("delivery failed")
)
