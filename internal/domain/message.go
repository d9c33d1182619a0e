package domain

import "time"

// DraftStatus enumerates the lifecycle states of a message draft.
//
// Allowed transitions:
//
//	draft → blocked   (guardrail failure; terminal unless regenerated)
//	draft → sent      (approval + successful delivery)
//	draft → failed    (approval + delivery error; retryable)
//	failed → sent     (explicit re-approval succeeds)
//	failed → failed   (explicit re-approval fails again)
//
// No other transitions exist. In particular nothing moves a draft to sent
// except an explicit send-gate call.
type DraftStatus string

const (
	DraftPending DraftStatus = "draft"
	DraftBlocked DraftStatus = "blocked"
	DraftSent    DraftStatus = "sent"
	DraftFailed  DraftStatus = "failed"
)

// Severity classifies a guardrail violation.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityWarning  Severity = "warning"
)

// Violation kinds, in the order the guardrail validator emits them.
const (
	ViolationPriceMismatch    = "price_mismatch"
	ViolationMathError        = "math_error"
	ViolationDuplicateContact = "duplicate_contact"
	ViolationPrivacyLeak      = "privacy_leak"
	ViolationUnprofessional   = "unprofessional_content"
)

// Violation is one deterministic guardrail finding attached to a draft.
// Violations are data, never errors: a blocked draft is still returned to the
// caller so the reason is visible.
type Violation struct {
	Kind        string   `json:"kind"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// MessageDraft is a generated, unsent candidate message awaiting human
// approval. Pounds and PricePerLb are frozen copies of the Catch/PriceQuote
// at generation time; later price changes never alter an existing draft.
type MessageDraft struct {
	ID          string      `json:"id" db:"id"`
	CatchID     string      `json:"catch_id" db:"catch_id"`
	BuyerID     string      `json:"buyer_id" db:"buyer_id"`
	BuyerName   string      `json:"buyer_name" db:"buyer_name"`
	FishType    string      `json:"fish_type" db:"fish_type"`
	Pounds      float64     `json:"pounds" db:"pounds"`
	PricePerLb  float64     `json:"price_per_lb" db:"price_per_lb"`
	MessageText string      `json:"message_text" db:"message_text"`
	Status      DraftStatus `json:"status" db:"status"`
	Violations  []Violation `json:"violations" db:"violations"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	SentAt      *time.Time  `json:"sent_at" db:"sent_at"`
}

// TotalValue is the ground-truth sale value for the draft, rounded to cents.
func (d *MessageDraft) TotalValue() float64 {
	return Round2(d.Pounds * d.PricePerLb)
}

// Blocked reports whether any attached violation is blocking.
func (d *MessageDraft) Blocked() bool {
	for _, v := range d.Violations {
		if v.Severity == SeverityBlocking {
			return true
		}
	}
	return false
}

// Sendable reports whether the draft may be offered for approval.
func (d *MessageDraft) Sendable() bool {
	return d.Status == DraftPending || d.Status == DraftFailed
}
