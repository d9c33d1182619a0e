// Package guardrail fact-checks generated drafts before they reach the
// fisherman. Every check is deterministic; the validator never calls a
// model and never rewrites message text, it only attaches violations.
package guardrail

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ignite/fishcatch/internal/domain"
)

// priceTolerance is the maximum dollar difference treated as equal.
// Generated text rounds figures, so exact float comparison is too strict.
const priceTolerance = 0.01

// ContactCounter reports how many times a buyer has been messaged on a
// given day. Day is formatted as 2006-01-02.
type ContactCounter interface {
	Count(ctx context.Context, buyerID, day string) (int, error)
}

// Input carries everything the checks need. MessageText is the generated
// draft; the numeric fields are the verified values it must agree with.
type Input struct {
	MessageText string
	FishType    string
	Pounds      float64
	PricePerLb  float64
	Buyer       domain.Buyer
	AllBuyers   []domain.Buyer
}

// Validator runs the fixed check sequence over a draft.
type Validator struct {
	counter ContactCounter
	now     func() time.Time
}

// New creates a validator. counter may be nil, which disables the
// duplicate-contact check (used by offline tooling without Redis).
func New(counter ContactCounter) *Validator {
	return &Validator{counter: counter, now: time.Now}
}

// moneyFigure matches a dollar amount and captures an optional per-pound
// suffix so "$4.80/lb" and "$480" can be told apart.
var moneyFigure = regexp.MustCompile(`\$\s*(\d+(?:,\d{3})*(?:\.\d+)?)(\s*(?:/\s*lb|per\s+lb))?`)

// phoneCandidate matches digit runs that could be a US phone number.
var phoneCandidate = regexp.MustCompile(`\d[\d\-\.\s\(\)]{8,}\d`)

var commitmentTerms = []string{
	"deal", "sold", "meet me", "pickup at", "final price", "agreed",
	"guaranteed", "promise",
}

var profanityTerms = []string{
	"damn", "hell", "shit", "fuck", "crap", "bastard",
}

// Validate runs every check in order and returns the accumulated
// violations. Checks are independent; a failed price check does not stop
// the privacy check from running.
func (v *Validator) Validate(ctx context.Context, in Input) ([]domain.Violation, error) {
	var violations []domain.Violation

	violations = append(violations, v.checkPrices(in)...)
	violations = append(violations, v.checkTotals(in)...)

	dup, err := v.checkDuplicateContact(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("duplicate contact check: %w", err)
	}
	violations = append(violations, dup...)

	violations = append(violations, v.checkPrivacy(in)...)
	violations = append(violations, v.checkProfessionalism(in)...)

	return violations, nil
}

// checkPrices verifies that every per-pound figure in the text matches the
// resolved price.
func (v *Validator) checkPrices(in Input) []domain.Violation {
	for _, m := range moneyFigure.FindAllStringSubmatch(in.MessageText, -1) {
		if m[2] == "" {
			continue
		}
		val, ok := parseMoney(m[1])
		if !ok {
			continue
		}
		if math.Abs(val-in.PricePerLb) > priceTolerance {
			return []domain.Violation{{
				Kind:        domain.ViolationPriceMismatch,
				Severity:    domain.SeverityBlocking,
				Description: fmt.Sprintf("message states $%.2f/lb but resolved price is $%.2f/lb", val, in.PricePerLb),
			}}
		}
	}
	return nil
}

// checkTotals treats every dollar figure that is neither per-pound nor a
// restatement of the unit price as a claimed total and verifies it against
// pounds times price.
func (v *Validator) checkTotals(in Input) []domain.Violation {
	expected := domain.Round2(in.Pounds * in.PricePerLb)
	for _, m := range moneyFigure.FindAllStringSubmatch(in.MessageText, -1) {
		if m[2] != "" {
			continue
		}
		val, ok := parseMoney(m[1])
		if !ok {
			continue
		}
		if math.Abs(val-in.PricePerLb) <= priceTolerance {
			continue
		}
		if math.Abs(val-expected) > priceTolerance {
			return []domain.Violation{{
				Kind:        domain.ViolationMathError,
				Severity:    domain.SeverityBlocking,
				Description: fmt.Sprintf("message states $%.2f but %s lbs at $%.2f/lb is $%.2f", val, trimFloat(in.Pounds), in.PricePerLb, expected),
			}}
		}
	}
	return nil
}

// checkDuplicateContact flags buyers already messaged today. This is a
// warning only; the fisherman can still approve the send.
func (v *Validator) checkDuplicateContact(ctx context.Context, in Input) ([]domain.Violation, error) {
	if v.counter == nil {
		return nil, nil
	}
	day := v.now().Format("2006-01-02")
	n, err := v.counter.Count(ctx, in.Buyer.ID, day)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return []domain.Violation{{
			Kind:        domain.ViolationDuplicateContact,
			Severity:    domain.SeverityWarning,
			Description: fmt.Sprintf("%s was already contacted %d time(s) today", in.Buyer.Name, n),
		}}, nil
	}
	return nil, nil
}

// checkPrivacy scans for other buyers' names and phone numbers. A message
// addressed to one buyer must never leak who else is on the list.
func (v *Validator) checkPrivacy(in Input) []domain.Violation {
	lowerText := strings.ToLower(in.MessageText)
	textDigits := phoneDigits(in.MessageText)

	for _, other := range in.AllBuyers {
		if other.ID == in.Buyer.ID {
			continue
		}
		if other.Name != "" && containsWord(lowerText, strings.ToLower(other.Name)) {
			return []domain.Violation{{
				Kind:        domain.ViolationPrivacyLeak,
				Severity:    domain.SeverityBlocking,
				Description: fmt.Sprintf("message mentions another buyer: %s", other.Name),
			}}
		}
		if d := digitsOnly(other.Phone); d != "" {
			for _, td := range textDigits {
				if td == d {
					return []domain.Violation{{
						Kind:        domain.ViolationPrivacyLeak,
						Severity:    domain.SeverityBlocking,
						Description: "message contains another buyer's phone number",
					}}
				}
			}
		}
	}
	return nil
}

// checkProfessionalism rejects commitment language the fisherman has not
// authorized, plus profanity. The assistant informs about availability and
// price; it never closes a deal.
func (v *Validator) checkProfessionalism(in Input) []domain.Violation {
	lowerText := strings.ToLower(in.MessageText)
	for _, term := range commitmentTerms {
		if containsWord(lowerText, term) {
			return []domain.Violation{{
				Kind:        domain.ViolationUnprofessional,
				Severity:    domain.SeverityBlocking,
				Description: fmt.Sprintf("message contains commitment language (%q); deals are closed by the fisherman directly", term),
			}}
		}
	}
	for _, term := range profanityTerms {
		if containsWord(lowerText, term) {
			return []domain.Violation{{
				Kind:        domain.ViolationUnprofessional,
				Severity:    domain.SeverityBlocking,
				Description: "message contains profanity",
			}}
		}
	}
	return nil
}

func parseMoney(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// containsWord reports whether needle appears in haystack on word
// boundaries. Plain substring matching would flag "hell" inside "shell".
func containsWord(haystack, needle string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// phoneDigits extracts candidate phone numbers from text as bare digit
// strings, keeping only plausible lengths.
func phoneDigits(text string) []string {
	var out []string
	for _, m := range phoneCandidate.FindAllString(text, -1) {
		d := digitsOnly(m)
		if len(d) >= 10 && len(d) <= 11 {
			out = append(out, d)
		}
	}
	return out
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func trimFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return s
}
