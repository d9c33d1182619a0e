package guardrail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/fishcatch/internal/domain"
)

type memCounter struct {
	counts map[string]int
}

func (c *memCounter) Count(_ context.Context, buyerID, day string) (int, error) {
	return c.counts[buyerID+"|"+day], nil
}

var (
	alice = domain.Buyer{ID: "b1", Name: "Alice", Phone: "3605551234"}
	bob   = domain.Buyer{ID: "b2", Name: "Bob", Phone: "360-555-9876"}
)

func baseInput(text string) Input {
	return Input{
		MessageText: text,
		FishType:    "Halibut",
		Pounds:      100,
		PricePerLb:  4.80,
		Buyer:       alice,
		AllBuyers:   []domain.Buyer{alice, bob},
	}
}

func newTestValidator(counts map[string]int) *Validator {
	v := New(&memCounter{counts: counts})
	v.now = func() time.Time {
		return time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	}
	return v
}

func TestValidateCleanDraft(t *testing.T) {
	v := newTestValidator(nil)
	violations, err := v.Validate(context.Background(),
		baseInput("Hey Alice, got 100 lbs fresh Halibut today. Cannery buying at $4.80/lb. Interested?"))
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateWrongTotal(t *testing.T) {
	v := newTestValidator(nil)
	violations, err := v.Validate(context.Background(),
		baseInput("Hey Alice, 100 lbs Halibut at $4.80/lb, that's $450 total. Interested?"))
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, domain.ViolationMathError, violations[0].Kind)
	assert.Equal(t, domain.SeverityBlocking, violations[0].Severity)
}

func TestValidateCorrectTotalPasses(t *testing.T) {
	v := newTestValidator(nil)
	violations, err := v.Validate(context.Background(),
		baseInput("100 lbs Halibut at $4.80/lb, $480.00 total. Interested, Alice?"))
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidatePriceMismatch(t *testing.T) {
	v := newTestValidator(nil)
	violations, err := v.Validate(context.Background(),
		baseInput("Hey Alice, got 100 lbs Halibut. Cannery paying $5.25/lb today."))
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, domain.ViolationPriceMismatch, violations[0].Kind)
	assert.Equal(t, domain.SeverityBlocking, violations[0].Severity)
}

func TestValidatePriceRestatedWithoutSuffix(t *testing.T) {
	// A bare "$4.80" is the unit price restated, not a wrong total.
	v := newTestValidator(nil)
	violations, err := v.Validate(context.Background(),
		baseInput("Hey Alice, Halibut today at $4.80, 100 lbs available."))
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateDuplicateContactWarning(t *testing.T) {
	v := newTestValidator(map[string]int{"b1|2026-08-30": 1})
	violations, err := v.Validate(context.Background(),
		baseInput("Hey Alice, got 100 lbs fresh Halibut today at $4.80/lb. Interested?"))
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, domain.ViolationDuplicateContact, violations[0].Kind)
	assert.Equal(t, domain.SeverityWarning, violations[0].Severity, "duplicate contact must not block")
}

func TestValidatePrivacyLeakName(t *testing.T) {
	v := newTestValidator(nil)
	violations, err := v.Validate(context.Background(),
		baseInput("Hey Alice, Bob already passed on this Halibut, want 100 lbs at $4.80/lb?"))
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, domain.ViolationPrivacyLeak, violations[0].Kind)
}

func TestValidatePrivacyLeakPhone(t *testing.T) {
	v := newTestValidator(nil)
	violations, err := v.Validate(context.Background(),
		baseInput("Hey Alice, call 360-555-9876 if you want the Halibut at $4.80/lb."))
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, domain.ViolationPrivacyLeak, violations[0].Kind)
}

func TestValidateOwnPhoneAllowed(t *testing.T) {
	v := newTestValidator(nil)
	violations, err := v.Validate(context.Background(),
		baseInput("Hey Alice, confirming 360-555-1234 is you. Halibut at $4.80/lb today."))
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateCommitmentLanguage(t *testing.T) {
	v := newTestValidator(nil)
	violations, err := v.Validate(context.Background(),
		baseInput("Hey Alice, Halibut at $4.80/lb, it's a deal if you want it."))
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, domain.ViolationUnprofessional, violations[0].Kind)
	assert.Equal(t, domain.SeverityBlocking, violations[0].Severity)
}

func TestValidateProfanityBlocked(t *testing.T) {
	v := newTestValidator(nil)
	violations, err := v.Validate(context.Background(),
		baseInput("Alice, this Halibut is damn good. $4.80/lb, 100 lbs."))
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, domain.ViolationUnprofessional, violations[0].Kind)
}

func TestValidateWordBoundaries(t *testing.T) {
	// "shellfish" contains "hell" and "sold" hides in "unsold"; neither
	// should trip the professionalism check.
	v := newTestValidator(nil)
	violations, err := v.Validate(context.Background(),
		baseInput("Hey Alice, shellfish season! 100 lbs unsold Halibut at $4.80/lb."))
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateMultipleViolationsOrdered(t *testing.T) {
	v := newTestValidator(map[string]int{"b1|2026-08-30": 2})
	violations, err := v.Validate(context.Background(),
		baseInput("Hey Alice, Bob wants the Halibut too. $5.50/lb, $450 total, deal?"))
	require.NoError(t, err)
	require.Len(t, violations, 5)
	assert.Equal(t, domain.ViolationPriceMismatch, violations[0].Kind)
	assert.Equal(t, domain.ViolationMathError, violations[1].Kind)
	assert.Equal(t, domain.ViolationDuplicateContact, violations[2].Kind)
	assert.Equal(t, domain.ViolationPrivacyLeak, violations[3].Kind)
	assert.Equal(t, domain.ViolationUnprofessional, violations[4].Kind)
}

func TestValidateNilCounterSkipsDuplicateCheck(t *testing.T) {
	v := New(nil)
	violations, err := v.Validate(context.Background(),
		baseInput("Hey Alice, 100 lbs Halibut at $4.80/lb. Interested?"))
	require.NoError(t, err)
	assert.Empty(t, violations)
}
