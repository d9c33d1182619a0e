package domain

import (
	"fmt"
	"strings"
	"time"
)

// KnownFishTypes are the catch categories the boat logs.
var KnownFishTypes = []string{"Crab", "Salmon", "Halibut", "Other"}

// MaxPlausiblePounds is the sanity ceiling for a single logged catch.
// Anything above it is flagged for double-checking, not rejected.
const MaxPlausiblePounds = 10000.0

// Catch is a single logged haul. Immutable once created.
type Catch struct {
	ID       string    `json:"id" db:"id"`
	FishType string    `json:"fish_type" db:"fish_type"`
	Pounds   float64   `json:"pounds" db:"pounds"`
	LoggedAt time.Time `json:"logged_at" db:"logged_at"`
	Owner    string    `json:"owner" db:"owner"`
}

// Validate checks the catch fields. It returns a hard error for data that
// must not be persisted and a list of advisory warnings for data that is
// suspicious but allowed.
func (c *Catch) Validate() (warnings []string, err error) {
	known := false
	for _, ft := range KnownFishTypes {
		if strings.EqualFold(strings.TrimSpace(c.FishType), ft) {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("unknown fish type %q (must be one of: %s)",
			c.FishType, strings.Join(KnownFishTypes, ", "))
	}
	if c.Pounds <= 0 {
		return nil, fmt.Errorf("pounds must be greater than 0, got %v", c.Pounds)
	}
	if c.Pounds > MaxPlausiblePounds {
		warnings = append(warnings, fmt.Sprintf("unusually large catch: %.0f lbs - double-check the amount", c.Pounds))
	}
	return warnings, nil
}

// NormalizeFishType canonicalizes a fish type for matching and cache keys:
// lowercased with surrounding whitespace trimmed.
func NormalizeFishType(fishType string) string {
	return strings.ToLower(strings.TrimSpace(fishType))
}
