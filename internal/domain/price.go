package domain

import (
	"math"
	"time"
)

// PriceOrigin tells where a quote came from.
type PriceOrigin string

const (
	PriceScraped PriceOrigin = "scraped"
	PriceManual  PriceOrigin = "manual"
)

// PriceQuote is the authoritative per-pound price for a fish type on a given
// calendar day. A manual override replaces the scraped value for the rest of
// the day.
type PriceQuote struct {
	FishType    string      `json:"fish_type" db:"fish_type"`
	PricePerLb  float64     `json:"price_per_lb" db:"price_per_lb"`
	Source      PriceOrigin `json:"source" db:"source"`
	CanneryName string      `json:"cannery_name" db:"cannery_name"`
	FetchedAt   time.Time   `json:"fetched_at" db:"fetched_at"`
}

// Round2 rounds a dollar amount to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ValidPrice reports whether v is a positive dollar amount with at most two
// decimal places.
func ValidPrice(v float64) bool {
	if v <= 0 {
		return false
	}
	cents := v * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}
