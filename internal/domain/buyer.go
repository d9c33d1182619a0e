package domain

import "time"

// Buyer is a seafood buyer contact. PreferredFish holds normalized fish-type
// strings; an empty set means the buyer has opted out of automatic matching.
type Buyer struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Phone         string    `json:"phone" db:"phone"`
	Carrier       string    `json:"carrier" db:"carrier"`
	PreferredFish []string  `json:"preferred_fish" db:"preferred_fish"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Prefers reports whether the buyer's preference set contains the given fish
// type after normalization.
func (b *Buyer) Prefers(fishType string) bool {
	want := NormalizeFishType(fishType)
	for _, p := range b.PreferredFish {
		if NormalizeFishType(p) == want {
			return true
		}
	}
	return false
}
