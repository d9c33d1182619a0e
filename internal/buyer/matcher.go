// Package buyer selects which buyers get offered a catch.
package buyer

import (
	"context"

	"github.com/ignite/fishcatch/internal/domain"
)

// Repository defines the data access the matcher needs.
// Implementations must return buyers in creation order and be safe for
// concurrent use.
type Repository interface {
	// ListBuyers returns every buyer, ordered by creation.
	ListBuyers(ctx context.Context) ([]domain.Buyer, error)

	// GetBuyer returns a single buyer by ID.
	GetBuyer(ctx context.Context, id string) (*domain.Buyer, error)
}

// Matcher selects buyers interested in a fish type. Matching is strictly
// opt-in: a buyer with an empty preference set is never contacted
// automatically.
type Matcher struct {
	repo Repository
}

// NewMatcher creates a matcher backed by the given repository.
func NewMatcher(repo Repository) *Matcher {
	return &Matcher{repo: repo}
}

// Match returns the buyers whose preference set contains fishType after
// case-insensitive, whitespace-trimmed normalization, in creation order.
func (m *Matcher) Match(ctx context.Context, fishType string) ([]domain.Buyer, error) {
	all, err := m.repo.ListBuyers(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]domain.Buyer, 0, len(all))
	for _, b := range all {
		if len(b.PreferredFish) == 0 {
			continue // opted out
		}
		if b.Prefers(fishType) {
			matched = append(matched, b)
		}
	}
	return matched, nil
}
