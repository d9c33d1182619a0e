package buyer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/fishcatch/internal/buyer"
	"github.com/ignite/fishcatch/internal/domain"
)

// memRepo is an in-memory buyer repository preserving insertion order.
type memRepo struct {
	buyers []domain.Buyer
}

func (m *memRepo) ListBuyers(_ context.Context) ([]domain.Buyer, error) {
	out := make([]domain.Buyer, len(m.buyers))
	copy(out, m.buyers)
	return out, nil
}

func (m *memRepo) GetBuyer(_ context.Context, id string) (*domain.Buyer, error) {
	for i := range m.buyers {
		if m.buyers[i].ID == id {
			b := m.buyers[i]
			return &b, nil
		}
	}
	return nil, nil
}

func seedRepo() *memRepo {
	now := time.Now()
	return &memRepo{buyers: []domain.Buyer{
		{ID: "b1", Name: "Alice", PreferredFish: []string{"Halibut", "Crab"}, CreatedAt: now},
		{ID: "b2", Name: "Bob", PreferredFish: []string{"halibut "}, CreatedAt: now.Add(time.Minute)},
		{ID: "b3", Name: "Carol", PreferredFish: nil, CreatedAt: now.Add(2 * time.Minute)},
		{ID: "b4", Name: "Dan", PreferredFish: []string{"Salmon"}, CreatedAt: now.Add(3 * time.Minute)},
	}}
}

func TestMatchNormalizesFishType(t *testing.T) {
	m := buyer.NewMatcher(seedRepo())

	got, err := m.Match(context.Background(), "  HALIBUT ")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b1", got[0].ID)
	assert.Equal(t, "b2", got[1].ID)
}

func TestMatchEmptyPreferencesOptOut(t *testing.T) {
	m := buyer.NewMatcher(seedRepo())

	got, err := m.Match(context.Background(), "Halibut")
	require.NoError(t, err)
	for _, b := range got {
		assert.NotEqual(t, "b3", b.ID, "buyer with no preferences must never match")
	}
}

func TestMatchStableOrder(t *testing.T) {
	m := buyer.NewMatcher(seedRepo())

	for i := 0; i < 5; i++ {
		got, err := m.Match(context.Background(), "halibut")
		require.NoError(t, err)
		ids := []string{got[0].ID, got[1].ID}
		assert.Equal(t, []string{"b1", "b2"}, ids)
	}
}

func TestMatchNoInterest(t *testing.T) {
	m := buyer.NewMatcher(seedRepo())

	got, err := m.Match(context.Background(), "Tuna")
	require.NoError(t, err)
	assert.Empty(t, got)
}
