package sendgate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/fishcatch/internal/contactlog"
	"github.com/ignite/fishcatch/internal/domain"
)

type memRepo struct {
	mu     sync.Mutex
	drafts map[string]*domain.MessageDraft
	now    func() time.Time
}

func newMemRepo(drafts ...*domain.MessageDraft) *memRepo {
	m := &memRepo{drafts: make(map[string]*domain.MessageDraft), now: time.Now}
	for _, d := range drafts {
		m.drafts[d.ID] = d
	}
	return m
}

func (m *memRepo) GetDraft(_ context.Context, id string) (*domain.MessageDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", id, ErrNotFound)
	}
	cp := *d
	return &cp, nil
}

func (m *memRepo) TransitionStatus(_ context.Context, id string, from []domain.DraftStatus, to domain.DraftStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return fmt.Errorf("draft %s: %w", id, ErrNotFound)
	}
	for _, f := range from {
		if d.Status == f {
			d.Status = to
			if to == domain.DraftSent {
				t := m.now()
				d.SentAt = &t
			}
			return nil
		}
	}
	return fmt.Errorf("draft %s is %s: %w", id, d.Status, ErrConflict)
}

type memBuyers struct {
	buyers map[string]*domain.Buyer
}

func (m *memBuyers) GetBuyer(_ context.Context, id string) (*domain.Buyer, error) {
	b, ok := m.buyers[id]
	if !ok {
		return nil, fmt.Errorf("buyer %s not found", id)
	}
	return b, nil
}

type recordingGateway struct {
	mu    sync.Mutex
	sends []string
	err   error
}

func (g *recordingGateway) Send(_ context.Context, phone, carrier, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.sends = append(g.sends, fmt.Sprintf("%s|%s|%s", phone, carrier, text))
	return nil
}

func pendingDraft() *domain.MessageDraft {
	return &domain.MessageDraft{
		ID:          "m1",
		CatchID:     "c1",
		BuyerID:     "b1",
		BuyerName:   "Alice",
		FishType:    "Halibut",
		Pounds:      100,
		PricePerLb:  4.80,
		MessageText: "Hey Alice, got 100 lbs fresh Halibut today at $4.80/lb. Interested?",
		Status:      domain.DraftPending,
	}
}

func fixture(d *domain.MessageDraft, gw *recordingGateway) (*Service, *memRepo, contactlog.Log) {
	repo := newMemRepo(d)
	buyers := &memBuyers{buyers: map[string]*domain.Buyer{
		"b1": {ID: "b1", Name: "Alice", Phone: "3605551234", Carrier: "verizon"},
	}}
	contacts := contactlog.NewMemoryLog()
	svc := NewService(repo, buyers, contacts, gw)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	return svc, repo, contacts
}

func TestApproveAndSend(t *testing.T) {
	gw := &recordingGateway{}
	svc, _, contacts := fixture(pendingDraft(), gw)

	d, err := svc.ApproveAndSend(context.Background(), "m1")
	require.NoError(t, err)

	assert.Equal(t, domain.DraftSent, d.Status)
	require.NotNil(t, d.SentAt)
	require.Len(t, gw.sends, 1)
	assert.Equal(t, "3605551234|verizon|Hey Alice, got 100 lbs fresh Halibut today at $4.80/lb. Interested?", gw.sends[0])

	n, err := contacts.Count(context.Background(), "b1", "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestApproveAndSendNotFound(t *testing.T) {
	gw := &recordingGateway{}
	svc, _, _ := fixture(pendingDraft(), gw)

	_, err := svc.ApproveAndSend(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, gw.sends)
}

func TestApproveAndSendIdempotent(t *testing.T) {
	gw := &recordingGateway{}
	svc, _, contacts := fixture(pendingDraft(), gw)

	_, err := svc.ApproveAndSend(context.Background(), "m1")
	require.NoError(t, err)

	_, err = svc.ApproveAndSend(context.Background(), "m1")
	assert.ErrorIs(t, err, ErrAlreadySent)

	assert.Len(t, gw.sends, 1, "second approval must not deliver again")
	n, err := contacts.Count(context.Background(), "b1", "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "second approval must not re-increment")
}

func TestApproveAndSendBlocked(t *testing.T) {
	d := pendingDraft()
	d.Status = domain.DraftBlocked
	gw := &recordingGateway{}
	svc, _, _ := fixture(d, gw)

	_, err := svc.ApproveAndSend(context.Background(), "m1")
	assert.ErrorIs(t, err, ErrBlocked)
	assert.Empty(t, gw.sends)
}

func TestApproveAndSendDeliveryFailureRollsBack(t *testing.T) {
	gw := &recordingGateway{err: errors.New("gateway timeout")}
	svc, repo, contacts := fixture(pendingDraft(), gw)
	ctx := context.Background()

	_, err := svc.ApproveAndSend(ctx, "m1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDelivery)
	assert.Contains(t, err.Error(), "gateway timeout")

	d, err := repo.GetDraft(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.DraftFailed, d.Status, "failed delivery lands on failed, not draft")

	n, err := contacts.Count(ctx, "b1", "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, 0, n, "contact increment must be undone")
}

func TestApproveAndSendRetryAfterFailure(t *testing.T) {
	gw := &recordingGateway{err: errors.New("gateway timeout")}
	svc, _, contacts := fixture(pendingDraft(), gw)
	ctx := context.Background()

	_, err := svc.ApproveAndSend(ctx, "m1")
	require.ErrorIs(t, err, ErrDelivery)

	// Explicit re-approval after the transport recovers.
	gw.mu.Lock()
	gw.err = nil
	gw.mu.Unlock()

	d, err := svc.ApproveAndSend(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.DraftSent, d.Status)
	assert.Len(t, gw.sends, 1)

	n, err := contacts.Count(ctx, "b1", "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestApproveAndSendConcurrent(t *testing.T) {
	gw := &recordingGateway{}
	svc, _, contacts := fixture(pendingDraft(), gw)
	ctx := context.Background()

	const attempts = 10
	results := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.ApproveAndSend(ctx, "m1")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		if !errors.Is(err, ErrAlreadySent) && !errors.Is(err, ErrConflict) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one approval may win")
	assert.Len(t, gw.sends, 1)

	n, err := contacts.Count(ctx, "b1", "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
