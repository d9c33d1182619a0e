package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/fishcatch/internal/domain"
	"github.com/ignite/fishcatch/internal/draft"
	"github.com/ignite/fishcatch/internal/price"
	"github.com/ignite/fishcatch/internal/sendgate"
)

type fakePrices struct {
	quote      *domain.PriceQuote
	resolveErr error
}

func (f *fakePrices) Resolve(context.Context, string) (*domain.PriceQuote, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f.quote, nil
}

func (f *fakePrices) Override(fishType string, pricePerLb float64) (*domain.PriceQuote, error) {
	if !domain.ValidPrice(pricePerLb) {
		return nil, fmt.Errorf("%w: %v", price.ErrInvalidPrice, pricePerLb)
	}
	return &domain.PriceQuote{
		FishType:    domain.NormalizeFishType(fishType),
		PricePerLb:  pricePerLb,
		Source:      domain.PriceManual,
		CanneryName: "Manual Entry",
		FetchedAt:   time.Now(),
	}, nil
}

func (f *fakePrices) Today() []domain.PriceQuote {
	if f.quote == nil {
		return nil
	}
	return []domain.PriceQuote{*f.quote}
}

type fakeCatches struct {
	catches map[string]*domain.Catch
	created []*domain.Catch
}

func (f *fakeCatches) CreateCatch(_ context.Context, c *domain.Catch) error {
	f.created = append(f.created, c)
	return nil
}

func (f *fakeCatches) GetCatch(_ context.Context, id string) (*domain.Catch, error) {
	c, ok := f.catches[id]
	if !ok {
		return nil, draft.ErrCatchNotFound
	}
	return c, nil
}

func (f *fakeCatches) ListCatches(context.Context, int) ([]domain.Catch, error) {
	return nil, nil
}

type fakeBuyers struct {
	created []*domain.Buyer
}

func (f *fakeBuyers) CreateBuyer(_ context.Context, b *domain.Buyer) error {
	f.created = append(f.created, b)
	return nil
}

func (f *fakeBuyers) ListBuyers(context.Context) ([]domain.Buyer, error) { return nil, nil }

type fakeDraftService struct {
	result *draft.Result
	err    error
}

func (f *fakeDraftService) Generate(_ context.Context, catchID string) (*draft.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeDraftStore struct {
	drafts map[string]*domain.MessageDraft
}

func (f *fakeDraftStore) GetDraft(_ context.Context, id string) (*domain.MessageDraft, error) {
	d, ok := f.drafts[id]
	if !ok {
		return nil, sendgate.ErrNotFound
	}
	return d, nil
}

func (f *fakeDraftStore) ListDraftsByCatch(context.Context, string) ([]domain.MessageDraft, error) {
	return nil, nil
}

type fakeGate struct {
	draft *domain.MessageDraft
	err   error
}

func (f *fakeGate) ApproveAndSend(context.Context, string) (*domain.MessageDraft, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.draft, nil
}

type fixture struct {
	prices  *fakePrices
	catches *fakeCatches
	buyers  *fakeBuyers
	drafts  *fakeDraftService
	store   *fakeDraftStore
	gate    *fakeGate
	router  http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		prices: &fakePrices{quote: &domain.PriceQuote{
			FishType:    "halibut",
			PricePerLb:  4.80,
			Source:      domain.PriceScraped,
			CanneryName: "Pacific Seafood",
			FetchedAt:   time.Now(),
		}},
		catches: &fakeCatches{catches: map[string]*domain.Catch{
			"c1": {ID: "c1", FishType: "Halibut", Pounds: 100},
		}},
		buyers: &fakeBuyers{},
		drafts: &fakeDraftService{result: &draft.Result{Drafts: []domain.MessageDraft{}}},
		store:  &fakeDraftStore{drafts: map[string]*domain.MessageDraft{}},
		gate:   &fakeGate{},
	}
	h := NewHandlers(f.prices, nil, f.catches, f.buyers, f.drafts, f.store, f.gate)
	f.router = SetupRoutes(h, nil)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	f := newFixture()
	rec := f.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestCreateCatch(t *testing.T) {
	f := newFixture()
	rec := f.do(t, "POST", "/api/catches", map[string]any{
		"fish_type": "Halibut", "pounds": 100, "owner": "Dale",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.catches.created, 1)
	assert.Equal(t, 100.0, f.catches.created[0].Pounds)
}

func TestCreateCatchRejectsBadPounds(t *testing.T) {
	f := newFixture()
	rec := f.do(t, "POST", "/api/catches", map[string]any{
		"fish_type": "Halibut", "pounds": -5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.catches.created)
}

func TestCreateCatchImplausiblePoundsWarns(t *testing.T) {
	f := newFixture()
	rec := f.do(t, "POST", "/api/catches", map[string]any{
		"fish_type": "Halibut", "pounds": 20000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["warnings"], "implausible pounds should warn, not reject")
}

func TestCreateBuyerRejectsUnknownCarrier(t *testing.T) {
	f := newFixture()
	rec := f.do(t, "POST", "/api/buyers", map[string]any{
		"name": "Alice", "phone": "3605551234", "carrier": "cricket",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unsupported_carrier", decodeBody(t, rec)["code"])
}

func TestCreateBuyerNormalizesPreferences(t *testing.T) {
	f := newFixture()
	rec := f.do(t, "POST", "/api/buyers", map[string]any{
		"name": "Alice", "phone": "3605551234", "carrier": "verizon",
		"preferred_fish": []string{"  Halibut ", "CRAB"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.buyers.created, 1)
	assert.Equal(t, []string{"halibut", "crab"}, f.buyers.created[0].PreferredFish)
}

func TestResolvePrice(t *testing.T) {
	f := newFixture()
	rec := f.do(t, "GET", "/api/prices/halibut", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Contains(t, body, "price")
}

func TestResolvePriceMissing(t *testing.T) {
	f := newFixture()
	f.prices.resolveErr = fmt.Errorf("cannery unreachable: %w", price.ErrMissingPrice)

	rec := f.do(t, "GET", "/api/prices/halibut", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["missing_price"])
}

func TestOverridePrice(t *testing.T) {
	f := newFixture()
	rec := f.do(t, "PUT", "/api/prices/halibut", map[string]any{"price_per_lb": 5.00})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestOverridePriceInvalid(t *testing.T) {
	f := newFixture()
	rec := f.do(t, "PUT", "/api/prices/halibut", map[string]any{"price_per_lb": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_price", decodeBody(t, rec)["code"])
}

func TestGenerateDraftsUnknownCatch(t *testing.T) {
	f := newFixture()
	f.drafts.err = draft.ErrCatchNotFound

	rec := f.do(t, "POST", "/api/catches/nope/drafts", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "catch_not_found", decodeBody(t, rec)["code"])
}

func TestGenerateDraftsMissingPriceVariant(t *testing.T) {
	f := newFixture()
	f.drafts.result = &draft.Result{MissingPrice: true}

	rec := f.do(t, "POST", "/api/catches/c1/drafts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["missing_price"])
}

func TestApproveAndSend(t *testing.T) {
	f := newFixture()
	sentAt := time.Now()
	f.gate.draft = &domain.MessageDraft{ID: "m1", Status: domain.DraftSent, SentAt: &sentAt}

	rec := f.do(t, "POST", "/api/drafts/m1/send", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sent", decodeBody(t, rec)["status"])
}

func TestApproveAndSendErrorMapping(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantBody string
	}{
		{sendgate.ErrNotFound, http.StatusNotFound, "draft_not_found"},
		{sendgate.ErrAlreadySent, http.StatusConflict, "already_sent"},
		{sendgate.ErrConflict, http.StatusConflict, "conflict"},
		{sendgate.ErrBlocked, http.StatusUnprocessableEntity, "blocked"},
		{fmt.Errorf("%w: gateway timeout", sendgate.ErrDelivery), http.StatusBadGateway, "delivery_error"},
	}
	for _, tt := range tests {
		f := newFixture()
		f.gate.err = tt.err
		rec := f.do(t, "POST", "/api/drafts/m1/send", nil)
		assert.Equal(t, tt.wantCode, rec.Code, "err=%v", tt.err)
		assert.Equal(t, tt.wantBody, decodeBody(t, rec)["code"], "err=%v", tt.err)
	}
}

func TestGetDraftNotFound(t *testing.T) {
	f := newFixture()
	rec := f.do(t, "GET", "/api/drafts/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
