// Package api exposes the sales pipeline over HTTP: catch logging, buyer
// management, price resolution, draft generation and the approve-and-send
// gate.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/fishcatch/internal/domain"
	"github.com/ignite/fishcatch/internal/draft"
	"github.com/ignite/fishcatch/internal/pkg/httputil"
	"github.com/ignite/fishcatch/internal/price"
	"github.com/ignite/fishcatch/internal/sendgate"
	"github.com/ignite/fishcatch/internal/transport"
)

// PriceService resolves and overrides the day's quotes.
type PriceService interface {
	Resolve(ctx context.Context, fishType string) (*domain.PriceQuote, error)
	Override(fishType string, pricePerLb float64) (*domain.PriceQuote, error)
	Today() []domain.PriceQuote
}

// QuoteSaver persists quotes for the audit trail. Optional.
type QuoteSaver interface {
	SaveQuote(ctx context.Context, q *domain.PriceQuote) error
}

// CatchStore persists and lists catches.
type CatchStore interface {
	CreateCatch(ctx context.Context, c *domain.Catch) error
	GetCatch(ctx context.Context, id string) (*domain.Catch, error)
	ListCatches(ctx context.Context, limit int) ([]domain.Catch, error)
}

// BuyerStore persists and lists buyers.
type BuyerStore interface {
	CreateBuyer(ctx context.Context, b *domain.Buyer) error
	ListBuyers(ctx context.Context) ([]domain.Buyer, error)
}

// DraftService generates draft batches.
type DraftService interface {
	Generate(ctx context.Context, catchID string) (*draft.Result, error)
}

// DraftStore reads persisted drafts.
type DraftStore interface {
	GetDraft(ctx context.Context, id string) (*domain.MessageDraft, error)
	ListDraftsByCatch(ctx context.Context, catchID string) ([]domain.MessageDraft, error)
}

// SendGate approves and delivers drafts.
type SendGate interface {
	ApproveAndSend(ctx context.Context, messageID string) (*domain.MessageDraft, error)
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	prices  PriceService
	quotes  QuoteSaver
	catches CatchStore
	buyers  BuyerStore
	drafts  DraftService
	store   DraftStore
	gate    SendGate
}

// NewHandlers wires the handler set. quotes may be nil to skip the audit
// trail.
func NewHandlers(prices PriceService, quotes QuoteSaver, catches CatchStore, buyers BuyerStore, drafts DraftService, store DraftStore, gate SendGate) *Handlers {
	return &Handlers{
		prices:  prices,
		quotes:  quotes,
		catches: catches,
		buyers:  buyers,
		drafts:  drafts,
		store:   store,
		gate:    gate,
	}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

type createCatchRequest struct {
	FishType string  `json:"fish_type"`
	Pounds   float64 `json:"pounds"`
	Owner    string  `json:"owner"`
}

type catchResponse struct {
	Catch    *domain.Catch `json:"catch"`
	Warnings []string      `json:"warnings,omitempty"`
}

// CreateCatch logs a new catch.
func (h *Handlers) CreateCatch(w http.ResponseWriter, r *http.Request) {
	var req createCatchRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	c := &domain.Catch{
		ID:       uuid.NewString(),
		FishType: req.FishType,
		Pounds:   req.Pounds,
		Owner:    req.Owner,
		LoggedAt: time.Now().UTC(),
	}
	warnings, err := c.Validate()
	if err != nil {
		httputil.BadRequest(w, "invalid_catch", err.Error())
		return
	}

	if err := h.catches.CreateCatch(r.Context(), c); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.Created(w, catchResponse{Catch: c, Warnings: warnings})
}

// ListCatches returns recent catches.
func (h *Handlers) ListCatches(w http.ResponseWriter, r *http.Request) {
	catches, err := h.catches.ListCatches(r.Context(), 50)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if catches == nil {
		catches = []domain.Catch{}
	}
	httputil.OK(w, map[string]any{"catches": catches})
}

type createBuyerRequest struct {
	Name          string   `json:"name"`
	Phone         string   `json:"phone"`
	Carrier       string   `json:"carrier"`
	PreferredFish []string `json:"preferred_fish"`
}

// CreateBuyer registers a buyer contact.
func (h *Handlers) CreateBuyer(w http.ResponseWriter, r *http.Request) {
	var req createBuyerRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Name == "" || req.Phone == "" {
		httputil.BadRequest(w, "invalid_buyer", "name and phone are required")
		return
	}
	if !transport.ValidCarrier(req.Carrier) {
		httputil.BadRequest(w, "unsupported_carrier", "carrier must be one of: att, sprint, tmobile, verizon")
		return
	}

	normalized := make([]string, 0, len(req.PreferredFish))
	for _, f := range req.PreferredFish {
		if n := domain.NormalizeFishType(f); n != "" {
			normalized = append(normalized, n)
		}
	}

	b := &domain.Buyer{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Phone:         req.Phone,
		Carrier:       req.Carrier,
		PreferredFish: normalized,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.buyers.CreateBuyer(r.Context(), b); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.Created(w, b)
}

// ListBuyers returns every buyer in creation order.
func (h *Handlers) ListBuyers(w http.ResponseWriter, r *http.Request) {
	buyers, err := h.buyers.ListBuyers(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if buyers == nil {
		buyers = []domain.Buyer{}
	}
	httputil.OK(w, map[string]any{"buyers": buyers})
}

// ResolvePrice returns the day's quote for a fish type. A missing price is
// a normal, user-actionable outcome (prompting manual entry), not an
// error, so it comes back as its own result shape.
func (h *Handlers) ResolvePrice(w http.ResponseWriter, r *http.Request) {
	fishType := chi.URLParam(r, "fishType")
	quote, err := h.prices.Resolve(r.Context(), fishType)
	if err != nil {
		if errors.Is(err, price.ErrMissingPrice) {
			httputil.OK(w, map[string]any{"missing_price": true, "fish_type": fishType})
			return
		}
		httputil.InternalError(w, err)
		return
	}
	h.saveQuote(r.Context(), quote)
	httputil.OK(w, map[string]any{"price": quote})
}

type overridePriceRequest struct {
	PricePerLb float64 `json:"price_per_lb"`
}

// OverridePrice installs a manual quote for the rest of the day.
func (h *Handlers) OverridePrice(w http.ResponseWriter, r *http.Request) {
	fishType := chi.URLParam(r, "fishType")
	var req overridePriceRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	quote, err := h.prices.Override(fishType, req.PricePerLb)
	if err != nil {
		if errors.Is(err, price.ErrInvalidPrice) {
			httputil.Unprocessable(w, "invalid_price", err.Error())
			return
		}
		httputil.InternalError(w, err)
		return
	}
	h.saveQuote(r.Context(), quote)
	httputil.OK(w, map[string]any{"price": quote})
}

// ListPrices returns every quote resolved or overridden today.
func (h *Handlers) ListPrices(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{"prices": h.prices.Today()})
}

// GenerateDrafts runs the draft batch for a catch. All three result
// variants come back as 200 responses; only an unknown catch is an HTTP
// error.
func (h *Handlers) GenerateDrafts(w http.ResponseWriter, r *http.Request) {
	catchID := chi.URLParam(r, "catchID")
	res, err := h.drafts.Generate(r.Context(), catchID)
	if err != nil {
		if errors.Is(err, draft.ErrCatchNotFound) {
			httputil.NotFound(w, "catch_not_found", "no catch with that id")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	if res.Drafts == nil {
		res.Drafts = []domain.MessageDraft{}
	}
	httputil.OK(w, res)
}

// ListDrafts returns a catch's drafts.
func (h *Handlers) ListDrafts(w http.ResponseWriter, r *http.Request) {
	catchID := chi.URLParam(r, "catchID")
	drafts, err := h.store.ListDraftsByCatch(r.Context(), catchID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if drafts == nil {
		drafts = []domain.MessageDraft{}
	}
	httputil.OK(w, map[string]any{"drafts": drafts})
}

// GetDraft returns one draft with its violations.
func (h *Handlers) GetDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "draftID")
	d, err := h.store.GetDraft(r.Context(), id)
	if err != nil {
		if errors.Is(err, sendgate.ErrNotFound) {
			httputil.NotFound(w, "draft_not_found", "no draft with that id")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, d)
}

// ApproveAndSend approves one draft and delivers it. Each send-gate guard
// maps to a distinct status code so the client can react without parsing
// messages.
func (h *Handlers) ApproveAndSend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "draftID")
	d, err := h.gate.ApproveAndSend(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, sendgate.ErrNotFound):
			httputil.NotFound(w, "draft_not_found", "no draft with that id")
		case errors.Is(err, sendgate.ErrAlreadySent):
			httputil.Conflict(w, "already_sent", "draft was already sent")
		case errors.Is(err, sendgate.ErrConflict):
			httputil.Conflict(w, "conflict", "draft status changed concurrently, reload and retry")
		case errors.Is(err, sendgate.ErrBlocked):
			httputil.Unprocessable(w, "blocked", "draft is blocked by guardrails and cannot be sent")
		case errors.Is(err, sendgate.ErrDelivery):
			httputil.BadGateway(w, "delivery_error", err.Error())
		default:
			httputil.InternalError(w, err)
		}
		return
	}
	httputil.OK(w, map[string]any{"status": "sent", "draft": d})
}

func (h *Handlers) saveQuote(ctx context.Context, q *domain.PriceQuote) {
	if h.quotes == nil {
		return
	}
	// Audit trail only; a write failure must not fail the request.
	_ = h.quotes.SaveQuote(ctx, q)
}
