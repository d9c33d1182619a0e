package price

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ignite/fishcatch/internal/domain"
	"github.com/ignite/fishcatch/internal/pkg/logger"
)

// Resolver serves the authoritative per-pound price for each fish type.
// Scraped quotes are cached for the remainder of the calendar day; a manual
// override replaces the scraped value until the next day or an explicit
// Refresh. All fetch/parse failures surface as ErrMissingPrice.
//
// Safe for concurrent use.
type Resolver struct {
	source  Source
	timeout time.Duration

	mu     sync.Mutex
	day    string // cache validity marker, "2006-01-02"
	quotes map[string]*domain.PriceQuote

	now func() time.Time // injectable for tests
}

// NewResolver creates a resolver over the given source. timeout bounds one
// fetch attempt; zero means 10 seconds.
func NewResolver(source Source, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		source:  source,
		timeout: timeout,
		quotes:  make(map[string]*domain.PriceQuote),
		now:     time.Now,
	}
}

// Resolve returns today's authoritative quote for the fish type, fetching
// from the cannery source on a cache miss. The returned quote is a copy;
// callers may hold it across a batch without seeing later refreshes.
func (r *Resolver) Resolve(ctx context.Context, fishType string) (*domain.PriceQuote, error) {
	key := domain.NormalizeFishType(fishType)

	r.mu.Lock()
	r.rollDayLocked()
	if q, ok := r.quotes[key]; ok {
		cp := *q
		r.mu.Unlock()
		return &cp, nil
	}
	r.mu.Unlock()

	fetched, cannery, err := r.fetch(ctx)
	if err != nil {
		logger.Warn("price fetch failed", "fish_type", fishType, "error", err.Error())
		return nil, fmt.Errorf("%w: %v", ErrMissingPrice, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollDayLocked()
	now := r.now()
	for fish, perLb := range fetched {
		k := domain.NormalizeFishType(fish)
		// Never clobber a manual override installed while we were fetching.
		if existing, ok := r.quotes[k]; ok && existing.Source == domain.PriceManual {
			continue
		}
		r.quotes[k] = &domain.PriceQuote{
			FishType:    fish,
			PricePerLb:  domain.Round2(perLb),
			Source:      domain.PriceScraped,
			CanneryName: cannery,
			FetchedAt:   now,
		}
	}

	if q, ok := r.quotes[key]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, fmt.Errorf("%w: cannery page had no %s price", ErrMissingPrice, fishType)
}

// Override installs a manual quote that takes precedence over any scraped
// value for the rest of the day. Fails with ErrInvalidPrice unless the value
// is a positive dollar amount with at most two decimal places.
func (r *Resolver) Override(fishType string, pricePerLb float64) (*domain.PriceQuote, error) {
	if !domain.ValidPrice(pricePerLb) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrice, pricePerLb)
	}

	q := &domain.PriceQuote{
		FishType:    fishType,
		PricePerLb:  pricePerLb,
		Source:      domain.PriceManual,
		CanneryName: "Manual Entry",
		FetchedAt:   r.now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollDayLocked()
	r.quotes[domain.NormalizeFishType(fishType)] = q

	logger.Info("manual price override installed", "fish_type", fishType, "price_per_lb", pricePerLb)
	cp := *q
	return &cp, nil
}

// Refresh drops all cached quotes for the current day, forcing the next
// Resolve to hit the cannery source again. Manual overrides are dropped too;
// that is the documented escape hatch for a bad entry.
func (r *Resolver) Refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotes = make(map[string]*domain.PriceQuote)
	r.day = r.now().Format("2006-01-02")
}

// Today returns copies of every quote cached for the current day.
func (r *Resolver) Today() []domain.PriceQuote {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollDayLocked()
	out := make([]domain.PriceQuote, 0, len(r.quotes))
	for _, q := range r.quotes {
		out = append(out, *q)
	}
	return out
}

// fetch runs one bounded fetch-and-parse attempt against the source.
func (r *Resolver) fetch(ctx context.Context) (map[string]float64, string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	content, err := r.source.Fetch(ctx)
	if err != nil {
		return nil, "", err
	}
	prices, err := r.source.Parse(content)
	if err != nil {
		return nil, "", err
	}
	return prices, r.source.Name(), nil
}

// rollDayLocked invalidates the cache when the calendar day changes.
// Caller must hold r.mu.
func (r *Resolver) rollDayLocked() {
	today := r.now().Format("2006-01-02")
	if r.day != today {
		r.day = today
		r.quotes = make(map[string]*domain.PriceQuote)
	}
}
