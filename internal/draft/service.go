// Package draft orchestrates the sales pipeline for one catch: resolve a
// price, match buyers, generate message text per buyer, run the guardrails
// and persist the resulting drafts for human review.
package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/fishcatch/internal/domain"
	"github.com/ignite/fishcatch/internal/generator"
	"github.com/ignite/fishcatch/internal/guardrail"
	"github.com/ignite/fishcatch/internal/pkg/logger"
	"github.com/ignite/fishcatch/internal/price"
)

const defaultConcurrency = 4

// CatchRepository loads catches for draft generation.
type CatchRepository interface {
	GetCatch(ctx context.Context, id string) (*domain.Catch, error)
}

// BuyerLister returns every registered buyer, in creation order.
type BuyerLister interface {
	ListBuyers(ctx context.Context) ([]domain.Buyer, error)
}

// BuyerMatcher returns the buyers interested in a fish type.
type BuyerMatcher interface {
	Match(ctx context.Context, fishType string) ([]domain.Buyer, error)
}

// PriceResolver produces the day's quote for a fish type.
type PriceResolver interface {
	Resolve(ctx context.Context, fishType string) (*domain.PriceQuote, error)
}

// DraftRepository persists generated drafts.
type DraftRepository interface {
	CreateDraft(ctx context.Context, d *domain.MessageDraft) error
}

// Result is the outcome of one generation batch. Exactly one of the three
// shapes applies: MissingPrice, Blocked (every draft failed a blocking
// guardrail), or the normal drafts+price form. Violations aggregates every
// draft's violations so callers can render them without walking the list.
type Result struct {
	Drafts       []domain.MessageDraft `json:"drafts,omitempty"`
	Violations   []domain.Violation    `json:"violations,omitempty"`
	Price        *domain.PriceQuote    `json:"price,omitempty"`
	MissingPrice bool                  `json:"missing_price,omitempty"`
	Blocked      bool                  `json:"blocked,omitempty"`
}

// Service runs draft generation batches.
type Service struct {
	catches     CatchRepository
	buyers      BuyerLister
	matcher     BuyerMatcher
	resolver    PriceResolver
	generator   generator.Generator
	validator   *guardrail.Validator
	drafts      DraftRepository
	concurrency int
	now         func() time.Time
}

// NewService wires the orchestrator. concurrency bounds how many generator
// calls run at once; values below 1 fall back to the default.
func NewService(
	catches CatchRepository,
	buyers BuyerLister,
	matcher BuyerMatcher,
	resolver PriceResolver,
	gen generator.Generator,
	validator *guardrail.Validator,
	drafts DraftRepository,
	concurrency int,
) *Service {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Service{
		catches:     catches,
		buyers:      buyers,
		matcher:     matcher,
		resolver:    resolver,
		generator:   gen,
		validator:   validator,
		drafts:      drafts,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Generate produces drafts for every buyer matched to the catch's fish
// type. The price quote is snapshotted once before the batch starts, so
// every draft reflects the same price even if the resolver refreshes
// mid-batch. A missing price short-circuits before any generator call.
func (s *Service) Generate(ctx context.Context, catchID string) (*Result, error) {
	c, err := s.catches.GetCatch(ctx, catchID)
	if err != nil {
		return nil, err
	}

	quote, err := s.resolver.Resolve(ctx, c.FishType)
	if err != nil {
		if errors.Is(err, price.ErrMissingPrice) {
			logger.Info("no price available, skipping generation",
				"catch_id", catchID, "fish_type", c.FishType)
			return &Result{MissingPrice: true}, nil
		}
		return nil, err
	}

	matched, err := s.matcher.Match(ctx, c.FishType)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return &Result{Drafts: []domain.MessageDraft{}, Price: quote}, nil
	}

	allBuyers, err := s.buyers.ListBuyers(ctx)
	if err != nil {
		return nil, err
	}

	texts, err := s.generateAll(ctx, c, quote, matched)
	if err != nil {
		return nil, err
	}

	result := &Result{Price: quote}
	blockedCount := 0
	for i, b := range matched {
		d := domain.MessageDraft{
			ID:          uuid.NewString(),
			CatchID:     c.ID,
			BuyerID:     b.ID,
			BuyerName:   b.Name,
			FishType:    c.FishType,
			Pounds:      c.Pounds,
			PricePerLb:  quote.PricePerLb,
			MessageText: texts[i],
			Status:      domain.DraftPending,
			CreatedAt:   s.now(),
		}

		violations, err := s.validator.Validate(ctx, guardrail.Input{
			MessageText: d.MessageText,
			FishType:    d.FishType,
			Pounds:      d.Pounds,
			PricePerLb:  d.PricePerLb,
			Buyer:       b,
			AllBuyers:   allBuyers,
		})
		if err != nil {
			return nil, fmt.Errorf("validating draft for buyer %s: %w", b.ID, err)
		}
		d.Violations = violations
		if d.Blocked() {
			d.Status = domain.DraftBlocked
			blockedCount++
			logger.Warn("draft blocked by guardrails",
				"catch_id", c.ID, "buyer_id", b.ID, "violations", len(violations))
		}

		if err := s.drafts.CreateDraft(ctx, &d); err != nil {
			return nil, fmt.Errorf("persisting draft for buyer %s: %w", b.ID, err)
		}

		result.Drafts = append(result.Drafts, d)
		result.Violations = append(result.Violations, violations...)
	}

	result.Blocked = blockedCount == len(result.Drafts)
	logger.Info("draft batch generated",
		"catch_id", c.ID, "drafts", len(result.Drafts), "blocked", blockedCount)
	return result, nil
}

// generateAll runs the generator for each buyer through a bounded worker
// pool and returns the texts in buyer order.
func (s *Service) generateAll(ctx context.Context, c *domain.Catch, quote *domain.PriceQuote, matched []domain.Buyer) ([]string, error) {
	texts := make([]string, len(matched))
	errs := make([]error, len(matched))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, b := range matched {
		wg.Add(1)
		go func(i int, b domain.Buyer) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			texts[i], errs[i] = s.generator.Generate(ctx, generator.NumericContext{
				BuyerName:  b.Name,
				FishType:   c.FishType,
				Pounds:     c.Pounds,
				PricePerLb: quote.PricePerLb,
				TotalValue: domain.Round2(c.Pounds * quote.PricePerLb),
			})
		}(i, b)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("generating draft for buyer %s: %w", matched[i].ID, err)
		}
	}
	return texts, nil
}
