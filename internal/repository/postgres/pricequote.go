package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ignite/fishcatch/internal/domain"
)

// ErrQuoteNotFound is returned when no quote exists for a fish type/day.
var ErrQuoteNotFound = errors.New("price quote not found")

// PriceQuoteRepo keeps an audit trail of every resolved or overridden
// quote. The resolver's in-memory cache is authoritative during the day;
// this table is what survives restarts and feeds reporting.
type PriceQuoteRepo struct{ db *sql.DB }

// NewPriceQuoteRepo creates a Postgres-backed quote repository.
func NewPriceQuoteRepo(db *sql.DB) *PriceQuoteRepo { return &PriceQuoteRepo{db: db} }

// SaveQuote upserts the day's quote for a fish type. A manual override
// later in the day overwrites the scraped row.
func (r *PriceQuoteRepo) SaveQuote(ctx context.Context, q *domain.PriceQuote) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO price_quotes (fish_type, quote_day, price_per_lb, source, cannery_name, fetched_at)
		VALUES ($1, $2::date, $3, $4, $5, $6)
		ON CONFLICT (fish_type, quote_day) DO UPDATE
		SET price_per_lb = EXCLUDED.price_per_lb,
		    source = EXCLUDED.source,
		    cannery_name = EXCLUDED.cannery_name,
		    fetched_at = EXCLUDED.fetched_at
	`, q.FishType, q.FetchedAt.Format("2006-01-02"), q.PricePerLb, q.Source, q.CanneryName, q.FetchedAt)
	if err != nil {
		return fmt.Errorf("save price quote: %w", err)
	}
	return nil
}

// GetQuote returns the stored quote for a fish type on a given day.
func (r *PriceQuoteRepo) GetQuote(ctx context.Context, fishType, day string) (*domain.PriceQuote, error) {
	q := &domain.PriceQuote{}
	err := r.db.QueryRowContext(ctx, `
		SELECT fish_type, price_per_lb, source, cannery_name, fetched_at
		FROM price_quotes
		WHERE fish_type = $1 AND quote_day = $2::date
	`, fishType, day).Scan(&q.FishType, &q.PricePerLb, &q.Source, &q.CanneryName, &q.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, ErrQuoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get price quote: %w", err)
	}
	return q, nil
}
