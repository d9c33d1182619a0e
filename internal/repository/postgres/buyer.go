package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ignite/fishcatch/internal/domain"
)

// ErrBuyerNotFound is returned for unknown buyer ids.
var ErrBuyerNotFound = errors.New("buyer not found")

// BuyerRepo implements buyer.Repository against PostgreSQL.
type BuyerRepo struct{ db *sql.DB }

// NewBuyerRepo creates a Postgres-backed buyer repository.
func NewBuyerRepo(db *sql.DB) *BuyerRepo { return &BuyerRepo{db: db} }

func (r *BuyerRepo) CreateBuyer(ctx context.Context, b *domain.Buyer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO buyers (id, name, phone, carrier, preferred_fish, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, b.ID, b.Name, b.Phone, b.Carrier, pq.Array(b.PreferredFish), b.CreatedAt)
	if err != nil {
		return fmt.Errorf("create buyer: %w", err)
	}
	return nil
}

func (r *BuyerRepo) GetBuyer(ctx context.Context, id string) (*domain.Buyer, error) {
	b := &domain.Buyer{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, phone, carrier, preferred_fish, created_at
		FROM buyers
		WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &b.Phone, &b.Carrier, pq.Array(&b.PreferredFish), &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrBuyerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get buyer: %w", err)
	}
	return b, nil
}

// ListBuyers returns every buyer in creation order. The id tiebreak keeps
// the order deterministic when two buyers share a created_at.
func (r *BuyerRepo) ListBuyers(ctx context.Context) ([]domain.Buyer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, phone, carrier, preferred_fish, created_at
		FROM buyers
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list buyers: %w", err)
	}
	defer rows.Close()

	var out []domain.Buyer
	for rows.Next() {
		var b domain.Buyer
		if err := rows.Scan(&b.ID, &b.Name, &b.Phone, &b.Carrier, pq.Array(&b.PreferredFish), &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan buyer: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
