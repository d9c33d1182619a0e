package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/fishcatch/internal/domain"
	"github.com/ignite/fishcatch/internal/draft"
)

// CatchRepo implements catch persistence against PostgreSQL.
type CatchRepo struct{ db *sql.DB }

// NewCatchRepo creates a Postgres-backed catch repository.
func NewCatchRepo(db *sql.DB) *CatchRepo { return &CatchRepo{db: db} }

func (r *CatchRepo) CreateCatch(ctx context.Context, c *domain.Catch) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO catches (id, fish_type, pounds, owner_name, logged_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.FishType, c.Pounds, c.Owner, c.LoggedAt)
	if err != nil {
		return fmt.Errorf("create catch: %w", err)
	}
	return nil
}

func (r *CatchRepo) GetCatch(ctx context.Context, id string) (*domain.Catch, error) {
	c := &domain.Catch{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, fish_type, pounds, owner_name, logged_at
		FROM catches
		WHERE id = $1
	`, id).Scan(&c.ID, &c.FishType, &c.Pounds, &c.Owner, &c.LoggedAt)
	if err == sql.ErrNoRows {
		return nil, draft.ErrCatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get catch: %w", err)
	}
	return c, nil
}

func (r *CatchRepo) ListCatches(ctx context.Context, limit int) ([]domain.Catch, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, fish_type, pounds, owner_name, logged_at
		FROM catches
		ORDER BY logged_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list catches: %w", err)
	}
	defer rows.Close()

	var out []domain.Catch
	for rows.Next() {
		var c domain.Catch
		if err := rows.Scan(&c.ID, &c.FishType, &c.Pounds, &c.Owner, &c.LoggedAt); err != nil {
			return nil, fmt.Errorf("scan catch: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
