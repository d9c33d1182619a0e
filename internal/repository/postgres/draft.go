package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/ignite/fishcatch/internal/domain"
	"github.com/ignite/fishcatch/internal/sendgate"
)

// DraftRepo implements draft persistence and the send-gate transition
// against PostgreSQL.
type DraftRepo struct{ db *sql.DB }

// NewDraftRepo creates a Postgres-backed draft repository.
func NewDraftRepo(db *sql.DB) *DraftRepo { return &DraftRepo{db: db} }

func (r *DraftRepo) CreateDraft(ctx context.Context, d *domain.MessageDraft) error {
	violations, err := json.Marshal(d.Violations)
	if err != nil {
		return fmt.Errorf("marshal violations: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO message_drafts
			(id, catch_id, buyer_id, buyer_name, fish_type, pounds,
			 price_per_lb, message_text, status, violations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, d.ID, d.CatchID, d.BuyerID, d.BuyerName, d.FishType, d.Pounds,
		d.PricePerLb, d.MessageText, d.Status, violations, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("create draft: %w", err)
	}
	return nil
}

func (r *DraftRepo) GetDraft(ctx context.Context, id string) (*domain.MessageDraft, error) {
	d := &domain.MessageDraft{}
	var violations []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, catch_id, buyer_id, buyer_name, fish_type, pounds,
		       price_per_lb, message_text, status, violations, created_at, sent_at
		FROM message_drafts
		WHERE id = $1
	`, id).Scan(&d.ID, &d.CatchID, &d.BuyerID, &d.BuyerName, &d.FishType, &d.Pounds,
		&d.PricePerLb, &d.MessageText, &d.Status, &violations, &d.CreatedAt, &d.SentAt)
	if err == sql.ErrNoRows {
		return nil, sendgate.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	if err := json.Unmarshal(violations, &d.Violations); err != nil {
		return nil, fmt.Errorf("unmarshal violations: %w", err)
	}
	return d, nil
}

// ListDraftsByCatch returns a catch's drafts in creation order.
func (r *DraftRepo) ListDraftsByCatch(ctx context.Context, catchID string) ([]domain.MessageDraft, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, catch_id, buyer_id, buyer_name, fish_type, pounds,
		       price_per_lb, message_text, status, violations, created_at, sent_at
		FROM message_drafts
		WHERE catch_id = $1
		ORDER BY created_at, id
	`, catchID)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var out []domain.MessageDraft
	for rows.Next() {
		var d domain.MessageDraft
		var violations []byte
		if err := rows.Scan(&d.ID, &d.CatchID, &d.BuyerID, &d.BuyerName, &d.FishType, &d.Pounds,
			&d.PricePerLb, &d.MessageText, &d.Status, &violations, &d.CreatedAt, &d.SentAt); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		if err := json.Unmarshal(violations, &d.Violations); err != nil {
			return nil, fmt.Errorf("unmarshal violations: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// TransitionStatus atomically moves a draft between statuses. The WHERE
// clause is the compare half of the compare-and-swap; zero rows affected
// means another caller changed the status first.
func (r *DraftRepo) TransitionStatus(ctx context.Context, id string, from []domain.DraftStatus, to domain.DraftStatus) error {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE message_drafts
		SET status = $1,
		    sent_at = CASE WHEN $1 = 'sent' THEN NOW() ELSE sent_at END
		WHERE id = $2 AND status = ANY($3)
	`, string(to), id, pq.Array(statuses))
	if err != nil {
		return fmt.Errorf("transition draft status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition draft status: %w", err)
	}
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM message_drafts WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("transition draft status: %w", err)
		}
		if !exists {
			return sendgate.ErrNotFound
		}
		return sendgate.ErrConflict
	}
	return nil
}
