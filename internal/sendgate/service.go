// Package sendgate is the single path from an approved draft to an actual
// delivery. It owns the draft status transitions: nothing else in the
// system moves a draft to sent.
package sendgate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/fishcatch/internal/contactlog"
	"github.com/ignite/fishcatch/internal/domain"
	"github.com/ignite/fishcatch/internal/pkg/logger"
	"github.com/ignite/fishcatch/internal/transport"
)

// Repository provides draft lookup and the compare-and-swap transition the
// gate serializes on.
type Repository interface {
	GetDraft(ctx context.Context, id string) (*domain.MessageDraft, error)

	// TransitionStatus atomically moves the draft from one of the given
	// statuses to the target. It returns ErrConflict when the current
	// status matches none of them, and sets sent_at when to is sent.
	TransitionStatus(ctx context.Context, id string, from []domain.DraftStatus, to domain.DraftStatus) error
}

// BuyerGetter resolves the recipient for a draft.
type BuyerGetter interface {
	GetBuyer(ctx context.Context, id string) (*domain.Buyer, error)
}

// Service gates draft delivery behind explicit human approval.
type Service struct {
	drafts   Repository
	buyers   BuyerGetter
	contacts contactlog.Log
	gateway  transport.Gateway
	now      func() time.Time
}

// NewService wires the send gate.
func NewService(drafts Repository, buyers BuyerGetter, contacts contactlog.Log, gateway transport.Gateway) *Service {
	return &Service{
		drafts:   drafts,
		buyers:   buyers,
		contacts: contacts,
		gateway:  gateway,
		now:      time.Now,
	}
}

// ApproveAndSend delivers one draft. Guards run first (NotFound,
// AlreadySent, Blocked), then the status moves draft/failed→sent through a
// compare-and-swap so concurrent approvals cannot both deliver. The
// contact log is incremented exactly once per successful send; a transport
// failure rolls the draft back to failed and undoes the increment, leaving
// retry to an explicit new approval.
func (s *Service) ApproveAndSend(ctx context.Context, messageID string) (*domain.MessageDraft, error) {
	d, err := s.drafts.GetDraft(ctx, messageID)
	if err != nil {
		return nil, err
	}

	switch d.Status {
	case domain.DraftSent:
		return nil, ErrAlreadySent
	case domain.DraftBlocked:
		return nil, ErrBlocked
	}

	b, err := s.buyers.GetBuyer(ctx, d.BuyerID)
	if err != nil {
		return nil, err
	}

	sendable := []domain.DraftStatus{domain.DraftPending, domain.DraftFailed}
	if err := s.drafts.TransitionStatus(ctx, messageID, sendable, domain.DraftSent); err != nil {
		if errors.Is(err, ErrConflict) {
			// Lost the race; report what actually happened.
			if cur, gerr := s.drafts.GetDraft(ctx, messageID); gerr == nil && cur.Status == domain.DraftSent {
				return nil, ErrAlreadySent
			}
			return nil, ErrConflict
		}
		return nil, err
	}

	day := s.now().Format("2006-01-02")
	if _, err := s.contacts.Increment(ctx, b.ID, day); err != nil {
		s.rollback(ctx, messageID, b.ID, day, false)
		return nil, fmt.Errorf("recording contact: %w", err)
	}

	if err := s.gateway.Send(ctx, b.Phone, b.Carrier, d.MessageText); err != nil {
		s.rollback(ctx, messageID, b.ID, day, true)
		logger.Error("delivery failed, draft rolled back",
			"message_id", messageID, "buyer_id", b.ID, "error", err.Error())
		return nil, fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	logger.Info("draft sent", "message_id", messageID, "buyer_id", b.ID, "carrier", b.Carrier)
	return s.drafts.GetDraft(ctx, messageID)
}

// rollback reverts a failed send attempt. The draft lands on failed, not
// draft, so the UI can show the delivery error and offer an explicit
// retry.
func (s *Service) rollback(ctx context.Context, messageID, buyerID, day string, undoContact bool) {
	if err := s.drafts.TransitionStatus(ctx, messageID,
		[]domain.DraftStatus{domain.DraftSent}, domain.DraftFailed); err != nil {
		logger.Error("rollback transition failed", "message_id", messageID, "error", err.Error())
	}
	if undoContact {
		if err := s.contacts.Decrement(ctx, buyerID, day); err != nil {
			logger.Error("rollback decrement failed", "buyer_id", buyerID, "error", err.Error())
		}
	}
}
