package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/internal/repository"
	"github.com/nimasrn/freight-bids/pkg/logger"
	"github.com/nimasrn/freight-bids/pkg/prom"
)

const (
	denyUnknownToken = "unknown_token"
	denyBidMismatch  = "bid_mismatch"
	denyStatus       = "status"
	denyRevoked      = "revoked"
)

type TokenLookup interface {
	GetByToken(ctx context.Context, token string) (*model.Invitation, error)
}

type BidRouteLister interface {
	ListForBid(ctx context.Context, bidID int64) ([]*model.Route, error)
}

type InvitationOpener interface {
	Open(ctx context.Context, token string) (*model.Invitation, error)
}

// AccessService is the only authorization check on the carrier link. Every
// denial looks the same to the caller; the reason goes to the log and to
// metrics.
type AccessService struct {
	invitations TokenLookup
	routes      BidRouteLister
	opener      InvitationOpener
}

func NewAccessService(invitations TokenLookup, routes BidRouteLister, opener InvitationOpener) *AccessService {
	return &AccessService{
		invitations: invitations,
		routes:      routes,
		opener:      opener,
	}
}

// Routes returns the bid's live routes for a token holder. An empty slice is
// a successful answer.
func (s *AccessService) Routes(ctx context.Context, bidID int64, token string) ([]*model.Route, error) {
	_, routes, err := s.Authorize(ctx, bidID, token)
	return routes, err
}

// Authorize checks the token against bidID and, on success, returns the
// invitation with the routes it may see.
func (s *AccessService) Authorize(ctx context.Context, bidID int64, token string) (*model.Invitation, []*model.Route, error) {
	inv, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrInvitationNotFound) {
			return nil, nil, deny(denyUnknownToken, bidID, 0, "")
		}
		return nil, nil, fmt.Errorf("lookup invitation: %w", err)
	}
	if inv.BidID != bidID {
		return nil, nil, deny(denyBidMismatch, bidID, inv.ID, inv.Status.String())
	}
	if !inv.Status.Accessible() {
		return nil, nil, deny(denyStatus, bidID, inv.ID, inv.Status.String())
	}

	routes, err := s.routes.ListForBid(ctx, bidID)
	if err != nil {
		return nil, nil, fmt.Errorf("list bid routes: %w", err)
	}
	if routes == nil {
		routes = []*model.Route{}
	}
	return inv, routes, nil
}

// Open is what following the link does: apply the open event, then pass the
// gate for the invitation's own bid.
func (s *AccessService) Open(ctx context.Context, token string) (*model.Invitation, []*model.Route, error) {
	inv, err := s.opener.Open(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, nil, deny(denyUnknownToken, 0, 0, "")
		case errors.Is(err, model.ErrInvitationRevoked):
			return nil, nil, deny(denyRevoked, 0, 0, model.InvitationRevoked.String())
		}
		return nil, nil, err
	}
	return s.Authorize(ctx, inv.BidID, token)
}

func deny(reason string, bidID, invitationID int64, status string) error {
	logger.Warn("route access denied",
		"reason", reason,
		"bid_id", bidID,
		"invitation_id", invitationID,
		"status", status)
	prom.IncAccessDenied(reason)
	return ErrAccessDenied
}
