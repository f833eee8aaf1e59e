package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/internal/repository"
	"github.com/nimasrn/freight-bids/pkg/logger"
)

type BidService struct {
	bids   BidRepository
	routes RouteRepository
}

func NewBidService(bids BidRepository, routes RouteRepository) *BidService {
	return &BidService{
		bids:   bids,
		routes: routes,
	}
}

func (s *BidService) Create(ctx context.Context, req model.BidCreateRequest) (*model.Bid, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrValidation, err)
	}
	bid, err := s.bids.Create(ctx, &model.Bid{
		OrganizationID: req.OrganizationID,
		Title:          req.Title,
		Status:         model.BidStatusDraft,
		DueDate:        req.DueDate,
	})
	if err != nil {
		return nil, fmt.Errorf("create bid: %w", err)
	}
	return bid, nil
}

func (s *BidService) Get(ctx context.Context, organizationID, id int64) (*model.Bid, error) {
	return ownedBid(ctx, s.bids, organizationID, id)
}

func (s *BidService) List(ctx context.Context, organizationID int64, limit, offset int) ([]*model.Bid, int64, error) {
	bids, total, err := s.bids.ListByOrganization(ctx, organizationID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list bids: %w", err)
	}
	return bids, total, nil
}

// SetStatus moves a bid along draft -> active -> closed.
func (s *BidService) SetStatus(ctx context.Context, organizationID, id int64, status model.BidStatus) (*model.Bid, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %w %q", model.ErrValidation, model.ErrInvalidBidStatus, status)
	}
	bid, err := ownedBid(ctx, s.bids, organizationID, id)
	if err != nil {
		return nil, err
	}
	if bid.Status == status {
		return bid, nil
	}
	if !bid.Status.CanMoveTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidBidTransition, bid.Status, status)
	}

	if err := s.bids.UpdateStatus(ctx, id, bid.Status, status); err != nil {
		if errors.Is(err, repository.ErrConcurrentUpdate) {
			return nil, fmt.Errorf("bid %d: %w", id, ErrConflict)
		}
		return nil, fmt.Errorf("update bid status: %w", err)
	}
	logger.Info("bid status changed", "bid_id", id, "from", string(bid.Status), "to", string(status))

	bid.Status = status
	return bid, nil
}

func (s *BidService) AttachRoute(ctx context.Context, organizationID, bidID, routeID int64) error {
	if _, err := ownedBid(ctx, s.bids, organizationID, bidID); err != nil {
		return err
	}
	route, err := s.routes.Get(ctx, routeID)
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return fmt.Errorf("route %d: %w", routeID, ErrNotFound)
		}
		return fmt.Errorf("get route: %w", err)
	}
	if route.OrganizationID != organizationID || route.Deleted {
		return fmt.Errorf("route %d: %w", routeID, ErrNotFound)
	}

	if err := s.routes.Attach(ctx, bidID, routeID); err != nil {
		if errors.Is(err, repository.ErrRouteAlreadyAttached) {
			return ErrRouteAlreadyAttached
		}
		return fmt.Errorf("attach route: %w", err)
	}
	return nil
}

// DetachRoute is refused while the bid is active so carriers never see a lane
// vanish mid-bid.
func (s *BidService) DetachRoute(ctx context.Context, organizationID, bidID, routeID int64) error {
	bid, err := ownedBid(ctx, s.bids, organizationID, bidID)
	if err != nil {
		return err
	}
	if bid.Status == model.BidStatusActive {
		return ErrBidActive
	}

	if err := s.routes.Detach(ctx, bidID, routeID); err != nil {
		if errors.Is(err, repository.ErrRouteNotAttached) {
			return fmt.Errorf("route %d on bid %d: %w", routeID, bidID, ErrNotFound)
		}
		return fmt.Errorf("detach route: %w", err)
	}
	return nil
}

func (s *BidService) Routes(ctx context.Context, organizationID, bidID int64) ([]*model.Route, error) {
	if _, err := ownedBid(ctx, s.bids, organizationID, bidID); err != nil {
		return nil, err
	}
	routes, err := s.routes.ListForBid(ctx, bidID)
	if err != nil {
		return nil, fmt.Errorf("list bid routes: %w", err)
	}
	return routes, nil
}

// ownedBid loads a bid and hides bids of other organizations behind
// ErrNotFound.
func ownedBid(ctx context.Context, bids BidRepository, organizationID, id int64) (*model.Bid, error) {
	bid, err := bids.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return nil, fmt.Errorf("bid %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get bid: %w", err)
	}
	if bid.OrganizationID != organizationID {
		return nil, fmt.Errorf("bid %d: %w", id, ErrNotFound)
	}
	return bid, nil
}
