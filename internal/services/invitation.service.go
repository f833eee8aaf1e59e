package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/internal/repository"
	"github.com/nimasrn/freight-bids/pkg/logger"
	"github.com/nimasrn/freight-bids/pkg/prom"
)

type InvitationService struct {
	tx          Transactor
	orgs        OrganizationRepository
	bids        BidRepository
	carriers    CarrierRepository
	invitations InvitationRepository
	publisher   DeliveryPublisher
	linkBase    string
	newToken    func() string
	now         func() time.Time
}

// NewInvitationService wires the issuer. publisher may be nil, in which case
// invitations are stored but no delivery job is queued.
func NewInvitationService(tx Transactor, orgs OrganizationRepository, bids BidRepository, carriers CarrierRepository,
	invitations InvitationRepository, publisher DeliveryPublisher, linkBase string) *InvitationService {
	return &InvitationService{
		tx:          tx,
		orgs:        orgs,
		bids:        bids,
		carriers:    carriers,
		invitations: invitations,
		publisher:   publisher,
		linkBase:    linkBase,
		newToken:    uuid.NewString,
		now:         time.Now,
	}
}

// Issue creates one invitation per distinct carrier. A carrier that already
// holds an invitation for the bid gets the existing one back unchanged. New
// invitations are queued for delivery after the transaction commits.
func (s *InvitationService) Issue(ctx context.Context, organizationID int64, req model.InvitationIssueRequest) ([]*model.Invitation, error) {
	channels, err := model.ParseChannels(req.Channels)
	if err != nil {
		return nil, err
	}
	carrierIDs := distinctIDs(req.CarrierIDs)
	if len(carrierIDs) == 0 {
		return nil, ErrNoCarriers
	}

	bid, err := s.bids.Get(ctx, req.BidID)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return nil, fmt.Errorf("bid %d: %w", req.BidID, ErrOrganizationNotResolved)
		}
		return nil, fmt.Errorf("get bid: %w", err)
	}
	if bid.OrganizationID != organizationID {
		return nil, fmt.Errorf("bid %d: %w", req.BidID, ErrOrganizationNotResolved)
	}
	if _, err := s.orgs.Get(ctx, bid.OrganizationID); err != nil {
		if errors.Is(err, repository.ErrOrganizationNotFound) {
			return nil, fmt.Errorf("organization %d: %w", bid.OrganizationID, ErrOrganizationNotResolved)
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}

	carriers, err := s.carriers.ListByIDs(ctx, bid.OrganizationID, carrierIDs)
	if err != nil {
		return nil, fmt.Errorf("load carriers: %w", err)
	}
	byID := make(map[int64]*model.Carrier, len(carriers))
	for _, c := range carriers {
		byID[c.ID] = c
	}
	for _, id := range carrierIDs {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("carrier %d: %w", id, ErrNotFound)
		}
	}

	var result, created []*model.Invitation
	issue := func(ctx context.Context) error {
		existing, err := s.invitations.ListByBidAndCarriers(ctx, bid.ID, carrierIDs)
		if err != nil {
			return fmt.Errorf("load existing invitations: %w", err)
		}
		have := make(map[int64]*model.Invitation, len(existing))
		for _, inv := range existing {
			have[inv.CarrierID] = inv
		}

		now := s.now().UTC()
		var fresh []*model.Invitation
		for _, id := range carrierIDs {
			if _, ok := have[id]; ok {
				continue
			}
			fresh = append(fresh, &model.Invitation{
				BidID:          bid.ID,
				CarrierID:      id,
				OrganizationID: bid.OrganizationID,
				Token:          s.newToken(),
				Status:         model.InvitationPending,
				Channels:       channels,
				Message:        req.Message,
				InvitedAt:      now,
			})
		}

		created, err = s.invitations.CreateBatch(ctx, fresh)
		if err != nil {
			return fmt.Errorf("create invitations: %w", err)
		}
		for _, inv := range created {
			have[inv.CarrierID] = inv
		}

		result = make([]*model.Invitation, 0, len(carrierIDs))
		for _, id := range carrierIDs {
			result = append(result, have[id])
		}
		return nil
	}
	err = s.tx.WithinTransaction(ctx, issue)
	if errors.Is(err, repository.ErrDuplicateInvitation) {
		// A concurrent Issue for an overlapping carrier set committed first.
		// Its rows are visible to a fresh transaction and get reused.
		logger.Info("invitation issue raced, retrying", "bid_id", bid.ID)
		created = nil
		err = s.tx.WithinTransaction(ctx, issue)
		if errors.Is(err, repository.ErrDuplicateInvitation) {
			err = fmt.Errorf("%w: %w", ErrConflict, err)
		}
	}
	if err != nil {
		return nil, err
	}

	prom.AddInvitationsIssued(len(created))
	logger.Info("invitations issued", "bid_id", bid.ID, "created", len(created), "existing", len(result)-len(created))

	for _, inv := range created {
		s.enqueueDelivery(ctx, bid, byID[inv.CarrierID], inv)
	}
	return result, nil
}

// enqueueDelivery only logs failures; a pending invitation can be re-sent and
// the link itself already works.
func (s *InvitationService) enqueueDelivery(ctx context.Context, bid *model.Bid, carrier *model.Carrier, inv *model.Invitation) {
	if s.publisher == nil {
		return
	}
	job := model.InvitationDelivery{
		InvitationID: inv.ID,
		BidID:        bid.ID,
		BidTitle:     bid.Title,
		CarrierName:  carrier.Name,
		Email:        carrier.Email,
		Phone:        carrier.Phone,
		Channels:     inv.Channels,
		Link:         s.linkBase + inv.Token,
		InvitedAt:    inv.InvitedAt,
	}
	if inv.Message != nil {
		job.Message = *inv.Message
	}

	meta := map[string]string{"bid_id": strconv.FormatInt(bid.ID, 10)}
	if _, err := s.publisher.PublishJSON(ctx, job, meta); err != nil {
		logger.Error("enqueue invitation delivery failed", "invitation_id", inv.ID, "bid_id", bid.ID, "error", err)
	}
}

func (s *InvitationService) List(ctx context.Context, organizationID, bidID int64) ([]*model.Invitation, error) {
	if _, err := ownedBid(ctx, s.bids, organizationID, bidID); err != nil {
		return nil, err
	}
	invitations, err := s.invitations.ListByBid(ctx, bidID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invitations, nil
}

func (s *InvitationService) Revoke(ctx context.Context, organizationID, id int64) (*model.Invitation, error) {
	inv, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.OrganizationID != organizationID {
		return nil, fmt.Errorf("invitation %d: %w", id, ErrNotFound)
	}
	return s.Transition(ctx, id, model.EventRevoked)
}

// MarkDelivered records a successful hand-off to a notification provider.
func (s *InvitationService) MarkDelivered(ctx context.Context, id int64) (*model.Invitation, error) {
	return s.Transition(ctx, id, model.EventDelivered)
}

// Open applies the carrier-side open event for a token. Opening an invitation
// that is already opened or responded leaves it untouched.
func (s *InvitationService) Open(ctx context.Context, token string) (*model.Invitation, error) {
	return s.apply(ctx, func(ctx context.Context) (*model.Invitation, error) {
		inv, err := s.invitations.GetByToken(ctx, token)
		if errors.Is(err, repository.ErrInvitationNotFound) {
			return nil, fmt.Errorf("invitation token: %w", ErrNotFound)
		}
		return inv, err
	}, model.EventOpened)
}

func (s *InvitationService) Transition(ctx context.Context, id int64, event model.InvitationEvent) (*model.Invitation, error) {
	return s.apply(ctx, func(ctx context.Context) (*model.Invitation, error) {
		return s.byID(ctx, id)
	}, event)
}

func (s *InvitationService) byID(ctx context.Context, id int64) (*model.Invitation, error) {
	inv, err := s.invitations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrInvitationNotFound) {
			return nil, fmt.Errorf("invitation %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

// apply reloads and reapplies the event when another writer changed the
// status in between, backing off 2ms, 4ms, 8ms.
func (s *InvitationService) apply(ctx context.Context, load func(ctx context.Context) (*model.Invitation, error), event model.InvitationEvent) (*model.Invitation, error) {
	const maxRetries = 3
	const baseDelay = 2 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		inv, err := load(ctx)
		if err != nil {
			return nil, err
		}

		from := inv.Status
		changed, err := inv.Apply(event, s.now().UTC())
		if err != nil {
			return nil, fmt.Errorf("invitation %d: %w", inv.ID, err)
		}
		if !changed {
			return inv, nil
		}

		err = s.invitations.UpdateStatus(ctx, inv, from)
		if err == nil {
			prom.IncInvitationTransition(event.String())
			logger.Info("invitation status changed", "invitation_id", inv.ID, "from", from.String(), "to", inv.Status.String())
			return inv, nil
		}
		if !errors.Is(err, repository.ErrConcurrentUpdate) {
			return nil, fmt.Errorf("update invitation %d: %w", inv.ID, err)
		}

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(baseDelay * time.Duration(1<<attempt)):
			}
		}
	}

	return nil, fmt.Errorf("%w: invitation %s after %d attempts", ErrMaxRetriesExceeded, event, maxRetries+1)
}

func distinctIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
