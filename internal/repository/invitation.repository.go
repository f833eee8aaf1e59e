package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/pkg/pg"
	"gorm.io/gorm"
)

type InvitationRepository struct {
	*pg.DB
}

func NewInvitationRepository(db *pg.DB) *InvitationRepository {
	return &InvitationRepository{
		db,
	}
}

// CreateBatch inserts all invitations in one statement and fills in their
// ids. A second invitation for the same (bid, carrier) fails the whole batch.
func (r *InvitationRepository) CreateBatch(ctx context.Context, invitations []*model.Invitation) ([]*model.Invitation, error) {
	if len(invitations) == 0 {
		return []*model.Invitation{}, nil
	}
	entities := make([]*InvitationEntity, len(invitations))
	for i, inv := range invitations {
		entities[i] = toInvitationEntity(inv)
	}

	err := r.Write(ctx).Create(&entities).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateInvitation
		}
		return nil, err
	}
	return toInvitationModels(entities)
}

func (r *InvitationRepository) GetByID(ctx context.Context, id int64) (*model.Invitation, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByToken matches the token exactly.
func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*model.Invitation, error) {
	if token == "" {
		return nil, ErrInvitationNotFound
	}
	return r.first(ctx, "token = ?", token)
}

func (r *InvitationRepository) ListByBid(ctx context.Context, bidID int64) ([]*model.Invitation, error) {
	var entities []*InvitationEntity
	err := r.Read(ctx).Where("bid_id = ?", bidID).Order("id ASC").Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toInvitationModels(entities)
}

func (r *InvitationRepository) ListByBidAndCarriers(ctx context.Context, bidID int64, carrierIDs []int64) ([]*model.Invitation, error) {
	if len(carrierIDs) == 0 {
		return []*model.Invitation{}, nil
	}
	var entities []*InvitationEntity
	err := r.Read(ctx).
		Where("bid_id = ? AND carrier_id IN ?", bidID, carrierIDs).
		Order("id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toInvitationModels(entities)
}

// UpdateStatus writes inv's status and timestamps, provided the stored status
// is still from. A lost race reports ErrConcurrentUpdate so the caller can
// reload and reapply.
func (r *InvitationRepository) UpdateStatus(ctx context.Context, inv *model.Invitation, from model.InvitationStatus) error {
	result := r.Write(ctx).
		Model(&InvitationEntity{}).
		Where("id = ? AND status = ?", inv.ID, from.String()).
		Updates(map[string]any{
			"status":       inv.Status.String(),
			"delivered_at": inv.DeliveredAt,
			"opened_at":    inv.OpenedAt,
			"responded_at": inv.RespondedAt,
			"revoked_at":   inv.RevokedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, inv.ID); err != nil {
			return err
		}
		return ErrConcurrentUpdate
	}
	return nil
}

func (r *InvitationRepository) first(ctx context.Context, query string, args ...any) (*model.Invitation, error) {
	var entity InvitationEntity
	err := r.Read(ctx).Where(query, args...).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return toInvitationModel(&entity)
}
