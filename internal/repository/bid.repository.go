package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/pkg/pg"
	"gorm.io/gorm"
)

type BidRepository struct {
	*pg.DB
}

func NewBidRepository(db *pg.DB) *BidRepository {
	return &BidRepository{
		db,
	}
}

func (r *BidRepository) Create(ctx context.Context, b *model.Bid) (*model.Bid, error) {
	entity := toBidEntity(b)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toBidModel(entity), nil
}

func (r *BidRepository) Get(ctx context.Context, id int64) (*model.Bid, error) {
	var entity BidEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBidNotFound
		}
		return nil, err
	}
	return toBidModel(&entity), nil
}

func (r *BidRepository) ListByOrganization(ctx context.Context, organizationID int64, limit, offset int) ([]*model.Bid, int64, error) {
	q := r.Read(ctx).Model(&BidEntity{}).Where("organization_id = ?", organizationID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var entities []*BidEntity
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	return toBidModels(entities), total, nil
}

// UpdateStatus moves a bid from one status to another. The update only lands
// while the stored status still equals from.
func (r *BidRepository) UpdateStatus(ctx context.Context, id int64, from, to model.BidStatus) error {
	result := r.Write(ctx).
		Model(&BidEntity{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return ErrConcurrentUpdate
	}
	return nil
}
