package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/pkg/pg"
	"gorm.io/gorm"
)

type CarrierRepository struct {
	*pg.DB
}

func NewCarrierRepository(db *pg.DB) *CarrierRepository {
	return &CarrierRepository{
		db,
	}
}

func (r *CarrierRepository) Create(ctx context.Context, c *model.Carrier) (*model.Carrier, error) {
	entity := toCarrierEntity(c)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toCarrierModel(entity), nil
}

func (r *CarrierRepository) Get(ctx context.Context, id int64) (*model.Carrier, error) {
	var entity CarrierEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCarrierNotFound
		}
		return nil, err
	}
	return toCarrierModel(&entity), nil
}

// ListByIDs returns the organization's carriers among ids. Ids belonging to
// another organization are silently left out.
func (r *CarrierRepository) ListByIDs(ctx context.Context, organizationID int64, ids []int64) ([]*model.Carrier, error) {
	if len(ids) == 0 {
		return []*model.Carrier{}, nil
	}
	var entities []*CarrierEntity
	err := r.Read(ctx).
		Where("organization_id = ? AND id IN ?", organizationID, ids).
		Order("id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toCarrierModels(entities), nil
}

func (r *CarrierRepository) ListActive(ctx context.Context, organizationID int64) ([]*model.Carrier, error) {
	var entities []*CarrierEntity
	err := r.Read(ctx).
		Where("organization_id = ? AND active = ?", organizationID, true).
		Order("name ASC, id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toCarrierModels(entities), nil
}
