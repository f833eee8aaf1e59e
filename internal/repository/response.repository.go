package repository

import (
	"context"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/pkg/pg"
	"gorm.io/gorm"
)

type ResponseRepository struct {
	*pg.DB
}

func NewResponseRepository(db *pg.DB) *ResponseRepository {
	return &ResponseRepository{
		db,
	}
}

func (r *ResponseRepository) MaxVersion(ctx context.Context, bidID, carrierID int64) (int, error) {
	var version int
	err := r.Read(ctx).
		Model(&CarrierResponseEntity{}).
		Select("COALESCE(MAX(version), 0)").
		Where("bid_id = ? AND carrier_id = ?", bidID, carrierID).
		Scan(&version).
		Error
	return version, err
}

// Create appends a response together with its rate entries. The caller is
// expected to run it inside a transaction when the version was derived from
// MaxVersion.
func (r *ResponseRepository) Create(ctx context.Context, resp *model.CarrierResponse) (*model.CarrierResponse, error) {
	entity := toResponseEntity(resp)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toResponseModel(entity), nil
}

// ListByBid returns every stored version for the bid in insertion order.
func (r *ResponseRepository) ListByBid(ctx context.Context, bidID int64) ([]*model.CarrierResponse, error) {
	var entities []*CarrierResponseEntity
	err := r.Read(ctx).
		Preload("Rates", func(db *gorm.DB) *gorm.DB {
			return db.Order("response_rates.id ASC")
		}).
		Where("bid_id = ?", bidID).
		Order("id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toResponseModels(entities), nil
}
