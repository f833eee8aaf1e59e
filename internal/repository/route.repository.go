package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/pkg/pg"
	"gorm.io/gorm"
)

type RouteRepository struct {
	*pg.DB
}

func NewRouteRepository(db *pg.DB) *RouteRepository {
	return &RouteRepository{
		db,
	}
}

func (r *RouteRepository) Create(ctx context.Context, route *model.Route) (*model.Route, error) {
	entity := toRouteEntity(route)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toRouteModel(entity), nil
}

// Get returns the route even when soft-deleted; callers facing a bid must use
// ListForBid instead.
func (r *RouteRepository) Get(ctx context.Context, id int64) (*model.Route, error) {
	var entity RouteEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}
	return toRouteModel(&entity), nil
}

func (r *RouteRepository) ListByOrganization(ctx context.Context, organizationID int64) ([]*model.Route, error) {
	var entities []*RouteEntity
	err := r.Read(ctx).
		Where("organization_id = ? AND is_deleted = ?", organizationID, false).
		Order("id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toRouteModels(entities), nil
}

// ListForBid returns the non-deleted routes attached to a bid.
func (r *RouteRepository) ListForBid(ctx context.Context, bidID int64) ([]*model.Route, error) {
	var entities []*RouteEntity
	err := r.Read(ctx).
		Table("routes AS r").
		Select("r.*").
		Joins("JOIN bid_routes AS br ON br.route_id = r.id").
		Where("br.bid_id = ? AND r.is_deleted = ?", bidID, false).
		Order("r.id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toRouteModels(entities), nil
}

func (r *RouteRepository) Attach(ctx context.Context, bidID, routeID int64) error {
	err := r.Write(ctx).Create(&BidRouteEntity{BidID: bidID, RouteID: routeID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrRouteAlreadyAttached
	}
	return err
}

func (r *RouteRepository) Detach(ctx context.Context, bidID, routeID int64) error {
	result := r.Write(ctx).
		Where("bid_id = ? AND route_id = ?", bidID, routeID).
		Delete(&BidRouteEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRouteNotAttached
	}
	return nil
}

// IsReferenced reports whether any bid, in any status, or any stored rate
// still points at the route.
func (r *RouteRepository) IsReferenced(ctx context.Context, routeID int64) (bool, error) {
	var count int64
	err := r.Read(ctx).
		Model(&BidRouteEntity{}).
		Where("route_id = ?", routeID).
		Count(&count).
		Error
	if err != nil || count > 0 {
		return count > 0, err
	}

	err = r.Read(ctx).
		Model(&RateEntryEntity{}).
		Where("route_id = ?", routeID).
		Count(&count).
		Error
	return count > 0, err
}

func (r *RouteRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	result := r.Write(ctx).
		Model(&RouteEntity{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{"is_deleted": true, "deleted_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRouteNotFound
	}
	return nil
}

func (r *RouteRepository) HardDelete(ctx context.Context, id int64) error {
	result := r.Write(ctx).Where("id = ?", id).Delete(&RouteEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRouteNotFound
	}
	return nil
}
