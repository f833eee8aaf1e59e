package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/internal/repository"
	"github.com/nimasrn/freight-bids/pkg/logger"
)

type RouteService struct {
	tx     Transactor
	routes RouteRepository
	now    func() time.Time
}

func NewRouteService(tx Transactor, routes RouteRepository) *RouteService {
	return &RouteService{
		tx:     tx,
		routes: routes,
		now:    time.Now,
	}
}

func (s *RouteService) Create(ctx context.Context, req model.RouteCreateRequest) (*model.Route, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrValidation, err)
	}
	route, err := s.routes.Create(ctx, &model.Route{
		OrganizationID:  req.OrganizationID,
		OriginCity:      req.OriginCity,
		DestinationCity: req.DestinationCity,
		Equipment:       model.ParseEquipmentType(req.Equipment),
		Commodity:       req.Commodity,
		WeeklyVolume:    req.WeeklyVolume,
		Distance:        req.Distance,
	})
	if err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}
	return route, nil
}

func (s *RouteService) List(ctx context.Context, organizationID int64) ([]*model.Route, error) {
	routes, err := s.routes.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return routes, nil
}

// Delete keeps routes that any bid or stored rate refers to by flagging them
// deleted; unreferenced routes are removed outright. It reports which one
// happened.
func (s *RouteService) Delete(ctx context.Context, organizationID, id int64) (soft bool, err error) {
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		route, err := s.routes.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrRouteNotFound) {
				return fmt.Errorf("route %d: %w", id, ErrNotFound)
			}
			return fmt.Errorf("get route: %w", err)
		}
		if route.OrganizationID != organizationID || route.Deleted {
			return fmt.Errorf("route %d: %w", id, ErrNotFound)
		}

		referenced, err := s.routes.IsReferenced(ctx, id)
		if err != nil {
			return fmt.Errorf("check route references: %w", err)
		}
		if referenced {
			soft = true
			return s.routes.SoftDelete(ctx, id, s.now())
		}
		return s.routes.HardDelete(ctx, id)
	})
	if err != nil {
		return false, err
	}

	logger.Info("route deleted", "route_id", id, "soft", soft)
	return soft, nil
}
