package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/pkg/logger"
)

type CarrierService struct {
	carriers CarrierRepository
}

func NewCarrierService(carriers CarrierRepository) *CarrierService {
	return &CarrierService{carriers: carriers}
}

func (s *CarrierService) Create(ctx context.Context, req model.CarrierCreateRequest) (*model.Carrier, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrValidation, err)
	}
	carrier, err := s.carriers.Create(ctx, &model.Carrier{
		OrganizationID: req.OrganizationID,
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Active:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("create carrier: %w", err)
	}
	return carrier, nil
}

// ListActive never fails: a storage error is logged and shown as an empty
// directory.
func (s *CarrierService) ListActive(ctx context.Context, organizationID int64) []*model.Carrier {
	carriers, err := s.carriers.ListActive(ctx, organizationID)
	if err != nil {
		logger.Error("list active carriers failed", "organization_id", organizationID, "error", err)
		return []*model.Carrier{}
	}
	return carriers
}
