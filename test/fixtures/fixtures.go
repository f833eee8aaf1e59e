package fixtures

import (
	"context"
	"testing"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/internal/repository"
	"github.com/nimasrn/freight-bids/pkg/pg"
	"github.com/stretchr/testify/require"
)

var (
	ChicagoDallas = model.RouteCreateRequest{
		OriginCity:      "Chicago, IL",
		DestinationCity: "Dallas, TX",
		Equipment:       "dry van",
		Commodity:       "Paper goods",
		WeeklyVolume:    4,
		Distance:        925,
	}
	AtlantaMiami = model.RouteCreateRequest{
		OriginCity:      "Atlanta, GA",
		DestinationCity: "Miami, FL",
		Equipment:       "REEFER 53'",
		Commodity:       "Produce",
		WeeklyVolume:    2,
		Distance:        662,
	}
	DenverPhoenix = model.RouteCreateRequest{
		OriginCity:      "Denver, CO",
		DestinationCity: "Phoenix, AZ",
		Equipment:       "Spaceship",
		WeeklyVolume:    1,
		Distance:        821,
	}

	BlueLine = model.CarrierCreateRequest{
		Name:  "Blue Line Freight",
		Email: "dispatch@blueline.test",
		Phone: "+15550100",
	}
)

func Organization(t *testing.T, db *pg.DB, name string) *model.Organization {
	t.Helper()
	org, err := repository.NewOrganizationRepository(db).Create(context.Background(), name)
	require.NoError(t, err)
	return org
}

// Route returns req scoped to the organization.
func Route(req model.RouteCreateRequest, organizationID int64) model.RouteCreateRequest {
	req.OrganizationID = organizationID
	return req
}

func Carrier(req model.CarrierCreateRequest, organizationID int64) model.CarrierCreateRequest {
	req.OrganizationID = organizationID
	return req
}

func Rate(v float64) *float64 {
	return &v
}
