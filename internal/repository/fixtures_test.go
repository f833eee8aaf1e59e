package repository

import (
	"context"
	"testing"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/stretchr/testify/require"
)

type seed struct {
	org     *model.Organization
	bid     *model.Bid
	carrier *model.Carrier
}

func seedBid(t *testing.T, db *testDB) seed {
	t.Helper()
	ctx := context.Background()

	org, err := NewOrganizationRepository(db.DB).Create(ctx, "Acme Shipping")
	require.NoError(t, err)

	bid, err := NewBidRepository(db.DB).Create(ctx, &model.Bid{
		OrganizationID: org.ID,
		Title:          "Q3 Midwest lanes",
		Status:         model.BidStatusDraft,
	})
	require.NoError(t, err)

	carrier, err := NewCarrierRepository(db.DB).Create(ctx, &model.Carrier{
		OrganizationID: org.ID,
		Name:           "Blue Line Freight",
		Email:          "dispatch@blueline.test",
		Active:         true,
	})
	require.NoError(t, err)

	return seed{org: org, bid: bid, carrier: carrier}
}

func createRoute(t *testing.T, db *testDB, orgID int64, origin, dest string, equipment model.EquipmentType) *model.Route {
	t.Helper()
	route, err := NewRouteRepository(db.DB).Create(context.Background(), &model.Route{
		OrganizationID:  orgID,
		OriginCity:      origin,
		DestinationCity: dest,
		Equipment:       equipment,
		WeeklyVolume:    3,
		Distance:        420,
	})
	require.NoError(t, err)
	return route
}
