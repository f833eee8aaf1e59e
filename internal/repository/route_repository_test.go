package repository

import (
	"context"
	"testing"
	"time"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteRepository_ListForBid(t *testing.T) {
	db := setupTestDB(t)
	s := seedBid(t, db)
	repo := NewRouteRepository(db.DB)
	ctx := context.Background()

	chiDal := createRoute(t, db, s.org.ID, "Chicago", "Dallas", model.EquipmentDryVan)
	denPhx := createRoute(t, db, s.org.ID, "Denver", "Phoenix", model.EquipmentReefer)
	unattached := createRoute(t, db, s.org.ID, "Omaha", "Tulsa", model.EquipmentFlatbed)

	require.NoError(t, repo.Attach(ctx, s.bid.ID, chiDal.ID))
	require.NoError(t, repo.Attach(ctx, s.bid.ID, denPhx.ID))

	t.Run("returns attached routes", func(t *testing.T) {
		routes, err := repo.ListForBid(ctx, s.bid.ID)
		require.NoError(t, err)
		require.Len(t, routes, 2)
		assert.Equal(t, chiDal.ID, routes[0].ID)
		assert.Equal(t, model.EquipmentReefer, routes[1].Equipment)
		for _, r := range routes {
			assert.NotEqual(t, unattached.ID, r.ID)
		}
	})

	t.Run("soft deleted routes are never returned", func(t *testing.T) {
		require.NoError(t, repo.SoftDelete(ctx, denPhx.ID, time.Now()))

		routes, err := repo.ListForBid(ctx, s.bid.ID)
		require.NoError(t, err)
		require.Len(t, routes, 1)
		assert.Equal(t, chiDal.ID, routes[0].ID)

		all, err := repo.ListByOrganization(ctx, s.org.ID)
		require.NoError(t, err)
		for _, r := range all {
			assert.NotEqual(t, denPhx.ID, r.ID)
		}

		got, err := repo.Get(ctx, denPhx.ID)
		require.NoError(t, err)
		assert.True(t, got.Deleted)
		assert.NotNil(t, got.DeletedAt)
	})

	t.Run("unknown stored equipment becomes dry van", func(t *testing.T) {
		require.NoError(t, db.rawDB.Model(&RouteEntity{}).
			Where("id = ?", chiDal.ID).
			Update("equipment_type", "Spaceship").Error)

		routes, err := repo.ListForBid(ctx, s.bid.ID)
		require.NoError(t, err)
		require.Len(t, routes, 1)
		assert.Equal(t, model.EquipmentDryVan, routes[0].Equipment)
	})

	t.Run("bid without routes", func(t *testing.T) {
		routes, err := repo.ListForBid(ctx, 9999)
		require.NoError(t, err)
		assert.Empty(t, routes)
	})
}

func TestRouteRepository_AttachDetach(t *testing.T) {
	db := setupTestDB(t)
	s := seedBid(t, db)
	repo := NewRouteRepository(db.DB)
	ctx := context.Background()

	route := createRoute(t, db, s.org.ID, "Atlanta", "Miami", model.EquipmentReefer)

	require.NoError(t, repo.Attach(ctx, s.bid.ID, route.ID))
	assert.ErrorIs(t, repo.Attach(ctx, s.bid.ID, route.ID), ErrRouteAlreadyAttached)

	referenced, err := repo.IsReferenced(ctx, route.ID)
	require.NoError(t, err)
	assert.True(t, referenced)

	require.NoError(t, repo.Detach(ctx, s.bid.ID, route.ID))
	assert.ErrorIs(t, repo.Detach(ctx, s.bid.ID, route.ID), ErrRouteNotAttached)

	referenced, err = repo.IsReferenced(ctx, route.ID)
	require.NoError(t, err)
	assert.False(t, referenced)
}

func TestRouteRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	s := seedBid(t, db)
	repo := NewRouteRepository(db.DB)
	ctx := context.Background()

	route := createRoute(t, db, s.org.ID, "Reno", "Boise", model.EquipmentFlatbed)

	require.NoError(t, repo.HardDelete(ctx, route.ID))
	_, err := repo.Get(ctx, route.ID)
	assert.ErrorIs(t, err, ErrRouteNotFound)

	assert.ErrorIs(t, repo.HardDelete(ctx, route.ID), ErrRouteNotFound)
	assert.ErrorIs(t, repo.SoftDelete(ctx, route.ID, time.Now()), ErrRouteNotFound)
}
