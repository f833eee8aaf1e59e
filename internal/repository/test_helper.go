package repository

import (
	"testing"

	"github.com/nimasrn/freight-bids/pkg/pg"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testDB struct {
	*pg.DB
	rawDB *gorm.DB
}

// Entities lists every table the repositories own, in dependency order.
func Entities() []any {
	return []any{
		&OrganizationEntity{},
		&CarrierEntity{},
		&BidEntity{},
		&RouteEntity{},
		&BidRouteEntity{},
		&InvitationEntity{},
		&CarrierResponseEntity{},
		&RateEntryEntity{},
	}
}

func setupTestDB(t *testing.T) *testDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), pg.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every new connection would get its own empty :memory: database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Entities()...))

	return &testDB{
		DB:    pg.New(db, db),
		rawDB: db,
	}
}
