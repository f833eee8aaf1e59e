package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	gateway "github.com/nimasrn/freight-bids/internal/gateways"
	"github.com/nimasrn/freight-bids/internal/repository"
	"github.com/nimasrn/freight-bids/pkg/pg"
	"github.com/nimasrn/freight-bids/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB returns an in-memory sqlite database with every table migrated.
func SetupTestDB(t *testing.T) *pg.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), pg.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(repository.Entities()...))
	return pg.New(db, db)
}

// SetupTestRedis starts miniredis. The adapter registry is global, so the
// connection name is unique per test.
func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	t.Helper()
	mr := miniredis.RunT(t)

	adapter, err := redis.NewRedisAdapter(fmt.Sprintf("%s-%d", t.Name(), time.Now().UnixNano()), "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)
	return mr, adapter
}

// FakeProvider records notifications and accepts all of them.
type FakeProvider struct {
	*httptest.Server

	mu       sync.Mutex
	requests []gateway.SendRequest
}

func NewFakeProvider(t *testing.T) *FakeProvider {
	t.Helper()
	p := &FakeProvider{}
	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gateway.SendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p.mu.Lock()
		p.requests = append(p.requests, req)
		p.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(gateway.SendResponse{
			NotificationID: fmt.Sprintf("n-%d", req.InvitationID),
			InvitationID:   req.InvitationID,
			Channel:        req.Channel,
			Status:         gateway.StatusAccepted,
			ProviderID:     "fake",
			ProcessedAt:    time.Now(),
		})
	}))
	t.Cleanup(p.Close)
	return p
}

func (p *FakeProvider) Requests() []gateway.SendRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]gateway.SendRequest(nil), p.requests...)
}

// NewGatewayClient points a notification client at a single provider url.
func NewGatewayClient(t *testing.T, url string) *gateway.Client {
	t.Helper()
	client, err := gateway.NewClient(gateway.Config{
		Providers:  []gateway.ProviderConfig{{Name: "test", URL: url, Weight: 100}},
		Timeout:    2 * time.Second,
		MaxRetries: 1,
		RetryDelay: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}
