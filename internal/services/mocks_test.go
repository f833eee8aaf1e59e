package services

import (
	"context"
	"time"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// passthroughTx runs fn directly, for tests that do not care about
// transaction boundaries.
type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) Get(ctx context.Context, id int64) (*model.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Organization), args.Error(1)
}

type MockBidRepository struct {
	mock.Mock
}

func (m *MockBidRepository) Create(ctx context.Context, b *model.Bid) (*model.Bid, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Bid), args.Error(1)
}

func (m *MockBidRepository) Get(ctx context.Context, id int64) (*model.Bid, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Bid), args.Error(1)
}

func (m *MockBidRepository) ListByOrganization(ctx context.Context, organizationID int64, limit, offset int) ([]*model.Bid, int64, error) {
	args := m.Called(ctx, organizationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Bid), args.Get(1).(int64), args.Error(2)
}

func (m *MockBidRepository) UpdateStatus(ctx context.Context, id int64, from, to model.BidStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

type MockRouteRepository struct {
	mock.Mock
}

func (m *MockRouteRepository) Create(ctx context.Context, r *model.Route) (*model.Route, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Route), args.Error(1)
}

func (m *MockRouteRepository) Get(ctx context.Context, id int64) (*model.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Route), args.Error(1)
}

func (m *MockRouteRepository) ListByOrganization(ctx context.Context, organizationID int64) ([]*model.Route, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Route), args.Error(1)
}

func (m *MockRouteRepository) ListForBid(ctx context.Context, bidID int64) ([]*model.Route, error) {
	args := m.Called(ctx, bidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Route), args.Error(1)
}

func (m *MockRouteRepository) Attach(ctx context.Context, bidID, routeID int64) error {
	return m.Called(ctx, bidID, routeID).Error(0)
}

func (m *MockRouteRepository) Detach(ctx context.Context, bidID, routeID int64) error {
	return m.Called(ctx, bidID, routeID).Error(0)
}

func (m *MockRouteRepository) IsReferenced(ctx context.Context, routeID int64) (bool, error) {
	args := m.Called(ctx, routeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRouteRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockRouteRepository) HardDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockCarrierRepository struct {
	mock.Mock
}

func (m *MockCarrierRepository) Create(ctx context.Context, c *model.Carrier) (*model.Carrier, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Carrier), args.Error(1)
}

func (m *MockCarrierRepository) ListByIDs(ctx context.Context, organizationID int64, ids []int64) ([]*model.Carrier, error) {
	args := m.Called(ctx, organizationID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Carrier), args.Error(1)
}

func (m *MockCarrierRepository) ListActive(ctx context.Context, organizationID int64) ([]*model.Carrier, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Carrier), args.Error(1)
}

type MockInvitationRepository struct {
	mock.Mock
}

func (m *MockInvitationRepository) CreateBatch(ctx context.Context, invitations []*model.Invitation) ([]*model.Invitation, error) {
	args := m.Called(ctx, invitations)
	switch v := args.Get(0).(type) {
	case nil:
		return nil, args.Error(1)
	case func(context.Context, []*model.Invitation) []*model.Invitation:
		return v(ctx, invitations), args.Error(1)
	}
	return args.Get(0).([]*model.Invitation), args.Error(1)
}

// GetByID accepts a func return so tests can hand out a fresh copy per call;
// the service mutates what it loads.
func (m *MockInvitationRepository) GetByID(ctx context.Context, id int64) (*model.Invitation, error) {
	args := m.Called(ctx, id)
	switch v := args.Get(0).(type) {
	case nil:
		return nil, args.Error(1)
	case func(context.Context, int64) *model.Invitation:
		return v(ctx, id), args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) GetByToken(ctx context.Context, token string) (*model.Invitation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) ListByBid(ctx context.Context, bidID int64) ([]*model.Invitation, error) {
	args := m.Called(ctx, bidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) ListByBidAndCarriers(ctx context.Context, bidID int64, carrierIDs []int64) ([]*model.Invitation, error) {
	args := m.Called(ctx, bidID, carrierIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) UpdateStatus(ctx context.Context, inv *model.Invitation, from model.InvitationStatus) error {
	return m.Called(ctx, inv, from).Error(0)
}

type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) MaxVersion(ctx context.Context, bidID, carrierID int64) (int, error) {
	args := m.Called(ctx, bidID, carrierID)
	return args.Int(0), args.Error(1)
}

func (m *MockResponseRepository) Create(ctx context.Context, resp *model.CarrierResponse) (*model.CarrierResponse, error) {
	args := m.Called(ctx, resp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CarrierResponse), args.Error(1)
}

func (m *MockResponseRepository) ListByBid(ctx context.Context, bidID int64) ([]*model.CarrierResponse, error) {
	args := m.Called(ctx, bidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.CarrierResponse), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error) {
	args := m.Called(ctx, data, metadata)
	return args.String(0), args.Error(1)
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) PutObject(ctx context.Context, bucket, key, contentType string, body []byte) error {
	return m.Called(ctx, bucket, key, contentType, body).Error(0)
}

func (m *MockObjectStore) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, ttl)
	return args.String(0), args.Error(1)
}

type MockTransitioner struct {
	mock.Mock
}

func (m *MockTransitioner) Transition(ctx context.Context, id int64, event model.InvitationEvent) (*model.Invitation, error) {
	args := m.Called(ctx, id, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) Authorize(ctx context.Context, bidID int64, token string) (*model.Invitation, []*model.Route, error) {
	args := m.Called(ctx, bidID, token)
	var inv *model.Invitation
	if v := args.Get(0); v != nil {
		inv = v.(*model.Invitation)
	}
	var routes []*model.Route
	if v := args.Get(1); v != nil {
		routes = v.([]*model.Route)
	}
	return inv, routes, args.Error(2)
}

type MockOpener struct {
	mock.Mock
}

func (m *MockOpener) Open(ctx context.Context, token string) (*model.Invitation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func ptr[T any](v T) *T {
	return &v
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
