package handlers

import (
	"context"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/internal/services"
	xhttp "github.com/nimasrn/freight-bids/pkg/http"
	"github.com/stretchr/testify/mock"
	"github.com/valyala/fasthttp"
)

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

func orgContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := setupTestContext(method, path, body)
	ctx.Request.Header.Set(OrganizationHeader, "1")
	return ctx
}

type MockBidService struct {
	mock.Mock
}

func (m *MockBidService) Create(ctx context.Context, req model.BidCreateRequest) (*model.Bid, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Bid), args.Error(1)
}

func (m *MockBidService) Get(ctx context.Context, organizationID, id int64) (*model.Bid, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Bid), args.Error(1)
}

func (m *MockBidService) List(ctx context.Context, organizationID int64, limit, offset int) ([]*model.Bid, int64, error) {
	args := m.Called(ctx, organizationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Bid), args.Get(1).(int64), args.Error(2)
}

func (m *MockBidService) SetStatus(ctx context.Context, organizationID, id int64, status model.BidStatus) (*model.Bid, error) {
	args := m.Called(ctx, organizationID, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Bid), args.Error(1)
}

func (m *MockBidService) AttachRoute(ctx context.Context, organizationID, bidID, routeID int64) error {
	return m.Called(ctx, organizationID, bidID, routeID).Error(0)
}

func (m *MockBidService) DetachRoute(ctx context.Context, organizationID, bidID, routeID int64) error {
	return m.Called(ctx, organizationID, bidID, routeID).Error(0)
}

func (m *MockBidService) Routes(ctx context.Context, organizationID, bidID int64) ([]*model.Route, error) {
	args := m.Called(ctx, organizationID, bidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Route), args.Error(1)
}

type MockRouteService struct {
	mock.Mock
}

func (m *MockRouteService) Create(ctx context.Context, req model.RouteCreateRequest) (*model.Route, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Route), args.Error(1)
}

func (m *MockRouteService) List(ctx context.Context, organizationID int64) ([]*model.Route, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Route), args.Error(1)
}

func (m *MockRouteService) Delete(ctx context.Context, organizationID, id int64) (bool, error) {
	args := m.Called(ctx, organizationID, id)
	return args.Bool(0), args.Error(1)
}

type MockCarrierService struct {
	mock.Mock
}

func (m *MockCarrierService) Create(ctx context.Context, req model.CarrierCreateRequest) (*model.Carrier, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Carrier), args.Error(1)
}

func (m *MockCarrierService) ListActive(ctx context.Context, organizationID int64) []*model.Carrier {
	return m.Called(ctx, organizationID).Get(0).([]*model.Carrier)
}

type MockInvitationService struct {
	mock.Mock
}

func (m *MockInvitationService) Issue(ctx context.Context, organizationID int64, req model.InvitationIssueRequest) ([]*model.Invitation, error) {
	args := m.Called(ctx, organizationID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Invitation), args.Error(1)
}

func (m *MockInvitationService) List(ctx context.Context, organizationID, bidID int64) ([]*model.Invitation, error) {
	args := m.Called(ctx, organizationID, bidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Invitation), args.Error(1)
}

func (m *MockInvitationService) Revoke(ctx context.Context, organizationID, id int64) (*model.Invitation, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *MockInvitationService) MarkDelivered(ctx context.Context, id int64) (*model.Invitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

type MockResponseService struct {
	mock.Mock
}

func (m *MockResponseService) ListLatest(ctx context.Context, organizationID, bidID int64) ([]*model.CarrierResponse, error) {
	args := m.Called(ctx, organizationID, bidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.CarrierResponse), args.Error(1)
}

func (m *MockResponseService) ExportCSV(ctx context.Context, organizationID, bidID int64) (string, error) {
	args := m.Called(ctx, organizationID, bidID)
	return args.String(0), args.Error(1)
}

func (m *MockResponseService) PublishExport(ctx context.Context, organizationID, bidID int64) (*services.ExportLink, error) {
	args := m.Called(ctx, organizationID, bidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExportLink), args.Error(1)
}

func (m *MockResponseService) Submit(ctx context.Context, token string, sub model.ResponseSubmission) (*model.CarrierResponse, error) {
	args := m.Called(ctx, token, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CarrierResponse), args.Error(1)
}

type MockAccessService struct {
	mock.Mock
}

func (m *MockAccessService) Open(ctx context.Context, token string) (*model.Invitation, []*model.Route, error) {
	args := m.Called(ctx, token)
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

func (m *MockAccessService) Routes(ctx context.Context, bidID int64, token string) ([]*model.Route, error) {
	args := m.Called(ctx, bidID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Route), args.Error(1)
}

type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) Get(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
