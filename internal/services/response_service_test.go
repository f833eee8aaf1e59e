package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var recordNow = time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

type responseFixture struct {
	bids        *MockBidRepository
	routes      *MockRouteRepository
	carriers    *MockCarrierRepository
	responses   *MockResponseRepository
	invitations *MockTransitioner
	gate        *MockAuthorizer
	svc         *ResponseService
}

func newResponseFixture() *responseFixture {
	f := &responseFixture{
		bids:        new(MockBidRepository),
		routes:      new(MockRouteRepository),
		carriers:    new(MockCarrierRepository),
		responses:   new(MockResponseRepository),
		invitations: new(MockTransitioner),
		gate:        new(MockAuthorizer),
	}
	f.svc = NewResponseService(passthroughTx{}, f.bids, f.routes, f.carriers, f.responses, f.invitations, f.gate)
	f.svc.now = fixedClock(recordNow)
	return f
}

func (f *responseFixture) expectRoutes() {
	f.routes.On("ListForBid", mock.Anything, int64(10)).Return([]*model.Route{
		{ID: 1, OriginCity: "Chicago", DestinationCity: "Dallas", Equipment: model.EquipmentDryVan},
		{ID: 2, OriginCity: "Denver", DestinationCity: "Phoenix", Equipment: model.EquipmentReefer},
	}, nil)
}

func submission(draft bool) model.ResponseSubmission {
	return model.ResponseSubmission{
		BidID:          10,
		CarrierID:      3,
		InvitationID:   7,
		ResponderName:  " Dana ",
		ResponderEmail: "dana@blue.test",
		Rates: map[int64]model.RateInput{
			2: {Rate: ptr(2100.0), Comment: ptr("team drivers")},
			1: {Rate: ptr(1850.5)},
		},
		IsDraft: draft,
	}
}

func TestResponseService_Record_Submission(t *testing.T) {
	f := newResponseFixture()
	f.expectRoutes()
	f.responses.On("MaxVersion", mock.Anything, int64(10), int64(3)).Return(2, nil)
	var saved *model.CarrierResponse
	f.responses.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*model.CarrierResponse)
		saved.ID = 99
	}).Return(&model.CarrierResponse{}, nil)
	f.invitations.On("Transition", mock.Anything, int64(7), model.EventResponded).
		Return(&model.Invitation{ID: 7, Status: model.InvitationResponded}, nil)

	_, err := f.svc.Record(context.Background(), submission(false))

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, 3, saved.Version)
	assert.Equal(t, "Dana", saved.ResponderName)
	assert.Equal(t, 2, saved.RouteCount)
	assert.False(t, saved.IsDraft)
	require.NotNil(t, saved.SubmittedAt)
	assert.Equal(t, recordNow, *saved.SubmittedAt)
	require.Len(t, saved.Rates, 2)
	assert.Equal(t, int64(1), saved.Rates[0].RouteID)
	assert.Equal(t, int64(2), saved.Rates[1].RouteID)
	assert.Equal(t, "USD", saved.Rates[0].Currency)
	assert.Equal(t, "team drivers", *saved.Rates[1].Comment)
	f.invitations.AssertExpectations(t)
}

func TestResponseService_Record_DraftSkipsValidationAndTransition(t *testing.T) {
	f := newResponseFixture()
	f.expectRoutes()
	f.responses.On("MaxVersion", mock.Anything, int64(10), int64(3)).Return(0, nil)
	f.responses.On("Create", mock.Anything, mock.Anything).Return(&model.CarrierResponse{ID: 1, Version: 1, IsDraft: true}, nil)

	sub := model.ResponseSubmission{
		BidID:     10,
		CarrierID: 3,
		Currency:  "cad",
		Rates:     map[int64]model.RateInput{1: {}},
		IsDraft:   true,
	}
	got, err := f.svc.Record(context.Background(), sub)

	require.NoError(t, err)
	assert.True(t, got.IsDraft)
	f.responses.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(r *model.CarrierResponse) bool {
		return r.Version == 1 && r.RouteCount == 0 && r.Rates[0].Currency == "CAD"
	}))
	f.invitations.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything)
}

func TestResponseService_Record_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *model.ResponseSubmission)
		want   error
	}{
		{"missing name", func(s *model.ResponseSubmission) { s.ResponderName = "  " }, model.ErrValidation},
		{"missing email", func(s *model.ResponseSubmission) { s.ResponderEmail = "" }, model.ErrValidation},
		{"no rates", func(s *model.ResponseSubmission) { s.Rates = map[int64]model.RateInput{1: {}} }, model.ErrValidation},
		{"bad currency", func(s *model.ResponseSubmission) { s.Currency = "dollars" }, model.ErrValidation},
		{"route outside bid", func(s *model.ResponseSubmission) { s.Rates[42] = model.RateInput{Rate: ptr(1.0)} }, ErrUnknownRoute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newResponseFixture()
			f.expectRoutes()
			sub := submission(false)
			tt.mutate(&sub)

			_, err := f.svc.Record(context.Background(), sub)

			assert.ErrorIs(t, err, tt.want)
			f.responses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestResponseService_Record_TransitionFailureKeepsResponse(t *testing.T) {
	f := newResponseFixture()
	f.expectRoutes()
	f.responses.On("MaxVersion", mock.Anything, int64(10), int64(3)).Return(0, nil)
	f.responses.On("Create", mock.Anything, mock.Anything).Return(&model.CarrierResponse{ID: 5, Version: 1}, nil)
	f.invitations.On("Transition", mock.Anything, int64(7), model.EventResponded).Return(nil, errors.New("db gone"))

	got, err := f.svc.Record(context.Background(), submission(false))

	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)
}

func TestResponseService_Record_SaveFailure(t *testing.T) {
	f := newResponseFixture()
	f.expectRoutes()
	f.responses.On("MaxVersion", mock.Anything, int64(10), int64(3)).Return(0, nil)
	f.responses.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))

	_, err := f.svc.Record(context.Background(), submission(false))

	assert.ErrorContains(t, err, "save response")
	f.invitations.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything)
}

func TestResponseService_Submit(t *testing.T) {
	t.Run("identity comes from the token", func(t *testing.T) {
		f := newResponseFixture()
		f.gate.On("Authorize", mock.Anything, int64(10), "tok").
			Return(&model.Invitation{ID: 8, BidID: 10, CarrierID: 4, Status: model.InvitationOpened}, []*model.Route{}, nil)
		f.expectRoutes()
		f.responses.On("MaxVersion", mock.Anything, int64(10), int64(4)).Return(0, nil)
		f.responses.On("Create", mock.Anything, mock.MatchedBy(func(r *model.CarrierResponse) bool {
			return r.CarrierID == 4 && r.InvitationID == 8
		})).Return(&model.CarrierResponse{ID: 1, CarrierID: 4}, nil)
		f.invitations.On("Transition", mock.Anything, int64(8), model.EventResponded).Return(&model.Invitation{}, nil)

		sub := submission(false)
		sub.CarrierID = 999
		got, err := f.svc.Submit(context.Background(), "tok", sub)

		require.NoError(t, err)
		assert.Equal(t, int64(4), got.CarrierID)
	})

	t.Run("denied token", func(t *testing.T) {
		f := newResponseFixture()
		f.gate.On("Authorize", mock.Anything, int64(10), "tok").Return(nil, nil, ErrAccessDenied)

		_, err := f.svc.Submit(context.Background(), "tok", submission(false))

		assert.ErrorIs(t, err, ErrAccessDenied)
		f.routes.AssertNotCalled(t, "ListForBid", mock.Anything, mock.Anything)
	})
}

func TestResponseService_ListLatest(t *testing.T) {
	f := newResponseFixture()
	early := recordNow.Add(-time.Hour)
	f.bids.On("Get", mock.Anything, int64(10)).Return(&model.Bid{ID: 10, OrganizationID: 1}, nil)
	f.responses.On("ListByBid", mock.Anything, int64(10)).Return([]*model.CarrierResponse{
		{ID: 1, CarrierID: 3, Version: 1, SubmittedAt: &early},
		{ID: 2, CarrierID: 3, Version: 2, SubmittedAt: &recordNow},
		{ID: 3, CarrierID: 4, Version: 1, SubmittedAt: &early},
	}, nil)

	got, err := f.svc.ListLatest(context.Background(), 1, 10)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	_, err = f.svc.ListLatest(context.Background(), 2, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func exportFixture() *responseFixture {
	f := newResponseFixture()
	f.bids.On("Get", mock.Anything, int64(10)).Return(&model.Bid{ID: 10, OrganizationID: 1}, nil)
	f.responses.On("ListByBid", mock.Anything, int64(10)).Return([]*model.CarrierResponse{{
		ID:             2,
		CarrierID:      3,
		ResponderName:  `Dana "DJ" Jones`,
		ResponderEmail: "dana@blue.test",
		SubmittedAt:    &recordNow,
		Version:        2,
		Rates: []model.RateEntry{
			{RouteID: 1, Rate: ptr(1850.5), Currency: "USD"},
			{RouteID: 9, Currency: "USD", Comment: ptr("lane retired")},
		},
	}}, nil)
	f.carriers.On("ListByIDs", mock.Anything, int64(1), []int64{3}).
		Return([]*model.Carrier{{ID: 3, Name: "Blue Line"}}, nil)
	f.expectRoutes()
	f.routes.On("Get", mock.Anything, int64(9)).Return(&model.Route{
		ID: 9, OriginCity: "Reno", DestinationCity: "Boise", Equipment: model.EquipmentFlatbed, Deleted: true,
	}, nil)
	return f
}

func TestResponseService_ExportCSV(t *testing.T) {
	f := exportFixture()

	got, err := f.svc.ExportCSV(context.Background(), 1, 10)

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `"carrier_id","carrier_name","responder_name","responder_email","submitted_at","version","is_draft","route_id","origin_city","destination_city","equipment_type","rate","currency","comment"`, lines[0])
	assert.Equal(t, `"3","Blue Line","Dana ""DJ"" Jones","dana@blue.test","2026-03-04T15:30:00Z","2","false","1","Chicago","Dallas","Dry Van","1850.5","USD",""`, lines[1])
	assert.Equal(t, `"3","Blue Line","Dana ""DJ"" Jones","dana@blue.test","2026-03-04T15:30:00Z","2","false","9","Reno","Boise","Flatbed","","USD","lane retired"`, lines[2])
}

func TestResponseService_ExportCSV_NoResponses(t *testing.T) {
	f := newResponseFixture()
	f.bids.On("Get", mock.Anything, int64(10)).Return(&model.Bid{ID: 10, OrganizationID: 1}, nil)
	f.responses.On("ListByBid", mock.Anything, int64(10)).Return([]*model.CarrierResponse{}, nil)
	f.carriers.On("ListByIDs", mock.Anything, int64(1), []int64{}).Return([]*model.Carrier{}, nil)
	f.expectRoutes()

	got, err := f.svc.ExportCSV(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResponseService_PublishExport(t *testing.T) {
	t.Run("no store configured", func(t *testing.T) {
		f := newResponseFixture()

		_, err := f.svc.PublishExport(context.Background(), 1, 10)
		assert.ErrorIs(t, err, ErrExportUnavailable)
	})

	t.Run("uploads and presigns", func(t *testing.T) {
		f := exportFixture()
		store := new(MockObjectStore)
		f.svc.WithObjectStore(store, ExportConfig{Bucket: "exports", PresignTTL: 15 * time.Minute})
		key := "bids/10/responses-20260304T153000Z.csv"
		store.On("PutObject", mock.Anything, "exports", key, "text/csv; charset=utf-8", mock.MatchedBy(func(b []byte) bool {
			return strings.HasPrefix(string(b), `"carrier_id"`)
		})).Return(nil)
		store.On("PresignGet", mock.Anything, "exports", key, 15*time.Minute).Return("https://s3.test/exports/"+key+"?sig=x", nil)

		link, err := f.svc.PublishExport(context.Background(), 1, 10)

		require.NoError(t, err)
		assert.Equal(t, key, link.Key)
		assert.Contains(t, link.URL, "sig=x")
		assert.Equal(t, recordNow.Add(15*time.Minute), link.ExpiresAt)
		store.AssertExpectations(t)
	})

	t.Run("upload failure", func(t *testing.T) {
		f := exportFixture()
		store := new(MockObjectStore)
		f.svc.WithObjectStore(store, ExportConfig{Bucket: "exports", PresignTTL: time.Minute})
		store.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("access denied"))

		_, err := f.svc.PublishExport(context.Background(), 1, 10)

		assert.ErrorContains(t, err, "upload export")
		store.AssertNotCalled(t, "PresignGet", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
