package services

import (
	"context"
	"errors"
	"testing"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAccessService() (*AccessService, *MockInvitationRepository, *MockRouteRepository, *MockOpener) {
	invitations := new(MockInvitationRepository)
	routes := new(MockRouteRepository)
	opener := new(MockOpener)
	return NewAccessService(invitations, routes, opener), invitations, routes, opener
}

func TestAccessService_Routes_Denials(t *testing.T) {
	tests := []struct {
		name   string
		bidID  int64
		lookup func(m *MockInvitationRepository)
	}{
		{
			name:  "unknown token",
			bidID: 10,
			lookup: func(m *MockInvitationRepository) {
				m.On("GetByToken", mock.Anything, "tok").Return(nil, repository.ErrInvitationNotFound)
			},
		},
		{
			name:  "bid mismatch",
			bidID: 11,
			lookup: func(m *MockInvitationRepository) {
				m.On("GetByToken", mock.Anything, "tok").Return(&model.Invitation{ID: 1, BidID: 10, Status: model.InvitationOpened}, nil)
			},
		},
		{
			name:  "still pending",
			bidID: 10,
			lookup: func(m *MockInvitationRepository) {
				m.On("GetByToken", mock.Anything, "tok").Return(&model.Invitation{ID: 1, BidID: 10, Status: model.InvitationPending}, nil)
			},
		},
		{
			name:  "delivered but not opened",
			bidID: 10,
			lookup: func(m *MockInvitationRepository) {
				m.On("GetByToken", mock.Anything, "tok").Return(&model.Invitation{ID: 1, BidID: 10, Status: model.InvitationDelivered}, nil)
			},
		},
		{
			name:  "revoked",
			bidID: 10,
			lookup: func(m *MockInvitationRepository) {
				m.On("GetByToken", mock.Anything, "tok").Return(&model.Invitation{ID: 1, BidID: 10, Status: model.InvitationRevoked}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, invitations, routes, _ := newAccessService()
			tt.lookup(invitations)

			got, err := svc.Routes(context.Background(), tt.bidID, "tok")

			assert.Nil(t, got)
			assert.Equal(t, ErrAccessDenied, err)
			routes.AssertNotCalled(t, "ListForBid", mock.Anything, mock.Anything)
		})
	}
}

func TestAccessService_Routes_Allowed(t *testing.T) {
	for _, status := range []model.InvitationStatus{model.InvitationOpened, model.InvitationResponded} {
		t.Run(status.String(), func(t *testing.T) {
			svc, invitations, routes, _ := newAccessService()
			invitations.On("GetByToken", mock.Anything, "tok").Return(&model.Invitation{ID: 1, BidID: 10, Status: status}, nil)
			routes.On("ListForBid", mock.Anything, int64(10)).Return([]*model.Route{
				{ID: 1, OriginCity: "Chicago", DestinationCity: "Dallas", Equipment: model.EquipmentReefer},
			}, nil)

			got, err := svc.Routes(context.Background(), 10, "tok")

			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "Chicago", got[0].OriginCity)
		})
	}
}

func TestAccessService_Routes_EmptyIsSuccess(t *testing.T) {
	svc, invitations, routes, _ := newAccessService()
	invitations.On("GetByToken", mock.Anything, "tok").Return(&model.Invitation{ID: 1, BidID: 10, Status: model.InvitationOpened}, nil)
	routes.On("ListForBid", mock.Anything, int64(10)).Return(nil, nil)

	got, err := svc.Routes(context.Background(), 10, "tok")

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAccessService_Routes_StorageError(t *testing.T) {
	svc, invitations, _, _ := newAccessService()
	invitations.On("GetByToken", mock.Anything, "tok").Return(nil, errors.New("connection reset"))

	_, err := svc.Routes(context.Background(), 10, "tok")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAccessDenied)
}

func TestAccessService_Open(t *testing.T) {
	t.Run("opens then authorizes", func(t *testing.T) {
		svc, invitations, routes, opener := newAccessService()
		opener.On("Open", mock.Anything, "tok").Return(&model.Invitation{ID: 1, BidID: 10, Status: model.InvitationOpened}, nil)
		invitations.On("GetByToken", mock.Anything, "tok").Return(&model.Invitation{ID: 1, BidID: 10, Status: model.InvitationOpened}, nil)
		routes.On("ListForBid", mock.Anything, int64(10)).Return([]*model.Route{{ID: 3}}, nil)

		inv, got, err := svc.Open(context.Background(), "tok")

		require.NoError(t, err)
		assert.Equal(t, int64(10), inv.BidID)
		assert.Len(t, got, 1)
	})

	t.Run("unknown token is denied", func(t *testing.T) {
		svc, _, _, opener := newAccessService()
		opener.On("Open", mock.Anything, "tok").Return(nil, ErrNotFound)

		_, _, err := svc.Open(context.Background(), "tok")
		assert.Equal(t, ErrAccessDenied, err)
	})

	t.Run("revoked token is denied", func(t *testing.T) {
		svc, _, _, opener := newAccessService()
		opener.On("Open", mock.Anything, "tok").Return(nil, model.ErrInvitationRevoked)

		_, _, err := svc.Open(context.Background(), "tok")
		assert.Equal(t, ErrAccessDenied, err)
	})
}
