package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/freight-bids/internal/model"
	xhttp "github.com/nimasrn/freight-bids/pkg/http"
)

type InvitationService interface {
	Issue(ctx context.Context, organizationID int64, req model.InvitationIssueRequest) ([]*model.Invitation, error)
	List(ctx context.Context, organizationID, bidID int64) ([]*model.Invitation, error)
	Revoke(ctx context.Context, organizationID, id int64) (*model.Invitation, error)
	MarkDelivered(ctx context.Context, id int64) (*model.Invitation, error)
}

type InvitationHandler struct {
	svc            InvitationService
	providerSecret string
}

func RegisterInvitationRoutes(e *router.Group, h *InvitationHandler) {
	e.POST("/bids/{id}/invitations", withOrganization(h.IssueInvitations))
	e.GET("/bids/{id}/invitations", withOrganization(h.ListInvitations))
	e.POST("/invitations/{id}/revoke", withOrganization(h.RevokeInvitation))
	// called by the notification provider, not by organizations
	e.POST("/invitations/{id}/delivered", withProviderSecret(h.providerSecret, h.DeliveryCallback))
}

func NewInvitationHandler(svc InvitationService, providerSecret string) *InvitationHandler {
	return &InvitationHandler{svc: svc, providerSecret: providerSecret}
}

type issueInvitationsRequest struct {
	CarrierIDs []int64  `json:"carrier_ids"`
	Message    *string  `json:"message,omitempty"`
	Channels   []string `json:"channels"`
}

func (h *InvitationHandler) IssueInvitations(ctx *xhttp.RequestCtx, organizationID int64) {
	bidID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	var req issueInvitationsRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	invitations, err := h.svc.Issue(ctx, organizationID, model.InvitationIssueRequest{
		BidID:      bidID,
		CarrierIDs: req.CarrierIDs,
		Message:    req.Message,
		Channels:   req.Channels,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, invitations)
}

func (h *InvitationHandler) ListInvitations(ctx *xhttp.RequestCtx, organizationID int64) {
	bidID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	invitations, err := h.svc.List(ctx, organizationID, bidID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if invitations == nil {
		invitations = []*model.Invitation{}
	}
	writeJSON(ctx, xhttp.StatusOK, invitations)
}

func (h *InvitationHandler) RevokeInvitation(ctx *xhttp.RequestCtx, organizationID int64) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	inv, err := h.svc.Revoke(ctx, organizationID, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, inv)
}

func (h *InvitationHandler) DeliveryCallback(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	inv, err := h.svc.MarkDelivered(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]any{"id": inv.ID, "status": inv.Status})
}
