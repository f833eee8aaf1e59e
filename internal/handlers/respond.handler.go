package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/fasthttp/router"
	"github.com/nimasrn/freight-bids/internal/model"
	xhttp "github.com/nimasrn/freight-bids/pkg/http"
)

type AccessService interface {
	Open(ctx context.Context, token string) (*model.Invitation, []*model.Route, error)
	Routes(ctx context.Context, bidID int64, token string) ([]*model.Route, error)
}

type SubmissionService interface {
	Submit(ctx context.Context, token string, sub model.ResponseSubmission) (*model.CarrierResponse, error)
}

// RespondHandler serves the tokenized carrier link. The token is the only
// credential on these routes.
type RespondHandler struct {
	access    AccessService
	responses SubmissionService
}

func RegisterRespondRoutes(e *router.Group, h *RespondHandler) {
	e.GET("/{token}", h.OpenInvitation)
	e.GET("/{token}/routes", h.ListRoutes)
	e.POST("/{token}/responses", h.SubmitResponse)
}

func NewRespondHandler(access AccessService, responses SubmissionService) *RespondHandler {
	return &RespondHandler{
		access:    access,
		responses: responses,
	}
}

// invitationView is what a carrier sees about its own invitation.
type invitationView struct {
	BidID     int64                  `json:"bid_id"`
	CarrierID int64                  `json:"carrier_id"`
	Status    model.InvitationStatus `json:"status"`
	Message   *string                `json:"message,omitempty"`
	InvitedAt time.Time              `json:"invited_at"`
}

type openResponse struct {
	Invitation invitationView `json:"invitation"`
	Routes     []*model.Route `json:"routes"`
}

func (h *RespondHandler) OpenInvitation(ctx *xhttp.RequestCtx) {
	inv, routes, err := h.access.Open(ctx, pathString(ctx, "token"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, openResponse{
		Invitation: invitationView{
			BidID:     inv.BidID,
			CarrierID: inv.CarrierID,
			Status:    inv.Status,
			Message:   inv.Message,
			InvitedAt: inv.InvitedAt,
		},
		Routes: routes,
	})
}

func (h *RespondHandler) ListRoutes(ctx *xhttp.RequestCtx) {
	bidID, err := strconv.ParseInt(query(ctx, "bid_id"), 10, 64)
	if err != nil || bidID <= 0 {
		writeError(ctx, xhttp.StatusBadRequest, "bid_id is required")
		return
	}
	routes, err := h.access.Routes(ctx, bidID, pathString(ctx, "token"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, routes)
}

func (h *RespondHandler) SubmitResponse(ctx *xhttp.RequestCtx) {
	var sub model.ResponseSubmission
	if err := readJSON(ctx, &sub); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	resp, err := h.responses.Submit(ctx, pathString(ctx, "token"), sub)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, resp)
}
