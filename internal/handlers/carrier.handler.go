package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/freight-bids/internal/model"
	xhttp "github.com/nimasrn/freight-bids/pkg/http"
)

type CarrierService interface {
	Create(ctx context.Context, req model.CarrierCreateRequest) (*model.Carrier, error)
	ListActive(ctx context.Context, organizationID int64) []*model.Carrier
}

type CarrierHandler struct {
	svc CarrierService
}

func RegisterCarrierRoutes(e *router.Group, h *CarrierHandler) {
	e.POST("/carriers", withOrganization(h.CreateCarrier))
	e.GET("/carriers", withOrganization(h.ListCarriers))
}

func NewCarrierHandler(svc CarrierService) *CarrierHandler {
	return &CarrierHandler{svc: svc}
}

func (h *CarrierHandler) CreateCarrier(ctx *xhttp.RequestCtx, organizationID int64) {
	var req model.CarrierCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	req.OrganizationID = organizationID

	carrier, err := h.svc.Create(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, carrier)
}

func (h *CarrierHandler) ListCarriers(ctx *xhttp.RequestCtx, organizationID int64) {
	writeJSON(ctx, xhttp.StatusOK, h.svc.ListActive(ctx, organizationID))
}
