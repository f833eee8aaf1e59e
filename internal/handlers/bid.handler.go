package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/freight-bids/internal/model"
	xhttp "github.com/nimasrn/freight-bids/pkg/http"
)

type BidService interface {
	Create(ctx context.Context, req model.BidCreateRequest) (*model.Bid, error)
	Get(ctx context.Context, organizationID, id int64) (*model.Bid, error)
	List(ctx context.Context, organizationID int64, limit, offset int) ([]*model.Bid, int64, error)
	SetStatus(ctx context.Context, organizationID, id int64, status model.BidStatus) (*model.Bid, error)
	AttachRoute(ctx context.Context, organizationID, bidID, routeID int64) error
	DetachRoute(ctx context.Context, organizationID, bidID, routeID int64) error
	Routes(ctx context.Context, organizationID, bidID int64) ([]*model.Route, error)
}

type BidHandler struct {
	svc BidService
}

func RegisterBidRoutes(e *router.Group, h *BidHandler) {
	e.POST("/bids", withOrganization(h.CreateBid))
	e.GET("/bids", withOrganization(h.ListBids))
	e.GET("/bids/{id}", withOrganization(h.GetBid))
	e.PATCH("/bids/{id}/status", withOrganization(h.SetStatus))
	e.GET("/bids/{id}/routes", withOrganization(h.ListRoutes))
	e.PUT("/bids/{id}/routes/{route_id}", withOrganization(h.AttachRoute))
	e.DELETE("/bids/{id}/routes/{route_id}", withOrganization(h.DetachRoute))
}

func NewBidHandler(svc BidService) *BidHandler {
	return &BidHandler{svc: svc}
}

type listBidsResponse struct {
	Items []*model.Bid `json:"items"`
	Total int64        `json:"total"`
}

type setStatusRequest struct {
	Status model.BidStatus `json:"status"`
}

func (h *BidHandler) CreateBid(ctx *xhttp.RequestCtx, organizationID int64) {
	var req model.BidCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	req.OrganizationID = organizationID

	bid, err := h.svc.Create(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, bid)
}

func (h *BidHandler) ListBids(ctx *xhttp.RequestCtx, organizationID int64) {
	items, total, err := h.svc.List(ctx, organizationID, queryInt(ctx, "limit", 50), queryInt(ctx, "offset", 0))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if items == nil {
		items = []*model.Bid{}
	}
	writeJSON(ctx, xhttp.StatusOK, listBidsResponse{Items: items, Total: total})
}

func (h *BidHandler) GetBid(ctx *xhttp.RequestCtx, organizationID int64) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	bid, err := h.svc.Get(ctx, organizationID, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, bid)
}

func (h *BidHandler) SetStatus(ctx *xhttp.RequestCtx, organizationID int64) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	var req setStatusRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	bid, err := h.svc.SetStatus(ctx, organizationID, id, req.Status)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, bid)
}

func (h *BidHandler) ListRoutes(ctx *xhttp.RequestCtx, organizationID int64) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	routes, err := h.svc.Routes(ctx, organizationID, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if routes == nil {
		routes = []*model.Route{}
	}
	writeJSON(ctx, xhttp.StatusOK, routes)
}

func (h *BidHandler) AttachRoute(ctx *xhttp.RequestCtx, organizationID int64) {
	bidID, routeID, ok := bidRouteParams(ctx)
	if !ok {
		return
	}
	if err := h.svc.AttachRoute(ctx, organizationID, bidID, routeID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

func (h *BidHandler) DetachRoute(ctx *xhttp.RequestCtx, organizationID int64) {
	bidID, routeID, ok := bidRouteParams(ctx)
	if !ok {
		return
	}
	if err := h.svc.DetachRoute(ctx, organizationID, bidID, routeID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

func bidRouteParams(ctx *xhttp.RequestCtx) (bidID, routeID int64, ok bool) {
	bidID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	routeID, err = pathInt64(ctx, "route_id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	return bidID, routeID, true
}
