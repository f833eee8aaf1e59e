package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/freight-bids/internal/model"
	xhttp "github.com/nimasrn/freight-bids/pkg/http"
)

type RouteService interface {
	Create(ctx context.Context, req model.RouteCreateRequest) (*model.Route, error)
	List(ctx context.Context, organizationID int64) ([]*model.Route, error)
	Delete(ctx context.Context, organizationID, id int64) (bool, error)
}

type RouteHandler struct {
	svc RouteService
}

func RegisterRouteRoutes(e *router.Group, h *RouteHandler) {
	e.POST("/routes", withOrganization(h.CreateRoute))
	e.GET("/routes", withOrganization(h.ListRoutes))
	e.DELETE("/routes/{id}", withOrganization(h.DeleteRoute))
}

func NewRouteHandler(svc RouteService) *RouteHandler {
	return &RouteHandler{svc: svc}
}

type deleteRouteResponse struct {
	ID   int64 `json:"id"`
	Soft bool  `json:"soft"`
}

func (h *RouteHandler) CreateRoute(ctx *xhttp.RequestCtx, organizationID int64) {
	var req model.RouteCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	req.OrganizationID = organizationID

	route, err := h.svc.Create(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, route)
}

func (h *RouteHandler) ListRoutes(ctx *xhttp.RequestCtx, organizationID int64) {
	routes, err := h.svc.List(ctx, organizationID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if routes == nil {
		routes = []*model.Route{}
	}
	writeJSON(ctx, xhttp.StatusOK, routes)
}

// DeleteRoute answers with whether the route was only flagged deleted
// because a bid still refers to it.
func (h *RouteHandler) DeleteRoute(ctx *xhttp.RequestCtx, organizationID int64) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	soft, err := h.svc.Delete(ctx, organizationID, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, deleteRouteResponse{ID: id, Soft: soft})
}
