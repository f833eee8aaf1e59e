package handlers

import (
	"context"
	"fmt"

	"github.com/fasthttp/router"
	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/internal/services"
	xhttp "github.com/nimasrn/freight-bids/pkg/http"
)

type ResponseService interface {
	ListLatest(ctx context.Context, organizationID, bidID int64) ([]*model.CarrierResponse, error)
	ExportCSV(ctx context.Context, organizationID, bidID int64) (string, error)
	PublishExport(ctx context.Context, organizationID, bidID int64) (*services.ExportLink, error)
}

type ResponseHandler struct {
	svc ResponseService
}

func RegisterResponseRoutes(e *router.Group, h *ResponseHandler) {
	e.GET("/bids/{id}/responses", withOrganization(h.ListLatest))
	e.GET("/bids/{id}/responses/export", withOrganization(h.ExportCSV))
	e.POST("/bids/{id}/responses/export", withOrganization(h.PublishExport))
}

func NewResponseHandler(svc ResponseService) *ResponseHandler {
	return &ResponseHandler{svc: svc}
}

func (h *ResponseHandler) ListLatest(ctx *xhttp.RequestCtx, organizationID int64) {
	bidID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	latest, err := h.svc.ListLatest(ctx, organizationID, bidID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if latest == nil {
		latest = []*model.CarrierResponse{}
	}
	writeJSON(ctx, xhttp.StatusOK, latest)
}

func (h *ResponseHandler) ExportCSV(ctx *xhttp.RequestCtx, organizationID int64) {
	bidID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	csv, err := h.svc.ExportCSV(ctx, organizationID, bidID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.Header.Set("Content-Type", "text/csv; charset=utf-8")
	ctx.Response.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bid-%d-responses.csv"`, bidID))
	ctx.SetStatusCode(xhttp.StatusOK)
	ctx.SetBodyString(csv)
}

func (h *ResponseHandler) PublishExport(ctx *xhttp.RequestCtx, organizationID int64) {
	bidID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}
	link, err := h.svc.PublishExport(ctx, organizationID, bidID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, link)
}
