package handlers

import (
	"context"

	"github.com/fasthttp/router"
	xhttp "github.com/nimasrn/freight-bids/pkg/http"
	"github.com/nimasrn/freight-bids/pkg/logger"
)

type HealthService interface {
	Get(ctx context.Context) error
}

type HealthHandler struct {
	svc HealthService
}

func RegisterHealthRoutes(e *router.Group, h *HealthHandler) {
	e.GET("/health", h.GetHealth)
}

func NewHealthHandler(svc HealthService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	if err := h.svc.Get(ctx); err != nil {
		logger.Warn("health check failed", "error", err)
		writeJSON(ctx, xhttp.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"status": "ok"})
}
