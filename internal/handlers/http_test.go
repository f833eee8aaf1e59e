package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/fasthttp/router"
	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/internal/repository"
	"github.com/nimasrn/freight-bids/internal/services"
	xhttp "github.com/nimasrn/freight-bids/pkg/http"
	"github.com/nimasrn/freight-bids/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func errorBody(t *testing.T, body []byte) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp["error"]
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("bid 3: %w", services.ErrNotFound), 404},
		{services.ErrAccessDenied, 404},
		{fmt.Errorf("bid 3: %w", services.ErrOrganizationNotResolved), 404},
		{fmt.Errorf("%w: title is required", model.ErrValidation), 422},
		{model.ErrNoChannels, 422},
		{fmt.Errorf("%w: \"fax\"", model.ErrInvalidChannel), 422},
		{services.ErrNoCarriers, 422},
		{fmt.Errorf("route 9: %w", services.ErrUnknownRoute), 422},
		{services.ErrBidActive, 409},
		{services.ErrRouteAlreadyAttached, 409},
		{services.ErrInvalidBidTransition, 409},
		{services.ErrConflict, 409},
		{services.ErrMaxRetriesExceeded, 409},
		{fmt.Errorf("%w: %w", services.ErrConflict, repository.ErrDuplicateInvitation), 409},
		{model.ErrInvalidTransition, 409},
		{model.ErrInvitationRevoked, 409},
		{services.ErrExportUnavailable, 503},
		{errors.New("connection refused"), 500},
		{fmt.Errorf("get bid: %w", repository.ErrConcurrentUpdate), 500},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			ctx := setupTestContext("GET", "/", nil)
			writeServiceError(ctx, tt.err)
			assert.Equal(t, tt.status, ctx.Response.StatusCode())
		})
	}
}

func TestWriteServiceError_DenialLooksLikeNotFound(t *testing.T) {
	notFound := setupTestContext("GET", "/", nil)
	writeServiceError(notFound, fmt.Errorf("bid 3: %w", services.ErrNotFound))

	denied := setupTestContext("GET", "/", nil)
	writeServiceError(denied, services.ErrAccessDenied)

	assert.Equal(t, notFound.Response.StatusCode(), denied.Response.StatusCode())
	assert.Equal(t, string(notFound.Response.Body()), string(denied.Response.Body()))
}

func TestWriteServiceError_HidesInternalDetails(t *testing.T) {
	ctx := setupTestContext("GET", "/", nil)
	writeServiceError(ctx, errors.New("pq: password authentication failed"))

	assert.NotContains(t, errorBody(t, ctx.Response.Body()), "password")
}

func TestWriteServiceError_LogsPathWithoutToken(t *testing.T) {
	prev := logger.GetLogger()
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Replace(zap.New(core))
	t.Cleanup(func() { logger.Restore(prev) })

	ctx := setupTestContext("GET", "/bid/respond/secret-token-123/routes?bid_id=1", nil)
	writeServiceError(ctx, errors.New("db down"))

	assert.Equal(t, 500, ctx.Response.StatusCode())
	entries := logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	path := entries[0].ContextMap()["path"]
	assert.Equal(t, "/bid/respond/***/routes", path)
	for _, e := range logs.All() {
		for _, f := range e.Context {
			assert.NotContains(t, f.String, "secret-token-123")
		}
	}
}

func TestWithOrganization(t *testing.T) {
	var got int64
	h := withOrganization(func(ctx *xhttp.RequestCtx, organizationID int64) { got = organizationID })

	for _, header := range []string{"", "abc", "0", "-4"} {
		ctx := setupTestContext("GET", "/api/v1/bids", nil)
		if header != "" {
			ctx.Request.Header.Set(OrganizationHeader, header)
		}
		h(ctx)
		assert.Equal(t, 400, ctx.Response.StatusCode(), header)
	}
	assert.Zero(t, got)

	ctx := setupTestContext("GET", "/api/v1/bids", nil)
	ctx.Request.Header.Set(OrganizationHeader, "42")
	h(ctx)
	assert.Equal(t, int64(42), got)
}

// newAPIRouter mounts every organization route the way cmd/api does.
const testProviderSecret = "provider-secret"

func newAPIRouter(bids BidService, routes RouteService, carriers CarrierService, invitations InvitationService, responses ResponseService) *router.Router {
	r := router.New()
	v1 := r.Group("/api/v1")
	if bids != nil {
		RegisterBidRoutes(v1, NewBidHandler(bids))
	}
	if routes != nil {
		RegisterRouteRoutes(v1, NewRouteHandler(routes))
	}
	if carriers != nil {
		RegisterCarrierRoutes(v1, NewCarrierHandler(carriers))
	}
	if invitations != nil {
		RegisterInvitationRoutes(v1, NewInvitationHandler(invitations, testProviderSecret))
	}
	if responses != nil {
		RegisterResponseRoutes(v1, NewResponseHandler(responses))
	}
	return r
}
