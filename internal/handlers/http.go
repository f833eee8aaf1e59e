package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/internal/services"
	"github.com/nimasrn/freight-bids/pkg/logger"
	xhttp "github.com/nimasrn/freight-bids/pkg/http"
)

// OrganizationHeader is set by the upstream auth proxy.
const OrganizationHeader = "X-Organization-ID"

// ProviderSecretHeader carries the shared secret on notification provider
// callbacks.
const ProviderSecretHeader = "X-Notifier-Secret"

const notFoundMessage = "not found"

type orgHandler func(ctx *xhttp.RequestCtx, organizationID int64)

// withOrganization resolves the calling organization before running h.
func withOrganization(h orgHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		raw := string(ctx.Request.Header.Peek(OrganizationHeader))
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(ctx, xhttp.StatusBadRequest, "missing or invalid "+OrganizationHeader+" header")
			return
		}
		h(ctx, id)
	}
}

// withProviderSecret admits only callers holding the provider secret. A
// missing or wrong secret gets the plain not-found answer; an empty secret
// turns the route off.
func withProviderSecret(secret string, h xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		got := ctx.Request.Header.Peek(ProviderSecretHeader)
		if secret == "" || subtle.ConstantTimeCompare(got, []byte(secret)) != 1 {
			logger.Warn("provider callback refused", "path", string(ctx.Path()), "has_secret", len(got) > 0)
			writeError(ctx, xhttp.StatusNotFound, notFoundMessage)
			return
		}
		h(ctx)
	}
}

// writeServiceError maps service errors onto status codes. Unknown resources
// and refused tokens produce the same 404 body.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrAccessDenied),
		errors.Is(err, services.ErrOrganizationNotResolved):
		writeError(ctx, xhttp.StatusNotFound, notFoundMessage)
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrNoChannels),
		errors.Is(err, model.ErrInvalidChannel),
		errors.Is(err, services.ErrNoCarriers),
		errors.Is(err, services.ErrUnknownRoute):
		writeError(ctx, xhttp.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrBidActive),
		errors.Is(err, services.ErrRouteAlreadyAttached),
		errors.Is(err, services.ErrInvalidBidTransition),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrMaxRetriesExceeded),
		errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrInvitationRevoked):
		writeError(ctx, xhttp.StatusConflict, err.Error())
	case errors.Is(err, services.ErrExportUnavailable):
		writeError(ctx, xhttp.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("request failed", "path", xhttp.RedactToken(string(ctx.Path())), "method", string(ctx.Method()), "error", err)
		writeError(ctx, xhttp.StatusInternalServerError, xhttp.StatusText(xhttp.StatusInternalServerError))
	}
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	return json.Unmarshal(ctx.PostBody(), dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("encode response failed", "path", xhttp.RedactToken(string(ctx.Path())), "error", err)
		ctx.Error(xhttp.StatusText(xhttp.StatusInternalServerError), xhttp.StatusInternalServerError)
		return
	}
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	raw := fmt.Sprint(ctx.UserValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

func pathString(ctx *xhttp.RequestCtx, name string) string {
	if v, ok := ctx.UserValue(name).(string); ok {
		return v
	}
	return ""
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func queryInt(ctx *xhttp.RequestCtx, key string, def int) int {
	if v := query(ctx, key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
