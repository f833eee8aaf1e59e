package services

import "errors"

var (
	ErrNotFound                = errors.New("not found")
	ErrAccessDenied            = errors.New("invitation not found")
	ErrOrganizationNotResolved = errors.New("bid organization could not be resolved")
	ErrNoCarriers              = errors.New("at least one carrier is required")
	ErrUnknownRoute            = errors.New("route is not part of the bid")
	ErrBidActive               = errors.New("bid is active")
	ErrRouteAlreadyAttached    = errors.New("route already attached to bid")
	ErrInvalidBidTransition    = errors.New("invalid bid status change")
	ErrConflict                = errors.New("resource was modified concurrently")
	ErrExportUnavailable       = errors.New("export storage is not configured")
	ErrMaxRetriesExceeded      = errors.New("max retries exceeded")
)
