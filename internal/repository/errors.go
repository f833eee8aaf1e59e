package repository

import "errors"

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrCarrierNotFound      = errors.New("carrier not found")
	ErrBidNotFound          = errors.New("bid not found")
	ErrRouteNotFound        = errors.New("route not found")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrRouteAlreadyAttached = errors.New("route already attached to bid")
	ErrRouteNotAttached     = errors.New("route is not attached to bid")
	ErrDuplicateInvitation  = errors.New("invitation already exists for carrier")
	ErrConcurrentUpdate     = errors.New("concurrent update detected")
)
