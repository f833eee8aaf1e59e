package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrValidation = errors.New("validation failed")

const DefaultCurrency = "USD"

type RateEntry struct {
	ID         int64    `json:"id"`
	ResponseID int64    `json:"response_id"`
	RouteID    int64    `json:"route_id"`
	Rate       *float64 `json:"rate"`
	Currency   string   `json:"currency"`
	Comment    *string  `json:"comment,omitempty"`
}

// CarrierResponse is one saved draft or submission. Rows are appended, never
// updated; Version grows per (bid, carrier).
type CarrierResponse struct {
	ID             int64       `json:"id"`
	BidID          int64       `json:"bid_id"`
	CarrierID      int64       `json:"carrier_id"`
	InvitationID   int64       `json:"invitation_id"`
	ResponderName  string      `json:"responder_name"`
	ResponderEmail string      `json:"responder_email"`
	SubmittedAt    *time.Time  `json:"submitted_at"`
	Version        int         `json:"version"`
	RouteCount     int         `json:"route_count"`
	IsDraft        bool        `json:"is_draft"`
	Rates          []RateEntry `json:"rates"`
}

type RateInput struct {
	Rate    *float64 `json:"rate"`
	Comment *string  `json:"comment,omitempty"`
}

type ResponseSubmission struct {
	BidID          int64               `json:"bid_id"`
	CarrierID      int64               `json:"carrier_id"`
	InvitationID   int64               `json:"invitation_id"`
	ResponderName  string              `json:"responder_name"`
	ResponderEmail string              `json:"responder_email"`
	Currency       string              `json:"currency"`
	Rates          map[int64]RateInput `json:"rates"`
	IsDraft        bool                `json:"is_draft"`
}

// Validate checks a submission. Drafts are accepted as they are.
func (s ResponseSubmission) Validate() error {
	if s.IsDraft {
		return nil
	}
	if strings.TrimSpace(s.ResponderName) == "" {
		return fmt.Errorf("%w: responder name is required", ErrValidation)
	}
	if strings.TrimSpace(s.ResponderEmail) == "" {
		return fmt.Errorf("%w: responder email is required", ErrValidation)
	}
	if s.PricedRoutes() == 0 {
		return fmt.Errorf("%w: at least one route needs a rate", ErrValidation)
	}
	return nil
}

// PricedRoutes counts the entries carrying a rate.
func (s ResponseSubmission) PricedRoutes() int {
	n := 0
	for _, r := range s.Rates {
		if r.Rate != nil {
			n++
		}
	}
	return n
}
