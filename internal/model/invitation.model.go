package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTransition = errors.New("invalid invitation status transition")
	ErrInvitationRevoked = errors.New("invitation is revoked")
	ErrUnknownStatus     = errors.New("unknown invitation status")
	ErrUnknownEvent      = errors.New("unknown invitation event")
	ErrNoChannels        = errors.New("at least one delivery channel is required")
	ErrInvalidChannel    = errors.New("invalid delivery channel")
)

// InvitationStatus is the lifecycle state of an invitation. The zero value is
// not a valid status. Forward states are ordered so that a larger value is
// further along; Revoked sits outside that order.
type InvitationStatus uint8

const (
	InvitationPending InvitationStatus = iota + 1
	InvitationDelivered
	InvitationOpened
	InvitationResponded
	InvitationRevoked
)

var invitationStatusNames = map[InvitationStatus]string{
	InvitationPending:   "pending",
	InvitationDelivered: "delivered",
	InvitationOpened:    "opened",
	InvitationResponded: "responded",
	InvitationRevoked:   "revoked",
}

func ParseInvitationStatus(s string) (InvitationStatus, error) {
	for st, name := range invitationStatusNames {
		if strings.EqualFold(s, name) {
			return st, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func (s InvitationStatus) String() string {
	if name, ok := invitationStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("InvitationStatus(%d)", uint8(s))
}

func (s InvitationStatus) Valid() bool {
	_, ok := invitationStatusNames[s]
	return ok
}

// Accessible reports whether a carrier holding the token may see the bid.
func (s InvitationStatus) Accessible() bool {
	return s == InvitationOpened || s == InvitationResponded
}

func (s InvitationStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *InvitationStatus) UnmarshalText(b []byte) error {
	st, err := ParseInvitationStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

type InvitationEvent uint8

const (
	EventDelivered InvitationEvent = iota + 1
	EventOpened
	EventResponded
	EventRevoked
)

func (e InvitationEvent) String() string {
	switch e {
	case EventDelivered:
		return "delivered"
	case EventOpened:
		return "opened"
	case EventResponded:
		return "responded"
	case EventRevoked:
		return "revoked"
	}
	return fmt.Sprintf("InvitationEvent(%d)", uint8(e))
}

func (e InvitationEvent) target() (InvitationStatus, bool) {
	switch e {
	case EventDelivered:
		return InvitationDelivered, true
	case EventOpened:
		return InvitationOpened, true
	case EventResponded:
		return InvitationResponded, true
	case EventRevoked:
		return InvitationRevoked, true
	}
	return 0, false
}

// Apply returns the status reached by applying e to s. Forward events never
// move an invitation backwards: an event whose target is not ahead of s is a
// no-op and reports changed=false. Revoked is terminal, and a responded
// invitation cannot be revoked.
func (s InvitationStatus) Apply(e InvitationEvent) (next InvitationStatus, changed bool, err error) {
	if !s.Valid() {
		return s, false, fmt.Errorf("%w: %d", ErrUnknownStatus, uint8(s))
	}
	target, ok := e.target()
	if !ok {
		return s, false, fmt.Errorf("%w: %d", ErrUnknownEvent, uint8(e))
	}

	if s == InvitationRevoked {
		if e == EventRevoked {
			return s, false, nil
		}
		return s, false, ErrInvitationRevoked
	}

	if e == EventRevoked {
		if s == InvitationResponded {
			return s, false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, target)
		}
		return target, true, nil
	}

	if target <= s {
		return s, false, nil
	}
	return target, true, nil
}

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelWhatsApp:
		return true
	}
	return false
}

// ParseChannels validates and de-duplicates a requested channel set, keeping
// the caller's order.
func ParseChannels(in []string) ([]Channel, error) {
	out := make([]Channel, 0, len(in))
	seen := make(map[Channel]struct{}, len(in))
	for _, raw := range in {
		c := Channel(strings.ToLower(strings.TrimSpace(raw)))
		if !c.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidChannel, raw)
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, ErrNoChannels
	}
	return out, nil
}

type Invitation struct {
	ID             int64            `json:"id"`
	BidID          int64            `json:"bid_id"`
	CarrierID      int64            `json:"carrier_id"`
	OrganizationID int64            `json:"organization_id"`
	Token          string           `json:"token"`
	Status         InvitationStatus `json:"status"`
	Channels       []Channel        `json:"channels"`
	Message        *string          `json:"message,omitempty"`
	InvitedAt      time.Time        `json:"invited_at"`
	DeliveredAt    *time.Time       `json:"delivered_at,omitempty"`
	OpenedAt       *time.Time       `json:"opened_at,omitempty"`
	RespondedAt    *time.Time       `json:"responded_at,omitempty"`
	RevokedAt      *time.Time       `json:"revoked_at,omitempty"`
}

// Apply moves the invitation through e and stamps the timestamp that belongs
// to the new status.
func (i *Invitation) Apply(e InvitationEvent, now time.Time) (bool, error) {
	next, changed, err := i.Status.Apply(e)
	if err != nil || !changed {
		return false, err
	}
	i.Status = next
	switch next {
	case InvitationDelivered:
		i.DeliveredAt = &now
	case InvitationOpened:
		i.OpenedAt = &now
	case InvitationResponded:
		i.RespondedAt = &now
	case InvitationRevoked:
		i.RevokedAt = &now
	}
	return true, nil
}

type InvitationIssueRequest struct {
	BidID      int64    `json:"bid_id"`
	CarrierIDs []int64  `json:"carrier_ids"`
	Message    *string  `json:"message,omitempty"`
	Channels   []string `json:"channels"`
}

// InvitationDelivery is the job the API enqueues for the delivery processor.
type InvitationDelivery struct {
	InvitationID int64     `json:"invitation_id"`
	BidID        int64     `json:"bid_id"`
	BidTitle     string    `json:"bid_title"`
	CarrierName  string    `json:"carrier_name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Channels     []Channel `json:"channels"`
	Link         string    `json:"link"`
	Message      string    `json:"message,omitempty"`
	InvitedAt    time.Time `json:"invited_at"`
}
