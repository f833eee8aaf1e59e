package model

import (
	"errors"
	"strings"
	"time"
)

type BidStatus string

const (
	BidStatusDraft  BidStatus = "draft"
	BidStatusActive BidStatus = "active"
	BidStatusClosed BidStatus = "closed"
)

var ErrInvalidBidStatus = errors.New("invalid bid status")

func (s BidStatus) Valid() bool {
	switch s {
	case BidStatusDraft, BidStatusActive, BidStatusClosed:
		return true
	}
	return false
}

// CanMoveTo reports whether a bid may move from s to next. Bids go
// draft -> active -> closed, and a draft may be closed without opening.
func (s BidStatus) CanMoveTo(next BidStatus) bool {
	switch s {
	case BidStatusDraft:
		return next == BidStatusActive || next == BidStatusClosed
	case BidStatusActive:
		return next == BidStatusClosed
	}
	return false
}

type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Bid struct {
	ID             int64      `json:"id"`
	OrganizationID int64      `json:"organization_id"`
	Title          string     `json:"title"`
	Status         BidStatus  `json:"status"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type BidCreateRequest struct {
	OrganizationID int64      `json:"-"`
	Title          string     `json:"title"`
	DueDate        *time.Time `json:"due_date,omitempty"`
}

func (r BidCreateRequest) Validate() error {
	if r.OrganizationID <= 0 {
		return errors.New("organization is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	return nil
}

type Carrier struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

type CarrierCreateRequest struct {
	OrganizationID int64  `json:"-"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
}

func (r CarrierCreateRequest) Validate() error {
	if r.OrganizationID <= 0 {
		return errors.New("organization is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(r.Email) == "" && strings.TrimSpace(r.Phone) == "" {
		return errors.New("email or phone is required")
	}
	return nil
}
