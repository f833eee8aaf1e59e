package model

import (
	"errors"
	"strings"
	"time"
)

type EquipmentType string

const (
	EquipmentDryVan  EquipmentType = "Dry Van"
	EquipmentReefer  EquipmentType = "Reefer"
	EquipmentFlatbed EquipmentType = "Flatbed"
)

// ParseEquipmentType maps free-form equipment text onto the known set by
// case-insensitive substring. Anything unrecognised becomes Dry Van.
func ParseEquipmentType(s string) EquipmentType {
	l := strings.ToLower(s)
	switch {
	case strings.Contains(l, "dry"), strings.Contains(l, "van"):
		return EquipmentDryVan
	case strings.Contains(l, "reefer"):
		return EquipmentReefer
	case strings.Contains(l, "flat"), strings.Contains(l, "bed"):
		return EquipmentFlatbed
	}
	return EquipmentDryVan
}

type Route struct {
	ID              int64         `json:"id"`
	OrganizationID  int64         `json:"organization_id"`
	OriginCity      string        `json:"origin_city"`
	DestinationCity string        `json:"destination_city"`
	Equipment       EquipmentType `json:"equipment_type"`
	Commodity       string        `json:"commodity"`
	WeeklyVolume    int           `json:"weekly_volume"`
	Distance        float64       `json:"distance"`
	Deleted         bool          `json:"is_deleted"`
	DeletedAt       *time.Time    `json:"deleted_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

type RouteCreateRequest struct {
	OrganizationID  int64   `json:"-"`
	OriginCity      string  `json:"origin_city"`
	DestinationCity string  `json:"destination_city"`
	Equipment       string  `json:"equipment_type"`
	Commodity       string  `json:"commodity"`
	WeeklyVolume    int     `json:"weekly_volume"`
	Distance        float64 `json:"distance"`
}

func (r RouteCreateRequest) Validate() error {
	if r.OrganizationID <= 0 {
		return errors.New("organization is required")
	}
	if strings.TrimSpace(r.OriginCity) == "" {
		return errors.New("origin city is required")
	}
	if strings.TrimSpace(r.DestinationCity) == "" {
		return errors.New("destination city is required")
	}
	if r.WeeklyVolume < 0 {
		return errors.New("weekly volume cannot be negative")
	}
	if r.Distance < 0 {
		return errors.New("distance cannot be negative")
	}
	return nil
}
