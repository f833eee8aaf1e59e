package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEquipmentType(t *testing.T) {
	cases := map[string]EquipmentType{
		"Dry Van":       EquipmentDryVan,
		"dry":           EquipmentDryVan,
		"53' VAN":       EquipmentDryVan,
		"Reefer":        EquipmentReefer,
		"REEFER 53":     EquipmentReefer,
		"Flatbed":       EquipmentFlatbed,
		"flat deck":     EquipmentFlatbed,
		"step bed":      EquipmentFlatbed,
		"Spaceship":     EquipmentDryVan,
		"":              EquipmentDryVan,
		"  dry   van  ": EquipmentDryVan,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseEquipmentType(in), "input %q", in)
	}
}

func TestRouteCreateRequest_Validate(t *testing.T) {
	ok := RouteCreateRequest{OrganizationID: 1, OriginCity: "Chicago", DestinationCity: "Dallas", WeeklyVolume: 4}
	assert.NoError(t, ok.Validate())

	missing := ok
	missing.DestinationCity = " "
	assert.EqualError(t, missing.Validate(), "destination city is required")

	negative := ok
	negative.Distance = -1
	assert.Error(t, negative.Validate())
}

func TestBidStatus_CanMoveTo(t *testing.T) {
	assert.True(t, BidStatusDraft.CanMoveTo(BidStatusActive))
	assert.True(t, BidStatusDraft.CanMoveTo(BidStatusClosed))
	assert.True(t, BidStatusActive.CanMoveTo(BidStatusClosed))
	assert.False(t, BidStatusActive.CanMoveTo(BidStatusDraft))
	assert.False(t, BidStatusClosed.CanMoveTo(BidStatusActive))
}
