package repository

import (
	"strings"
	"time"

	"github.com/nimasrn/freight-bids/internal/model"
)

type InvitationEntity struct {
	ID             int64      `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	BidID          int64      `db:"bid_id"          gorm:"column:bid_id;not null;uniqueIndex:idx_invitations_bid_carrier,priority:1"`
	CarrierID      int64      `db:"carrier_id"      gorm:"column:carrier_id;not null;uniqueIndex:idx_invitations_bid_carrier,priority:2"`
	OrganizationID int64      `db:"organization_id" gorm:"column:organization_id;not null;index"`
	Token          string     `db:"token"           gorm:"column:token;type:varchar(64);not null;uniqueIndex"`
	Status         string     `db:"status"          gorm:"column:status;type:varchar(16);not null"`
	Channels       string     `db:"channels"        gorm:"column:channels;not null"`
	Message        *string    `db:"message"         gorm:"column:message"`
	InvitedAt      time.Time  `db:"invited_at"      gorm:"column:invited_at;not null"`
	DeliveredAt    *time.Time `db:"delivered_at"    gorm:"column:delivered_at"`
	OpenedAt       *time.Time `db:"opened_at"       gorm:"column:opened_at"`
	RespondedAt    *time.Time `db:"responded_at"    gorm:"column:responded_at"`
	RevokedAt      *time.Time `db:"revoked_at"      gorm:"column:revoked_at"`
}

func (InvitationEntity) TableName() string {
	return "invitations"
}

func toInvitationEntity(m *model.Invitation) *InvitationEntity {
	if m == nil {
		return nil
	}
	channels := make([]string, len(m.Channels))
	for i, c := range m.Channels {
		channels[i] = string(c)
	}
	return &InvitationEntity{
		ID:             m.ID,
		BidID:          m.BidID,
		CarrierID:      m.CarrierID,
		OrganizationID: m.OrganizationID,
		Token:          m.Token,
		Status:         m.Status.String(),
		Channels:       strings.Join(channels, ","),
		Message:        m.Message,
		InvitedAt:      m.InvitedAt,
		DeliveredAt:    m.DeliveredAt,
		OpenedAt:       m.OpenedAt,
		RespondedAt:    m.RespondedAt,
		RevokedAt:      m.RevokedAt,
	}
}

func toInvitationModel(e *InvitationEntity) (*model.Invitation, error) {
	if e == nil {
		return nil, nil
	}
	status, err := model.ParseInvitationStatus(e.Status)
	if err != nil {
		return nil, err
	}
	var channels []model.Channel
	for _, c := range strings.Split(e.Channels, ",") {
		if c = strings.TrimSpace(c); c != "" {
			channels = append(channels, model.Channel(c))
		}
	}
	return &model.Invitation{
		ID:             e.ID,
		BidID:          e.BidID,
		CarrierID:      e.CarrierID,
		OrganizationID: e.OrganizationID,
		Token:          e.Token,
		Status:         status,
		Channels:       channels,
		Message:        e.Message,
		InvitedAt:      e.InvitedAt,
		DeliveredAt:    e.DeliveredAt,
		OpenedAt:       e.OpenedAt,
		RespondedAt:    e.RespondedAt,
		RevokedAt:      e.RevokedAt,
	}, nil
}

func toInvitationModels(entities []*InvitationEntity) ([]*model.Invitation, error) {
	models := make([]*model.Invitation, len(entities))
	for i, e := range entities {
		m, err := toInvitationModel(e)
		if err != nil {
			return nil, err
		}
		models[i] = m
	}
	return models, nil
}
