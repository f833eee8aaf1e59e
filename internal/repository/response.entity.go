package repository

import (
	"time"

	"github.com/nimasrn/freight-bids/internal/model"
)

type CarrierResponseEntity struct {
	ID             int64              `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	BidID          int64              `db:"bid_id"          gorm:"column:bid_id;not null;index:idx_carrier_responses_bid_carrier,priority:1"`
	CarrierID      int64              `db:"carrier_id"      gorm:"column:carrier_id;not null;index:idx_carrier_responses_bid_carrier,priority:2"`
	InvitationID   int64              `db:"invitation_id"   gorm:"column:invitation_id;not null;index"`
	ResponderName  string             `db:"responder_name"  gorm:"column:responder_name"`
	ResponderEmail string             `db:"responder_email" gorm:"column:responder_email"`
	SubmittedAt    *time.Time         `db:"submitted_at"    gorm:"column:submitted_at"`
	Version        int                `db:"version"         gorm:"column:version;not null;default:0"`
	RouteCount     int                `db:"route_count"     gorm:"column:route_count;not null;default:0"`
	IsDraft        bool               `db:"is_draft"        gorm:"column:is_draft;not null"`
	CreatedAt      time.Time          `db:"created_at"      gorm:"column:created_at;not null;autoCreateTime"`
	Rates          []*RateEntryEntity `gorm:"foreignKey:ResponseID"`
}

func (CarrierResponseEntity) TableName() string {
	return "carrier_responses"
}

type RateEntryEntity struct {
	ID         int64    `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	ResponseID int64    `db:"response_id" gorm:"column:response_id;not null;index"`
	RouteID    int64    `db:"route_id"    gorm:"column:route_id;not null"`
	Rate       *float64 `db:"rate"        gorm:"column:rate"`
	Currency   string   `db:"currency"    gorm:"column:currency;type:varchar(3);not null"`
	Comment    *string  `db:"comment"     gorm:"column:comment"`
}

func (RateEntryEntity) TableName() string {
	return "response_rates"
}

func toResponseEntity(m *model.CarrierResponse) *CarrierResponseEntity {
	if m == nil {
		return nil
	}
	e := &CarrierResponseEntity{
		ID:             m.ID,
		BidID:          m.BidID,
		CarrierID:      m.CarrierID,
		InvitationID:   m.InvitationID,
		ResponderName:  m.ResponderName,
		ResponderEmail: m.ResponderEmail,
		SubmittedAt:    m.SubmittedAt,
		Version:        m.Version,
		RouteCount:     m.RouteCount,
		IsDraft:        m.IsDraft,
		Rates:          make([]*RateEntryEntity, len(m.Rates)),
	}
	for i, r := range m.Rates {
		e.Rates[i] = &RateEntryEntity{
			ID:         r.ID,
			ResponseID: r.ResponseID,
			RouteID:    r.RouteID,
			Rate:       r.Rate,
			Currency:   r.Currency,
			Comment:    r.Comment,
		}
	}
	return e
}

func toResponseModel(e *CarrierResponseEntity) *model.CarrierResponse {
	if e == nil {
		return nil
	}
	m := &model.CarrierResponse{
		ID:             e.ID,
		BidID:          e.BidID,
		CarrierID:      e.CarrierID,
		InvitationID:   e.InvitationID,
		ResponderName:  e.ResponderName,
		ResponderEmail: e.ResponderEmail,
		SubmittedAt:    e.SubmittedAt,
		Version:        e.Version,
		RouteCount:     e.RouteCount,
		IsDraft:        e.IsDraft,
		Rates:          make([]model.RateEntry, len(e.Rates)),
	}
	for i, r := range e.Rates {
		m.Rates[i] = model.RateEntry{
			ID:         r.ID,
			ResponseID: r.ResponseID,
			RouteID:    r.RouteID,
			Rate:       r.Rate,
			Currency:   r.Currency,
			Comment:    r.Comment,
		}
	}
	return m
}

func toResponseModels(entities []*CarrierResponseEntity) []*model.CarrierResponse {
	models := make([]*model.CarrierResponse, len(entities))
	for i, e := range entities {
		models[i] = toResponseModel(e)
	}
	return models
}
