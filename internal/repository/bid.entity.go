package repository

import (
	"time"

	"github.com/nimasrn/freight-bids/internal/model"
)

type BidEntity struct {
	ID             int64      `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	OrganizationID int64      `db:"organization_id" gorm:"column:organization_id;not null;index"`
	Title          string     `db:"title"           gorm:"column:title;not null"`
	Status         string     `db:"status"          gorm:"column:status;type:varchar(16);not null"`
	DueDate        *time.Time `db:"due_date"        gorm:"column:due_date"`
	CreatedAt      time.Time  `db:"created_at"      gorm:"column:created_at;not null;autoCreateTime"`
}

func (BidEntity) TableName() string {
	return "bids"
}

func toBidEntity(m *model.Bid) *BidEntity {
	if m == nil {
		return nil
	}
	return &BidEntity{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Title:          m.Title,
		Status:         string(m.Status),
		DueDate:        m.DueDate,
		CreatedAt:      m.CreatedAt,
	}
}

func toBidModel(e *BidEntity) *model.Bid {
	if e == nil {
		return nil
	}
	return &model.Bid{
		ID:             e.ID,
		OrganizationID: e.OrganizationID,
		Title:          e.Title,
		Status:         model.BidStatus(e.Status),
		DueDate:        e.DueDate,
		CreatedAt:      e.CreatedAt,
	}
}

func toBidModels(entities []*BidEntity) []*model.Bid {
	models := make([]*model.Bid, len(entities))
	for i, e := range entities {
		models[i] = toBidModel(e)
	}
	return models
}

// BidRouteEntity is the bid/route join row. The composite key keeps each
// pair unique.
type BidRouteEntity struct {
	BidID     int64     `db:"bid_id"     gorm:"primaryKey;autoIncrement:false;column:bid_id"`
	RouteID   int64     `db:"route_id"   gorm:"primaryKey;autoIncrement:false;column:route_id;index"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;not null;autoCreateTime"`
}

func (BidRouteEntity) TableName() string {
	return "bid_routes"
}
