package repository

import (
	"time"

	"github.com/nimasrn/freight-bids/internal/model"
)

type RouteEntity struct {
	ID              int64      `db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	OrganizationID  int64      `db:"organization_id"  gorm:"column:organization_id;not null;index"`
	OriginCity      string     `db:"origin_city"      gorm:"column:origin_city;not null"`
	DestinationCity string     `db:"destination_city" gorm:"column:destination_city;not null"`
	EquipmentType   string     `db:"equipment_type"   gorm:"column:equipment_type;not null"`
	Commodity       string     `db:"commodity"        gorm:"column:commodity"`
	WeeklyVolume    int        `db:"weekly_volume"    gorm:"column:weekly_volume;not null;default:0"`
	Distance        float64    `db:"distance"         gorm:"column:distance;not null;default:0"`
	IsDeleted       bool       `db:"is_deleted"       gorm:"column:is_deleted;not null;index"`
	DeletedAt       *time.Time `db:"deleted_at"       gorm:"column:deleted_at"`
	CreatedAt       time.Time  `db:"created_at"       gorm:"column:created_at;not null;autoCreateTime"`
}

func (RouteEntity) TableName() string {
	return "routes"
}

func toRouteEntity(m *model.Route) *RouteEntity {
	if m == nil {
		return nil
	}
	return &RouteEntity{
		ID:              m.ID,
		OrganizationID:  m.OrganizationID,
		OriginCity:      m.OriginCity,
		DestinationCity: m.DestinationCity,
		EquipmentType:   string(m.Equipment),
		Commodity:       m.Commodity,
		WeeklyVolume:    m.WeeklyVolume,
		Distance:        m.Distance,
		IsDeleted:       m.Deleted,
		DeletedAt:       m.DeletedAt,
		CreatedAt:       m.CreatedAt,
	}
}

// toRouteModel normalises the stored equipment text; rows written by older
// clients may carry values outside the known set.
func toRouteModel(e *RouteEntity) *model.Route {
	if e == nil {
		return nil
	}
	return &model.Route{
		ID:              e.ID,
		OrganizationID:  e.OrganizationID,
		OriginCity:      e.OriginCity,
		DestinationCity: e.DestinationCity,
		Equipment:       model.ParseEquipmentType(e.EquipmentType),
		Commodity:       e.Commodity,
		WeeklyVolume:    e.WeeklyVolume,
		Distance:        e.Distance,
		Deleted:         e.IsDeleted,
		DeletedAt:       e.DeletedAt,
		CreatedAt:       e.CreatedAt,
	}
}

func toRouteModels(entities []*RouteEntity) []*model.Route {
	models := make([]*model.Route, len(entities))
	for i, e := range entities {
		models[i] = toRouteModel(e)
	}
	return models
}
