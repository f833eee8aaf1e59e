package repository

import (
	"time"

	"github.com/nimasrn/freight-bids/internal/model"
)

type OrganizationEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	Name      string    `db:"name"       gorm:"column:name;not null"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;not null;autoCreateTime"`
}

func (OrganizationEntity) TableName() string {
	return "organizations"
}

func toOrganizationModel(e *OrganizationEntity) *model.Organization {
	if e == nil {
		return nil
	}
	return &model.Organization{ID: e.ID, Name: e.Name, CreatedAt: e.CreatedAt}
}

type CarrierEntity struct {
	ID             int64     `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	OrganizationID int64     `db:"organization_id" gorm:"column:organization_id;not null;index"`
	Name           string    `db:"name"            gorm:"column:name;not null"`
	Email          string    `db:"email"           gorm:"column:email"`
	Phone          string    `db:"phone"           gorm:"column:phone"`
	Active         bool      `db:"active"          gorm:"column:active;not null"`
	CreatedAt      time.Time `db:"created_at"      gorm:"column:created_at;not null;autoCreateTime"`
}

func (CarrierEntity) TableName() string {
	return "carriers"
}

func toCarrierEntity(m *model.Carrier) *CarrierEntity {
	if m == nil {
		return nil
	}
	return &CarrierEntity{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		Email:          m.Email,
		Phone:          m.Phone,
		Active:         m.Active,
		CreatedAt:      m.CreatedAt,
	}
}

func toCarrierModel(e *CarrierEntity) *model.Carrier {
	if e == nil {
		return nil
	}
	return &model.Carrier{
		ID:             e.ID,
		OrganizationID: e.OrganizationID,
		Name:           e.Name,
		Email:          e.Email,
		Phone:          e.Phone,
		Active:         e.Active,
		CreatedAt:      e.CreatedAt,
	}
}

func toCarrierModels(entities []*CarrierEntity) []*model.Carrier {
	models := make([]*model.Carrier, len(entities))
	for i, e := range entities {
		models[i] = toCarrierModel(e)
	}
	return models
}
