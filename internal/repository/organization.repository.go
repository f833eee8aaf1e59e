package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/freight-bids/internal/model"
	"github.com/nimasrn/freight-bids/pkg/pg"
	"gorm.io/gorm"
)

type OrganizationRepository struct {
	*pg.DB
}

func NewOrganizationRepository(db *pg.DB) *OrganizationRepository {
	return &OrganizationRepository{
		db,
	}
}

func (r *OrganizationRepository) Create(ctx context.Context, name string) (*model.Organization, error) {
	entity := &OrganizationEntity{Name: name}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toOrganizationModel(entity), nil
}

func (r *OrganizationRepository) Get(ctx context.Context, id int64) (*model.Organization, error) {
	var entity OrganizationEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}
	return toOrganizationModel(&entity), nil
}
