package repository

import (
	"context"

	"docflow/internal/model"

	"gorm.io/gorm"
)

type CostCenterRepository interface {
	Create(ctx context.Context, cc *model.CostCenter) error
	Update(ctx context.Context, cc *model.CostCenter) error
	Delete(ctx context.Context, name string) error
	FindByName(ctx context.Context, name string) (*model.CostCenter, error)
	List(ctx context.Context, page, limit int) ([]model.CostCenter, int64, error)
}

type costCenterRepository struct {
	db *gorm.DB
}

func NewCostCenterRepository(db *gorm.DB) CostCenterRepository {
	return &costCenterRepository{db: db}
}

func (r *costCenterRepository) Create(ctx context.Context, cc *model.CostCenter) error {
	return GetDB(ctx, r.db).Create(cc).Error
}

func (r *costCenterRepository) Update(ctx context.Context, cc *model.CostCenter) error {
	return GetDB(ctx, r.db).Save(cc).Error
}

func (r *costCenterRepository) Delete(ctx context.Context, name string) error {
	return GetDB(ctx, r.db).Where("name = ?", name).Delete(&model.CostCenter{}).Error
}

func (r *costCenterRepository) FindByName(ctx context.Context, name string) (*model.CostCenter, error) {
	var cc model.CostCenter
	if err := GetDB(ctx, r.db).Where("name = ?", name).First(&cc).Error; err != nil {
		return nil, err
	}
	return &cc, nil
}

func (r *costCenterRepository) List(ctx context.Context, page, limit int) ([]model.CostCenter, int64, error) {
	var centers []model.CostCenter
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.CostCenter{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name").Offset(offset).Limit(limit).Find(&centers).Error; err != nil {
		return nil, 0, err
	}

	return centers, total, nil
}
