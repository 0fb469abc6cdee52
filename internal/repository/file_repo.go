package repository

import (
	"context"

	"docflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FileRepository interface {
	Create(ctx context.Context, file *model.FileRecord) error
	Update(ctx context.Context, file *model.FileRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FileRecord, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.FileRecord, error)
	List(ctx context.Context, status, category string, page, limit int) ([]model.FileRecord, int64, error)
}

type fileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *model.FileRecord) error {
	return GetDB(ctx, r.db).Create(file).Error
}

func (r *fileRepository) Update(ctx context.Context, file *model.FileRecord) error {
	return GetDB(ctx, r.db).Save(file).Error
}

func (r *fileRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FileRecord, error) {
	var file model.FileRecord
	if err := GetDB(ctx, r.db).Preload("Uploader").First(&file, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.FileRecord, error) {
	db := GetDB(ctx, r.db)
	if db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var file model.FileRecord
	if err := db.First(&file, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) List(ctx context.Context, status, category string, page, limit int) ([]model.FileRecord, int64, error) {
	var files []model.FileRecord
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.FileRecord{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Uploader")
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if category != "" {
		fetchQuery = fetchQuery.Where("category = ?", category)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&files).Error; err != nil {
		return nil, 0, err
	}

	return files, total, nil
}
