package repository

import (
	"context"

	"docflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	Update(ctx context.Context, doc *model.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error)
	// FindByIDForUpdate locks the document row for the duration of the
	// surrounding transaction, closing the read-modify-write window
	// between loading approvedBy and writing the new signature.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Document, error)
	List(ctx context.Context, docType, status string, page, limit int) ([]model.Document, int64, error)
	// ListForAggregation loads all non-suspended documents of one type
	// with everything the storage aggregator folds over.
	ListForAggregation(ctx context.Context, docType string) ([]model.Document, error)
	AppendProposal(ctx context.Context, doc *model.Document, proposal *model.Document) error
	AppendPurchasing(ctx context.Context, doc *model.Document, purchasing *model.Document) error
	RenameItemsByName(ctx context.Context, docType, oldName, newName string) error
	RenameItemsByCode(ctx context.Context, docType, oldCode, newCode, newName string) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	return GetDB(ctx, r.db).Create(doc).Error
}

func (r *documentRepository) Update(ctx context.Context, doc *model.Document) error {
	return GetDB(ctx, r.db).Save(doc).Error
}

func (r *documentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Creator").
		Preload("AppendedProposals").
		Preload("AppendedPurchasings.Items").
		First(&doc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	db := GetDB(ctx, r.db)
	// SQLite (used by the tests) has no row locks; serialization there
	// comes from its single-writer model.
	if db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var doc model.Document
	if err := db.First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) List(ctx context.Context, docType, status string, page, limit int) ([]model.Document, int64, error) {
	var docs []model.Document
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Document{})
	if docType != "" {
		query = query.Where("type = ?", docType)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Items").Preload("Creator")
	if docType != "" {
		fetchQuery = fetchQuery.Where("type = ?", docType)
	}
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&docs).Error; err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

func (r *documentRepository) ListForAggregation(ctx context.Context, docType string) ([]model.Document, error) {
	var docs []model.Document
	err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("AppendedPurchasings.Items").
		Where("type = ? AND status <> ?", docType, model.StatusSuspended).
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepository) AppendProposal(ctx context.Context, doc *model.Document, proposal *model.Document) error {
	return GetDB(ctx, r.db).Model(doc).Association("AppendedProposals").Append(proposal)
}

func (r *documentRepository) AppendPurchasing(ctx context.Context, doc *model.Document, purchasing *model.Document) error {
	return GetDB(ctx, r.db).Model(doc).Association("AppendedPurchasings").Append(purchasing)
}

func (r *documentRepository) RenameItemsByName(ctx context.Context, docType, oldName, newName string) error {
	return GetDB(ctx, r.db).Model(&model.DocumentItem{}).
		Where("product_name = ? AND document_id IN (?)",
			oldName,
			GetDB(ctx, r.db).Model(&model.Document{}).Select("id").Where("type = ?", docType)).
		Update("product_name", newName).Error
}

func (r *documentRepository) RenameItemsByCode(ctx context.Context, docType, oldCode, newCode, newName string) error {
	return GetDB(ctx, r.db).Model(&model.DocumentItem{}).
		Where("product_code = ? AND document_id IN (?)",
			oldCode,
			GetDB(ctx, r.db).Model(&model.Document{}).Select("id").Where("type = ?", docType)).
		Updates(map[string]interface{}{"product_code": newCode, "product_name": newName}).Error
}
