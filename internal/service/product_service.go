package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"docflow/internal/model"
	"docflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- DTOs ---

type CreateProductRequest struct {
	Name       string `json:"name" binding:"required"`
	Code       string `json:"code" binding:"required"`
	CostCenter string `json:"cost_center"`
	Unit       string `json:"unit"`
	Note       string `json:"note"`
}

type UpdateProductRequest struct {
	Name       string `json:"name"`
	Code       string `json:"code"`
	CostCenter string `json:"cost_center"`
	Unit       string `json:"unit"`
	Note       string `json:"note"`
}

type ProductResponse struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Code            string               `json:"code"`
	OriginalName    string               `json:"original_name"`
	OriginalCode    string               `json:"original_code"`
	PreviousNames   []string             `json:"previous_names"`
	PreviousCodes   []string             `json:"previous_codes"`
	ChangeHistory   []model.ChangeRecord `json:"change_history"`
	CostCenter      string               `json:"cost_center,omitempty"`
	Unit            string               `json:"unit,omitempty"`
	Note            string               `json:"note,omitempty"`
	InStorage       int                  `json:"in_storage"`
	AboutToTransfer int                  `json:"about_to_transfer"`
	CreatedAt       string               `json:"created_at"`
}

type ImportError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	Imported int           `json:"imported"`
	Errors   []ImportError `json:"errors"`
}

// --- Interface ---

type ProductService interface {
	CreateProduct(ctx context.Context, req CreateProductRequest, userID string) (ProductResponse, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest, userID string) (ProductResponse, error)
	DeleteProduct(ctx context.Context, id string, userID string) error
	GetProduct(ctx context.Context, id string) (ProductResponse, error)
	ListProducts(ctx context.Context, page, limit int, search string) ([]ProductResponse, int64, error)
	ImportProducts(ctx context.Context, rows []CreateProductRequest, userID string) (ImportResult, error)
	ImportProductsFile(ctx context.Context, file []byte, userID string) (ImportResult, error)
	ExportExcel(ctx context.Context) ([]byte, error)
}

type productService struct {
	txm         repository.TransactionManager
	productRepo repository.ProductRepository
	docRepo     repository.DocumentRepository
	audit       repository.AuditRepository
	storage     StorageService
	logger      *zap.Logger
}

func NewProductService(
	txm repository.TransactionManager,
	productRepo repository.ProductRepository,
	docRepo repository.DocumentRepository,
	audit repository.AuditRepository,
	storageService StorageService,
	logger *zap.Logger,
) ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &productService{
		txm:         txm,
		productRepo: productRepo,
		docRepo:     docRepo,
		audit:       audit,
		storage:     storageService,
		logger:      logger,
	}
}

// --- Implementation ---

func (s *productService) CreateProduct(ctx context.Context, req CreateProductRequest, userID string) (ProductResponse, error) {
	if _, err := s.productRepo.FindByName(ctx, req.Name); err == nil {
		return ProductResponse{}, fmt.Errorf("product name %q: %w", req.Name, ErrDuplicateName)
	}
	if _, err := s.productRepo.FindByCode(ctx, req.Code); err == nil {
		return ProductResponse{}, fmt.Errorf("product code %q: %w", req.Code, ErrDuplicateCode)
	}

	product := model.Product{
		Name:       req.Name,
		Code:       req.Code,
		CostCenter: req.CostCenter,
		Unit:       req.Unit,
		Note:       req.Note,
	}

	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.productRepo.Create(txCtx, &product); createErr != nil {
			return fmt.Errorf("failed to create product: %w", createErr)
		}
		return s.writeProductAudit(txCtx, userID, model.ActionCreateProduct, &product, map[string]interface{}{
			"name": product.Name,
			"code": product.Code,
		})
	})
	if err != nil {
		return ProductResponse{}, err
	}

	return s.toResponse(ctx, &product), nil
}

// UpdateProduct applies a rename. The product row is the authoritative
// write; line-item synchronization across document families runs
// afterwards, asynchronously and best-effort.
func (s *productService) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest, userID string) (ProductResponse, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, fmt.Errorf("invalid product id: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return ProductResponse{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}

	oldName, oldCode := product.Name, product.Code
	now := time.Now()
	var changes []model.ChangeRecord

	if req.Name != "" && req.Name != product.Name {
		if _, dupErr := s.productRepo.FindByName(ctx, req.Name); dupErr == nil {
			return ProductResponse{}, fmt.Errorf("product name %q: %w", req.Name, ErrDuplicateName)
		}
		changes = append(changes, model.ChangeRecord{
			Field: "name", OldValue: product.Name, NewValue: req.Name, ChangedAt: now, ChangedBy: userID,
		})
		product.PreviousNames = append(product.PreviousNames, product.Name)
		product.Name = req.Name
	}
	if req.Code != "" && req.Code != product.Code {
		if _, dupErr := s.productRepo.FindByCode(ctx, req.Code); dupErr == nil {
			return ProductResponse{}, fmt.Errorf("product code %q: %w", req.Code, ErrDuplicateCode)
		}
		changes = append(changes, model.ChangeRecord{
			Field: "code", OldValue: product.Code, NewValue: req.Code, ChangedAt: now, ChangedBy: userID,
		})
		product.PreviousCodes = append(product.PreviousCodes, product.Code)
		product.Code = req.Code
	}
	if req.CostCenter != "" {
		product.CostCenter = req.CostCenter
	}
	if req.Unit != "" {
		product.Unit = req.Unit
	}
	if req.Note != "" {
		product.Note = req.Note
	}
	product.ChangeHistory = append(product.ChangeHistory, changes...)

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if saveErr := s.productRepo.Update(txCtx, product); saveErr != nil {
			return fmt.Errorf("failed to update product: %w", saveErr)
		}
		if len(changes) == 0 {
			return nil
		}
		details, _ := json.Marshal(changes)
		return s.writeProductAudit(txCtx, userID, model.ActionRenameProduct, product, map[string]interface{}{
			"changes": string(details),
		})
	})
	if err != nil {
		return ProductResponse{}, err
	}

	// The rename itself is committed; line-item sync must not fail it.
	if len(changes) > 0 {
		go s.propagateRename(context.Background(), oldName, oldCode, product.Name, product.Code)
	}

	return s.toResponse(ctx, product), nil
}

// propagateRename pushes a product rename into every matching line item
// of the Purchasing, Delivery and Receipt families. Each family's update
// is independent; a failure is logged and the remaining families are
// still attempted. Nothing here is ever surfaced to the caller.
func (s *productService) propagateRename(ctx context.Context, oldName, oldCode, newName, newCode string) {
	families := []string{model.DocTypePurchasing, model.DocTypeDelivery, model.DocTypeReceipt}
	for _, family := range families {
		if newName != oldName {
			if err := s.docRepo.RenameItemsByName(ctx, family, oldName, newName); err != nil {
				s.logger.Error("rename propagation by name failed",
					zap.String("family", family),
					zap.String("old_name", oldName),
					zap.String("new_name", newName),
					zap.Error(err))
			}
		}
		if newCode != oldCode {
			if err := s.docRepo.RenameItemsByCode(ctx, family, oldCode, newCode, newName); err != nil {
				s.logger.Error("rename propagation by code failed",
					zap.String("family", family),
					zap.String("old_code", oldCode),
					zap.String("new_code", newCode),
					zap.Error(err))
			}
		}
	}
}

func (s *productService) DeleteProduct(ctx context.Context, id string, userID string) error {
	productID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid product id: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}

	return s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.productRepo.Delete(txCtx, productID); delErr != nil {
			return fmt.Errorf("failed to delete product: %w", delErr)
		}
		return s.writeProductAudit(txCtx, userID, model.ActionDeleteProduct, product, map[string]interface{}{
			"name": product.Name,
			"code": product.Code,
		})
	})
}

func (s *productService) GetProduct(ctx context.Context, id string) (ProductResponse, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, fmt.Errorf("invalid product id: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return ProductResponse{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}

	return s.toResponse(ctx, product), nil
}

func (s *productService) ListProducts(ctx context.Context, page, limit int, search string) ([]ProductResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	products, total, err := s.productRepo.List(ctx, page, limit, search)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	snapshot, err := s.storage.Snapshot(ctx)
	if err != nil {
		return nil, 0, err
	}

	result := make([]ProductResponse, 0, len(products))
	for i := range products {
		resp := mapProduct(&products[i])
		info := snapshot[products[i].Name]
		resp.InStorage = info.InStorage
		resp.AboutToTransfer = info.AboutToTransfer
		result = append(result, resp)
	}
	return result, total, nil
}

// ImportProducts creates products in bulk. Rows fail independently; the
// result reports how many were created alongside per-row errors.
func (s *productService) ImportProducts(ctx context.Context, rows []CreateProductRequest, userID string) (ImportResult, error) {
	result := ImportResult{Errors: []ImportError{}}

	for i, row := range rows {
		if row.Name == "" || row.Code == "" {
			result.Errors = append(result.Errors, ImportError{Row: i + 1, Message: "name and code are required"})
			continue
		}
		if _, err := s.CreateProduct(ctx, row, userID); err != nil {
			result.Errors = append(result.Errors, ImportError{Row: i + 1, Message: err.Error()})
			continue
		}
		result.Imported++
	}

	details, _ := json.Marshal(map[string]interface{}{
		"imported": result.Imported,
		"failed":   len(result.Errors),
	})
	entry := model.AuditLog{
		UserID:   parseUserID(userID),
		Action:   model.ActionImportProducts,
		EntityID: "bulk",
		Details:  string(details),
	}
	if err := s.audit.Create(ctx, &entry); err != nil {
		s.logger.Error("failed to write import audit log", zap.Error(err))
	}

	return result, nil
}

// --- Helpers ---

func (s *productService) toResponse(ctx context.Context, product *model.Product) ProductResponse {
	resp := mapProduct(product)
	info, err := s.storage.ProductInfo(ctx, product.Name)
	if err != nil {
		// The product itself is the primary answer; storage numbers are
		// derived and can be fetched again.
		s.logger.Warn("failed to compute storage info", zap.String("product", product.Name), zap.Error(err))
		return resp
	}
	resp.InStorage = info.InStorage
	resp.AboutToTransfer = info.AboutToTransfer
	return resp
}

func (s *productService) writeProductAudit(ctx context.Context, userID, action string, product *model.Product, payload map[string]interface{}) error {
	details, _ := json.Marshal(payload)
	entry := model.AuditLog{
		UserID:     parseUserID(userID),
		Action:     action,
		EntityID:   product.ID.String(),
		EntityName: product.Name,
		Details:    string(details),
	}
	if err := s.audit.Create(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func parseUserID(userID string) *uuid.UUID {
	if parsed, err := uuid.Parse(userID); err == nil {
		return &parsed
	}
	return nil
}

func mapProduct(product *model.Product) ProductResponse {
	return ProductResponse{
		ID:            product.ID.String(),
		Name:          product.Name,
		Code:          product.Code,
		OriginalName:  product.OriginalName,
		OriginalCode:  product.OriginalCode,
		PreviousNames: product.PreviousNames,
		PreviousCodes: product.PreviousCodes,
		ChangeHistory: product.ChangeHistory,
		CostCenter:    product.CostCenter,
		Unit:          product.Unit,
		Note:          product.Note,
		CreatedAt:     product.CreatedAt.Format(time.RFC3339),
	}
}
