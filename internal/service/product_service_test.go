package service

import (
	"bytes"
	"context"
	"testing"

	"docflow/internal/model"
	"docflow/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func newProductService(t *testing.T, db *gorm.DB) ProductService {
	t.Helper()
	productRepo := repository.NewProductRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	return NewProductService(
		repository.NewTransactionManager(db),
		productRepo,
		docRepo,
		repository.NewAuditRepository(db),
		NewStorageService(productRepo, docRepo, nil),
		nil,
	)
}

func TestProductUniqueness(t *testing.T) {
	db := newTestDB(t)
	svc := newProductService(t, db)
	ctx := context.Background()

	admin := createTestUser(t, db, "admin", model.RoleAdmin)

	_, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "bolt", Code: "B-1"}, admin.ID.String())
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, CreateProductRequest{Name: "bolt", Code: "B-2"}, admin.ID.String())
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = svc.CreateProduct(ctx, CreateProductRequest{Name: "nut", Code: "B-1"}, admin.ID.String())
	assert.ErrorIs(t, err, ErrDuplicateCode)
}

func TestProductRenameRecordsHistory(t *testing.T) {
	db := newTestDB(t)
	svc := newProductService(t, db)
	ctx := context.Background()

	admin := createTestUser(t, db, "admin", model.RoleAdmin)

	created, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "bolt", Code: "B-1"}, admin.ID.String())
	require.NoError(t, err)

	renamed, err := svc.UpdateProduct(ctx, created.ID, UpdateProductRequest{Name: "hex bolt", Code: "B-1X"}, admin.ID.String())
	require.NoError(t, err)

	assert.Equal(t, "hex bolt", renamed.Name)
	assert.Equal(t, "bolt", renamed.OriginalName)
	assert.Equal(t, []string{"bolt"}, renamed.PreviousNames)
	assert.Equal(t, []string{"B-1"}, renamed.PreviousCodes)
	require.Len(t, renamed.ChangeHistory, 2)
	assert.Equal(t, "name", renamed.ChangeHistory[0].Field)
	assert.Equal(t, "bolt", renamed.ChangeHistory[0].OldValue)
	assert.Equal(t, "code", renamed.ChangeHistory[1].Field)
}

func TestRenamePropagationAcrossFamilies(t *testing.T) {
	db := newTestDB(t)
	svc := newProductService(t, db)
	ctx := context.Background()

	seedDoc := func(docType string) *model.Document {
		doc := &model.Document{
			Type:   docType,
			Status: model.StatusApproved,
			Title:  docType + " doc",
			Items:  []model.DocumentItem{{ProductName: "bolt", ProductCode: "B-1", Amount: 5}},
		}
		require.NoError(t, db.Create(doc).Error)
		return doc
	}

	purchasing := seedDoc(model.DocTypePurchasing)
	delivery := seedDoc(model.DocTypeDelivery)
	receipt := seedDoc(model.DocTypeReceipt)
	proposal := seedDoc(model.DocTypeProposal)

	// Run the propagation synchronously; the service itself fires it on a
	// goroutine after UpdateProduct commits.
	impl := svc.(*productService)
	impl.propagateRename(ctx, "bolt", "B-1", "hex bolt", "B-1X")

	itemName := func(docID interface{}) string {
		var item model.DocumentItem
		require.NoError(t, db.First(&item, "document_id = ?", docID).Error)
		return item.ProductName
	}

	assert.Equal(t, "hex bolt", itemName(purchasing.ID))
	assert.Equal(t, "hex bolt", itemName(delivery.ID))
	assert.Equal(t, "hex bolt", itemName(receipt.ID))
	// Proposals are outside the propagated families.
	assert.Equal(t, "bolt", itemName(proposal.ID))

	var item model.DocumentItem
	require.NoError(t, db.First(&item, "document_id = ?", purchasing.ID).Error)
	assert.Equal(t, "B-1X", item.ProductCode)
}

func TestListProductsMergesStorageSnapshot(t *testing.T) {
	db := newTestDB(t)
	svc := newProductService(t, db)
	ctx := context.Background()

	admin := createTestUser(t, db, "admin", model.RoleAdmin)

	_, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "bolt", Code: "B-1"}, admin.ID.String())
	require.NoError(t, err)

	require.NoError(t, db.Create(&model.Document{
		Type:   model.DocTypeReceipt,
		Status: model.StatusApproved,
		Title:  "receipt",
		Items:  []model.DocumentItem{{ProductName: "bolt", Amount: 7}},
	}).Error)
	require.NoError(t, db.Create(&model.Document{
		Type:   model.DocTypeReceipt,
		Status: model.StatusPending,
		Title:  "receipt pending",
		Items:  []model.DocumentItem{{ProductName: "bolt", Amount: 3}},
	}).Error)

	products, total, err := svc.ListProducts(ctx, 1, 20, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, 7, products[0].InStorage)
	assert.Equal(t, 3, products[0].AboutToTransfer)
}

func TestImportProductsCollectsRowErrors(t *testing.T) {
	db := newTestDB(t)
	svc := newProductService(t, db)
	ctx := context.Background()

	admin := createTestUser(t, db, "admin", model.RoleAdmin)

	result, err := svc.ImportProducts(ctx, []CreateProductRequest{
		{Name: "bolt", Code: "B-1"},
		{Name: "bolt", Code: "B-2"}, // duplicate name
		{Name: "", Code: "B-3"},     // missing name
		{Name: "nut", Code: "N-1"},
	}, admin.ID.String())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, 3, result.Errors[1].Row)
}

func TestExcelRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := newProductService(t, db)
	ctx := context.Background()

	admin := createTestUser(t, db, "admin", model.RoleAdmin)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "name"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "code"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "bolt"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "B-1"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "nut"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "N-1"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	result, err := svc.ImportProductsFile(ctx, buf.Bytes(), admin.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Errors)

	data, err := svc.ExportExcel(ctx)
	require.NoError(t, err)

	exported, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	rows, err := exported.GetRows("Products")
	require.NoError(t, err)
	// Header plus the two imported products.
	require.Len(t, rows, 3)
	assert.Equal(t, "bolt", rows[1][0])
}
