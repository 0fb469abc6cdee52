package storage

import (
	"testing"

	"docflow/internal/model"

	"github.com/stretchr/testify/assert"
)

func doc(docType, status string, items ...model.DocumentItem) model.Document {
	return model.Document{
		Type:   docType,
		Status: status,
		Items:  items,
	}
}

func item(name string, amount int) model.DocumentItem {
	return model.DocumentItem{ProductName: name, Amount: amount}
}

func TestReceiptsMinusDeliveries(t *testing.T) {
	receipts := []model.Document{doc(model.DocTypeReceipt, model.StatusApproved, item("bolt", 10))}
	deliveries := []model.Document{doc(model.DocTypeDelivery, model.StatusApproved, item("bolt", 4))}

	snapshot, orphans := ComputeSnapshot([]string{"bolt"}, nil, receipts, deliveries)

	assert.Zero(t, orphans)
	assert.Equal(t, Info{InStorage: 6}, snapshot["bolt"])
}

func TestPendingPaymentCountsAsAboutToTransfer(t *testing.T) {
	purchasing := doc(model.DocTypePurchasing, model.StatusApproved, item("bolt", 5))
	payment := doc(model.DocTypePayment, model.StatusPending)
	payment.AppendedPurchasings = []*model.Document{&purchasing}

	snapshot, _ := ComputeSnapshot([]string{"bolt"}, []model.Document{payment}, nil, nil)

	assert.Equal(t, Info{AboutToTransfer: 5}, snapshot["bolt"])
}

func TestApprovedPaymentCountsAsInStorage(t *testing.T) {
	purchasing := doc(model.DocTypePurchasing, model.StatusApproved, item("bolt", 5))
	payment := doc(model.DocTypePayment, model.StatusApproved)
	payment.AppendedPurchasings = []*model.Document{&purchasing}

	snapshot, _ := ComputeSnapshot([]string{"bolt"}, []model.Document{payment}, nil, nil)

	assert.Equal(t, Info{InStorage: 5}, snapshot["bolt"])
}

func TestStagedDocumentNeedsEveryStageApproved(t *testing.T) {
	payment := doc(model.DocTypePayment, model.StatusApproved)
	payment.Stages = []model.DocumentStage{
		{Name: "accounting", Status: model.StatusApproved},
		{Name: "treasury", Status: model.StatusPending},
	}
	purchasing := doc(model.DocTypePurchasing, model.StatusApproved, item("bolt", 5))
	payment.AppendedPurchasings = []*model.Document{&purchasing}

	snapshot, _ := ComputeSnapshot([]string{"bolt"}, []model.Document{payment}, nil, nil)

	// Document status alone is not enough while a stage is open.
	assert.Equal(t, Info{AboutToTransfer: 5}, snapshot["bolt"])
}

func TestPartiallyApprovedReceiptIsNotSettled(t *testing.T) {
	receipts := []model.Document{doc(model.DocTypeReceipt, model.StatusPartiallyApproved, item("bolt", 3))}

	snapshot, _ := ComputeSnapshot([]string{"bolt"}, nil, receipts, nil)

	assert.Equal(t, Info{AboutToTransfer: 3}, snapshot["bolt"])
}

func TestQuantitiesFloorAtZero(t *testing.T) {
	receipts := []model.Document{doc(model.DocTypeReceipt, model.StatusApproved, item("bolt", 4))}
	deliveries := []model.Document{doc(model.DocTypeDelivery, model.StatusApproved, item("bolt", 10))}

	snapshot, _ := ComputeSnapshot([]string{"bolt"}, nil, receipts, deliveries)

	assert.Equal(t, Info{}, snapshot["bolt"])
}

func TestOrphanedLineItemsAreSkippedAndCounted(t *testing.T) {
	receipts := []model.Document{doc(model.DocTypeReceipt, model.StatusApproved,
		item("bolt", 10), item("deleted-widget", 3))}

	snapshot, orphans := ComputeSnapshot([]string{"bolt"}, nil, receipts, nil)

	assert.Equal(t, 1, orphans)
	assert.Equal(t, Info{InStorage: 10}, snapshot["bolt"])
	_, exists := snapshot["deleted-widget"]
	assert.False(t, exists)
}

func TestEmptyRegistryYieldsEmptySnapshot(t *testing.T) {
	receipts := []model.Document{doc(model.DocTypeReceipt, model.StatusApproved, item("bolt", 10))}

	snapshot, orphans := ComputeSnapshot(nil, nil, receipts, nil)

	assert.Empty(t, snapshot)
	assert.Equal(t, 1, orphans)
}
