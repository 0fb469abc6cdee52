package service

import (
	"context"
	"testing"

	"docflow/internal/model"
	"docflow/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDocumentService(t *testing.T, db *gorm.DB) DocumentService {
	t.Helper()
	return NewDocumentService(
		repository.NewTransactionManager(db),
		repository.NewDocumentRepository(db),
		repository.NewUserRepository(db),
		repository.NewCostCenterRepository(db),
		repository.NewAuditRepository(db),
		nil,
	)
}

func TestDocumentApprovalLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := newDocumentService(t, db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", model.RoleApprover)
	bob := createTestUser(t, db, "bob", model.RoleApprover)
	carol := createTestUser(t, db, "carol", model.RoleStaff)

	doc, err := svc.CreateDocument(ctx, CreateDocumentDTO{
		Type:  model.DocTypeReceipt,
		Title: "Receipt March",
		Approvers: []ApproverDTO{
			{Username: "alice"},
			{Username: "bob"},
		},
		Items: []DocumentItemDTO{{ProductName: "bolt", Amount: 10}},
	}, carol.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, doc.Status)
	assert.Equal(t, "carol", doc.CreatorName)

	t.Run("non-listed user cannot approve", func(t *testing.T) {
		_, err := svc.Approve(ctx, doc.ID, carol.ID.String())
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("one listed signature approves", func(t *testing.T) {
		approved, err := svc.Approve(ctx, doc.ID, alice.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, approved.Status)
		require.Len(t, approved.ApprovedBy, 1)
		assert.Equal(t, "alice", approved.ApprovedBy[0].Username)
	})

	t.Run("signing twice is rejected", func(t *testing.T) {
		_, err := svc.Approve(ctx, doc.ID, alice.ID.String())
		assert.ErrorIs(t, err, ErrAlreadyApproved)
	})

	t.Run("second approver can still sign", func(t *testing.T) {
		approved, err := svc.Approve(ctx, doc.ID, bob.ID.String())
		require.NoError(t, err)
		assert.Len(t, approved.ApprovedBy, 2)
	})
}

func TestDocumentSuspendAndReopen(t *testing.T) {
	db := newTestDB(t)
	svc := newDocumentService(t, db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", model.RoleApprover)

	doc, err := svc.CreateDocument(ctx, CreateDocumentDTO{
		Type:      model.DocTypeDelivery,
		Title:     "Delivery north",
		Approvers: []ApproverDTO{{Username: "alice"}},
	}, alice.ID.String())
	require.NoError(t, err)

	_, err = svc.Approve(ctx, doc.ID, alice.ID.String())
	require.NoError(t, err)

	suspended, err := svc.Suspend(ctx, doc.ID, alice.ID.String(), "wrong quantities")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuspended, suspended.Status)
	assert.Equal(t, "wrong quantities", suspended.SuspendReason)
	// Signatures survive the suspension itself.
	assert.Len(t, suspended.ApprovedBy, 1)

	t.Run("suspended document rejects approval", func(t *testing.T) {
		_, err := svc.Approve(ctx, doc.ID, alice.ID.String())
		assert.ErrorIs(t, err, ErrDocumentSuspended)
	})

	t.Run("double suspend is rejected", func(t *testing.T) {
		_, err := svc.Suspend(ctx, doc.ID, alice.ID.String(), "again")
		assert.ErrorIs(t, err, ErrAlreadySuspended)
	})

	t.Run("reopen clears approvals", func(t *testing.T) {
		reopened, err := svc.Reopen(ctx, doc.ID, alice.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, reopened.Status)
		assert.Empty(t, reopened.ApprovedBy)
		assert.Empty(t, reopened.SuspendReason)
	})

	t.Run("reopen of active document is rejected", func(t *testing.T) {
		_, err := svc.Reopen(ctx, doc.ID, alice.ID.String())
		assert.ErrorIs(t, err, ErrNotSuspended)
	})
}

func TestDocumentReferencesRequireApproval(t *testing.T) {
	db := newTestDB(t)
	svc := newDocumentService(t, db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", model.RoleApprover)

	purchasing, err := svc.CreateDocument(ctx, CreateDocumentDTO{
		Type:      model.DocTypePurchasing,
		Title:     "Purchase bolts",
		Approvers: []ApproverDTO{{Username: "alice"}},
		Items:     []DocumentItemDTO{{ProductName: "bolt", Amount: 5}},
	}, alice.ID.String())
	require.NoError(t, err)

	t.Run("pending reference is rejected", func(t *testing.T) {
		_, err := svc.CreateDocument(ctx, CreateDocumentDTO{
			Type:                  model.DocTypePayment,
			Title:                 "Pay bolts",
			AppendedPurchasingIDs: []string{purchasing.ID},
		}, alice.ID.String())
		assert.ErrorIs(t, err, ErrReferenceNotApproved)
	})

	_, err = svc.Approve(ctx, purchasing.ID, alice.ID.String())
	require.NoError(t, err)

	t.Run("approved reference is accepted", func(t *testing.T) {
		payment, err := svc.CreateDocument(ctx, CreateDocumentDTO{
			Type:                  model.DocTypePayment,
			Title:                 "Pay bolts",
			AppendedPurchasingIDs: []string{purchasing.ID},
		}, alice.ID.String())
		require.NoError(t, err)
		require.Len(t, payment.AppendedPurchasings, 1)
		assert.Equal(t, purchasing.ID, payment.AppendedPurchasings[0])
	})

	t.Run("wrong reference family is rejected", func(t *testing.T) {
		_, err := svc.CreateDocument(ctx, CreateDocumentDTO{
			Type:                "GENERIC",
			Title:               "Misuse",
			AppendedProposalIDs: []string{purchasing.ID},
		}, alice.ID.String())
		assert.ErrorIs(t, err, ErrReferenceNotApproved)
	})
}

func TestDocumentCostCenterGate(t *testing.T) {
	db := newTestDB(t)
	svc := newDocumentService(t, db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", model.RoleStaff)
	bob := createTestUser(t, db, "bob", model.RoleStaff)

	require.NoError(t, db.Create(&model.CostCenter{
		Name:         "ops",
		AllowedUsers: []string{"alice"},
	}).Error)
	require.NoError(t, db.Create(&model.CostCenter{Name: "shared"}).Error)

	t.Run("listed user may create", func(t *testing.T) {
		_, err := svc.CreateDocument(ctx, CreateDocumentDTO{
			Type: model.DocTypeProposal, Title: "ok", CostCenter: "ops",
		}, alice.ID.String())
		assert.NoError(t, err)
	})

	t.Run("unlisted user is denied", func(t *testing.T) {
		_, err := svc.CreateDocument(ctx, CreateDocumentDTO{
			Type: model.DocTypeProposal, Title: "denied", CostCenter: "ops",
		}, bob.ID.String())
		assert.ErrorIs(t, err, ErrCostCenterDenied)
	})

	t.Run("empty allowed list is unrestricted", func(t *testing.T) {
		_, err := svc.CreateDocument(ctx, CreateDocumentDTO{
			Type: model.DocTypeProposal, Title: "open", CostCenter: "shared",
		}, bob.ID.String())
		assert.NoError(t, err)
	})

	t.Run("unknown cost center is rejected", func(t *testing.T) {
		_, err := svc.CreateDocument(ctx, CreateDocumentDTO{
			Type: model.DocTypeProposal, Title: "nope", CostCenter: "ghost",
		}, bob.ID.String())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
