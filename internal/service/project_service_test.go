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

func newProjectService(t *testing.T, db *gorm.DB) ProjectService {
	t.Helper()
	return NewProjectService(
		repository.NewTransactionManager(db),
		repository.NewProjectRepository(db),
		repository.NewUserRepository(db),
		repository.NewAuditRepository(db),
		nil,
	)
}

func TestProjectPhaseProgression(t *testing.T) {
	db := newTestDB(t)
	svc := newProjectService(t, db)
	ctx := context.Background()

	staff := createTestUser(t, db, "staff", model.RoleStaff)
	approver := createTestUser(t, db, "approver", model.RoleApprover)
	hoa := createTestUser(t, db, "accounting-head", model.RoleHeadOfAccounting)
	director := createTestUser(t, db, "director", model.RoleDirector)

	project, err := svc.CreateProject(ctx, CreateProjectDTO{
		Title: "New warehouse",
		Task:  "Fit out the north hall",
	}, staff.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, project.Proposal.Status)
	assert.Equal(t, model.PhaseStatusLocked, project.Purchasing.Status)
	assert.Equal(t, model.PhaseStatusLocked, project.Payment.Status)

	t.Run("locked phase rejects approval", func(t *testing.T) {
		_, err := svc.ApprovePhase(ctx, project.ID, model.PhasePurchasing, approver.ID.String())
		assert.ErrorIs(t, err, ErrPhaseLocked)
	})

	t.Run("approving proposal unlocks purchasing", func(t *testing.T) {
		updated, err := svc.ApprovePhase(ctx, project.ID, model.PhaseProposal, approver.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, updated.Proposal.Status)
		assert.Equal(t, model.StatusPending, updated.Purchasing.Status)
		assert.Equal(t, model.PhaseStatusLocked, updated.Payment.Status)
	})

	t.Run("approved phase is read-only", func(t *testing.T) {
		_, err := svc.ApprovePhase(ctx, project.ID, model.PhaseProposal, hoa.ID.String())
		assert.ErrorIs(t, err, ErrPhaseReadOnly)

		_, err = svc.UpdatePhaseDetails(ctx, project.ID, model.PhaseProposal, UpdatePhaseDetailsDTO{Task: "changed"}, staff.ID.String())
		assert.ErrorIs(t, err, ErrPhaseReadOnly)
	})

	t.Run("purchasing details compute grand total", func(t *testing.T) {
		updated, err := svc.UpdatePhaseDetails(ctx, project.ID, model.PhasePurchasing, UpdatePhaseDetailsDTO{
			Products: []ProjectLineDTO{
				{ProductName: "bolt", CostPerUnit: 2.5, Amount: 100},
				{ProductName: "nut", CostPerUnit: 1, Amount: 50},
			},
		}, staff.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "300", updated.Purchasing.GrandTotalCost.String())
	})

	_, err = svc.ApprovePhase(ctx, project.ID, model.PhasePurchasing, approver.ID.String())
	require.NoError(t, err)

	t.Run("payment rejects roles outside the quorum", func(t *testing.T) {
		_, err := svc.ApprovePhase(ctx, project.ID, model.PhasePayment, approver.ID.String())
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("payment needs both signatures", func(t *testing.T) {
		partial, err := svc.ApprovePhase(ctx, project.ID, model.PhasePayment, hoa.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.StatusPartiallyApproved, partial.Payment.Status)

		_, err = svc.ApprovePhase(ctx, project.ID, model.PhasePayment, hoa.ID.String())
		assert.ErrorIs(t, err, ErrAlreadyApproved)

		done, err := svc.ApprovePhase(ctx, project.ID, model.PhasePayment, director.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, done.Payment.Status)
	})
}

func TestProjectPaymentQuorumReverseOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newProjectService(t, db)
	ctx := context.Background()

	staff := createTestUser(t, db, "staff", model.RoleStaff)
	hoa := createTestUser(t, db, "accounting-head", model.RoleHeadOfAccounting)
	director := createTestUser(t, db, "director", model.RoleDirector)

	project, err := svc.CreateProject(ctx, CreateProjectDTO{Title: "Reverse order"}, staff.ID.String())
	require.NoError(t, err)

	// Walk the first two phases to unlock payment.
	_, err = svc.ApprovePhase(ctx, project.ID, model.PhaseProposal, hoa.ID.String())
	require.NoError(t, err)
	_, err = svc.ApprovePhase(ctx, project.ID, model.PhasePurchasing, hoa.ID.String())
	require.NoError(t, err)

	partial, err := svc.ApprovePhase(ctx, project.ID, model.PhasePayment, director.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.StatusPartiallyApproved, partial.Payment.Status)

	done, err := svc.ApprovePhase(ctx, project.ID, model.PhasePayment, hoa.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, done.Payment.Status)
	assert.Len(t, done.Payment.ApprovedBy, 2)
}

func TestProjectTitleIsUnique(t *testing.T) {
	db := newTestDB(t)
	svc := newProjectService(t, db)
	ctx := context.Background()

	staff := createTestUser(t, db, "staff", model.RoleStaff)

	_, err := svc.CreateProject(ctx, CreateProjectDTO{Title: "Expansion"}, staff.ID.String())
	require.NoError(t, err)

	_, err = svc.CreateProject(ctx, CreateProjectDTO{Title: "Expansion"}, staff.ID.String())
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestProjectPaymentDetailsLockAfterPartialApproval(t *testing.T) {
	db := newTestDB(t)
	svc := newProjectService(t, db)
	ctx := context.Background()

	staff := createTestUser(t, db, "staff", model.RoleStaff)
	hoa := createTestUser(t, db, "accounting-head", model.RoleHeadOfAccounting)

	project, err := svc.CreateProject(ctx, CreateProjectDTO{Title: "Partial lock"}, staff.ID.String())
	require.NoError(t, err)

	_, err = svc.ApprovePhase(ctx, project.ID, model.PhaseProposal, hoa.ID.String())
	require.NoError(t, err)
	_, err = svc.ApprovePhase(ctx, project.ID, model.PhasePurchasing, hoa.ID.String())
	require.NoError(t, err)

	paid := true
	updated, err := svc.UpdatePhaseDetails(ctx, project.ID, model.PhasePayment, UpdatePhaseDetailsDTO{
		PaymentMethod: "bank transfer",
		AmountOfMoney: 1250.50,
		Paid:          &paid,
	}, staff.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "bank transfer", updated.Payment.PaymentMethod)
	assert.True(t, updated.Payment.Paid)

	_, err = svc.ApprovePhase(ctx, project.ID, model.PhasePayment, hoa.ID.String())
	require.NoError(t, err)

	// One signature in: the phase content is frozen.
	_, err = svc.UpdatePhaseDetails(ctx, project.ID, model.PhasePayment, UpdatePhaseDetailsDTO{
		PaymentMethod: "cash",
	}, staff.ID.String())
	assert.ErrorIs(t, err, ErrPhaseReadOnly)
}
