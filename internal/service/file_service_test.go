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

func newFileService(t *testing.T, db *gorm.DB) FileService {
	t.Helper()
	return NewFileService(
		repository.NewTransactionManager(db),
		repository.NewFileRepository(db),
		repository.NewUserRepository(db),
		repository.NewAuditRepository(db),
		nil,
		nil,
	)
}

func TestFileReviewIsFinal(t *testing.T) {
	db := newTestDB(t)
	svc := newFileService(t, db)
	ctx := context.Background()

	staff := createTestUser(t, db, "staff", model.RoleStaff)
	admin := createTestUser(t, db, "admin", model.RoleAdmin)

	submitted, err := svc.SubmitFile(ctx, SubmitFileDTO{
		FileName: "contract.pdf",
		Category: "contracts",
	}, []byte("pdf bytes"), staff.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.FileStatusPending, submitted.Status)
	assert.Equal(t, "staff", submitted.UploaderName)

	approved, err := svc.ApproveFile(ctx, submitted.ID, admin.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.FileStatusApproved, approved.Status)
	assert.NotNil(t, approved.ReviewedAt)

	t.Run("approved file cannot be re-reviewed", func(t *testing.T) {
		_, err := svc.ApproveFile(ctx, submitted.ID, admin.ID.String())
		assert.ErrorIs(t, err, ErrAlreadyReviewed)

		_, err = svc.RejectFile(ctx, submitted.ID, RejectFileDTO{Reason: "late"}, admin.ID.String())
		assert.ErrorIs(t, err, ErrAlreadyReviewed)
	})
}

func TestFileRejectionKeepsReason(t *testing.T) {
	db := newTestDB(t)
	svc := newFileService(t, db)
	ctx := context.Background()

	staff := createTestUser(t, db, "staff", model.RoleStaff)
	admin := createTestUser(t, db, "admin", model.RoleAdmin)

	submitted, err := svc.SubmitFile(ctx, SubmitFileDTO{
		FileName: "invoice.pdf",
		Category: "invoices",
	}, []byte("pdf bytes"), staff.ID.String())
	require.NoError(t, err)

	rejected, err := svc.RejectFile(ctx, submitted.ID, RejectFileDTO{Reason: "wrong amounts"}, admin.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.FileStatusRejected, rejected.Status)
	assert.Equal(t, "wrong amounts", rejected.RejectReason)
}

func TestFileListFilters(t *testing.T) {
	db := newTestDB(t)
	svc := newFileService(t, db)
	ctx := context.Background()

	staff := createTestUser(t, db, "staff", model.RoleStaff)

	for _, category := range []string{"contracts", "contracts", "invoices"} {
		_, err := svc.SubmitFile(ctx, SubmitFileDTO{
			FileName: "f.pdf",
			Category: category,
		}, nil, staff.ID.String())
		require.NoError(t, err)
	}

	files, total, err := svc.ListFiles(ctx, FileFilter{Category: "contracts"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, files, 2)

	files, total, err = svc.ListFiles(ctx, FileFilter{Status: model.FileStatusApproved})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, files)
}
