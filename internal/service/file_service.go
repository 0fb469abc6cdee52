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

// FileStore abstracts where archived file bytes live. The default
// deployment keeps only metadata and stores nothing.
type FileStore interface {
	Put(ctx context.Context, name string, data []byte) (ref string, err error)
	Delete(ctx context.Context, ref string) error
}

// noopFileStore discards file bytes and keeps the file name as the
// storage reference.
type noopFileStore struct {
	logger *zap.Logger
}

func NewNoopFileStore(logger *zap.Logger) FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &noopFileStore{logger: logger}
}

func (s *noopFileStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	s.logger.Debug("file store discarding upload", zap.String("name", name), zap.Int("bytes", len(data)))
	return name, nil
}

func (s *noopFileStore) Delete(ctx context.Context, ref string) error {
	s.logger.Debug("file store delete", zap.String("ref", ref))
	return nil
}

// --- DTOs ---

type SubmitFileDTO struct {
	FileName    string   `json:"file_name" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Subcategory string   `json:"subcategory"`
	ViewableBy  []string `json:"viewable_by"`
}

type RejectFileDTO struct {
	Reason string `json:"reason" binding:"required"`
}

type FileFilter struct {
	Status   string
	Category string
	Page     int
	Limit    int
}

type FileResponse struct {
	ID           string     `json:"id"`
	FileName     string     `json:"file_name"`
	Category     string     `json:"category"`
	Subcategory  string     `json:"subcategory,omitempty"`
	Status       string     `json:"status"`
	ViewableBy   []string   `json:"viewable_by"`
	RejectReason string     `json:"reject_reason,omitempty"`
	UploaderName string     `json:"uploader_name,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt    string     `json:"created_at"`
}

// --- Interface ---

type FileService interface {
	SubmitFile(ctx context.Context, req SubmitFileDTO, data []byte, userID string) (FileResponse, error)
	GetFile(ctx context.Context, id string) (FileResponse, error)
	ListFiles(ctx context.Context, filter FileFilter) ([]FileResponse, int64, error)
	ApproveFile(ctx context.Context, id, userID string) (FileResponse, error)
	RejectFile(ctx context.Context, id string, req RejectFileDTO, userID string) (FileResponse, error)
}

type fileService struct {
	txm      repository.TransactionManager
	fileRepo repository.FileRepository
	userRepo repository.UserRepository
	audit    repository.AuditRepository
	store    FileStore
	logger   *zap.Logger
}

func NewFileService(
	txm repository.TransactionManager,
	fileRepo repository.FileRepository,
	userRepo repository.UserRepository,
	audit repository.AuditRepository,
	store FileStore,
	logger *zap.Logger,
) FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NewNoopFileStore(logger)
	}
	return &fileService{txm: txm, fileRepo: fileRepo, userRepo: userRepo, audit: audit, store: store, logger: logger}
}

// --- Implementation ---

func (s *fileService) SubmitFile(ctx context.Context, req SubmitFileDTO, data []byte, userID string) (FileResponse, error) {
	uploader, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return FileResponse{}, fmt.Errorf("uploader lookup: %w", ErrNotFound)
	}

	ref, err := s.store.Put(ctx, req.FileName, data)
	if err != nil {
		return FileResponse{}, fmt.Errorf("failed to store file %q: %w", req.FileName, err)
	}

	file := model.FileRecord{
		FileName:    req.FileName,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		StorageRef:  ref,
		Status:      model.FileStatusPending,
		ViewableBy:  req.ViewableBy,
		UploadedBy:  &uploader.ID,
	}
	if err := s.fileRepo.Create(ctx, &file); err != nil {
		return FileResponse{}, fmt.Errorf("failed to create file record: %w", err)
	}

	return s.reloadFile(ctx, file.ID)
}

func (s *fileService) GetFile(ctx context.Context, id string) (FileResponse, error) {
	fileID, err := uuid.Parse(id)
	if err != nil {
		return FileResponse{}, fmt.Errorf("invalid file id: %w", err)
	}
	return s.reloadFile(ctx, fileID)
}

func (s *fileService) ListFiles(ctx context.Context, filter FileFilter) ([]FileResponse, int64, error) {
	page, limit := filter.Page, filter.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	files, total, err := s.fileRepo.List(ctx, filter.Status, filter.Category, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list files: %w", err)
	}

	result := make([]FileResponse, 0, len(files))
	for i := range files {
		result = append(result, toFileResponse(&files[i]))
	}
	return result, total, nil
}

func (s *fileService) ApproveFile(ctx context.Context, id, userID string) (FileResponse, error) {
	return s.review(ctx, id, userID, model.FileStatusApproved, "")
}

func (s *fileService) RejectFile(ctx context.Context, id string, req RejectFileDTO, userID string) (FileResponse, error) {
	return s.review(ctx, id, userID, model.FileStatusRejected, req.Reason)
}

// review performs the terminal approve/reject transition. A file is
// reviewed at most once; both transitions out of PENDING are final.
func (s *fileService) review(ctx context.Context, id, userID, newStatus, reason string) (FileResponse, error) {
	fileID, err := uuid.Parse(id)
	if err != nil {
		return FileResponse{}, fmt.Errorf("invalid file id: %w", err)
	}

	reviewer, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return FileResponse{}, fmt.Errorf("reviewer lookup: %w", ErrNotFound)
	}

	var storageRef string
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		file, findErr := s.fileRepo.FindByIDForUpdate(txCtx, fileID)
		if findErr != nil {
			return fmt.Errorf("file %s: %w", id, ErrNotFound)
		}

		if file.Status != model.FileStatusPending {
			return fmt.Errorf("file %s is %s: %w", id, file.Status, ErrAlreadyReviewed)
		}

		now := time.Now()
		file.Status = newStatus
		file.RejectReason = reason
		file.ReviewedBy = &reviewer.ID
		file.ReviewedAt = &now
		storageRef = file.StorageRef

		if saveErr := s.fileRepo.Update(txCtx, file); saveErr != nil {
			return fmt.Errorf("failed to update file: %w", saveErr)
		}

		action := model.ActionApproveFile
		payload := map[string]interface{}{"file_name": file.FileName}
		if newStatus == model.FileStatusRejected {
			action = model.ActionRejectFile
			payload["reason"] = reason
		}
		details, _ := json.Marshal(payload)
		entry := model.AuditLog{
			UserID:     &reviewer.ID,
			Action:     action,
			EntityID:   file.ID.String(),
			EntityName: file.FileName,
			Details:    string(details),
		}
		if auditErr := s.audit.Create(txCtx, &entry); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return FileResponse{}, err
	}

	// Rejected files are purged from the store best-effort; the metadata
	// row with the rejection reason is kept.
	if newStatus == model.FileStatusRejected && storageRef != "" {
		if delErr := s.store.Delete(ctx, storageRef); delErr != nil {
			s.logger.Warn("failed to delete rejected file from store",
				zap.String("ref", storageRef), zap.Error(delErr))
		}
	}

	return s.reloadFile(ctx, fileID)
}

func (s *fileService) reloadFile(ctx context.Context, id uuid.UUID) (FileResponse, error) {
	file, err := s.fileRepo.FindByID(ctx, id)
	if err != nil {
		return FileResponse{}, fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	return toFileResponse(file), nil
}

func toFileResponse(file *model.FileRecord) FileResponse {
	resp := FileResponse{
		ID:           file.ID.String(),
		FileName:     file.FileName,
		Category:     file.Category,
		Subcategory:  file.Subcategory,
		Status:       file.Status,
		ViewableBy:   file.ViewableBy,
		RejectReason: file.RejectReason,
		ReviewedAt:   file.ReviewedAt,
		CreatedAt:    file.CreatedAt.Format(time.RFC3339),
	}
	if file.Uploader != nil {
		resp.UploaderName = file.Uploader.Username
	}
	return resp
}
