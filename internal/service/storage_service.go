package service

import (
	"context"
	"fmt"

	"docflow/internal/model"
	"docflow/internal/repository"
	"docflow/internal/storage"

	"go.uber.org/zap"
)

// StorageService computes the derived inventory snapshot. The snapshot is
// a pure function of the current document set and is recomputed on every
// read; no state is cached between requests.
type StorageService interface {
	Snapshot(ctx context.Context) (storage.Snapshot, error)
	ProductInfo(ctx context.Context, productName string) (storage.Info, error)
}

type storageService struct {
	productRepo repository.ProductRepository
	docRepo     repository.DocumentRepository
	logger      *zap.Logger
}

func NewStorageService(productRepo repository.ProductRepository, docRepo repository.DocumentRepository, logger *zap.Logger) StorageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &storageService{productRepo: productRepo, docRepo: docRepo, logger: logger}
}

func (s *storageService) Snapshot(ctx context.Context) (storage.Snapshot, error) {
	names, err := s.productRepo.ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list product names: %w", err)
	}

	payments, err := s.docRepo.ListForAggregation(ctx, model.DocTypePayment)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment documents: %w", err)
	}
	receipts, err := s.docRepo.ListForAggregation(ctx, model.DocTypeReceipt)
	if err != nil {
		return nil, fmt.Errorf("failed to load receipt documents: %w", err)
	}
	deliveries, err := s.docRepo.ListForAggregation(ctx, model.DocTypeDelivery)
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery documents: %w", err)
	}

	snapshot, orphans := storage.ComputeSnapshot(names, payments, receipts, deliveries)
	if orphans > 0 {
		// Line items referencing deleted products are dropped from the
		// snapshot; surfaced here only as a diagnostic.
		s.logger.Debug("storage snapshot skipped orphaned line items",
			zap.Int("orphaned_lines", orphans))
	}

	return snapshot, nil
}

func (s *storageService) ProductInfo(ctx context.Context, productName string) (storage.Info, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return storage.Info{}, err
	}
	return snapshot[productName], nil
}
