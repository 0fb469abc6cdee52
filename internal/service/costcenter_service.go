package service

import (
	"context"
	"fmt"

	"docflow/internal/model"
	"docflow/internal/repository"
)

type CostCenterDTO struct {
	Name         string   `json:"name" binding:"required"`
	AllowedUsers []string `json:"allowed_users"`
}

type CostCenterResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	AllowedUsers []string `json:"allowed_users"`
}

type CostCenterService interface {
	CreateCostCenter(ctx context.Context, req CostCenterDTO) (CostCenterResponse, error)
	UpdateCostCenter(ctx context.Context, name string, req CostCenterDTO) (CostCenterResponse, error)
	DeleteCostCenter(ctx context.Context, name string) error
	GetCostCenter(ctx context.Context, name string) (CostCenterResponse, error)
	ListCostCenters(ctx context.Context, page, limit int) ([]CostCenterResponse, int64, error)
	// CheckAccess reports whether username may create documents under the
	// named cost center. An unknown cost center denies access outright.
	CheckAccess(ctx context.Context, name, username string) error
}

type costCenterService struct {
	ccRepo repository.CostCenterRepository
}

func NewCostCenterService(ccRepo repository.CostCenterRepository) CostCenterService {
	return &costCenterService{ccRepo: ccRepo}
}

func (s *costCenterService) CreateCostCenter(ctx context.Context, req CostCenterDTO) (CostCenterResponse, error) {
	if _, err := s.ccRepo.FindByName(ctx, req.Name); err == nil {
		return CostCenterResponse{}, fmt.Errorf("cost center %q: %w", req.Name, ErrDuplicateName)
	}

	cc := model.CostCenter{
		Name:         req.Name,
		AllowedUsers: req.AllowedUsers,
	}
	if err := s.ccRepo.Create(ctx, &cc); err != nil {
		return CostCenterResponse{}, fmt.Errorf("failed to create cost center: %w", err)
	}
	return toCostCenterResponse(&cc), nil
}

func (s *costCenterService) UpdateCostCenter(ctx context.Context, name string, req CostCenterDTO) (CostCenterResponse, error) {
	cc, err := s.ccRepo.FindByName(ctx, name)
	if err != nil {
		return CostCenterResponse{}, fmt.Errorf("cost center %q: %w", name, ErrNotFound)
	}

	if req.Name != "" && req.Name != cc.Name {
		if _, dupErr := s.ccRepo.FindByName(ctx, req.Name); dupErr == nil {
			return CostCenterResponse{}, fmt.Errorf("cost center %q: %w", req.Name, ErrDuplicateName)
		}
		cc.Name = req.Name
	}
	cc.AllowedUsers = req.AllowedUsers

	if err := s.ccRepo.Update(ctx, cc); err != nil {
		return CostCenterResponse{}, fmt.Errorf("failed to update cost center: %w", err)
	}
	return toCostCenterResponse(cc), nil
}

func (s *costCenterService) DeleteCostCenter(ctx context.Context, name string) error {
	if _, err := s.ccRepo.FindByName(ctx, name); err != nil {
		return fmt.Errorf("cost center %q: %w", name, ErrNotFound)
	}
	if err := s.ccRepo.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to delete cost center: %w", err)
	}
	return nil
}

func (s *costCenterService) GetCostCenter(ctx context.Context, name string) (CostCenterResponse, error) {
	cc, err := s.ccRepo.FindByName(ctx, name)
	if err != nil {
		return CostCenterResponse{}, fmt.Errorf("cost center %q: %w", name, ErrNotFound)
	}
	return toCostCenterResponse(cc), nil
}

func (s *costCenterService) ListCostCenters(ctx context.Context, page, limit int) ([]CostCenterResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	centers, total, err := s.ccRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cost centers: %w", err)
	}

	result := make([]CostCenterResponse, 0, len(centers))
	for i := range centers {
		result = append(result, toCostCenterResponse(&centers[i]))
	}
	return result, total, nil
}

func (s *costCenterService) CheckAccess(ctx context.Context, name, username string) error {
	cc, err := s.ccRepo.FindByName(ctx, name)
	if err != nil {
		return fmt.Errorf("cost center %q: %w", name, ErrNotFound)
	}
	if !cc.Allows(username) {
		return fmt.Errorf("user %s on cost center %q: %w", username, name, ErrCostCenterDenied)
	}
	return nil
}

func toCostCenterResponse(cc *model.CostCenter) CostCenterResponse {
	return CostCenterResponse{
		ID:           cc.ID.String(),
		Name:         cc.Name,
		AllowedUsers: cc.AllowedUsers,
	}
}
