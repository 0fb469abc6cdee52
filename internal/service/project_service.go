package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"docflow/internal/approval"
	"docflow/internal/model"
	"docflow/internal/repository"
	ws "docflow/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// --- DTOs ---

type CreateProjectDTO struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Task        string `json:"task"`
	CostCenter  string `json:"cost_center"`
}

type ProjectLineDTO struct {
	ProductName string  `json:"product_name" binding:"required"`
	CostPerUnit float64 `json:"cost_per_unit" binding:"omitempty,min=0"`
	Amount      int     `json:"amount" binding:"omitempty,min=0"`
	VAT         float64 `json:"vat" binding:"omitempty,min=0"`
}

type UpdatePhaseDetailsDTO struct {
	Task          string           `json:"task"`
	CostCenter    string           `json:"cost_center"`
	Products      []ProjectLineDTO `json:"products"`
	PaymentMethod string           `json:"payment_method"`
	AmountOfMoney float64          `json:"amount_of_money"`
	Paid          *bool            `json:"paid"`
}

type ProjectResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Proposal    model.ProposalPhase   `json:"proposal"`
	Purchasing  model.PurchasingPhase `json:"purchasing"`
	Payment     model.PaymentPhase    `json:"payment"`
	CreatorName string                `json:"creator_name,omitempty"`
	CreatedAt   string                `json:"created_at"`
}

// --- Interface ---

type ProjectService interface {
	CreateProject(ctx context.Context, req CreateProjectDTO, userID string) (ProjectResponse, error)
	GetProject(ctx context.Context, id string) (ProjectResponse, error)
	ListProjects(ctx context.Context, page, limit int) ([]ProjectResponse, int64, error)
	ApprovePhase(ctx context.Context, id, phase, userID string) (ProjectResponse, error)
	UpdatePhaseDetails(ctx context.Context, id, phase string, req UpdatePhaseDetailsDTO, userID string) (ProjectResponse, error)
}

type projectService struct {
	txm         repository.TransactionManager
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	audit       repository.AuditRepository
	hub         *ws.Hub
}

func NewProjectService(
	txm repository.TransactionManager,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	audit repository.AuditRepository,
	hub *ws.Hub,
) ProjectService {
	return &projectService{txm: txm, projectRepo: projectRepo, userRepo: userRepo, audit: audit, hub: hub}
}

// --- Implementation ---

func (s *projectService) CreateProject(ctx context.Context, req CreateProjectDTO, userID string) (ProjectResponse, error) {
	creator, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return ProjectResponse{}, fmt.Errorf("creator lookup: %w", ErrNotFound)
	}

	if _, dupErr := s.projectRepo.FindByTitle(ctx, req.Title); dupErr == nil {
		return ProjectResponse{}, fmt.Errorf("project title %q: %w", req.Title, ErrDuplicateName)
	}

	// Only the first phase starts actionable; the rest unlock in order.
	project := model.Project{
		Title:       req.Title,
		Description: req.Description,
		Proposal: datatypes.NewJSONType(model.ProposalPhase{
			Status:     model.StatusPending,
			Task:       req.Task,
			CostCenter: req.CostCenter,
		}),
		Purchasing: datatypes.NewJSONType(model.PurchasingPhase{Status: model.PhaseStatusLocked}),
		Payment:    datatypes.NewJSONType(model.PaymentPhase{Status: model.PhaseStatusLocked}),
		CreatedBy:  &creator.ID,
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.projectRepo.Create(txCtx, &project); createErr != nil {
			return fmt.Errorf("failed to create project: %w", createErr)
		}
		return s.writeAudit(txCtx, &creator.ID, model.ActionCreateProject, project.ID.String(), project.Title, map[string]interface{}{
			"title": project.Title,
		})
	})
	if err != nil {
		return ProjectResponse{}, err
	}

	return s.reload(ctx, project.ID)
}

func (s *projectService) GetProject(ctx context.Context, id string) (ProjectResponse, error) {
	projectID, err := uuid.Parse(id)
	if err != nil {
		return ProjectResponse{}, fmt.Errorf("invalid project id: %w", err)
	}
	return s.reload(ctx, projectID)
}

func (s *projectService) ListProjects(ctx context.Context, page, limit int) ([]ProjectResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	projects, total, err := s.projectRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	result := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		result = append(result, toProjectResponse(&projects[i]))
	}
	return result, total, nil
}

// ApprovePhase collects one signature on a project phase and recomputes
// the phase status under its rule. When the phase reaches APPROVED the
// next phase in the fixed order is unlocked in the same transaction.
func (s *projectService) ApprovePhase(ctx context.Context, id, phase, userID string) (ProjectResponse, error) {
	if !model.ValidPhase(phase) {
		return ProjectResponse{}, fmt.Errorf("unknown phase %q", phase)
	}

	projectID, err := uuid.Parse(id)
	if err != nil {
		return ProjectResponse{}, fmt.Errorf("invalid project id: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return ProjectResponse{}, fmt.Errorf("approver lookup: %w", ErrNotFound)
	}

	rule := approval.ForPhase(phase)
	if !rule.RequiresRole(user.Role) {
		return ProjectResponse{}, fmt.Errorf("role %s on phase %s: %w", user.Role, phase, ErrUnauthorized)
	}

	var newStatus string
	var advanced string
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		project, findErr := s.projectRepo.FindByIDForUpdate(txCtx, projectID)
		if findErr != nil {
			return fmt.Errorf("project %s: %w", id, ErrNotFound)
		}

		status, approvedBy := phaseState(project, phase)
		switch status {
		case model.PhaseStatusLocked:
			return fmt.Errorf("phase %s: %w", phase, ErrPhaseLocked)
		case model.StatusApproved:
			return fmt.Errorf("phase %s: %w", phase, ErrPhaseReadOnly)
		}

		for _, a := range approvedBy {
			if a.Username == user.Username {
				return fmt.Errorf("user %s on phase %s: %w", user.Username, phase, ErrAlreadyApproved)
			}
		}

		approvedBy = append(approvedBy, model.Approval{
			Username:     user.Username,
			Role:         user.Role,
			ApprovalDate: time.Now(),
		})
		newStatus = rule.Status(approvedBy, 0)
		setPhaseState(project, phase, newStatus, approvedBy)

		// Phase N+1 only becomes actionable once phase N is approved.
		if newStatus == model.StatusApproved {
			if next := model.NextPhase(phase); next != "" {
				unlockPhase(project, next)
				advanced = next
				if auditErr := s.writeAudit(txCtx, &user.ID, model.ActionAdvancePhase, project.ID.String(), project.Title, map[string]interface{}{
					"unlocked_phase": next,
				}); auditErr != nil {
					return auditErr
				}
			}
		}

		if saveErr := s.projectRepo.Update(txCtx, project); saveErr != nil {
			return fmt.Errorf("failed to update project: %w", saveErr)
		}

		return s.writeAudit(txCtx, &user.ID, model.ActionApprovePhase, project.ID.String(), project.Title, map[string]interface{}{
			"phase":  phase,
			"status": newStatus,
		})
	})
	if err != nil {
		return ProjectResponse{}, err
	}

	s.hub.BroadcastEvent(ws.EventPhaseApproved, map[string]interface{}{
		"project_id": id,
		"phase":      phase,
		"status":     newStatus,
		"approver":   user.Username,
	})
	if advanced != "" {
		s.hub.BroadcastEvent(ws.EventPhaseAdvanced, map[string]interface{}{
			"project_id": id,
			"phase":      advanced,
		})
	}

	return s.reload(ctx, projectID)
}

// UpdatePhaseDetails mutates a phase's content fields. A phase that has
// collected any sign-off is read-only; details can only change before
// approval starts.
func (s *projectService) UpdatePhaseDetails(ctx context.Context, id, phase string, req UpdatePhaseDetailsDTO, userID string) (ProjectResponse, error) {
	if !model.ValidPhase(phase) {
		return ProjectResponse{}, fmt.Errorf("unknown phase %q", phase)
	}

	projectID, err := uuid.Parse(id)
	if err != nil {
		return ProjectResponse{}, fmt.Errorf("invalid project id: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return ProjectResponse{}, fmt.Errorf("user lookup: %w", ErrNotFound)
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		project, findErr := s.projectRepo.FindByIDForUpdate(txCtx, projectID)
		if findErr != nil {
			return fmt.Errorf("project %s: %w", id, ErrNotFound)
		}

		status, _ := phaseState(project, phase)
		if status == model.StatusApproved || status == model.StatusPartiallyApproved {
			return fmt.Errorf("phase %s: %w", phase, ErrPhaseReadOnly)
		}

		switch phase {
		case model.PhaseProposal:
			data := project.Proposal.Data()
			if req.Task != "" {
				data.Task = req.Task
			}
			if req.CostCenter != "" {
				data.CostCenter = req.CostCenter
			}
			project.Proposal = datatypes.NewJSONType(data)
		case model.PhasePurchasing:
			data := project.Purchasing.Data()
			if req.Products != nil {
				data.Products = nil
				grandTotal := decimal.Zero
				for _, line := range req.Products {
					cost := decimal.NewFromFloat(line.CostPerUnit)
					total := cost.Mul(decimal.NewFromInt(int64(line.Amount)))
					data.Products = append(data.Products, model.ProjectProductLine{
						ProductName: line.ProductName,
						CostPerUnit: cost,
						Amount:      line.Amount,
						VAT:         decimal.NewFromFloat(line.VAT),
						TotalCost:   total,
					})
					grandTotal = grandTotal.Add(total)
				}
				data.GrandTotalCost = grandTotal
			}
			project.Purchasing = datatypes.NewJSONType(data)
		case model.PhasePayment:
			data := project.Payment.Data()
			if req.PaymentMethod != "" {
				data.PaymentMethod = req.PaymentMethod
			}
			if req.AmountOfMoney > 0 {
				data.AmountOfMoney = decimal.NewFromFloat(req.AmountOfMoney)
			}
			if req.Paid != nil {
				data.Paid = *req.Paid
			}
			project.Payment = datatypes.NewJSONType(data)
		}

		if saveErr := s.projectRepo.Update(txCtx, project); saveErr != nil {
			return fmt.Errorf("failed to update project: %w", saveErr)
		}

		return s.writeAudit(txCtx, &user.ID, model.ActionUpdatePhase, project.ID.String(), project.Title, map[string]interface{}{
			"phase": phase,
		})
	})
	if err != nil {
		return ProjectResponse{}, err
	}

	return s.reload(ctx, projectID)
}

// --- Helpers ---

func phaseState(project *model.Project, phase string) (string, []model.Approval) {
	switch phase {
	case model.PhaseProposal:
		data := project.Proposal.Data()
		return data.Status, data.ApprovedBy
	case model.PhasePurchasing:
		data := project.Purchasing.Data()
		return data.Status, data.ApprovedBy
	default:
		data := project.Payment.Data()
		return data.Status, data.ApprovedBy
	}
}

func setPhaseState(project *model.Project, phase, status string, approvedBy []model.Approval) {
	switch phase {
	case model.PhaseProposal:
		data := project.Proposal.Data()
		data.Status = status
		data.ApprovedBy = approvedBy
		project.Proposal = datatypes.NewJSONType(data)
	case model.PhasePurchasing:
		data := project.Purchasing.Data()
		data.Status = status
		data.ApprovedBy = approvedBy
		project.Purchasing = datatypes.NewJSONType(data)
	default:
		data := project.Payment.Data()
		data.Status = status
		data.ApprovedBy = approvedBy
		project.Payment = datatypes.NewJSONType(data)
	}
}

func unlockPhase(project *model.Project, phase string) {
	status, approvedBy := phaseState(project, phase)
	if status != model.PhaseStatusLocked {
		return
	}
	setPhaseState(project, phase, model.StatusPending, approvedBy)
}

func (s *projectService) reload(ctx context.Context, id uuid.UUID) (ProjectResponse, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return ProjectResponse{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return toProjectResponse(project), nil
}

func (s *projectService) writeAudit(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, payload map[string]interface{}) error {
	details, _ := json.Marshal(payload)
	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(details),
	}
	if err := s.audit.Create(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func toProjectResponse(project *model.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:          project.ID.String(),
		Title:       project.Title,
		Description: project.Description,
		Proposal:    project.Proposal.Data(),
		Purchasing:  project.Purchasing.Data(),
		Payment:     project.Payment.Data(),
		CreatedAt:   project.CreatedAt.Format(time.RFC3339),
	}
	if project.Creator != nil {
		resp.CreatorName = project.Creator.Username
	}
	return resp
}
