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
)

// --- DTOs ---

type DocumentItemDTO struct {
	ProductName string  `json:"product_name" binding:"required"`
	ProductCode string  `json:"product_code"`
	CostPerUnit float64 `json:"cost_per_unit" binding:"omitempty,min=0"`
	Amount      int     `json:"amount" binding:"omitempty,min=0"`
	VAT         float64 `json:"vat" binding:"omitempty,min=0"`
	Note        string  `json:"note"`
}

type ApproverDTO struct {
	Username string `json:"username" binding:"required"`
	SubRole  string `json:"sub_role"`
}

type CreateDocumentDTO struct {
	Type                  string            `json:"type" binding:"required"`
	Title                 string            `json:"title" binding:"required"`
	CostCenter            string            `json:"cost_center"`
	GroupName             string            `json:"group_name"`
	ProjectName           string            `json:"project_name"`
	Approvers             []ApproverDTO     `json:"approvers"`
	Stages                []string          `json:"stages"`
	Items                 []DocumentItemDTO `json:"items" binding:"dive"`
	AppendedProposalIDs   []string          `json:"appended_proposal_ids"`
	AppendedPurchasingIDs []string          `json:"appended_purchasing_ids"`
}

type SuspendDocumentDTO struct {
	Reason string `json:"reason"`
}

type DocumentFilter struct {
	Type   string
	Status string
	Page   int
	Limit  int
}

type DocumentResponse struct {
	ID                  string                `json:"id"`
	Type                string                `json:"type"`
	Status              string                `json:"status"`
	Title               string                `json:"title"`
	CostCenter          string                `json:"cost_center,omitempty"`
	GroupName           string                `json:"group_name,omitempty"`
	ProjectName         string                `json:"project_name,omitempty"`
	Approvers           []model.Approver      `json:"approvers"`
	ApprovedBy          []model.Approval      `json:"approved_by"`
	Stages              []model.DocumentStage `json:"stages,omitempty"`
	SuspendReason       string                `json:"suspend_reason,omitempty"`
	Items               []model.DocumentItem  `json:"items"`
	AppendedProposals   []string              `json:"appended_proposal_ids,omitempty"`
	AppendedPurchasings []string              `json:"appended_purchasing_ids,omitempty"`
	CreatorName         string                `json:"creator_name,omitempty"`
	SubmissionDate      string                `json:"submission_date"`
	CreatedAt           string                `json:"created_at"`
}

// --- Interface ---

type DocumentService interface {
	CreateDocument(ctx context.Context, req CreateDocumentDTO, userID string) (DocumentResponse, error)
	GetDocument(ctx context.Context, id string) (DocumentResponse, error)
	ListDocuments(ctx context.Context, filter DocumentFilter) ([]DocumentResponse, int64, error)
	Approve(ctx context.Context, id, userID string) (DocumentResponse, error)
	Suspend(ctx context.Context, id, userID, reason string) (DocumentResponse, error)
	Reopen(ctx context.Context, id, userID string) (DocumentResponse, error)
}

type documentService struct {
	txm      repository.TransactionManager
	docRepo  repository.DocumentRepository
	userRepo repository.UserRepository
	ccRepo   repository.CostCenterRepository
	audit    repository.AuditRepository
	hub      *ws.Hub
}

func NewDocumentService(
	txm repository.TransactionManager,
	docRepo repository.DocumentRepository,
	userRepo repository.UserRepository,
	ccRepo repository.CostCenterRepository,
	audit repository.AuditRepository,
	hub *ws.Hub,
) DocumentService {
	return &documentService{txm: txm, docRepo: docRepo, userRepo: userRepo, ccRepo: ccRepo, audit: audit, hub: hub}
}

// --- Implementation ---

func validDocumentType(docType string) bool {
	for _, t := range model.DocumentTypes {
		if t == docType {
			return true
		}
	}
	return false
}

func (s *documentService) CreateDocument(ctx context.Context, req CreateDocumentDTO, userID string) (DocumentResponse, error) {
	if !validDocumentType(req.Type) {
		return DocumentResponse{}, fmt.Errorf("unknown document type %q", req.Type)
	}

	creator, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("creator lookup: %w", ErrNotFound)
	}

	// Cost center gate: an empty allowed-users list means unrestricted.
	if req.CostCenter != "" {
		cc, ccErr := s.ccRepo.FindByName(ctx, req.CostCenter)
		if ccErr != nil {
			return DocumentResponse{}, fmt.Errorf("cost center %q: %w", req.CostCenter, ErrNotFound)
		}
		if !cc.Allows(creator.Username) {
			return DocumentResponse{}, fmt.Errorf("cost center %q: %w", req.CostCenter, ErrCostCenterDenied)
		}
	}

	doc := model.Document{
		Type:        req.Type,
		Status:      model.StatusPending,
		Title:       req.Title,
		CostCenter:  req.CostCenter,
		GroupName:   req.GroupName,
		ProjectName: req.ProjectName,
		CreatedBy:   &creator.ID,
	}
	for _, a := range req.Approvers {
		doc.Approvers = append(doc.Approvers, model.Approver{Username: a.Username, SubRole: a.SubRole})
	}
	for _, name := range req.Stages {
		doc.Stages = append(doc.Stages, model.DocumentStage{Name: name, Status: model.StatusPending})
	}
	for _, item := range req.Items {
		doc.Items = append(doc.Items, buildItem(item))
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.docRepo.Create(txCtx, &doc); createErr != nil {
			return fmt.Errorf("failed to create document: %w", createErr)
		}

		// Only approved documents may be appended as references.
		for _, rawID := range req.AppendedProposalIDs {
			proposal, refErr := s.loadApprovedReference(txCtx, rawID, model.DocTypeProposal, model.DocTypeProjectProposal)
			if refErr != nil {
				return refErr
			}
			if appendErr := s.docRepo.AppendProposal(txCtx, &doc, proposal); appendErr != nil {
				return fmt.Errorf("failed to append proposal: %w", appendErr)
			}
		}
		for _, rawID := range req.AppendedPurchasingIDs {
			purchasing, refErr := s.loadApprovedReference(txCtx, rawID, model.DocTypePurchasing)
			if refErr != nil {
				return refErr
			}
			if appendErr := s.docRepo.AppendPurchasing(txCtx, &doc, purchasing); appendErr != nil {
				return fmt.Errorf("failed to append purchasing document: %w", appendErr)
			}
		}

		return s.writeAudit(txCtx, &creator.ID, model.ActionCreateDocument, doc.ID.String(), doc.Title, map[string]interface{}{
			"type":  doc.Type,
			"title": doc.Title,
		})
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	return s.reload(ctx, doc.ID)
}

func (s *documentService) loadApprovedReference(ctx context.Context, rawID string, allowedTypes ...string) (*model.Document, error) {
	refID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid referenced document id %q: %w", rawID, err)
	}
	ref, err := s.docRepo.FindByID(ctx, refID)
	if err != nil {
		return nil, fmt.Errorf("referenced document %s: %w", rawID, ErrNotFound)
	}
	typeOK := false
	for _, t := range allowedTypes {
		if ref.Type == t {
			typeOK = true
			break
		}
	}
	if !typeOK {
		return nil, fmt.Errorf("referenced document %s has type %s: %w", rawID, ref.Type, ErrReferenceNotApproved)
	}
	if ref.Status != model.StatusApproved {
		return nil, fmt.Errorf("referenced document %s is %s: %w", rawID, ref.Status, ErrReferenceNotApproved)
	}
	return ref, nil
}

func (s *documentService) GetDocument(ctx context.Context, id string) (DocumentResponse, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("invalid document id: %w", err)
	}
	return s.reload(ctx, docID)
}

func (s *documentService) ListDocuments(ctx context.Context, filter DocumentFilter) ([]DocumentResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	docs, total, err := s.docRepo.List(ctx, filter.Type, filter.Status, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}

	result := make([]DocumentResponse, 0, len(docs))
	for i := range docs {
		result = append(result, toDocumentResponse(&docs[i]))
	}
	return result, total, nil
}

// Approve appends the caller's signature and recomputes the aggregate
// status under the document's approval rule. The row is locked for the
// duration of the transaction, so the duplicate-signature check and the
// append are atomic even when two approvers race on the same document.
func (s *documentService) Approve(ctx context.Context, id, userID string) (DocumentResponse, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("invalid document id: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("approver lookup: %w", ErrNotFound)
	}

	var newStatus string
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		doc, findErr := s.docRepo.FindByIDForUpdate(txCtx, docID)
		if findErr != nil {
			return fmt.Errorf("document %s: %w", id, ErrNotFound)
		}

		if doc.Status == model.StatusSuspended {
			return fmt.Errorf("document %s: %w", id, ErrDocumentSuspended)
		}
		if !doc.IsApprover(user.Username) {
			return fmt.Errorf("user %s on document %s: %w", user.Username, id, ErrUnauthorized)
		}
		if doc.HasApprovalFrom(user.Username) {
			return fmt.Errorf("user %s on document %s: %w", user.Username, id, ErrAlreadyApproved)
		}

		doc.ApprovedBy = append(doc.ApprovedBy, model.Approval{
			Username:     user.Username,
			Role:         user.Role,
			ApprovalDate: time.Now(),
		})
		rule := approval.ForDocumentType(doc.Type)
		doc.Status = rule.Status(doc.ApprovedBy, len(doc.Approvers))
		newStatus = doc.Status

		if saveErr := s.docRepo.Update(txCtx, doc); saveErr != nil {
			return fmt.Errorf("failed to update document: %w", saveErr)
		}

		return s.writeAudit(txCtx, &user.ID, model.ActionApproveDocument, doc.ID.String(), doc.Title, map[string]interface{}{
			"type":   doc.Type,
			"status": doc.Status,
		})
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	s.hub.BroadcastEvent(ws.EventDocumentApproved, map[string]interface{}{
		"document_id": id,
		"status":      newStatus,
		"approver":    user.Username,
	})

	return s.reload(ctx, docID)
}

// Suspend takes a document out of circulation. Collected signatures are
// preserved for the audit trail but do not survive a later reopen.
func (s *documentService) Suspend(ctx context.Context, id, userID, reason string) (DocumentResponse, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("invalid document id: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("user lookup: %w", ErrNotFound)
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		doc, findErr := s.docRepo.FindByIDForUpdate(txCtx, docID)
		if findErr != nil {
			return fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		if doc.Status == model.StatusSuspended {
			return fmt.Errorf("document %s: %w", id, ErrAlreadySuspended)
		}

		doc.Status = model.StatusSuspended
		doc.SuspendReason = reason

		if saveErr := s.docRepo.Update(txCtx, doc); saveErr != nil {
			return fmt.Errorf("failed to suspend document: %w", saveErr)
		}

		return s.writeAudit(txCtx, &user.ID, model.ActionSuspendDocument, doc.ID.String(), doc.Title, map[string]interface{}{
			"reason": reason,
		})
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	s.hub.BroadcastEvent(ws.EventDocumentSuspended, map[string]interface{}{
		"document_id": id,
		"reason":      reason,
	})

	return s.reload(ctx, docID)
}

// Reopen returns a suspended document to Pending. Prior signatures are
// cleared: a suspension invalidates earlier sign-off, so every approver
// must sign again. The pre-suspension signatures stay in the audit log.
func (s *documentService) Reopen(ctx context.Context, id, userID string) (DocumentResponse, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("invalid document id: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("user lookup: %w", ErrNotFound)
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		doc, findErr := s.docRepo.FindByIDForUpdate(txCtx, docID)
		if findErr != nil {
			return fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		if doc.Status != model.StatusSuspended {
			return fmt.Errorf("document %s is %s: %w", id, doc.Status, ErrNotSuspended)
		}

		priorApprovals, _ := json.Marshal(doc.ApprovedBy)

		doc.Status = model.StatusPending
		doc.SuspendReason = ""
		doc.ApprovedBy = nil

		if saveErr := s.docRepo.Update(txCtx, doc); saveErr != nil {
			return fmt.Errorf("failed to reopen document: %w", saveErr)
		}

		return s.writeAudit(txCtx, &user.ID, model.ActionReopenDocument, doc.ID.String(), doc.Title, map[string]interface{}{
			"cleared_approvals": string(priorApprovals),
		})
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	s.hub.BroadcastEvent(ws.EventDocumentReopened, map[string]interface{}{
		"document_id": id,
	})

	return s.reload(ctx, docID)
}

// --- Helpers ---

func (s *documentService) reload(ctx context.Context, id uuid.UUID) (DocumentResponse, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return toDocumentResponse(doc), nil
}

func (s *documentService) writeAudit(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, payload map[string]interface{}) error {
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

func buildItem(dto DocumentItemDTO) model.DocumentItem {
	costPerUnit := decimal.NewFromFloat(dto.CostPerUnit)
	vat := decimal.NewFromFloat(dto.VAT)
	totalCost := costPerUnit.Mul(decimal.NewFromInt(int64(dto.Amount)))
	totalAfterVAT := totalCost.Add(totalCost.Mul(vat).Div(decimal.NewFromInt(100)))

	return model.DocumentItem{
		ProductName:       dto.ProductName,
		ProductCode:       dto.ProductCode,
		CostPerUnit:       costPerUnit,
		Amount:            dto.Amount,
		VAT:               vat,
		TotalCost:         totalCost,
		TotalCostAfterVAT: totalAfterVAT,
		Note:              dto.Note,
	}
}

func toDocumentResponse(doc *model.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:             doc.ID.String(),
		Type:           doc.Type,
		Status:         doc.Status,
		Title:          doc.Title,
		CostCenter:     doc.CostCenter,
		GroupName:      doc.GroupName,
		ProjectName:    doc.ProjectName,
		Approvers:      doc.Approvers,
		ApprovedBy:     doc.ApprovedBy,
		Stages:         doc.Stages,
		SuspendReason:  doc.SuspendReason,
		Items:          doc.Items,
		SubmissionDate: doc.SubmissionDate.Format(time.RFC3339),
		CreatedAt:      doc.CreatedAt.Format(time.RFC3339),
	}
	if doc.Creator != nil {
		resp.CreatorName = doc.Creator.Username
	}
	for _, p := range doc.AppendedProposals {
		resp.AppendedProposals = append(resp.AppendedProposals, p.ID.String())
	}
	for _, p := range doc.AppendedPurchasings {
		resp.AppendedPurchasings = append(resp.AppendedPurchasings, p.ID.String())
	}
	return resp
}
