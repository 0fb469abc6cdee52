package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentType enum constants
const (
	DocTypeProposal              = "PROPOSAL"
	DocTypePurchasing            = "PURCHASING"
	DocTypeDelivery              = "DELIVERY"
	DocTypeReceipt               = "RECEIPT"
	DocTypePayment               = "PAYMENT"
	DocTypeAdvancePayment        = "ADVANCE_PAYMENT"
	DocTypeAdvancePaymentReclaim = "ADVANCE_PAYMENT_RECLAIM"
	DocTypeProjectProposal       = "PROJECT_PROPOSAL"
	DocTypeGeneric               = "GENERIC"
)

// DocumentStatus enum constants
const (
	StatusPending           = "PENDING"
	StatusPartiallyApproved = "PARTIALLY_APPROVED"
	StatusApproved          = "APPROVED"
	StatusSuspended         = "SUSPENDED"
)

// DocumentTypes lists every concrete document variant.
var DocumentTypes = []string{
	DocTypeProposal, DocTypePurchasing, DocTypeDelivery, DocTypeReceipt,
	DocTypePayment, DocTypeAdvancePayment, DocTypeAdvancePaymentReclaim,
	DocTypeProjectProposal, DocTypeGeneric,
}

// Approver is one entry of a document's required-approvers list.
type Approver struct {
	Username string `json:"username"`
	SubRole  string `json:"sub_role,omitempty"`
}

// Approval is one signature collected on a document or project phase.
type Approval struct {
	Username     string    `json:"username"`
	Role         string    `json:"role,omitempty"`
	ApprovalDate time.Time `json:"approval_date"`
}

// DocumentStage is a per-stage sub-approval. A document with stages is
// only fully approved when every stage is approved AND the document
// itself is approved.
type DocumentStage struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// FileMeta is a reference to an externally stored attachment.
type FileMeta struct {
	FileName   string    `json:"file_name"`
	StorageRef string    `json:"storage_ref"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Document is the shared shape of every business document variant.
// References to other documents are copied by id at append time; there is
// no foreign-key enforcement across families.
type Document struct {
	ID            uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"id"`
	Type          string                             `gorm:"type:varchar(30);not null;index" json:"type"`
	Status        string                             `gorm:"type:varchar(30);not null;default:'PENDING';index" json:"status"`
	Title         string                             `gorm:"type:varchar(255);not null" json:"title"`
	CostCenter    string                             `gorm:"type:varchar(255);index" json:"cost_center"`
	GroupName     string                             `gorm:"type:varchar(255)" json:"group_name,omitempty"`
	ProjectName   string                             `gorm:"type:varchar(255)" json:"project_name,omitempty"`
	Approvers     datatypes.JSONSlice[Approver]      `json:"approvers"`
	ApprovedBy    datatypes.JSONSlice[Approval]      `json:"approved_by"`
	Stages        datatypes.JSONSlice[DocumentStage] `json:"stages,omitempty"`
	SuspendReason string                             `gorm:"type:text" json:"suspend_reason,omitempty"`
	FileMetadata  datatypes.JSONSlice[FileMeta]      `json:"file_metadata,omitempty"`

	Items []DocumentItem `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"items"`

	// Cross-document references: a payment appends approved purchasing
	// documents, a purchasing document appends approved proposals.
	AppendedProposals   []*Document `gorm:"many2many:document_appended_proposals;joinForeignKey:DocumentID;joinReferences:AppendedID" json:"appended_proposals,omitempty"`
	AppendedPurchasings []*Document `gorm:"many2many:document_appended_purchasings;joinForeignKey:DocumentID;joinReferences:AppendedID" json:"appended_purchasing_documents,omitempty"`

	CreatedBy      *uuid.UUID     `gorm:"type:uuid;index" json:"created_by"`
	Creator        *User          `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	SubmissionDate time.Time      `json:"submission_date"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = StatusPending
	}
	if d.SubmissionDate.IsZero() {
		d.SubmissionDate = time.Now()
	}
	return nil
}

// IsApprover reports whether username is in the required-approvers list.
func (d *Document) IsApprover(username string) bool {
	for _, a := range d.Approvers {
		if a.Username == username {
			return true
		}
	}
	return false
}

// HasApprovalFrom reports whether username has already signed.
func (d *Document) HasApprovalFrom(username string) bool {
	for _, a := range d.ApprovedBy {
		if a.Username == username {
			return true
		}
	}
	return false
}

// DocumentItem is a product line item within a document. Product name and
// code are copied from the registry at write time; rename propagation
// keeps them in sync afterwards.
type DocumentItem struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"document_id"`
	ProductName       string          `gorm:"type:varchar(255);not null;index" json:"product_name"`
	ProductCode       string          `gorm:"type:varchar(100);index" json:"product_code"`
	CostPerUnit       decimal.Decimal `gorm:"type:decimal(18,4);default:0" json:"cost_per_unit"`
	Amount            int             `gorm:"type:int;default:0" json:"amount"`
	VAT               decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"vat"`
	TotalCost         decimal.Decimal `gorm:"type:decimal(18,4);default:0" json:"total_cost"`
	TotalCostAfterVAT decimal.Decimal `gorm:"column:total_cost_after_vat;type:decimal(18,4);default:0" json:"total_cost_after_vat"`
	Note              string          `gorm:"type:text" json:"note"`
}

func (i *DocumentItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
